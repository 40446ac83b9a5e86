package projections

import (
	"context"

	"bookclub/internal/adapters/storage/meetup"
	"bookclub/internal/adapters/storage/member"
	profileStore "bookclub/internal/adapters/storage/profile"
	"bookclub/internal/adapters/storage/suggestion"
	domainMeetup "bookclub/internal/domain/meetup"
	domainMember "bookclub/internal/domain/member"
	domainProfile "bookclub/internal/domain/profile"
)

// Counter is any store that can count its rows.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// ProfileStore interface for profile queries.
type ProfileStore interface {
	List(ctx context.Context, filter profileStore.ListFilter) ([]domainProfile.Profile, error)
	Count(ctx context.Context) (int, error)
}

// MemberStore interface for member queries.
type MemberStore interface {
	List(ctx context.Context, filter member.ListFilter) ([]domainMember.Member, error)
}

// SuggestionStore interface for suggestion queries.
type SuggestionStore interface {
	List(ctx context.Context, filter suggestion.ListFilter) ([]suggestion.Entry, error)
	CountByUser(ctx context.Context, userID string, filter suggestion.ListFilter) (int, error)
}

// VoteStore interface for vote queries.
type VoteStore interface {
	SuggestionIDsByUser(ctx context.Context, userID string) ([]string, error)
}

// MeetupStore interface for meetup queries.
type MeetupStore interface {
	List(ctx context.Context, filter meetup.ListFilter) ([]domainMeetup.Meetup, error)
}
