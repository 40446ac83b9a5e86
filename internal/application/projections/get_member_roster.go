package projections

import (
	"context"

	"bookclub/internal/adapters/storage/member"
	domainMember "bookclub/internal/domain/member"
)

// GetMemberRosterQuery carries query parameters.
type GetMemberRosterQuery struct {
	IncludeHidden bool // admins see hidden members
	UnlinkedOnly  bool // members with no login profile
}

// GetMemberRosterDeps holds dependencies for GetMemberRoster.
type GetMemberRosterDeps struct {
	MemberStore MemberStore
}

// QueryGetMemberRoster lists members in display order.
// PRE: none
// POST: Hidden members appear only with IncludeHidden; result never nil
func QueryGetMemberRoster(ctx context.Context, query GetMemberRosterQuery, deps GetMemberRosterDeps) ([]domainMember.Member, error) {
	members, err := deps.MemberStore.List(ctx, member.ListFilter{
		VisibleOnly:  !query.IncludeHidden,
		UnlinkedOnly: query.UnlinkedOnly,
	})
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = []domainMember.Member{}
	}
	return members, nil
}
