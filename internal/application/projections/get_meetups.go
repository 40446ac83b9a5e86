package projections

import (
	"context"
	"sort"
	"time"

	"bookclub/internal/adapters/storage/meetup"
	"bookclub/internal/application/htmlsanitize"
	domainMeetup "bookclub/internal/domain/meetup"
)

// MeetupView is a meetup with its description rendered to HTML.
type MeetupView struct {
	domainMeetup.Meetup
	DescriptionHTML string
}

// GetMeetupsQuery carries query parameters.
type GetMeetupsQuery struct {
	IncludeDrafts bool
}

// GetMeetupsDeps holds dependencies for the meetup projections.
type GetMeetupsDeps struct {
	MeetupStore MeetupStore
}

// QueryGetMeetups lists meetups, latest event first, with rendered descriptions.
// PRE: none
// POST: Unpublished meetups appear only with IncludeDrafts
func QueryGetMeetups(ctx context.Context, query GetMeetupsQuery, deps GetMeetupsDeps) ([]MeetupView, error) {
	meetups, err := deps.MeetupStore.List(ctx, meetup.ListFilter{PublishedOnly: !query.IncludeDrafts})
	if err != nil {
		return nil, err
	}
	views := make([]MeetupView, 0, len(meetups))
	for _, m := range meetups {
		html, err := htmlsanitize.Markdown(m.Description)
		if err != nil {
			return nil, err
		}
		views = append(views, MeetupView{Meetup: m, DescriptionHTML: html})
	}
	return views, nil
}

// YearGroup holds the past meetups of one year.
type YearGroup struct {
	Year    int
	Meetups []MeetupView
}

// MeetupTimeline splits published meetups around now.
type MeetupTimeline struct {
	Upcoming []MeetupView // soonest first
	Past     []YearGroup  // latest year first, latest event first
}

// QueryGetMeetupTimeline builds the public meetups page.
// PRE: none
// POST: Every published meetup appears exactly once
func QueryGetMeetupTimeline(ctx context.Context, now time.Time, deps GetMeetupsDeps) (MeetupTimeline, error) {
	views, err := QueryGetMeetups(ctx, GetMeetupsQuery{}, deps)
	if err != nil {
		return MeetupTimeline{}, err
	}

	timeline := MeetupTimeline{Upcoming: []MeetupView{}, Past: []YearGroup{}}
	byYear := make(map[int]int)
	for _, v := range views {
		if v.IsUpcoming(now) {
			timeline.Upcoming = append(timeline.Upcoming, v)
			continue
		}
		year := v.EventDate.UTC().Year()
		idx, ok := byYear[year]
		if !ok {
			idx = len(timeline.Past)
			byYear[year] = idx
			timeline.Past = append(timeline.Past, YearGroup{Year: year})
		}
		timeline.Past[idx].Meetups = append(timeline.Past[idx].Meetups, v)
	}

	sort.SliceStable(timeline.Upcoming, func(i, j int) bool {
		return timeline.Upcoming[i].EventDate.Before(timeline.Upcoming[j].EventDate)
	})
	sort.SliceStable(timeline.Past, func(i, j int) bool {
		return timeline.Past[i].Year > timeline.Past[j].Year
	})
	return timeline, nil
}
