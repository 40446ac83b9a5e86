package projections

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// AdminStats are the dashboard totals.
type AdminStats struct {
	Books       int `json:"books"`
	Members     int `json:"members"`
	Suggestions int `json:"suggestions"`
	Gallery     int `json:"gallery"`
}

// GetAdminStatsDeps holds dependencies for GetAdminStats. Members counts
// login profiles, not roster entries.
type GetAdminStatsDeps struct {
	BookStore       Counter
	ProfileStore    Counter
	SuggestionStore Counter
	GalleryStore    Counter
}

// QueryGetAdminStats issues the four counts concurrently.
// PRE: none
// POST: Returns all four totals, or the first error encountered
func QueryGetAdminStats(ctx context.Context, deps GetAdminStatsDeps) (AdminStats, error) {
	var stats AdminStats
	g, ctx := errgroup.WithContext(ctx)

	count := func(c Counter, dst *int) {
		g.Go(func() error {
			n, err := c.Count(ctx)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}
	count(deps.BookStore, &stats.Books)
	count(deps.ProfileStore, &stats.Members)
	count(deps.SuggestionStore, &stats.Suggestions)
	count(deps.GalleryStore, &stats.Gallery)

	if err := g.Wait(); err != nil {
		return AdminStats{}, err
	}
	return stats, nil
}
