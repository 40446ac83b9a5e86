package projections

import (
	"context"

	"bookclub/internal/adapters/storage/profile"
	"bookclub/internal/application/listutil"
	domainProfile "bookclub/internal/domain/profile"
)

// GetUserListQuery carries query parameters. A zero Page returns every profile.
type GetUserListQuery struct {
	listutil.PageParams
	Role string
}

// GetUserListResult carries the page of profiles and its metadata.
type GetUserListResult struct {
	Users    []domainProfile.Profile
	PageInfo listutil.PageInfo
}

// GetUserListDeps holds dependencies for GetUserList.
type GetUserListDeps struct {
	ProfileStore ProfileStore
}

// QueryGetUserList lists profiles newest first.
// PRE: none
// POST: Users never nil; PageInfo.Total is the unfiltered profile count
func QueryGetUserList(ctx context.Context, query GetUserListQuery, deps GetUserListDeps) (GetUserListResult, error) {
	total, err := deps.ProfileStore.Count(ctx)
	if err != nil {
		return GetUserListResult{}, err
	}

	filter := profile.ListFilter{Role: query.Role}
	info := listutil.NewPageInfo(1, max(total, 1), total)
	if query.Page > 0 {
		info = listutil.NewPageInfo(query.Page, query.PerPage, total)
		filter.Limit = info.PerPage
		filter.Offset = info.Offset()
	}

	users, err := deps.ProfileStore.List(ctx, filter)
	if err != nil {
		return GetUserListResult{}, err
	}
	if users == nil {
		users = []domainProfile.Profile{}
	}
	return GetUserListResult{Users: users, PageInfo: info}, nil
}
