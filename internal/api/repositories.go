package api

import (
	"context"
	"fmt"
	"net/http"
)

// ListRepositoriesParams filters GET /repositories. Nil fields are omitted.
type ListRepositoriesParams struct {
	OwnerID        *int64
	Search         *string
	StarredBy      *int64
	IncludeSession bool
}

func (c *Client) ListRepositories(ctx context.Context, params ListRepositoriesParams) ([]Repository, error) {
	query := Query{}
	if params.OwnerID != nil {
		query["owner_id"] = *params.OwnerID
	}
	if params.Search != nil {
		query["q"] = *params.Search
	}
	if params.StarredBy != nil {
		query["starred_by"] = *params.StarredBy
	}
	if params.IncludeSession {
		query["include_session"] = true
	}
	var out []Repository
	if err := c.Do(ctx, "/repositories", RequestOptions{Query: query}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateRepository(ctx context.Context, req RepositoryCreate) (*Repository, error) {
	var out Repository
	err := c.Do(ctx, "/repositories", RequestOptions{Method: http.MethodPost, Body: req}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetRepository(ctx context.Context, repositoryID int64) (*Repository, error) {
	var out Repository
	if err := c.Do(ctx, fmt.Sprintf("/repositories/%d", repositoryID), RequestOptions{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateRepository(ctx context.Context, repositoryID int64, req RepositoryUpdate) (*Repository, error) {
	var out Repository
	err := c.Do(ctx, fmt.Sprintf("/repositories/%d", repositoryID), RequestOptions{
		Method: http.MethodPut,
		Body:   req,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteRepository(ctx context.Context, repositoryID int64) error {
	return c.Do(ctx, fmt.Sprintf("/repositories/%d", repositoryID), RequestOptions{Method: http.MethodDelete}, nil)
}

func (c *Client) ListUserRepositories(ctx context.Context, userID int64, includeSession bool) ([]Repository, error) {
	query := Query{}
	if includeSession {
		query["include_session"] = true
	}
	var out []Repository
	err := c.Do(ctx, fmt.Sprintf("/users/%d/repositories", userID), RequestOptions{Query: query}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// StarRepository stars a repository for the given user. The backend keys
// the star on a user_id query parameter rather than the bearer identity.
func (c *Client) StarRepository(ctx context.Context, repositoryID, userID int64) error {
	return c.Do(ctx, fmt.Sprintf("/repositories/%d/star", repositoryID), RequestOptions{
		Method: http.MethodPut,
		Query:  Query{"user_id": userID},
	}, nil)
}

func (c *Client) UnstarRepository(ctx context.Context, repositoryID, userID int64) error {
	return c.Do(ctx, fmt.Sprintf("/repositories/%d/star", repositoryID), RequestOptions{
		Method: http.MethodDelete,
		Query:  Query{"user_id": userID},
	}, nil)
}

func (c *Client) ListUserStars(ctx context.Context, userID int64) ([]Star, error) {
	var out []Star
	if err := c.Do(ctx, fmt.Sprintf("/users/%d/stars", userID), RequestOptions{}, &out); err != nil {
		return nil, err
	}
	return out, nil
}
