package api

import (
	"context"
	"fmt"
	"net/http"
)

// ListProjectsParams filters GET /projects. Nil fields are omitted.
type ListProjectsParams struct {
	MemberID *int64
	Search   *string
}

func (c *Client) ListProjects(ctx context.Context, params ListProjectsParams) ([]Project, error) {
	query := Query{}
	if params.MemberID != nil {
		query["member_id"] = *params.MemberID
	}
	if params.Search != nil {
		query["q"] = *params.Search
	}
	var out []Project
	if err := c.Do(ctx, "/projects", RequestOptions{Query: query}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateProject(ctx context.Context, req ProjectCreate) (*Project, error) {
	var out Project
	err := c.Do(ctx, "/projects", RequestOptions{Method: http.MethodPost, Body: req}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetProject(ctx context.Context, projectID int64) (*Project, error) {
	var out Project
	if err := c.Do(ctx, fmt.Sprintf("/projects/%d", projectID), RequestOptions{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProject(ctx context.Context, projectID int64, req ProjectUpdate) (*Project, error) {
	var out Project
	err := c.Do(ctx, fmt.Sprintf("/projects/%d", projectID), RequestOptions{
		Method: http.MethodPut,
		Body:   req,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProject(ctx context.Context, projectID int64) error {
	return c.Do(ctx, fmt.Sprintf("/projects/%d", projectID), RequestOptions{Method: http.MethodDelete}, nil)
}

func (c *Client) ListProjectMembers(ctx context.Context, projectID int64) ([]ProjectMember, error) {
	var out []ProjectMember
	if err := c.Do(ctx, fmt.Sprintf("/projects/%d/members", projectID), RequestOptions{}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddProjectMember(ctx context.Context, projectID int64, req ProjectMemberCreate) (*ProjectMember, error) {
	var out ProjectMember
	err := c.Do(ctx, fmt.Sprintf("/projects/%d/members", projectID), RequestOptions{
		Method: http.MethodPost,
		Body:   req,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProjectMember(ctx context.Context, projectID, userID int64, req ProjectMemberUpdate) error {
	return c.Do(ctx, fmt.Sprintf("/projects/%d/members/%d", projectID, userID), RequestOptions{
		Method: http.MethodPatch,
		Body:   req,
	}, nil)
}

func (c *Client) RemoveProjectMember(ctx context.Context, projectID, userID int64) error {
	return c.Do(ctx, fmt.Sprintf("/projects/%d/members/%d", projectID, userID), RequestOptions{
		Method: http.MethodDelete,
	}, nil)
}

func (c *Client) ListProjectRepositories(ctx context.Context, projectID int64) ([]Repository, error) {
	var out []Repository
	if err := c.Do(ctx, fmt.Sprintf("/projects/%d/repositories", projectID), RequestOptions{}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AttachRepositoryToProject(ctx context.Context, projectID int64, req ProjectRepositoryLink) error {
	return c.Do(ctx, fmt.Sprintf("/projects/%d/repositories", projectID), RequestOptions{
		Method: http.MethodPost,
		Body:   req,
	}, nil)
}

func (c *Client) DetachRepositoryFromProject(ctx context.Context, projectID, repositoryID int64) error {
	return c.Do(ctx, fmt.Sprintf("/projects/%d/repositories/%d", projectID, repositoryID), RequestOptions{
		Method: http.MethodDelete,
	}, nil)
}

// ── Pinned projects ──────────

func (c *Client) ListPinnedProjects(ctx context.Context, userID int64) ([]Pin, error) {
	var out []Pin
	if err := c.Do(ctx, fmt.Sprintf("/users/%d/pinned-projects", userID), RequestOptions{}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PinProject(ctx context.Context, userID int64, req PinCreate) (*Pin, error) {
	var out Pin
	err := c.Do(ctx, fmt.Sprintf("/users/%d/pinned-projects", userID), RequestOptions{
		Method: http.MethodPost,
		Body:   req,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ReorderPinnedProjects(ctx context.Context, userID int64, req PinReorder) error {
	return c.Do(ctx, fmt.Sprintf("/users/%d/pinned-projects", userID), RequestOptions{
		Method: http.MethodPatch,
		Body:   req,
	}, nil)
}

func (c *Client) UnpinProject(ctx context.Context, userID, projectID int64) error {
	return c.Do(ctx, fmt.Sprintf("/users/%d/pinned-projects/%d", userID, projectID), RequestOptions{
		Method: http.MethodDelete,
	}, nil)
}
