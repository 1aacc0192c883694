package api

import (
	"context"
	"fmt"
	"net/http"
)

// Login authenticates with the backend. skipAuthRetry is forced so a bad
// credential cannot trigger a refresh loop.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var out LoginResponse
	err := c.Do(ctx, "/users/login", RequestOptions{
		Method:        http.MethodPost,
		Body:          req,
		SkipAuthRetry: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RefreshTokens exchanges a refresh token for a new token pair.
func (c *Client) RefreshTokens(ctx context.Context, req RefreshRequest) (*LoginResponse, error) {
	var out LoginResponse
	err := c.Do(ctx, "/users/refresh", RequestOptions{
		Method:        http.MethodPost,
		Body:          req,
		SkipAuthRetry: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CurrentUser fetches the authenticated user.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var out User
	if err := c.Do(ctx, "/users/me", RequestOptions{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.Do(ctx, "/users", RequestOptions{}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateUser(ctx context.Context, req UserCreate) (*User, error) {
	var out User
	err := c.Do(ctx, "/users", RequestOptions{
		Method:        http.MethodPost,
		Body:          req,
		SkipAuthRetry: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetUser(ctx context.Context, userID int64) (*User, error) {
	var out User
	if err := c.Do(ctx, fmt.Sprintf("/users/%d", userID), RequestOptions{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUser(ctx context.Context, userID int64, req UserUpdate) (*User, error) {
	var out User
	err := c.Do(ctx, fmt.Sprintf("/users/%d", userID), RequestOptions{
		Method: http.MethodPut,
		Body:   req,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, userID int64) error {
	return c.Do(ctx, fmt.Sprintf("/users/%d", userID), RequestOptions{Method: http.MethodDelete}, nil)
}

func (c *Client) GetUserProfile(ctx context.Context, userID int64) (*UserProfile, error) {
	var out UserProfile
	if err := c.Do(ctx, fmt.Sprintf("/users/%d/profile", userID), RequestOptions{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpsertUserProfile(ctx context.Context, userID int64, req UserProfile) (*UserProfile, error) {
	var out UserProfile
	err := c.Do(ctx, fmt.Sprintf("/users/%d/profile", userID), RequestOptions{
		Method: http.MethodPut,
		Body:   req,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
