package api

import (
	"context"
	"fmt"
)

func (c *Client) GetUserStats(ctx context.Context, userID int64) (*UserStats, error) {
	var out UserStats
	if err := c.Do(ctx, fmt.Sprintf("/users/%d/stats", userID), RequestOptions{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ContributionsParams bounds the contribution query. Nil dates mean the
// backend's default window; dates are yyyy-mm-dd.
type ContributionsParams struct {
	From             *string
	To               *string
	IncludeSkyPoints bool
}

func (c *Client) GetUserContributions(ctx context.Context, userID int64, params ContributionsParams) (*Contributions, error) {
	query := Query{}
	if params.From != nil {
		query["from"] = *params.From
	}
	if params.To != nil {
		query["to"] = *params.To
	}
	if params.IncludeSkyPoints {
		query["include_sky_points"] = true
	}
	var out Contributions
	err := c.Do(ctx, fmt.Sprintf("/users/%d/contributions", userID), RequestOptions{Query: query}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetHealth probes the backend root endpoint.
func (c *Client) GetHealth(ctx context.Context) (Health, error) {
	var out Health
	if err := c.Do(ctx, "/", RequestOptions{}, &out); err != nil {
		return nil, err
	}
	return out, nil
}
