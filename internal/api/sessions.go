package api

import (
	"context"
	"fmt"
	"net/http"
)

// Pipeline sessions, steps, candidates, and dataset access. These are
// read-mostly views over the analysis backend's output.

func (c *Client) ListRepositorySessions(ctx context.Context, repositoryID int64) ([]Session, error) {
	var out []Session
	err := c.Do(ctx, fmt.Sprintf("/repositories/%d/sessions", repositoryID), RequestOptions{}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) LatestRepositorySession(ctx context.Context, repositoryID int64) (*Session, error) {
	var out Session
	err := c.Do(ctx, fmt.Sprintf("/repositories/%d/sessions/latest", repositoryID), RequestOptions{}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetSession(ctx context.Context, sessionID int64) (*Session, error) {
	var out Session
	if err := c.Do(ctx, fmt.Sprintf("/sessions/%d", sessionID), RequestOptions{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListPipelineSteps(ctx context.Context, sessionID int64) ([]PipelineStep, error) {
	var out []PipelineStep
	err := c.Do(ctx, fmt.Sprintf("/sessions/%d/pipeline-steps", sessionID), RequestOptions{}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListSessionCandidates(ctx context.Context, sessionID int64) ([]Candidate, error) {
	var out []Candidate
	err := c.Do(ctx, fmt.Sprintf("/sessions/%d/candidates", sessionID), RequestOptions{}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// VerifyCandidate marks a transit candidate as verified or rejected.
func (c *Client) VerifyCandidate(ctx context.Context, candidateID int64, req CandidateVerifyUpdate) error {
	return c.Do(ctx, fmt.Sprintf("/candidates/%d", candidateID), RequestOptions{
		Method: http.MethodPatch,
		Body:   req,
	}, nil)
}

func (c *Client) ListDatasets(ctx context.Context, repositoryID int64) ([]Dataset, error) {
	var out []Dataset
	err := c.Do(ctx, "/datasets", RequestOptions{Query: Query{"repository_id": repositoryID}}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListDataItems(ctx context.Context, datasetID int64) ([]DataItem, error) {
	var out []DataItem
	err := c.Do(ctx, "/data", RequestOptions{Query: Query{"dataset_id": datasetID}}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}
