package api

import (
	"context"
	"fmt"
	"net/http"
)

// ListPosts fetches community posts, optionally filtered by category.
// An empty category returns every post.
func (c *Client) ListPosts(ctx context.Context, category PostCategory) ([]Post, error) {
	query := Query{}
	if category != "" {
		query["category"] = string(category)
	}
	var out []Post
	if err := c.Do(ctx, "/community/posts", RequestOptions{Query: query}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreatePost(ctx context.Context, req PostCreate) (*Post, error) {
	var out Post
	err := c.Do(ctx, "/community/posts", RequestOptions{Method: http.MethodPost, Body: req}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeletePost(ctx context.Context, postID int64) error {
	return c.Do(ctx, fmt.Sprintf("/community/posts/%d", postID), RequestOptions{Method: http.MethodDelete}, nil)
}

// LikePost likes a post and returns the authoritative like state.
func (c *Client) LikePost(ctx context.Context, postID int64) (*LikeStatus, error) {
	var out LikeStatus
	err := c.Do(ctx, fmt.Sprintf("/community/posts/%d/likes", postID), RequestOptions{
		Method: http.MethodPost,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UnlikePost(ctx context.Context, postID int64) (*LikeStatus, error) {
	var out LikeStatus
	err := c.Do(ctx, fmt.Sprintf("/community/posts/%d/likes", postID), RequestOptions{
		Method: http.MethodDelete,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddComment(ctx context.Context, postID int64, req CommentCreate) (*Comment, error) {
	var out Comment
	err := c.Do(ctx, fmt.Sprintf("/community/posts/%d/comments", postID), RequestOptions{
		Method: http.MethodPost,
		Body:   req,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteComment(ctx context.Context, postID, commentID int64) error {
	return c.Do(ctx, fmt.Sprintf("/community/posts/%d/comments/%d", postID, commentID), RequestOptions{
		Method: http.MethodDelete,
	}, nil)
}
