// Package feed layers the optimistic social interactions (likes,
// comments, post deletion, project pins, repository stars) over the
// query cache. Every mutation follows the same protocol: snapshot the
// affected cache entries, apply the predicted state synchronously, issue
// the network call, reconcile with the server's authoritative fields on
// success or restore the snapshot on failure, and always schedule a
// background refresh of what was touched.
package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/NUPS-NASA/exohunt/internal/api"
	"github.com/NUPS-NASA/exohunt/internal/cache"
)

// API is the slice of the transport client the feed needs. Satisfied by
// *api.Client; narrowed for tests.
type API interface {
	ListPosts(ctx context.Context, category api.PostCategory) ([]api.Post, error)
	CreatePost(ctx context.Context, req api.PostCreate) (*api.Post, error)
	DeletePost(ctx context.Context, postID int64) error
	LikePost(ctx context.Context, postID int64) (*api.LikeStatus, error)
	UnlikePost(ctx context.Context, postID int64) (*api.LikeStatus, error)
	AddComment(ctx context.Context, postID int64, req api.CommentCreate) (*api.Comment, error)
	DeleteComment(ctx context.Context, postID, commentID int64) error
	ListPinnedProjects(ctx context.Context, userID int64) ([]api.Pin, error)
	PinProject(ctx context.Context, userID int64, req api.PinCreate) (*api.Pin, error)
	UnpinProject(ctx context.Context, userID, projectID int64) error
	ListUserStars(ctx context.Context, userID int64) ([]api.Star, error)
	StarRepository(ctx context.Context, repositoryID, userID int64) error
	UnstarRepository(ctx context.Context, repositoryID, userID int64) error
}

const postsKeyPrefix = "community/posts"

// PostsKey is the cache identity of one post-list query.
func PostsKey(category api.PostCategory) cache.Key {
	if category == "" {
		return cache.Key(postsKeyPrefix + "?category=all")
	}
	return cache.Key(postsKeyPrefix + "?category=" + string(category))
}

// PinsKey is the cache identity of a user's pinned-project id list.
func PinsKey(userID int64) cache.Key {
	return cache.Key(fmt.Sprintf("users/%d/pinned-projects", userID))
}

// StarsKey is the cache identity of a user's starred-repository id list.
func StarsKey(userID int64) cache.Key {
	return cache.Key(fmt.Sprintf("users/%d/stars", userID))
}

// Service drives the optimistic operations for one signed-in user.
type Service struct {
	api    API
	cache  *cache.Store
	userID int64
	// userName labels optimistic comment placeholders until the server
	// echoes the authoritative author.
	userName string
}

func NewService(a API, store *cache.Store, userID int64, userName string) *Service {
	return &Service{api: a, cache: store, userID: userID, userName: userName}
}

// Cache exposes the backing store, mainly so callers can Wait for
// background refreshes before exiting.
func (s *Service) Cache() *cache.Store { return s.cache }

// Posts is a read-through: cached lists are returned as-is, misses are
// fetched and a fetcher registered so invalidation can refresh them.
func (s *Service) Posts(ctx context.Context, category api.PostCategory) ([]api.Post, error) {
	key := PostsKey(category)
	if val, ok := s.cache.Get(key); ok {
		return val.([]api.Post), nil
	}

	posts, err := s.api.ListPosts(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("loading community posts: %w", err)
	}
	s.cache.Register(key, func(ctx context.Context) (any, error) {
		fetched, err := s.api.ListPosts(ctx, category)
		if err != nil {
			return nil, err
		}
		return fetched, nil
	})
	s.cache.Set(key, posts)
	return posts, nil
}

// CreatePost submits a new post and invalidates every cached list; a new
// post's placement is the server's call, so no optimistic insert.
func (s *Service) CreatePost(ctx context.Context, req api.PostCreate) (*api.Post, error) {
	post, err := s.api.CreatePost(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("could not publish post: %w", err)
	}
	s.cache.Invalidate(ctx, s.postKeys()...)
	return post, nil
}

// ToggleLike flips a post's liked flag, adjusting the counter by one
// (never below zero), then reconciles with the server's exact count.
func (s *Service) ToggleLike(ctx context.Context, postID int64, like bool) error {
	keys := s.postKeys()
	snap := s.cache.Snapshot(keys...)

	s.rewritePosts(keys, func(post *api.Post) bool {
		if post.ID != postID {
			return false
		}
		post.Liked = like
		if like {
			post.LikesCount++
		} else if post.LikesCount > 0 {
			post.LikesCount--
		}
		return true
	})

	var status *api.LikeStatus
	var err error
	if like {
		status, err = s.api.LikePost(ctx, postID)
	} else {
		status, err = s.api.UnlikePost(ctx, postID)
	}
	if err != nil {
		snap.Restore()
		s.cache.Invalidate(ctx, keys...)
		return fmt.Errorf("could not update like: %w", err)
	}

	// The server's count is authoritative; our ±1 guess may be stale.
	s.rewritePosts(keys, func(post *api.Post) bool {
		if post.ID != status.PostID {
			return false
		}
		post.Liked = status.Liked
		post.LikesCount = status.LikesCount
		return true
	})
	s.cache.Invalidate(ctx, keys...)
	return nil
}

// AddComment appends a provisional comment immediately, then swaps it for
// the server's record (real id, authoritative author) on success.
func (s *Service) AddComment(ctx context.Context, postID int64, content string) error {
	keys := s.postKeys()
	snap := s.cache.Snapshot(keys...)

	placeholder := api.Comment{
		ID:        -time.Now().UnixNano(), // provisional; never a real server id
		Content:   content,
		CreatedAt: time.Now().UTC(),
		Author:    api.UserSummary{ID: s.userID, DisplayName: s.userName},
	}
	s.rewritePosts(keys, func(post *api.Post) bool {
		if post.ID != postID {
			return false
		}
		post.Comments = append(post.Comments, placeholder)
		return true
	})

	created, err := s.api.AddComment(ctx, postID, api.CommentCreate{Content: content})
	if err != nil {
		snap.Restore()
		s.cache.Invalidate(ctx, keys...)
		return fmt.Errorf("could not add comment: %w", err)
	}

	s.rewritePosts(keys, func(post *api.Post) bool {
		if post.ID != postID {
			return false
		}
		for i := range post.Comments {
			if post.Comments[i].ID == placeholder.ID {
				post.Comments[i] = *created
			}
		}
		return true
	})
	s.cache.Invalidate(ctx, keys...)
	return nil
}

// DeleteComment removes the comment immediately; a failed call restores
// it in its original position via the snapshot.
func (s *Service) DeleteComment(ctx context.Context, postID, commentID int64) error {
	keys := s.postKeys()
	snap := s.cache.Snapshot(keys...)

	s.rewritePosts(keys, func(post *api.Post) bool {
		if post.ID != postID {
			return false
		}
		kept := post.Comments[:0]
		for _, c := range post.Comments {
			if c.ID != commentID {
				kept = append(kept, c)
			}
		}
		post.Comments = kept
		return true
	})

	if err := s.api.DeleteComment(ctx, postID, commentID); err != nil {
		snap.Restore()
		s.cache.Invalidate(ctx, keys...)
		return fmt.Errorf("could not delete comment: %w", err)
	}
	s.cache.Invalidate(ctx, keys...)
	return nil
}

// DeletePost removes the post from every cached list immediately.
func (s *Service) DeletePost(ctx context.Context, postID int64) error {
	keys := s.postKeys()
	snap := s.cache.Snapshot(keys...)

	for _, key := range keys {
		val, ok := s.cache.Get(key)
		if !ok {
			continue
		}
		posts := val.([]api.Post)
		kept := make([]api.Post, 0, len(posts))
		for _, post := range posts {
			if post.ID != postID {
				kept = append(kept, post)
			}
		}
		s.cache.Set(key, kept)
	}

	if err := s.api.DeletePost(ctx, postID); err != nil {
		snap.Restore()
		s.cache.Invalidate(ctx, keys...)
		return fmt.Errorf("could not delete post: %w", err)
	}
	s.cache.Invalidate(ctx, keys...)
	return nil
}

// PinnedProjectIDs is a read-through over the user's ordered pin list.
func (s *Service) PinnedProjectIDs(ctx context.Context) ([]int64, error) {
	key := PinsKey(s.userID)
	if val, ok := s.cache.Get(key); ok {
		return val.([]int64), nil
	}

	pins, err := s.api.ListPinnedProjects(ctx, s.userID)
	if err != nil {
		return nil, fmt.Errorf("loading pinned projects: %w", err)
	}
	ids := pinIDs(pins)
	s.cache.Register(key, func(ctx context.Context) (any, error) {
		fetched, err := s.api.ListPinnedProjects(ctx, s.userID)
		if err != nil {
			return nil, err
		}
		return pinIDs(fetched), nil
	})
	s.cache.Set(key, ids)
	return ids, nil
}

// TogglePin inserts or removes a project id in the pinned set.
func (s *Service) TogglePin(ctx context.Context, projectID int64, pin bool) error {
	key := PinsKey(s.userID)
	snap := s.cache.Snapshot(key)

	if val, ok := s.cache.Get(key); ok {
		s.cache.Set(key, toggleID(val.([]int64), projectID, pin))
	}

	var err error
	if pin {
		_, err = s.api.PinProject(ctx, s.userID, api.PinCreate{ProjectID: projectID})
	} else {
		err = s.api.UnpinProject(ctx, s.userID, projectID)
	}
	if err != nil {
		snap.Restore()
		s.cache.Invalidate(ctx, key)
		return fmt.Errorf("could not update pin: %w", err)
	}
	s.cache.Invalidate(ctx, key)
	return nil
}

// StarredRepositoryIDs is a read-through over the user's starred set.
func (s *Service) StarredRepositoryIDs(ctx context.Context) ([]int64, error) {
	key := StarsKey(s.userID)
	if val, ok := s.cache.Get(key); ok {
		return val.([]int64), nil
	}

	stars, err := s.api.ListUserStars(ctx, s.userID)
	if err != nil {
		return nil, fmt.Errorf("loading stars: %w", err)
	}
	ids := starIDs(stars)
	s.cache.Register(key, func(ctx context.Context) (any, error) {
		fetched, err := s.api.ListUserStars(ctx, s.userID)
		if err != nil {
			return nil, err
		}
		return starIDs(fetched), nil
	})
	s.cache.Set(key, ids)
	return ids, nil
}

// ToggleStar inserts or removes a repository id in the starred set.
func (s *Service) ToggleStar(ctx context.Context, repositoryID int64, star bool) error {
	key := StarsKey(s.userID)
	snap := s.cache.Snapshot(key)

	if val, ok := s.cache.Get(key); ok {
		s.cache.Set(key, toggleID(val.([]int64), repositoryID, star))
	}

	var err error
	if star {
		err = s.api.StarRepository(ctx, repositoryID, s.userID)
	} else {
		err = s.api.UnstarRepository(ctx, repositoryID, s.userID)
	}
	if err != nil {
		snap.Restore()
		s.cache.Invalidate(ctx, key)
		return fmt.Errorf("could not update star: %w", err)
	}
	s.cache.Invalidate(ctx, key)
	return nil
}

// postKeys lists every cached post-list query.
func (s *Service) postKeys() []cache.Key {
	return s.cache.Keys(postsKeyPrefix)
}

// rewritePosts applies fn to a deep-enough copy of each cached post list
// so snapshots keep pointing at the pre-mutation values.
func (s *Service) rewritePosts(keys []cache.Key, fn func(*api.Post) bool) {
	for _, key := range keys {
		val, ok := s.cache.Get(key)
		if !ok {
			continue
		}
		posts := val.([]api.Post)
		next := make([]api.Post, len(posts))
		for i, post := range posts {
			comments := make([]api.Comment, len(post.Comments))
			copy(comments, post.Comments)
			post.Comments = comments
			fn(&post)
			next[i] = post
		}
		s.cache.Set(key, next)
	}
}

func toggleID(ids []int64, id int64, add bool) []int64 {
	if add {
		for _, existing := range ids {
			if existing == id {
				return ids
			}
		}
		return append(append([]int64{}, ids...), id)
	}
	kept := make([]int64, 0, len(ids))
	for _, existing := range ids {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	return kept
}

func pinIDs(pins []api.Pin) []int64 {
	ids := make([]int64, 0, len(pins))
	for _, pin := range pins {
		ids = append(ids, pin.ProjectID)
	}
	return ids
}

func starIDs(stars []api.Star) []int64 {
	ids := make([]int64, 0, len(stars))
	for _, star := range stars {
		ids = append(ids, star.RepositoryID)
	}
	return ids
}
