package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestSetGetDelete(t *testing.T) {
	s := New()

	if _, ok := s.Get("a"); ok {
		t.Fatal("expected a miss on an empty store")
	}
	s.Set("a", 1)
	if val, ok := s.Get("a"); !ok || val != 1 {
		t.Fatalf("Get after Set: got %v, %v", val, ok)
	}
	s.Delete("a")
	if _, ok := s.Get("a"); ok {
		t.Fatal("expected a miss after Delete")
	}
}

func TestKeysPrefix(t *testing.T) {
	s := New()
	s.Set("community/posts?category=all", nil)
	s.Set("community/posts?category=announcements", nil)
	s.Set("users/7/stars", nil)

	keys := s.Keys("community/posts")
	if len(keys) != 2 {
		t.Fatalf("prefix match: want 2 keys, got %v", keys)
	}
	for _, k := range keys {
		if k == "users/7/stars" {
			t.Errorf("unexpected key %q", k)
		}
	}
}

// Restore must reproduce the snapshotted state exactly, including
// removing entries that did not exist at snapshot time.
func TestSnapshotRestore(t *testing.T) {
	s := New()
	s.Set("present", []int{1, 2})

	snap := s.Snapshot("present", "absent")

	s.Set("present", []int{99})
	s.Set("absent", "created later")

	snap.Restore()

	val, ok := s.Get("present")
	if !ok {
		t.Fatal("expected the present key to survive")
	}
	if got := val.([]int); len(got) != 2 || got[0] != 1 {
		t.Errorf("restored value: got %v", got)
	}
	if _, ok := s.Get("absent"); ok {
		t.Error("expected the absent key to be removed by Restore")
	}
}

func TestSubscribeNotifiesOnSet(t *testing.T) {
	s := New()
	var mu sync.Mutex
	var got []Key
	unsubscribe := s.Subscribe(func(k Key) {
		mu.Lock()
		got = append(got, k)
		mu.Unlock()
	})

	s.Set("a", 1)
	s.Set("b", 2)
	unsubscribe()
	s.Set("c", 3)

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("notifications: want [a b], got %v", got)
	}
}

func TestInvalidateRefetchesRegisteredKeys(t *testing.T) {
	s := New()
	s.Set("posts", "stale")
	s.Register("posts", func(ctx context.Context) (any, error) {
		return "fresh", nil
	})

	s.Invalidate(context.Background(), "posts", "unregistered")
	s.Wait()

	if val, _ := s.Get("posts"); val != "fresh" {
		t.Errorf("after invalidate: want fresh, got %v", val)
	}
}

// A failing fetch leaves the existing entry alone.
func TestInvalidateFetchFailureKeepsStaleEntry(t *testing.T) {
	s := New()
	s.Set("posts", "stale")
	s.Register("posts", func(ctx context.Context) (any, error) {
		return nil, errors.New("backend down")
	})

	s.Invalidate(context.Background(), "posts")
	s.Wait()

	if val, _ := s.Get("posts"); val != "stale" {
		t.Errorf("after failed refetch: want the stale entry, got %v", val)
	}
}

// The optimistic mutation protocol end to end: snapshot, predict, fail,
// restore.
func TestOptimisticFailureRoundTrip(t *testing.T) {
	s := New()
	s.Set("likes", 3)

	snap := s.Snapshot("likes")
	s.Set("likes", 4) // predicted

	// Network call fails; put things back.
	snap.Restore()

	if val, _ := s.Get("likes"); val != 3 {
		t.Errorf("after restore: want 3, got %v", val)
	}
}
