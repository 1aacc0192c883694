package staging

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/NUPS-NASA/exohunt/internal/api"
)

// fakeUploader stages each file as one record and captures commits.
type fakeUploader struct {
	prepareCalls int
	commitCalls  int
	lastCommit   api.UploadCommitRequest
	prepareErr   error
	commitErr    error
}

func (f *fakeUploader) PrepareUploads(ctx context.Context, files []string, preprocess map[api.PreprocessCategory][]string) (*api.StageUploadsResponse, error) {
	f.prepareCalls++
	if f.prepareErr != nil {
		return nil, f.prepareErr
	}
	res := &api.StageUploadsResponse{}
	for i, path := range files {
		res.Items = append(res.Items, api.TempUploadItem{
			TempID:      fmt.Sprintf("tmp-%d", i),
			Filename:    path,
			SizeBytes:   int64(1024 * (i + 1)),
			TmpFITSPath: "/tmp/" + path,
		})
	}
	for cat, paths := range preprocess {
		for i, path := range paths {
			if res.Preprocess == nil {
				res.Preprocess = make(map[api.PreprocessCategory][]api.TempPreprocessItem)
			}
			res.Preprocess[cat] = append(res.Preprocess[cat], api.TempPreprocessItem{
				TempID:   fmt.Sprintf("pre-%s-%d", cat, i),
				Filename: path,
				Category: cat,
				TempPath: "/tmp/" + path,
			})
		}
	}
	return res, nil
}

func (f *fakeUploader) CommitUploads(ctx context.Context, req api.UploadCommitRequest) (*api.UploadCommitResponse, error) {
	f.commitCalls++
	f.lastCommit = req
	if f.commitErr != nil {
		return nil, f.commitErr
	}
	return &api.UploadCommitResponse{
		RepositoryID:   1,
		DatasetID:      2,
		SessionID:      3,
		CommittedCount: len(req.Items),
	}, nil
}

func stagedWorkflow(t interface{ Fatalf(string, ...any) }, uploader *fakeUploader, frames int) *Workflow {
	w := New(uploader, 42, nil)
	for i := 0; i < frames; i++ {
		w.AddFiles(fmt.Sprintf("frame-%03d.fits", i))
	}
	if err := w.Stage(context.Background()); err != nil {
		t.Fatalf("Stage: %v", err)
	}
	return w
}

func TestStageRequiresFiles(t *testing.T) {
	w := New(&fakeUploader{}, 42, nil)
	if err := w.Stage(context.Background()); !errors.Is(err, ErrNoFilesSelected) {
		t.Fatalf("expected ErrNoFilesSelected, got %v", err)
	}
}

func TestStageClearsSelectionAndDefaultsName(t *testing.T) {
	uploader := &fakeUploader{}
	w := New(uploader, 42, nil)
	w.AddFiles("a.fits", "b.fits", "a.fits") // duplicate collapses
	w.AddPreprocess(api.PreprocessDark, "d.fits")

	if err := w.Stage(context.Background()); err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if got := len(w.Items()); got != 2 {
		t.Errorf("staged items: want 2, got %d", got)
	}
	if w.PreprocessCount() != 1 {
		t.Errorf("preprocess count: want 1, got %d", w.PreprocessCount())
	}
	if len(w.SelectedFiles()) != 0 {
		t.Error("expected the selection buffer to be cleared")
	}
	if w.State() != StateReviewing {
		t.Errorf("state: want reviewing, got %s", w.State())
	}
	name := w.RepositoryName()
	if len(name) != len("Upload 20060102150405") || name[:7] != "Upload " {
		t.Errorf("default name: got %q", name)
	}
}

func TestStageFailureReturnsToIdle(t *testing.T) {
	uploader := &fakeUploader{prepareErr: errors.New("disk full")}
	w := New(uploader, 42, nil)
	w.AddFiles("a.fits")

	if err := w.Stage(context.Background()); err == nil {
		t.Fatal("expected an error")
	}
	if w.State() != StateIdle {
		t.Errorf("state after failed stage: want idle, got %s", w.State())
	}
	// The selection survives so the user can retry.
	if len(w.SelectedFiles()) != 1 {
		t.Error("expected the selection to survive a failed stage")
	}
}

func TestBlankNameRejectedBeforeNetwork(t *testing.T) {
	uploader := &fakeUploader{}
	w := stagedWorkflow(t, uploader, 2)
	w.SetRepositoryName("   ")

	if _, err := w.Commit(context.Background()); !errors.Is(err, ErrBlankName) {
		t.Fatalf("expected ErrBlankName, got %v", err)
	}
	if uploader.commitCalls != 0 {
		t.Errorf("commit calls: want 0, got %d", uploader.commitCalls)
	}
	if len(w.Items()) != 2 {
		t.Error("staged items must survive a rejected commit")
	}
}

func TestCommitFailureKeepsItems(t *testing.T) {
	uploader := &fakeUploader{commitErr: errors.New("backend down")}
	w := stagedWorkflow(t, uploader, 3)

	if _, err := w.Commit(context.Background()); err == nil {
		t.Fatal("expected an error")
	}
	if w.State() != StateReviewing {
		t.Errorf("state: want reviewing, got %s", w.State())
	}
	if len(w.Items()) != 3 {
		t.Errorf("items after failed commit: want 3, got %d", len(w.Items()))
	}
}

func TestCommitSuccessClearsEverything(t *testing.T) {
	uploader := &fakeUploader{}
	closed := false
	w := New(uploader, 42, func() { closed = true })
	w.AddFiles("a.fits", "b.fits", "c.fits")
	w.AddPreprocess(api.PreprocessDark, "d1.fits", "d2.fits")
	if err := w.Stage(context.Background()); err != nil {
		t.Fatal(err)
	}
	w.Remove("tmp-1")

	res, err := w.Commit(context.Background())
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if res.CommittedCount != 2 {
		t.Errorf("committed count: want 2, got %d", res.CommittedCount)
	}
	if len(uploader.lastCommit.Items) != 2 {
		t.Errorf("commit payload items: want 2, got %d", len(uploader.lastCommit.Items))
	}
	if len(uploader.lastCommit.PreprocessItems) != 2 {
		t.Errorf("commit payload preprocess: want 2, got %d", len(uploader.lastCommit.PreprocessItems))
	}
	if uploader.lastCommit.UserID != 42 {
		t.Errorf("commit user id: want 42, got %d", uploader.lastCommit.UserID)
	}
	if !closed {
		t.Error("expected the close callback to fire")
	}
	if w.State() != StateIdle || len(w.Items()) != 0 || w.RepositoryName() != "" {
		t.Error("expected all staged state to be cleared")
	}
}

func TestCommitNothingStaged(t *testing.T) {
	w := New(&fakeUploader{}, 42, nil)
	if _, err := w.Commit(context.Background()); !errors.Is(err, ErrNothingStaged) {
		t.Fatalf("expected ErrNothingStaged, got %v", err)
	}
}

// A removed frame must never appear in the commit payload, no matter the
// order of removals and navigation around them.
func TestRemovedItemsNeverCommitted(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		frames := rapid.IntRange(1, 12).Draw(t, "frames")
		uploader := &fakeUploader{}
		w := stagedWorkflow(t, uploader, frames)

		removed := make(map[string]bool)
		steps := rapid.IntRange(0, 30).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				w.Next()
			case 1:
				w.Prev()
			case 2:
				if cur := w.Current(); cur != nil {
					removed[cur.TempID] = true
					w.RemoveCurrent()
				}
			}
		}

		if len(w.Items()) == 0 {
			return // nothing left to commit
		}
		if _, err := w.Commit(context.Background()); err != nil {
			t.Fatalf("Commit: %v", err)
		}
		for _, item := range uploader.lastCommit.Items {
			if removed[item.TempID] {
				t.Fatalf("removed item %s appeared in the commit payload", item.TempID)
			}
		}
		if got := len(uploader.lastCommit.Items); got != frames-len(removed) {
			t.Fatalf("commit items: want %d, got %d", frames-len(removed), got)
		}
	})
}

// The review index stays valid under any interleaving of navigation and
// removal, and wraps around both ends.
func TestIndexAlwaysValid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		frames := rapid.IntRange(0, 10).Draw(t, "frames")
		uploader := &fakeUploader{}
		var w *Workflow
		if frames == 0 {
			w = New(uploader, 42, nil)
		} else {
			w = stagedWorkflow(t, uploader, frames)
		}

		steps := rapid.IntRange(0, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				w.Next()
			case 1:
				w.Prev()
			case 2:
				w.RemoveCurrent()
			}

			n := len(w.Items())
			idx := w.Index()
			if n == 0 {
				if idx != 0 {
					t.Fatalf("index with no items: want 0, got %d", idx)
				}
				if w.Current() != nil {
					t.Fatal("Current must be nil with no items")
				}
			} else {
				if idx < 0 || idx >= n {
					t.Fatalf("index out of range: %d with %d items", idx, n)
				}
				if w.Current() == nil {
					t.Fatal("Current must be non-nil with items staged")
				}
			}
		}
	})
}

// Wrap-around paging is a pure rotation: frames steps of Next return to
// the start.
func TestPagingWrapsAround(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		frames := rapid.IntRange(2, 10).Draw(t, "frames")
		w := stagedWorkflow(t, &fakeUploader{}, frames)

		first := w.Current().TempID
		for i := 0; i < frames; i++ {
			w.Next()
		}
		if got := w.Current().TempID; got != first {
			t.Fatalf("after %d Next calls: want %s, got %s", frames, first, got)
		}
		w.Prev()
		w.Next()
		if got := w.Current().TempID; got != first {
			t.Fatalf("Prev then Next moved the selection: got %s", got)
		}
	})
}
