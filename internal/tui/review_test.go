package tui

import (
	"context"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/NUPS-NASA/exohunt/internal/api"
	"github.com/NUPS-NASA/exohunt/internal/staging"
)

type stubUploader struct{}

func (stubUploader) PrepareUploads(ctx context.Context, files []string, preprocess map[api.PreprocessCategory][]string) (*api.StageUploadsResponse, error) {
	res := &api.StageUploadsResponse{
		Preprocess: make(map[api.PreprocessCategory][]api.TempPreprocessItem),
	}
	for i, f := range files {
		res.Items = append(res.Items, api.TempUploadItem{
			TempID:    fmt.Sprintf("tmp-%d", i),
			Filename:  f,
			SizeBytes: 1024,
		})
	}
	for cat, paths := range preprocess {
		for i, p := range paths {
			res.Preprocess[cat] = append(res.Preprocess[cat], api.TempPreprocessItem{
				TempID:   fmt.Sprintf("pre-%s-%d", cat, i),
				Filename: p,
				Category: cat,
			})
		}
	}
	return res, nil
}

func (stubUploader) CommitUploads(ctx context.Context, req api.UploadCommitRequest) (*api.UploadCommitResponse, error) {
	return &api.UploadCommitResponse{CommittedCount: len(req.Items)}, nil
}

func stagedReview(t *testing.T, files ...string) ReviewModel {
	t.Helper()
	w := staging.New(stubUploader{}, 7, nil)
	w.AddFiles(files...)
	w.AddPreprocess(api.PreprocessDark, "dark.fits")
	if err := w.Stage(context.Background()); err != nil {
		t.Fatalf("Stage: %v", err)
	}
	return NewReview(context.Background(), w)
}

func pressKey(m ReviewModel, r rune) (ReviewModel, tea.Cmd) {
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	return updated.(ReviewModel), cmd
}

func TestRemovingLastFrameCancelsReview(t *testing.T) {
	m := stagedReview(t, "m42.fits")

	// A single primary frame plus a calibration frame: removing the frame
	// leaves nothing committable, so the review must close as a cancel
	// instead of idling on an uncommittable state.
	m, cmd := pressKey(m, 'd')

	if !m.Cancelled {
		t.Fatal("expected the review to cancel once no primary frames remain")
	}
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg, got %T", cmd())
	}
}

func TestRemoveKeepsReviewOpenWhileFramesRemain(t *testing.T) {
	m := stagedReview(t, "m42-001.fits", "m42-002.fits")

	m, cmd := pressKey(m, 'd')

	if m.Cancelled {
		t.Fatal("review must stay open while a primary frame remains")
	}
	if cmd != nil {
		if _, quit := cmd().(tea.QuitMsg); quit {
			t.Fatal("review must not quit while a primary frame remains")
		}
	}
	if got := len(m.workflow.Items()); got != 1 {
		t.Fatalf("items: want 1, got %d", got)
	}
}
