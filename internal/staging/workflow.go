// Package staging implements the upload workflow: select local FITS files
// plus optional calibration frames, stage them for server-side inspection,
// review the ephemeral records, and commit the survivors into a permanent
// repository.
package staging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NUPS-NASA/exohunt/internal/api"
)

// State is the workflow phase. Transitions:
// Idle → Staging → Reviewing → Committing → Idle (success) or back to
// Reviewing (commit failure, staged items intact).
type State int

const (
	StateIdle State = iota
	StateStaging
	StateReviewing
	StateCommitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStaging:
		return "staging"
	case StateReviewing:
		return "reviewing"
	case StateCommitting:
		return "committing"
	}
	return "unknown"
}

var (
	ErrNoFilesSelected  = errors.New("no files selected")
	ErrNothingStaged    = errors.New("nothing staged to commit")
	ErrBlankName        = errors.New("repository name must not be blank")
	ErrWrongState       = errors.New("operation not valid in current workflow state")
)

// Uploader is the slice of the API client the workflow needs. Satisfied
// by *api.Client; narrowed for tests.
type Uploader interface {
	PrepareUploads(ctx context.Context, files []string, preprocess map[api.PreprocessCategory][]string) (*api.StageUploadsResponse, error)
	CommitUploads(ctx context.Context, req api.UploadCommitRequest) (*api.UploadCommitResponse, error)
}

// Workflow holds one upload attempt's state. It is not safe for
// concurrent use; the CLI drives it from a single goroutine.
type Workflow struct {
	uploader Uploader
	userID   int64
	onClose  func()

	state      State
	selected   []string
	preSelect  map[api.PreprocessCategory][]string
	items      []api.TempUploadItem
	preprocess map[api.PreprocessCategory][]api.TempPreprocessItem
	index      int
	repoName   string
	repoDesc   *string
}

// New returns an idle workflow for the given user. onClose is invoked
// after a successful commit; it may be nil.
func New(uploader Uploader, userID int64, onClose func()) *Workflow {
	return &Workflow{
		uploader:  uploader,
		userID:    userID,
		onClose:   onClose,
		preSelect: make(map[api.PreprocessCategory][]string),
	}
}

func (w *Workflow) State() State { return w.state }

// AddFiles appends primary object files to the selection buffer,
// collapsing duplicates.
func (w *Workflow) AddFiles(paths ...string) {
	w.selected = appendUnique(w.selected, paths)
}

// AddPreprocess appends calibration files to one category's buffer.
func (w *Workflow) AddPreprocess(cat api.PreprocessCategory, paths ...string) {
	w.preSelect[cat] = appendUnique(w.preSelect[cat], paths)
}

// ClearSelection drops both selection buffers.
func (w *Workflow) ClearSelection() {
	w.selected = nil
	w.preSelect = make(map[api.PreprocessCategory][]string)
}

func (w *Workflow) SelectedFiles() []string { return w.selected }

// HasPreprocessFiles reports whether any calibration category has files
// selected. When false the caller should confirm before staging; it is a
// soft warning, never a hard block.
func (w *Workflow) HasPreprocessFiles() bool {
	for _, paths := range w.preSelect {
		if len(paths) > 0 {
			return true
		}
	}
	return false
}

// Stage uploads every selected file in one multipart request and installs
// the resulting ephemeral records. On success the selection buffers are
// cleared, the review index resets to the first item, and a default
// repository name is synthesized if none is set.
func (w *Workflow) Stage(ctx context.Context) error {
	if len(w.selected) == 0 {
		return ErrNoFilesSelected
	}
	if w.state != StateIdle && w.state != StateReviewing {
		return ErrWrongState
	}

	w.state = StateStaging
	res, err := w.uploader.PrepareUploads(ctx, w.selected, w.preSelect)
	if err != nil {
		w.state = StateIdle
		return fmt.Errorf("staging uploads: %w", err)
	}

	w.items = res.Items
	w.preprocess = res.Preprocess
	w.index = 0
	w.selected = nil
	w.preSelect = make(map[api.PreprocessCategory][]string)
	if w.repoName == "" {
		w.repoName = defaultRepositoryName(time.Now())
	}
	w.state = StateReviewing
	return nil
}

// defaultRepositoryName mirrors the compact timestamp the web client
// generates: "Upload 20251005173000".
func defaultRepositoryName(now time.Time) string {
	return "Upload " + now.UTC().Format("20060102150405")
}

// Items returns the staged primary records still slated for commit.
func (w *Workflow) Items() []api.TempUploadItem { return w.items }

// Preprocess returns staged calibration records grouped by category.
func (w *Workflow) Preprocess() map[api.PreprocessCategory][]api.TempPreprocessItem {
	return w.preprocess
}

// PreprocessCount counts staged calibration records across categories.
func (w *Workflow) PreprocessCount() int {
	n := 0
	for _, items := range w.preprocess {
		n += len(items)
	}
	return n
}

// Index returns the review selection index, always within [0, len-1]
// for a non-empty list and 0 otherwise.
func (w *Workflow) Index() int { return w.index }

// Current returns the selected staged item, or nil when none are staged.
func (w *Workflow) Current() *api.TempUploadItem {
	if len(w.items) == 0 {
		return nil
	}
	return &w.items[w.index]
}

// Next advances the selection, wrapping past the end.
func (w *Workflow) Next() {
	if len(w.items) <= 1 {
		return
	}
	w.index = (w.index + 1) % len(w.items)
}

// Prev moves the selection back, wrapping past the start.
func (w *Workflow) Prev() {
	if len(w.items) <= 1 {
		return
	}
	w.index = (w.index - 1 + len(w.items)) % len(w.items)
}

// Remove drops the staged item with the given temp ID from the in-memory
// list. Purely local: the item is simply excluded from any later commit.
// The selection index is clamped back into range.
func (w *Workflow) Remove(tempID string) {
	kept := w.items[:0]
	for _, item := range w.items {
		if item.TempID != tempID {
			kept = append(kept, item)
		}
	}
	w.items = kept

	if len(w.items) == 0 {
		w.index = 0
		return
	}
	if w.index >= len(w.items) {
		w.index = len(w.items) - 1
	}
}

// RemoveCurrent removes the currently selected item.
func (w *Workflow) RemoveCurrent() {
	if cur := w.Current(); cur != nil {
		w.Remove(cur.TempID)
	}
}

func (w *Workflow) SetRepositoryName(name string) { w.repoName = name }
func (w *Workflow) RepositoryName() string        { return w.repoName }

func (w *Workflow) SetRepositoryDescription(d *string) { w.repoDesc = d }

// CommitPayload assembles the commit request from every surviving staged
// item and all calibration items flattened across categories.
func (w *Workflow) CommitPayload(now time.Time) api.UploadCommitRequest {
	items := make([]api.UploadCommitItem, 0, len(w.items))
	for _, item := range w.items {
		items = append(items, api.UploadCommitItem{
			TempID:        item.TempID,
			FITSTempPath:  item.TmpFITSPath,
			ImageTempPath: item.TmpPNGPath,
			FITSData:      item.FITSHeader,
			Metadata:      item.Metadata,
		})
	}

	var pre []api.UploadPreprocessCommitItem
	for _, cat := range api.PreprocessCategories {
		for _, item := range w.preprocess[cat] {
			pre = append(pre, api.UploadPreprocessCommitItem{
				TempID:       item.TempID,
				Category:     item.Category,
				TempPath:     item.TempPath,
				OriginalName: item.Filename,
				Metadata:     item.Metadata,
			})
		}
	}

	return api.UploadCommitRequest{
		UserID:                w.userID,
		RepositoryName:        strings.TrimSpace(w.repoName),
		RepositoryDescription: w.repoDesc,
		CapturedAt:            now.UTC(),
		Items:                 items,
		PreprocessItems:       pre,
	}
}

// Commit submits the staged set once. A blank repository name is rejected
// before any network traffic. On failure the workflow returns to the
// review state with every staged item intact; on success all staged state
// is cleared and the close callback fires.
func (w *Workflow) Commit(ctx context.Context) (*api.UploadCommitResponse, error) {
	if len(w.items) == 0 {
		return nil, ErrNothingStaged
	}
	if strings.TrimSpace(w.repoName) == "" {
		return nil, ErrBlankName
	}

	w.state = StateCommitting
	res, err := w.uploader.CommitUploads(ctx, w.CommitPayload(time.Now()))
	if err != nil {
		w.state = StateReviewing
		return nil, fmt.Errorf("commit failed: %w", err)
	}

	w.items = nil
	w.preprocess = nil
	w.index = 0
	w.repoName = ""
	w.repoDesc = nil
	w.state = StateIdle
	if w.onClose != nil {
		w.onClose()
	}
	return res, nil
}

func appendUnique(dst []string, paths []string) []string {
	seen := make(map[string]bool, len(dst))
	for _, p := range dst {
		seen[p] = true
	}
	for _, p := range paths {
		if !seen[p] {
			dst = append(dst, p)
			seen[p] = true
		}
	}
	return dst
}
