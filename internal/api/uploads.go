package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
)

// Multipart field names for the staging endpoint, one group per calibration
// category plus the primary object set.
const (
	fieldFiles = "files"
)

func preprocessField(cat PreprocessCategory) string {
	return string(cat) + "_files"
}

// PrepareUploads stages the given local files (primary object frames plus
// optional calibration frames grouped by category) in one multipart request
// and returns the ephemeral per-file records the backend computed.
func (c *Client) PrepareUploads(ctx context.Context, files []string, preprocess map[PreprocessCategory][]string) (*StageUploadsResponse, error) {
	form, err := buildUploadForm(files, preprocess)
	if err != nil {
		return nil, err
	}

	var out StageUploadsResponse
	err = c.Do(ctx, "/uploads/prepare", RequestOptions{
		Method: http.MethodPost,
		Form:   form,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CommitUploads atomically converts staged items into a permanent
// repository, dataset, data rows, and an initial pipeline session.
func (c *Client) CommitUploads(ctx context.Context, req UploadCommitRequest) (*UploadCommitResponse, error) {
	var out UploadCommitResponse
	err := c.Do(ctx, "/uploads/commit", RequestOptions{
		Method: http.MethodPost,
		Body:   req,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// TempPreviewURL returns the preview-image URL for a staged item.
func (c *Client) TempPreviewURL(tempID string) string {
	return fmt.Sprintf("%s/uploads/temp/%s/preview", c.baseURL, tempID)
}

// buildUploadForm encodes the file groups into one multipart payload.
// The payload is fully buffered so the auth retry can replay it.
func buildUploadForm(files []string, preprocess map[PreprocessCategory][]string) (*Multipart, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	appendGroup := func(field string, paths []string) error {
		for _, path := range paths {
			if err := appendFile(writer, field, path); err != nil {
				return err
			}
		}
		return nil
	}

	if err := appendGroup(fieldFiles, files); err != nil {
		return nil, err
	}
	// Fixed category order keeps the payload deterministic.
	for _, cat := range PreprocessCategories {
		if err := appendGroup(preprocessField(cat), preprocess[cat]); err != nil {
			return nil, err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart payload: %w", err)
	}
	return &Multipart{ContentType: writer.FormDataContentType(), Data: buf.Bytes()}, nil
}

func appendFile(writer *multipart.Writer, field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	part, err := writer.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("adding %s to payload: %w", path, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}
