package api

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFITS(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestBuildUploadFormGroupsFields(t *testing.T) {
	dir := t.TempDir()
	frame1 := writeTempFITS(t, dir, "m42-001.fits", "SIMPLE frame one")
	frame2 := writeTempFITS(t, dir, "m42-002.fits", "SIMPLE frame two")
	dark := writeTempFITS(t, dir, "dark.fits", "dark frame")
	flat := writeTempFITS(t, dir, "flat.fits", "flat frame")

	form, err := buildUploadForm(
		[]string{frame1, frame2},
		map[PreprocessCategory][]string{
			PreprocessDark: {dark},
			PreprocessFlat: {flat},
		},
	)
	require.NoError(t, err)

	mediaType, params, err := mime.ParseMediaType(form.ContentType)
	require.NoError(t, err)
	require.Equal(t, "multipart/form-data", mediaType)

	reader := multipart.NewReader(bytes.NewReader(form.Data), params["boundary"])
	byField := make(map[string][]string)
	contents := make(map[string]string)
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(part)
		require.NoError(t, err)
		byField[part.FormName()] = append(byField[part.FormName()], part.FileName())
		contents[part.FileName()] = string(data)
	}

	assert.Equal(t, []string{"m42-001.fits", "m42-002.fits"}, byField["files"])
	assert.Equal(t, []string{"dark.fits"}, byField["dark_files"])
	assert.Equal(t, []string{"flat.fits"}, byField["flat_files"])
	assert.NotContains(t, byField, "bias_files")
	assert.Equal(t, "SIMPLE frame one", contents["m42-001.fits"])
	assert.Equal(t, "dark frame", contents["dark.fits"])
}

func TestBuildUploadFormMissingFile(t *testing.T) {
	_, err := buildUploadForm([]string{"/does/not/exist.fits"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/does/not/exist.fits")
}

func TestTempPreviewURL(t *testing.T) {
	c := New("http://localhost:8000/api/", nil, nil)
	assert.Equal(t,
		"http://localhost:8000/api/uploads/temp/tmp-abc/preview",
		c.TempPreviewURL("tmp-abc"))
}
