// Copyright (c) 2026 Grimoire. All rights reserved.
// Author: m.kowalczyk.dev@gmail.com

package asset

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkowalczyk/grimoire/internal/platform/apperr"
)

func newTestService(t *testing.T, sourceBase string) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service, err := NewService(dir, "/uploads", sourceBase, http.DefaultClient, logger)
	require.NoError(t, err)
	service.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return service, dir
}

/*
TestSave checks the stored filename scheme and the returned reference.
*/
func TestSave(t *testing.T) {
	service, dir := newTestService(t, "")

	stored, err := service.Save(context.Background(), "My Scan (final).pdf", "application/pdf", strings.NewReader("pdf-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "/uploads/1700000000000-My-Scan-final.pdf", stored.URL)
	assert.Equal(t, "My Scan (final).pdf", stored.OriginalName)
	assert.Equal(t, int64(9), stored.Size)

	content, err := os.ReadFile(filepath.Join(dir, "1700000000000-My-Scan-final.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "pdf-bytes", string(content))
}

/*
TestSave_NameSanitization covers extension fallback, length capping, and
hostile names.
*/
func TestSave_NameSanitization(t *testing.T) {
	tests := []struct {
		name         string
		originalName string
		mime         string
		expectedFile string
	}{
		{"mime_extension_fallback", "photo", "image/png", "1700000000000-photo.png"},
		{"mime_with_parameters", "data", "text/csv; charset=utf-8", "1700000000000-data.csv"},
		{"path_traversal_stripped", "../../etc/passwd", "", "1700000000000-passwd"},
		{"no_usable_name", "???", "application/pdf", "1700000000000-file.pdf"},
		{
			"long_name_capped",
			strings.Repeat("a", 80) + ".jpg",
			"image/jpeg",
			"1700000000000-" + strings.Repeat("a", 50) + ".jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, dir := newTestService(t, "")

			stored, err := service.Save(context.Background(), tt.originalName, tt.mime, strings.NewReader("x"))
			require.NoError(t, err)
			assert.Equal(t, "/uploads/"+tt.expectedFile, stored.URL)

			_, err = os.Stat(filepath.Join(dir, tt.expectedFile))
			assert.NoError(t, err)
		})
	}
}

/*
TestMirror checks fetching against a local test server, including
resolution of host-relative sources.
*/
func TestMirror(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/uploads/cover.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("png-bytes"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer upstream.Close()

	service, dir := newTestService(t, upstream.URL)

	// Host-relative source resolved against the configured base.
	stored, err := service.Mirror(context.Background(), "/uploads/cover.png")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/1700000000000-cover.png", stored.URL)
	assert.Equal(t, "image/png", stored.Mime)
	assert.Equal(t, int64(9), stored.Size)

	content, err := os.ReadFile(filepath.Join(dir, "1700000000000-cover.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(content))

	// Absolute source works without a base.
	noBase, _ := newTestService(t, "")
	stored, err = noBase.Mirror(context.Background(), upstream.URL+"/uploads/cover.png")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/1700000000000-cover.png", stored.URL)
}

/*
TestMirror_Failures checks that bad sources abort with a validation error
and leave nothing on disk.
*/
func TestMirror_Failures(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	defer upstream.Close()

	tests := []struct {
		name       string
		sourceBase string
		url        string
	}{
		{"non_2xx_response", upstream.URL, "/missing.png"},
		{"relative_without_base", "", "/uploads/x.png"},
		{"bad_scheme", "", "ftp://host/x.png"},
		{"not_a_url", "", "::::"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, dir := newTestService(t, tt.sourceBase)

			_, err := service.Mirror(context.Background(), tt.url)
			require.Error(t, err)
			assert.True(t, apperr.IsCode(err, "VALIDATION_ERROR"))

			entries, readErr := os.ReadDir(dir)
			require.NoError(t, readErr)
			assert.Empty(t, entries)
		})
	}
}
