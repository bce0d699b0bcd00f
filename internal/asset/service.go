// Copyright (c) 2026 Grimoire. All rights reserved.
// Author: m.kowalczyk.dev@gmail.com

/*
Package asset implements ingestion of raw content bytes for catalog pages.

Two ingestion paths exist: direct upload (multipart file) and mirroring
(fetch a remote URL and store a local copy). Both produce a stored file
under the upload directory and return a mount-relative reference that the
source normalizer recognizes.

Ingestion is atomic-or-failed: bytes land in a temp file that is renamed
into place only after the full body has been written. A failed fetch or
write leaves nothing behind, so an enclosing page upsert never persists a
reference to a half-stored asset.
*/
package asset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/mkowalczyk/grimoire/internal/platform/apperr"
)

// maxBaseNameLength bounds the sanitized portion of a stored filename.
const maxBaseNameLength = 50

// unsafeNameChars matches everything that may not appear in a stored
// filename's base portion.
var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9-_]+`)

// extByMime maps the content types the catalog renders to file extensions,
// for uploads whose original name carries none.
var extByMime = map[string]string{
	"image/jpeg":      ".jpg",
	"image/jpg":       ".jpg",
	"image/png":       ".png",
	"image/svg+xml":   ".svg",
	"application/pdf": ".pdf",
	"text/csv":        ".csv",
}

// Stored describes one successfully ingested asset.
type Stored struct {
	// URL is the mount-relative reference (e.g. "/uploads/169...-scan.pdf").
	URL string `json:"url"`
	// OriginalName is the client-supplied filename, kept as a hint only.
	OriginalName string `json:"originalName,omitempty"`
	// Mime is the detected or declared content type.
	Mime string `json:"mime"`
	// Size is the stored byte count.
	Size int64 `json:"size"`
}

// Service stores asset bytes on local disk under a URL mount.
type Service struct {
	dir        string
	mount      string
	sourceBase string
	client     *http.Client
	logger     *slog.Logger

	// now is injectable for deterministic filenames in tests.
	now func() time.Time
}

// NewService constructs the asset ingestion service.
//
// dir is the storage directory (created if missing), mount the URL prefix
// the directory is served under, and sourceBase the origin used to resolve
// host-relative mirror requests.
func NewService(dir, mount, sourceBase string, client *http.Client, logger *slog.Logger) (*Service, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("asset: failed to create upload directory: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Service{
		dir:        dir,
		mount:      strings.TrimSuffix(mount, "/"),
		sourceBase: strings.TrimSuffix(sourceBase, "/"),
		client:     client,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// # Ingestion Paths

/*
Save stores an uploaded asset.

Description: The stored name is "<unix-ms>-<sanitized-base><ext>", with
the extension taken from the original name and falling back to the MIME
type. The original name itself is never used as a path.

Returns:
  - *Stored: Reference, content type, and size
  - error: Storage failures
*/
func (service *Service) Save(ctx context.Context, originalName, mime string, reader io.Reader) (*Stored, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := service.storedName(originalName, mime)
	size, err := service.writeFile(name, reader)
	if err != nil {
		return nil, err
	}

	service.logger.Info("asset_stored",
		slog.String("name", name),
		slog.String("mime", mime),
		slog.Int64("size", size),
	)

	return &Stored{
		URL:          service.mount + "/" + name,
		OriginalName: originalName,
		Mime:         mime,
		Size:         size,
	}, nil
}

/*
Mirror fetches a remote URL and stores a local copy.

Description: Host-relative inputs (leading "/") are resolved against the
configured source base, typically the previous origin still hosting legacy
assets. A non-2xx response or transport failure aborts the operation with
nothing persisted.

Returns:
  - *Stored: Reference, content type, and size
  - error: VALIDATION_ERROR on unreachable/denied sources, storage failures
*/
func (service *Service) Mirror(ctx context.Context, rawURL string) (*Stored, error) {
	if strings.HasPrefix(rawURL, "/") {
		if service.sourceBase == "" {
			return nil, apperr.ValidationError("Cannot mirror a relative URL without a configured source base")
		}
		rawURL = service.sourceBase + rawURL
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, apperr.ValidationError("Mirror source must be an http(s) URL")
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, apperr.ValidationError("Mirror source URL is malformed")
	}

	response, err := service.client.Do(request)
	if err != nil {
		return nil, apperr.ValidationError(fmt.Sprintf("Failed to fetch mirror source: %v", err))
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, apperr.ValidationError(fmt.Sprintf("Mirror source returned status %d", response.StatusCode))
	}

	mime := response.Header.Get("Content-Type")
	originalName := path.Base(parsed.Path)
	name := service.storedName(originalName, mime)

	size, err := service.writeFile(name, response.Body)
	if err != nil {
		return nil, err
	}

	service.logger.Info("asset_mirrored",
		slog.String("source", rawURL),
		slog.String("name", name),
		slog.Int64("size", size),
	)

	return &Stored{
		URL:  service.mount + "/" + name,
		Mime: mime,
		Size: size,
	}, nil
}

// # Storage Helpers

// storedName builds the unique on-disk filename for an asset.
func (service *Service) storedName(originalName, mime string) string {
	if originalName == "" || originalName == "." || originalName == "/" {
		originalName = "upload"
	}

	ext := filepath.Ext(originalName)
	if ext == "" {
		// Content types may carry parameters ("text/csv; charset=utf-8").
		bare := strings.TrimSpace(strings.Split(mime, ";")[0])
		ext = extByMime[bare]
	}

	base := strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName))
	base = unsafeNameChars.ReplaceAllString(base, "-")
	if len(base) > maxBaseNameLength {
		base = base[:maxBaseNameLength]
	}
	base = strings.Trim(base, "-")
	if base == "" {
		base = "file"
	}

	return fmt.Sprintf("%d-%s%s", service.now().UnixMilli(), base, ext)
}

// writeFile streams the body into a temp file and renames it into place.
func (service *Service) writeFile(name string, reader io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(service.dir, ".ingest-*")
	if err != nil {
		return 0, apperr.Internal(fmt.Errorf("asset: failed to create temp file: %w", err))
	}
	tmpName := tmp.Name()

	size, err := io.Copy(tmp, reader)
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return 0, apperr.Internal(fmt.Errorf("asset: failed to write asset bytes: %w", err))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return 0, apperr.Internal(fmt.Errorf("asset: failed to close temp file: %w", err))
	}

	if err := os.Rename(tmpName, filepath.Join(service.dir, name)); err != nil {
		_ = os.Remove(tmpName)
		return 0, apperr.Internal(fmt.Errorf("asset: failed to place asset file: %w", err))
	}

	return size, nil
}
