// Copyright (c) 2026 Grimoire. All rights reserved.
// Author: m.kowalczyk.dev@gmail.com

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"github.com/mkowalczyk/grimoire/internal/platform/apperr"
)

// FileStore persists the whole catalog as one JSON document on disk.
//
// # Concurrency
//
// A single in-process mutex serializes Update cycles, so concurrent admin
// mutations cannot interleave their read-modify-write sections. An
// advisory flock taken around the physical swap additionally prevents two
// processes from producing a torn file. Cross-process lost updates remain
// possible and are an accepted limitation of the single-administrator
// deployment model.
type FileStore struct {
	path string

	// mu guards the read-modify-write cycle in Update.
	mu sync.Mutex

	// fileLock guards the temp-write+rename swap against other processes.
	fileLock *flock.Flock
}

// NewFileStore creates a FileStore for the given data file path, creating
// the parent directory if needed.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("catalog: failed to create data directory: %w", err)
	}
	return &FileStore{
		path:     path,
		fileLock: flock.New(path + ".lock"),
	}, nil
}

// ReadAll implements [Repository].
//
// A missing file means "no storage yet" and yields an empty catalog.
// Unparseable JSON or records that fail schema validation yield
// CORRUPT_STORE: the store never guesses or repairs.
func (store *FileStore) ReadAll(ctx context.Context) ([]Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(store.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Book{}, nil
		}
		return nil, apperr.CorruptStore(err)
	}

	var books []Book
	if err := json.Unmarshal(raw, &books); err != nil {
		return nil, apperr.CorruptStore(fmt.Errorf("catalog: malformed data file %s: %w", store.path, err))
	}

	for i := range books {
		if err := books[i].Validate(); err != nil {
			return nil, apperr.CorruptStore(fmt.Errorf("catalog: invalid record %q in data file: %w", books[i].Slug, err))
		}
	}

	return books, nil
}

// WriteAll implements [Repository].
func (store *FileStore) WriteAll(ctx context.Context, books []Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Field-level schema validation before anything touches disk.
	for i := range books {
		if err := books[i].Validate(); err != nil {
			return err
		}
	}

	// Serialize with a stable, human-diffable layout.
	if books == nil {
		books = []Book{}
	}
	payload, err := json.MarshalIndent(books, "", "  ")
	if err != nil {
		return apperr.Internal(fmt.Errorf("catalog: failed to encode catalog: %w", err))
	}

	return store.swap(payload)
}

// Update implements [Repository]. The whole cycle holds the store mutex,
// so "last writer wins" can only happen across processes, never within one.
func (store *FileStore) Update(ctx context.Context, mutate func(books []Book) ([]Book, error)) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	books, err := store.ReadAll(ctx)
	if err != nil {
		return err
	}

	next, err := mutate(books)
	if err != nil {
		return err
	}

	return store.WriteAll(ctx, next)
}

// swap atomically replaces the data file: write a temp file in the same
// directory, sync it, then rename over the target. The flock keeps a
// second process from swapping at the same moment.
func (store *FileStore) swap(payload []byte) error {
	if err := store.fileLock.Lock(); err != nil {
		return apperr.Internal(fmt.Errorf("catalog: failed to acquire file lock: %w", err))
	}
	defer func() { _ = store.fileLock.Unlock() }()

	dir := filepath.Dir(store.path)
	tmp, err := os.CreateTemp(dir, ".books-*.json")
	if err != nil {
		return apperr.Internal(fmt.Errorf("catalog: failed to create temp file: %w", err))
	}
	tmpName := tmp.Name()

	// Any failure past this point must not leave the temp file behind.
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(payload); err != nil {
		cleanup()
		return apperr.Internal(fmt.Errorf("catalog: failed to write temp file: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return apperr.Internal(fmt.Errorf("catalog: failed to sync temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return apperr.Internal(fmt.Errorf("catalog: failed to close temp file: %w", err))
	}

	if err := os.Rename(tmpName, store.path); err != nil {
		_ = os.Remove(tmpName)
		return apperr.Internal(fmt.Errorf("catalog: failed to replace data file: %w", err))
	}

	return nil
}

// Ping reports whether the catalog is currently readable. Used by the
// readiness probe.
func (store *FileStore) Ping(ctx context.Context) error {
	_, err := store.ReadAll(ctx)
	return err
}
