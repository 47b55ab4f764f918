package versions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jonathan/cv-builder/internal/schemas"
)

// FileBackend stores the collection as one JSON document on disk
type FileBackend struct {
	path    string
	verbose bool
}

// NewFileBackend creates a backend for path. The file is created on first save.
func NewFileBackend(path string, verbose bool) *FileBackend {
	return &FileBackend{path: path, verbose: verbose}
}

// Path returns the backing file
func (b *FileBackend) Path() string {
	return b.path
}

// Load implements Backend. A missing file is an empty collection; a file that is not
// JSON is logged and treated as empty, as are repaired fields.
func (b *FileBackend) Load(_ context.Context) (Snapshot, error) {
	content, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, &LoadError{
			Message: fmt.Sprintf("failed to read file %s", b.path),
			Cause:   err,
		}
	}

	snap, warnings, err := DecodeSnapshot(content, time.Now())
	if err != nil {
		log.Printf("[STORE] Ignoring unreadable %s: %v", b.path, err)
		return Snapshot{}, nil
	}
	if b.verbose {
		for _, issue := range schemas.Issues(schemas.ValidateVersions(content)) {
			log.Printf("[STORE] Schema: %s", issue)
		}
	}
	for _, w := range warnings {
		log.Printf("[STORE] Repaired %s", w)
	}
	return snap, nil
}

// Save implements Backend. The file is replaced atomically.
func (b *FileBackend) Save(_ context.Context, snap Snapshot) error {
	content, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal versions: %w", err)
	}

	if dir := filepath.Dir(b.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(b.path), ".versions-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write versions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write versions: %w", err)
	}
	if err := os.Rename(tmp.Name(), b.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", b.path, err)
	}

	if b.verbose {
		log.Printf("[STORE] Saved %d version(s) to %s", len(snap.Versions), b.path)
	}
	return nil
}

// MemoryBackend keeps the collection in memory. Err, when set, is returned by Save.
type MemoryBackend struct {
	mu    sync.Mutex
	snap  Snapshot
	saves int
	Err   error
}

// NewMemoryBackend creates a backend seeded with snap
func NewMemoryBackend(snap Snapshot) *MemoryBackend {
	return &MemoryBackend{snap: snap.Clone()}
}

// Load implements Backend
func (b *MemoryBackend) Load(_ context.Context) (Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snap.Clone(), nil
}

// Save implements Backend
func (b *MemoryBackend) Save(_ context.Context, snap Snapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Err != nil {
		return b.Err
	}
	b.snap = snap.Clone()
	b.saves++
	return nil
}

// Saves returns the number of successful saves
func (b *MemoryBackend) Saves() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saves
}
