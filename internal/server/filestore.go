package server

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"github.com/protrackhq/protrack/internal/document"
)

const lockTimeout = 3 * time.Second

// FileStore holds the canonical document in one JSON file. A flock on
// a sibling .lock file guards the write path against a second writer
// process.
type FileStore struct {
	path   string
	lock   *flock.Flock
	logger *slog.Logger
}

// NewFileStore creates a store for the given file path.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logger,
	}
}

// Read returns the on-disk document. An absent file is initialized
// with the default document; any other failure is logged and degrades
// to returning the default in memory, without writing it back.
func (s *FileStore) Read() document.Document {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			def := document.Default()
			if werr := s.Write(def); werr != nil {
				s.logger.Error("failed to initialize data file", "error", werr)
			}
			return def
		}
		s.logger.Error("failed to read data file", "error", err)
		return document.Default()
	}

	doc, err := document.Normalize(raw, document.Default())
	if err != nil {
		s.logger.Error("data file is not valid JSON, using defaults", "error", err)
		return document.Default()
	}
	return doc
}

// Write persists the document: marshal, write a temporary file, then
// atomically rename it over the canonical path. Filesystems that
// refuse the rename (bind mounts, busy locks) get a direct overwrite
// instead, trading atomicity for availability.
func (s *FileStore) Write(doc document.Document) error {
	if err := s.acquireLock(); err != nil {
		s.logger.Warn("proceeding without file lock", "error", err)
	} else {
		defer func() { _ = s.lock.Unlock() }()
	}

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		if errors.Is(err, syscall.EXDEV) || errors.Is(err, syscall.EBUSY) || errors.Is(err, syscall.EPERM) {
			return os.WriteFile(s.path, payload, 0o644)
		}
		return err
	}
	return nil
}

func (s *FileStore) acquireLock() error {
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()
	locked, err := s.lock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return err
	}
	if !locked {
		return errors.New("could not acquire file lock")
	}
	return nil
}
