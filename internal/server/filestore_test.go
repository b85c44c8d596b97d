package server_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/protrackhq/protrack/internal/document"
	"github.com/protrackhq/protrack/internal/domain/project"
	"github.com/protrackhq/protrack/internal/server"
)

func TestFileStore_ReadInitializesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	store := server.NewFileStore(path, nil)

	doc := store.Read()
	require.Equal(t, document.Default(), doc)

	// The default was written back, so the next read hits the file.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"projects"`)
}

func TestFileStore_WriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	store := server.NewFileStore(path, nil)

	doc := document.Default()
	doc.Projects = []project.Project{{ID: "p1", Name: "One", Stages: []project.Stage{}, Tasks: []project.Task{}}}
	doc.ActiveProjectID = "p1"
	require.NoError(t, store.Write(doc))

	got := store.Read()
	require.Equal(t, doc, got)

	// No stray temp file left behind.
	_, err := os.Stat(path + ".tmp")
	require.True(t, os.IsNotExist(err))
}

func TestFileStore_CorruptFileDegradesToDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	store := server.NewFileStore(path, nil)

	doc := store.Read()
	require.Equal(t, document.Default(), doc)

	// The corrupt file is left in place for inspection, not clobbered.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "{not json", string(raw))
}
