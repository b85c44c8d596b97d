package client

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/protrackhq/protrack/internal/document"
	"github.com/protrackhq/protrack/internal/domain/project"
	"github.com/protrackhq/protrack/internal/domain/settings"
	"github.com/protrackhq/protrack/internal/domain/timelog"
)

// Legacy key-per-file layout left behind by builds that persisted
// locally instead of through the service. Migrated once on first load
// and cleared after a successful push.
const (
	legacyProjectsFile = "protrack-projects.json"
	legacyActiveFile   = "protrack-active-project-id.json"
	legacyTimeLogsFile = "protrack-time-logs.json"
	legacySettingsFile = "protrack-ai-settings.json"
)

// LegacyStore reads and clears the deprecated local-only
// representation. A nil *LegacyStore disables migration.
type LegacyStore struct {
	dir string
}

// NewLegacyStore points at the directory holding the legacy files.
func NewLegacyStore(dir string) *LegacyStore {
	return &LegacyStore{dir: dir}
}

// Read returns the legacy state as a partial document, or false when
// no usable legacy data exists. The projects file is the guard: it
// must parse to a non-empty list, matching the original migration.
func (l *LegacyStore) Read() (document.Partial, bool) {
	if l == nil {
		return document.Partial{}, false
	}

	raw, err := os.ReadFile(filepath.Join(l.dir, legacyProjectsFile))
	if err != nil {
		return document.Partial{}, false
	}
	var projects []project.Project
	if err := json.Unmarshal(raw, &projects); err != nil || len(projects) == 0 {
		return document.Partial{}, false
	}

	out := document.Partial{Projects: projects}

	if raw, err := os.ReadFile(filepath.Join(l.dir, legacyActiveFile)); err == nil {
		var id string
		if json.Unmarshal(raw, &id) == nil {
			out.ActiveProjectID = &id
		}
	}
	if raw, err := os.ReadFile(filepath.Join(l.dir, legacyTimeLogsFile)); err == nil {
		var logs []timelog.TimeLog
		if json.Unmarshal(raw, &logs) == nil {
			out.TimeLogs = logs
		}
	}
	if raw, err := os.ReadFile(filepath.Join(l.dir, legacySettingsFile)); err == nil {
		var s settings.AISettings
		if json.Unmarshal(raw, &s) == nil {
			out.AISettings = &s
		}
	}

	return out, true
}

// Clear removes the legacy files. Missing files are fine.
func (l *LegacyStore) Clear() {
	if l == nil {
		return
	}
	for _, name := range []string{legacyProjectsFile, legacyActiveFile, legacyTimeLogsFile, legacySettingsFile} {
		_ = os.Remove(filepath.Join(l.dir, name))
	}
}
