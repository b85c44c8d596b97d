// Package document defines the root aggregate persisted by the
// service and the normalization contract shared by the persistence
// client and the persistence service.
package document

import (
	"github.com/protrackhq/protrack/internal/domain/member"
	"github.com/protrackhq/protrack/internal/domain/project"
	"github.com/protrackhq/protrack/internal/domain/settings"
	"github.com/protrackhq/protrack/internal/domain/timelog"
)

// Document is the unit of persistence: one JSON object holding every
// collection. The latest successful write wins; there is no
// versioning.
type Document struct {
	Projects        []project.Project   `json:"projects"`
	ActiveProjectID string              `json:"activeProjectId"`
	TimeLogs        []timelog.TimeLog   `json:"timeLogs"`
	Members         []member.Member     `json:"members"`
	AISettings      settings.AISettings `json:"aiSettings"`
}

// Default returns the document used before any data exists. Slices
// are non-nil so the serialized form carries empty arrays.
func Default() Document {
	return Document{
		Projects:   []project.Project{},
		TimeLogs:   []timelog.TimeLog{},
		Members:    []member.Member{},
		AISettings: settings.Default(),
	}
}

// Clone deep-copies the document.
func (d Document) Clone() Document {
	out := d
	out.Projects = project.CloneAll(d.Projects)
	out.TimeLogs = append([]timelog.TimeLog{}, d.TimeLogs...)
	out.Members = append([]member.Member{}, d.Members...)
	return out
}

// Partial is a typed partial update; nil fields keep the current
// cached value.
type Partial struct {
	Projects        []project.Project
	ActiveProjectID *string
	TimeLogs        []timelog.TimeLog
	Members         []member.Member
	AISettings      *settings.AISettings
}

// Apply merges a partial update over a fallback document and repairs
// the active project id. This is the client-side (already typed)
// counterpart of Normalize.
func Apply(p Partial, fallback Document) Document {
	out := fallback.Clone()
	if p.Projects != nil {
		out.Projects = project.CloneAll(p.Projects)
	}
	if p.ActiveProjectID != nil {
		out.ActiveProjectID = *p.ActiveProjectID
	}
	if p.TimeLogs != nil {
		out.TimeLogs = append([]timelog.TimeLog{}, p.TimeLogs...)
	}
	if p.Members != nil {
		out.Members = append([]member.Member{}, p.Members...)
	}
	if p.AISettings != nil {
		out.AISettings = *p.AISettings
	}
	repairActiveID(&out)
	return out
}

// repairActiveID repoints a dangling or empty active project id to
// the first available project, or clears it.
func repairActiveID(d *Document) {
	for _, p := range d.Projects {
		if p.ID == d.ActiveProjectID {
			return
		}
	}
	d.ActiveProjectID = ""
	if len(d.Projects) > 0 {
		d.ActiveProjectID = d.Projects[0].ID
	}
}
