package document

import (
	"encoding/json"

	"github.com/protrackhq/protrack/internal/domain/member"
	"github.com/protrackhq/protrack/internal/domain/project"
	"github.com/protrackhq/protrack/internal/domain/settings"
	"github.com/protrackhq/protrack/internal/domain/timelog"
)

// Normalize decodes raw JSON into a Document against a fallback.
// An error is returned only for JSON that fails to parse at the top
// level. Each field is type-checked independently: a wrong-typed or
// absent field falls back to the current value rather than to a
// hardcoded default, so a malformed partial update never wipes
// previously saved data. Invalid entries inside the collection fields
// are silently filtered out; AISettings falls back as a whole.
// Unknown top-level keys are ignored.
func Normalize(raw []byte, fallback Document) (Document, error) {
	keys := map[string]json.RawMessage{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &keys); err != nil {
			return Document{}, err
		}
	}

	out := fallback.Clone()

	if field, ok := keys["projects"]; ok {
		if items, ok := rawList(field); ok {
			out.Projects = filterProjects(items)
		}
	}
	if field, ok := keys["activeProjectId"]; ok {
		var id string
		if err := json.Unmarshal(field, &id); err == nil {
			out.ActiveProjectID = id
		}
	}
	if field, ok := keys["timeLogs"]; ok {
		if items, ok := rawList(field); ok {
			out.TimeLogs = filterTimeLogs(items)
		}
	}
	if field, ok := keys["members"]; ok {
		if items, ok := rawList(field); ok {
			out.Members = filterMembers(items)
		}
	}
	if field, ok := keys["aiSettings"]; ok {
		if s, ok := decodeAISettings(field); ok {
			out.AISettings = s
		}
	}

	repairActiveID(&out)
	return out, nil
}

func rawList(field json.RawMessage) ([]json.RawMessage, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(field, &items); err != nil {
		return nil, false
	}
	if items == nil {
		return nil, false
	}
	return items, true
}

func filterProjects(items []json.RawMessage) []project.Project {
	out := make([]project.Project, 0, len(items))
	for _, item := range items {
		if p, ok := decodeProject(item); ok {
			out = append(out, p)
		}
	}
	return out
}

// decodeProject requires id (non-empty), name, and the stages and
// tasks lists. Pointer fields distinguish absent or null from the
// zero value.
func decodeProject(raw json.RawMessage) (project.Project, bool) {
	var probe struct {
		ID          *string          `json:"id"`
		Name        *string          `json:"name"`
		Description string           `json:"description"`
		DueDate     string           `json:"dueDate"`
		Stages      *[]project.Stage `json:"stages"`
		Tasks       *[]project.Task  `json:"tasks"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return project.Project{}, false
	}
	if probe.ID == nil || *probe.ID == "" || probe.Name == nil {
		return project.Project{}, false
	}
	if probe.Stages == nil || probe.Tasks == nil {
		return project.Project{}, false
	}
	return project.Project{
		ID:          *probe.ID,
		Name:        *probe.Name,
		Description: probe.Description,
		DueDate:     probe.DueDate,
		Stages:      *probe.Stages,
		Tasks:       *probe.Tasks,
	}, true
}

func filterTimeLogs(items []json.RawMessage) []timelog.TimeLog {
	out := make([]timelog.TimeLog, 0, len(items))
	for _, item := range items {
		if l, ok := decodeTimeLog(item); ok {
			out = append(out, l)
		}
	}
	return out
}

func decodeTimeLog(raw json.RawMessage) (timelog.TimeLog, bool) {
	var probe struct {
		ID      *string  `json:"id"`
		TaskID  *string  `json:"taskId"`
		StageID string   `json:"stageId"`
		Date    *string  `json:"date"`
		Hours   *float64 `json:"hours"`
		UserID  string   `json:"userId"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return timelog.TimeLog{}, false
	}
	if probe.ID == nil || *probe.ID == "" || probe.TaskID == nil || *probe.TaskID == "" {
		return timelog.TimeLog{}, false
	}
	if probe.Hours == nil || *probe.Hours < 0 || probe.Date == nil {
		return timelog.TimeLog{}, false
	}
	return timelog.TimeLog{
		ID:      *probe.ID,
		TaskID:  *probe.TaskID,
		StageID: probe.StageID,
		Date:    *probe.Date,
		Hours:   *probe.Hours,
		UserID:  probe.UserID,
	}, true
}

func filterMembers(items []json.RawMessage) []member.Member {
	out := make([]member.Member, 0, len(items))
	for _, item := range items {
		if m, ok := decodeMember(item); ok {
			out = append(out, m)
		}
	}
	return out
}

func decodeMember(raw json.RawMessage) (member.Member, bool) {
	var probe struct {
		ID    *string `json:"id"`
		Name  *string `json:"name"`
		Role  *string `json:"role"`
		Color *string `json:"color"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return member.Member{}, false
	}
	if probe.ID == nil || *probe.ID == "" || probe.Name == nil || probe.Role == nil || probe.Color == nil {
		return member.Member{}, false
	}
	return member.Member{ID: *probe.ID, Name: *probe.Name, Role: *probe.Role, Color: *probe.Color}, true
}

// decodeAISettings is all-or-nothing: both fields must be present
// with the right types, else the previous value stands.
func decodeAISettings(raw json.RawMessage) (settings.AISettings, bool) {
	var probe struct {
		Enabled *bool   `json:"enabled"`
		Model   *string `json:"model"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return settings.AISettings{}, false
	}
	if probe.Enabled == nil || probe.Model == nil {
		return settings.AISettings{}, false
	}
	return settings.AISettings{Enabled: *probe.Enabled, Model: *probe.Model}, true
}
