package project

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Saver receives write-through snapshots after each mutation. The
// persistence client implements it; saves are fire-and-forget.
type Saver interface {
	SaveProjects(projects []Project)
	SaveActiveProjectID(id string)
}

// Store owns the project slice of client-side state. The task surface
// (AddTask, UpdateTask, DeleteTask, UpdateTaskStatus, AddActualHours)
// always resolves against the active project and silently no-ops
// without one; cross-project task edits are not supported at this
// layer.
type Store struct {
	mu       sync.Mutex
	projects []Project
	activeID string
	hydrated bool
	saver    Saver
	logger   *slog.Logger
}

// NewStore creates a project store. saver may be nil in tests.
func NewStore(saver Saver, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{saver: saver, logger: logger}
}

// Hydrate seeds the store from the loaded document. Mutations persist
// only after hydration, so a slow load never clobbers server state
// with the pre-load default.
func (s *Store) Hydrate(projects []Project, activeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = CloneAll(projects)
	s.activeID = repairActiveID(activeID, s.projects)
	s.hydrated = true
}

// Hydrated reports whether the initial load has been applied.
func (s *Store) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// Projects returns a snapshot copy.
func (s *Store) Projects() []Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CloneAll(s.projects)
}

// ActiveProjectID returns the current active project id, or "".
func (s *Store) ActiveProjectID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// ActiveProject returns the active project, falling back to the first
// project when the id does not resolve.
func (s *Store) ActiveProject() (Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.projects {
		if p.ID == s.activeID {
			return p.Clone(), true
		}
	}
	if len(s.projects) > 0 {
		return s.projects[0].Clone(), true
	}
	return Project{}, false
}

// SetActiveProject switches the active project and persists the id.
func (s *Store) SetActiveProject(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = id
	s.persistActiveLocked()
}

// AddProject appends a project and makes it active.
func (s *Store) AddProject(p Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = append(s.projects, p.Clone())
	s.activeID = p.ID
	s.persistProjectsLocked()
	s.persistActiveLocked()
}

// AddProjectFromPlan appends an AI-materialized project, assigning a
// fresh id when the plan did not carry one, and makes it active.
func (s *Store) AddProjectFromPlan(p Project) Project {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.AddProject(p)
	return p
}

// UpdateProject replaces a project wholesale by id. Unknown ids no-op.
func (s *Store) UpdateProject(p Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.projects {
		if s.projects[i].ID == p.ID {
			s.projects[i] = p.Clone()
			s.persistProjectsLocked()
			return
		}
	}
}

// DeleteProject removes a project. If it was active, the first
// remaining project becomes active (or "" when none remain).
func (s *Store) DeleteProject(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.projects[:0]
	for _, p := range s.projects {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.projects = kept
	if s.activeID == id {
		s.activeID = ""
		if len(s.projects) > 0 {
			s.activeID = s.projects[0].ID
		}
		s.persistActiveLocked()
	}
	s.persistProjectsLocked()
}

// AddTask creates a task with a fresh id in the active project.
func (s *Store) AddTask(t Task) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.activeIndexLocked()
	if idx < 0 {
		s.logger.Debug("add task without active project", "title", t.Title)
		return Task{}, false
	}
	t.ID = uuid.NewString()
	s.projects[idx].Tasks = append(s.projects[idx].Tasks, t)
	s.persistProjectsLocked()
	return t, true
}

// UpdateTask replaces a task in the active project by id.
func (s *Store) UpdateTask(t Task) {
	s.mutateActiveTask(t.ID, func(cur *Task) { *cur = t })
}

// UpdateTaskStatus is the partial update used by drag/move
// interactions; only the status field changes.
func (s *Store) UpdateTaskStatus(id string, status TaskStatus) {
	s.mutateActiveTask(id, func(cur *Task) { cur.Status = status })
}

// AddActualHours adds delta (possibly negative) to a task's actual
// hours, clamped at 0. This is the sole mutator of ActualHours.
func (s *Store) AddActualHours(taskID string, delta float64) {
	s.mutateActiveTask(taskID, func(cur *Task) {
		cur.ActualHours += delta
		if cur.ActualHours < 0 {
			cur.ActualHours = 0
		}
	})
}

// DeleteTask removes a task from the active project. Log cleanup is
// the coordinator's job.
func (s *Store) DeleteTask(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.activeIndexLocked()
	if idx < 0 {
		return
	}
	tasks := s.projects[idx].Tasks[:0]
	for _, t := range s.projects[idx].Tasks {
		if t.ID != id {
			tasks = append(tasks, t)
		}
	}
	s.projects[idx].Tasks = tasks
	s.persistProjectsLocked()
}

// TaskStageMap maps every task id across all projects to its current
// stage id. Used for the hydration-time time log backfill.
func (s *Store) TaskStageMap() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string)
	for _, p := range s.projects {
		for _, t := range p.Tasks {
			out[t.ID] = t.StageID
		}
	}
	return out
}

func (s *Store) mutateActiveTask(id string, fn func(*Task)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.activeIndexLocked()
	if idx < 0 {
		return
	}
	for i := range s.projects[idx].Tasks {
		if s.projects[idx].Tasks[i].ID == id {
			fn(&s.projects[idx].Tasks[i])
			s.persistProjectsLocked()
			return
		}
	}
}

func (s *Store) activeIndexLocked() int {
	for i := range s.projects {
		if s.projects[i].ID == s.activeID {
			return i
		}
	}
	return -1
}

func (s *Store) persistProjectsLocked() {
	if !s.hydrated || s.saver == nil {
		return
	}
	s.saver.SaveProjects(CloneAll(s.projects))
}

func (s *Store) persistActiveLocked() {
	if !s.hydrated || s.saver == nil {
		return
	}
	s.saver.SaveActiveProjectID(s.activeID)
}

func repairActiveID(activeID string, projects []Project) string {
	for _, p := range projects {
		if p.ID == activeID {
			return activeID
		}
	}
	if len(projects) > 0 {
		return projects[0].ID
	}
	return ""
}
