package timelog

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Saver receives write-through snapshots after each mutation.
type Saver interface {
	SaveTimeLogs(logs []TimeLog)
}

// Store owns the time log slice of client-side state. Actual-hours
// accounting on tasks is the coordinator's job; this store only
// manages the log collection itself.
type Store struct {
	mu       sync.Mutex
	logs     []TimeLog
	hydrated bool
	saver    Saver
	logger   *slog.Logger
}

// NewStore creates a time log store. saver may be nil in tests.
func NewStore(saver Saver, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{saver: saver, logger: logger}
}

// Hydrate seeds the store from the loaded document.
func (s *Store) Hydrate(logs []TimeLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append([]TimeLog{}, logs...)
	s.hydrated = true
}

// Hydrated reports whether the initial load has been applied.
func (s *Store) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// Logs returns a snapshot copy.
func (s *Store) Logs() []TimeLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]TimeLog{}, s.logs...)
}

// Get looks up a log by id.
func (s *Store) Get(id string) (TimeLog, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.logs {
		if l.ID == id {
			return l, true
		}
	}
	return TimeLog{}, false
}

// AddLog appends a log with a fresh id and returns it.
func (s *Store) AddLog(l TimeLog) TimeLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.ID = uuid.NewString()
	s.logs = append(s.logs, l)
	s.persistLocked()
	return l
}

// UpdateLog applies hours/date edits to an existing log. Unknown ids
// no-op.
func (s *Store) UpdateLog(id string, upd Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.logs {
		if s.logs[i].ID == id {
			s.logs[i].Hours = upd.Hours
			s.logs[i].Date = upd.Date
			s.persistLocked()
			return
		}
	}
}

// DeleteLog removes a log by id.
func (s *Store) DeleteLog(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(func(l TimeLog) bool { return l.ID == id })
}

// RemoveLogsForTask drops every log referencing the task.
func (s *Store) RemoveLogsForTask(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(func(l TimeLog) bool { return l.TaskID == taskID })
}

// RemoveLogsForTasks drops every log referencing any of the tasks.
func (s *Store) RemoveLogsForTasks(taskIDs []string) {
	if len(taskIDs) == 0 {
		return
	}
	ids := make(map[string]struct{}, len(taskIDs))
	for _, id := range taskIDs {
		ids[id] = struct{}{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(func(l TimeLog) bool {
		_, hit := ids[l.TaskID]
		return hit
	})
}

// BackfillStageIDs fills a missing StageID from the owning task's
// current stage. Only logs without a stage are touched, so repeated
// calls with the same map are no-ops. Runs once per hydration.
func (s *Store) BackfillStageIDs(taskStages map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := false
	for i := range s.logs {
		if s.logs[i].StageID != "" {
			continue
		}
		stageID, ok := taskStages[s.logs[i].TaskID]
		if !ok || stageID == "" {
			continue
		}
		s.logs[i].StageID = stageID
		changed = true
	}
	if changed {
		s.persistLocked()
	}
}

func (s *Store) removeLocked(match func(TimeLog) bool) {
	kept := s.logs[:0]
	removed := false
	for _, l := range s.logs {
		if match(l) {
			removed = true
			continue
		}
		kept = append(kept, l)
	}
	s.logs = kept
	if removed {
		s.persistLocked()
	}
}

func (s *Store) persistLocked() {
	if !s.hydrated || s.saver == nil {
		return
	}
	s.saver.SaveTimeLogs(append([]TimeLog{}, s.logs...))
}
