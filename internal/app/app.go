// Package app composes the entity stores and enforces the invariants
// that span them: cascading deletes, actual-hours accounting, the
// active-project contract, and the hydration-gated stage backfill.
package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/protrackhq/protrack/internal/client"
	"github.com/protrackhq/protrack/internal/domain/member"
	"github.com/protrackhq/protrack/internal/domain/plan"
	"github.com/protrackhq/protrack/internal/domain/project"
	"github.com/protrackhq/protrack/internal/domain/settings"
	"github.com/protrackhq/protrack/internal/domain/timelog"
)

// App is the cross-entity coordinator. Store mutations inside a
// coordinator operation are independent; there is no transactional
// rollback between them.
type App struct {
	Projects *project.Store
	TimeLogs *timelog.Store
	Members  *member.Store
	Settings *settings.Store

	client   *client.Client
	insights *insightsWatcher
	logger   *slog.Logger

	mu         sync.Mutex
	backfilled bool
}

// Config configures an App.
type Config struct {
	Client *client.Client
	// Insights may be nil to disable the insights watcher.
	Insights InsightSource
	Logger   *slog.Logger
}

// New wires the stores to the persistence client. Call Load before
// mutating; nothing is durable-consistent until hydration resolves.
func New(cfg Config) *App {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{
		Projects: project.NewStore(cfg.Client, logger),
		TimeLogs: timelog.NewStore(cfg.Client, logger),
		Members:  member.NewStore(cfg.Client, logger),
		Settings: settings.NewStore(cfg.Client, logger),
		client:   cfg.Client,
		insights: newInsightsWatcher(cfg.Insights, logger),
		logger:   logger,
	}
	return a
}

// Load hydrates every store from the persistence client and runs the
// one-time stage backfill once both the project and time log stores
// report hydration.
func (a *App) Load(ctx context.Context) {
	doc := a.client.Load(ctx)
	a.Projects.Hydrate(doc.Projects, doc.ActiveProjectID)
	a.TimeLogs.Hydrate(doc.TimeLogs)
	a.Members.Hydrate(doc.Members)
	a.Settings.Hydrate(doc.AISettings)
	a.maybeBackfill()
	a.refreshInsights()
}

// maybeBackfill fills missing stage ids on legacy time logs from the
// owning tasks' current stages. Gated on both hydrations and runs at
// most once per hydration; BackfillStageIDs itself is idempotent.
func (a *App) maybeBackfill() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.backfilled || !a.Projects.Hydrated() || !a.TimeLogs.Hydrated() {
		return
	}
	a.TimeLogs.BackfillStageIDs(a.Projects.TaskStageMap())
	a.backfilled = true
}

// Shutdown cancels any in-flight insights request and flushes pending
// debounced state.
func (a *App) Shutdown(ctx context.Context) error {
	a.insights.stop()
	return a.client.Flush(ctx)
}

// AddProject appends a project and makes it active. Returning to the
// default landing view is the caller's concern.
func (a *App) AddProject(p project.Project) {
	a.Projects.AddProject(p)
	a.refreshInsights()
}

// AddProjectFromPlan materializes an AI plan into a new active
// project starting today.
func (a *App) AddProjectFromPlan(name, description string, p plan.Plan) project.Project {
	proj := plan.Materialize(name, description, time.Now(), p)
	created := a.Projects.AddProjectFromPlan(proj)
	a.refreshInsights()
	return created
}

// UpdateProject replaces a project wholesale.
func (a *App) UpdateProject(p project.Project) {
	a.Projects.UpdateProject(p)
	a.refreshInsights()
}

// DeleteProject removes a project, all tasks it owns, and
// transitively every time log of those tasks. Task ids are captured
// before the project goes away.
func (a *App) DeleteProject(id string) {
	var taskIDs []string
	for _, p := range a.Projects.Projects() {
		if p.ID != id {
			continue
		}
		for _, t := range p.Tasks {
			taskIDs = append(taskIDs, t.ID)
		}
	}
	a.Projects.DeleteProject(id)
	a.TimeLogs.RemoveLogsForTasks(taskIDs)
	a.refreshInsights()
}

// SetActiveProject switches the active project.
func (a *App) SetActiveProject(id string) {
	a.Projects.SetActiveProject(id)
	a.refreshInsights()
}

// AddTask creates a task in the active project.
func (a *App) AddTask(t project.Task) (project.Task, bool) {
	created, ok := a.Projects.AddTask(t)
	if ok {
		a.refreshInsights()
	}
	return created, ok
}

// UpdateTask replaces a task in the active project.
func (a *App) UpdateTask(t project.Task) {
	a.Projects.UpdateTask(t)
	a.refreshInsights()
}

// UpdateTaskStatus moves a task between kanban columns.
func (a *App) UpdateTaskStatus(id string, status project.TaskStatus) {
	a.Projects.UpdateTaskStatus(id, status)
	a.refreshInsights()
}

// DeleteTask removes a task and every time log referencing it.
func (a *App) DeleteTask(id string) {
	a.Projects.DeleteTask(id)
	a.TimeLogs.RemoveLogsForTask(id)
	a.refreshInsights()
}

// AddLog appends a time log and mirrors its hours onto the owning
// task's actual hours.
func (a *App) AddLog(l timelog.TimeLog) timelog.TimeLog {
	created := a.TimeLogs.AddLog(l)
	a.Projects.AddActualHours(l.TaskID, l.Hours)
	return created
}

// UpdateLog edits a log and applies the hours delta, not the absolute
// value, so concurrent edits compose. Unknown ids no-op.
func (a *App) UpdateLog(id string, upd timelog.Update) {
	existing, ok := a.TimeLogs.Get(id)
	if !ok {
		return
	}
	a.TimeLogs.UpdateLog(id, upd)
	if delta := upd.Hours - existing.Hours; delta != 0 {
		a.Projects.AddActualHours(existing.TaskID, delta)
	}
}

// DeleteLog removes a log and subtracts its hours from the owning
// task. Unknown ids no-op.
func (a *App) DeleteLog(id string) {
	existing, ok := a.TimeLogs.Get(id)
	if !ok {
		return
	}
	a.TimeLogs.DeleteLog(id)
	a.Projects.AddActualHours(existing.TaskID, -existing.Hours)
}

// ToggleAI flips AI assistance on or off.
func (a *App) ToggleAI() settings.AISettings {
	s := a.Settings.ToggleEnabled()
	a.refreshInsights()
	return s
}

// SetModel selects the AI model.
func (a *App) SetModel(model string) settings.AISettings {
	s := a.Settings.SetModel(model)
	a.refreshInsights()
	return s
}

// Insights returns the latest insights for the active project.
func (a *App) Insights() []plan.Insight {
	return a.insights.current()
}

// LoadingInsights reports whether a refresh is in flight.
func (a *App) LoadingInsights() bool {
	return a.insights.loading()
}

func (a *App) refreshInsights() {
	proj, ok := a.Projects.ActiveProject()
	a.insights.refresh(proj, ok, a.Settings.Settings())
}
