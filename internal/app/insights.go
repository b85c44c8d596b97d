package app

import (
	"context"
	"log/slog"
	"sync"

	"github.com/protrackhq/protrack/internal/domain/plan"
	"github.com/protrackhq/protrack/internal/domain/project"
	"github.com/protrackhq/protrack/internal/domain/settings"
)

// InsightSource produces insights for a project snapshot. The
// ai.API consumer implements it; failures surface as an empty list.
type InsightSource interface {
	Insights(ctx context.Context, proj project.Project, model string) []plan.Insight
}

// insightsWatcher keeps the derived insights for the active project
// current. Each refresh cancels the previous request; a result that
// arrives after the active project or AI settings changed is
// discarded, so a stale response never lands on a different project.
type insightsWatcher struct {
	source InsightSource
	logger *slog.Logger

	mu         sync.Mutex
	cancel     context.CancelFunc
	generation uint64
	insights   []plan.Insight
	inFlight   bool
}

func newInsightsWatcher(source InsightSource, logger *slog.Logger) *insightsWatcher {
	return &insightsWatcher{source: source, logger: logger}
}

func (w *insightsWatcher) current() []plan.Insight {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]plan.Insight{}, w.insights...)
}

func (w *insightsWatcher) loading() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inFlight
}

func (w *insightsWatcher) refresh(proj project.Project, ok bool, s settings.AISettings) {
	if w.source == nil {
		return
	}

	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.generation++
	gen := w.generation

	if !s.Enabled || !ok || len(proj.Tasks) == 0 {
		w.insights = nil
		w.inFlight = false
		w.mu.Unlock()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.inFlight = true
	w.mu.Unlock()

	go func() {
		data := w.source.Insights(ctx, proj, s.Model)

		w.mu.Lock()
		defer w.mu.Unlock()
		if gen != w.generation || ctx.Err() != nil {
			return
		}
		w.insights = data
		w.inFlight = false
	}()
}

func (w *insightsWatcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.generation++
	w.inFlight = false
}
