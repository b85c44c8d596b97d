package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/protrackhq/protrack/internal/app"
	"github.com/protrackhq/protrack/internal/client"
	"github.com/protrackhq/protrack/internal/domain/plan"
	"github.com/protrackhq/protrack/internal/domain/project"
	"github.com/protrackhq/protrack/internal/testserver"
)

// blockingSource answers each request with the insight queued for the
// project, but only after the test releases it.
type blockingSource struct {
	requests chan insightRequest
}

type insightRequest struct {
	projectID string
	release   chan []plan.Insight
	ctx       context.Context
}

func newBlockingSource() *blockingSource {
	return &blockingSource{requests: make(chan insightRequest, 8)}
}

func (b *blockingSource) Insights(ctx context.Context, proj project.Project, _ string) []plan.Insight {
	req := insightRequest{projectID: proj.ID, release: make(chan []plan.Insight), ctx: ctx}
	b.requests <- req
	select {
	case data := <-req.release:
		return data
	case <-ctx.Done():
		return nil
	}
}

func newInsightsApp(t *testing.T, source app.InsightSource) *app.App {
	t.Helper()
	ts := testserver.New(t, nil)
	c := client.New(client.Config{BaseURL: ts.Server.URL, Debounce: 10 * time.Millisecond})
	a := app.New(app.Config{Client: c, Insights: source})
	a.Load(context.Background())
	return a
}

func addProjectWithTask(t *testing.T, a *app.App, id string) {
	t.Helper()
	a.AddProject(newProject(id, id))
	_, ok := a.AddTask(project.Task{Title: "work", Status: project.StatusTodo})
	require.True(t, ok)
}

func TestInsightsRefreshOnChange(t *testing.T) {
	source := newBlockingSource()
	a := newInsightsApp(t, source)
	addProjectWithTask(t, a, "p1")

	// Only the AddTask refresh reaches the source: the refreshes
	// before it ran against a project without tasks.
	var req insightRequest
	require.Eventually(t, func() bool {
		select {
		case req = <-source.requests:
			return true
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
	require.True(t, a.LoadingInsights())

	req.release <- []plan.Insight{{Title: "On track", Urgency: plan.UrgencyLow}}

	require.Eventually(t, func() bool {
		return len(a.Insights()) == 1
	}, time.Second, 5*time.Millisecond)
	require.False(t, a.LoadingInsights())
}

// A response that arrives after the active project changed must not
// land on the new project.
func TestStaleInsightsDiscarded(t *testing.T) {
	source := newBlockingSource()
	a := newInsightsApp(t, source)
	addProjectWithTask(t, a, "p1")
	addProjectWithTask(t, a, "p2")

	var p1Req insightRequest
	deadline := time.After(time.Second)
	for p1Req.projectID != "p1" {
		select {
		case p1Req = <-source.requests:
		case <-deadline:
			t.Fatal("no insights request for p1")
		}
	}

	// Switching away cancels the in-flight p1 request.
	a.SetActiveProject("p2")
	require.Eventually(t, func() bool {
		return p1Req.ctx.Err() != nil
	}, time.Second, 5*time.Millisecond)

	// A late p1 answer is dropped.
	select {
	case p1Req.release <- []plan.Insight{{Title: "stale", Urgency: plan.UrgencyHigh}}:
	default:
	}

	var p2Req insightRequest
	deadline = time.After(time.Second)
	for p2Req.projectID != "p2" || p2Req.ctx.Err() != nil {
		select {
		case p2Req = <-source.requests:
		case <-deadline:
			t.Fatal("no insights request for p2")
		}
	}
	p2Req.release <- []plan.Insight{{Title: "fresh", Urgency: plan.UrgencyMedium}}

	require.Eventually(t, func() bool {
		got := a.Insights()
		return len(got) == 1 && got[0].Title == "fresh"
	}, time.Second, 5*time.Millisecond)
}

func TestInsightsClearedWhenDisabled(t *testing.T) {
	source := newBlockingSource()
	a := newInsightsApp(t, source)
	addProjectWithTask(t, a, "p1")

	var req insightRequest
	select {
	case req = <-source.requests:
	case <-time.After(time.Second):
		t.Fatal("no insights request")
	}
	req.release <- []plan.Insight{{Title: "On track", Urgency: plan.UrgencyLow}}
	require.Eventually(t, func() bool {
		return len(a.Insights()) == 1
	}, time.Second, 5*time.Millisecond)

	// Toggling AI off clears the derived insights immediately.
	a.ToggleAI()
	require.Empty(t, a.Insights())
	require.False(t, a.LoadingInsights())
}
