package ai_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/protrackhq/protrack/internal/ai"
	"github.com/protrackhq/protrack/internal/domain/plan"
	"github.com/protrackhq/protrack/internal/domain/project"
)

func newAPI(t *testing.T, handler http.HandlerFunc) *ai.API {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return ai.NewAPI(srv.URL, srv.Client(), nil)
}

func TestAPIGeneratePlan_Success(t *testing.T) {
	var gotBody map[string]string
	api := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/ai/generate-plan", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_, _ = w.Write([]byte(`{"ok":true,"data":{"stages":[{"name":"Build","tasks":[{"title":"Scaffold","durationDays":2}]}]}}`))
	})

	p, err := api.GeneratePlan(context.Background(), "build a thing", "gemini-2.5-flash")
	require.NoError(t, err)
	require.Equal(t, "build a thing", gotBody["description"])
	require.Equal(t, "gemini-2.5-flash", gotBody["model"])
	require.Len(t, p.Stages, 1)
}

func TestAPIGeneratePlan_ServiceErrorIsUnavailable(t *testing.T) {
	api := newAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := api.GeneratePlan(context.Background(), "build a thing", "gemini-2.5-flash")
	require.ErrorIs(t, err, ai.ErrUnavailable)
}

func TestAPIGeneratePlan_BadShapeIsUnavailable(t *testing.T) {
	api := newAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true,"data":{"unexpected":true}}`))
	})

	_, err := api.GeneratePlan(context.Background(), "build a thing", "gemini-2.5-flash")
	require.ErrorIs(t, err, ai.ErrUnavailable)
}

func TestAPIInsights_Success(t *testing.T) {
	api := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/ai/insights", r.URL.Path)
		_, _ = w.Write([]byte(`{"ok":true,"data":[{"title":"Risk","description":"Stage 2","urgency":"High"}]}`))
	})

	got := api.Insights(context.Background(), project.Project{ID: "p1", Name: "One"}, "gemini-2.5-flash")
	require.Len(t, got, 1)
	require.Equal(t, plan.UrgencyHigh, got[0].Urgency)
}

func TestAPIInsights_FailureYieldsEmpty(t *testing.T) {
	api := newAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})

	got := api.Insights(context.Background(), project.Project{ID: "p1", Name: "One"}, "gemini-2.5-flash")
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestAPIInsights_NotOKEnvelopeYieldsEmpty(t *testing.T) {
	api := newAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"error":"AI generation failed"}`))
	})

	got := api.Insights(context.Background(), project.Project{ID: "p1", Name: "One"}, "gemini-2.5-flash")
	require.Empty(t, got)
}
