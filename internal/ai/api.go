package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/protrackhq/protrack/internal/domain/plan"
	"github.com/protrackhq/protrack/internal/domain/project"
)

// DefaultClientTimeout gives the service a little headroom over its
// own model deadline before the consumer gives up.
const DefaultClientTimeout = 35 * time.Second

// API consumes the persistence service's AI endpoints. Failures are
// soft: GeneratePlan reports ErrUnavailable and Insights degrades to
// an empty list, because an absent AI result must never break the
// session.
type API struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// NewAPI creates a consumer for the service at baseURL.
func NewAPI(baseURL string, httpClient *http.Client, logger *slog.Logger) *API {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		timeout: DefaultClientTimeout,
		logger:  logger,
	}
}

type envelope struct {
	OK   bool            `json:"ok"`
	Data json.RawMessage `json:"data"`
}

// GeneratePlan requests a structured plan for a free-text description.
func (a *API) GeneratePlan(ctx context.Context, description, model string) (plan.Plan, error) {
	data, err := a.post(ctx, "/api/ai/generate-plan", map[string]string{
		"description": description,
		"model":       model,
	})
	if err != nil {
		a.logger.Warn("plan generation failed", "error", err)
		return plan.Plan{}, ErrUnavailable
	}
	var p plan.Plan
	if err := json.Unmarshal(data, &p); err != nil || p.Stages == nil {
		return plan.Plan{}, ErrUnavailable
	}
	return p.Sanitize(), nil
}

// Insights requests observations for a project snapshot. Any failure
// yields an empty list, never an error.
func (a *API) Insights(ctx context.Context, proj project.Project, model string) []plan.Insight {
	data, err := a.post(ctx, "/api/ai/insights", map[string]any{
		"projectData": proj,
		"model":       model,
	})
	if err != nil {
		a.logger.Warn("insights request failed", "error", err)
		return []plan.Insight{}
	}
	var insights []plan.Insight
	if err := json.Unmarshal(data, &insights); err != nil {
		return []plan.Insight{}
	}
	return plan.FilterInsights(insights)
}

func (a *API) post(ctx context.Context, path string, payload any) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, err
	}
	if !env.OK || env.Data == nil {
		return nil, fmt.Errorf("response not ok")
	}
	return env.Data, nil
}
