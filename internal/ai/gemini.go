// Package ai holds the Gemini REST client used by the persistence
// service and the HTTP consumer of the service's AI endpoints.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/protrackhq/protrack/internal/domain/plan"
)

const (
	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultTimeout bounds a single model call; enforcement is via
	// context cancellation.
	DefaultTimeout = 30 * time.Second
)

// Gemini calls the Gemini generateContent API.
type Gemini struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// NewGemini creates a Gemini client. An empty apiKey yields a client
// whose calls fail with ErrNotConfigured.
func NewGemini(apiKey string, timeout time.Duration) *Gemini {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gemini{
		apiKey:  apiKey,
		baseURL: geminiBaseURL,
		timeout: timeout,
		client:  &http.Client{},
	}
}

// Configured reports whether an API key is present.
func (g *Gemini) Configured() bool {
	return g != nil && g.apiKey != ""
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	ResponseMIMEType string `json:"responseMimeType"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GeneratePlan asks the model for a structured stage/task plan.
func (g *Gemini) GeneratePlan(ctx context.Context, model, description string) (plan.Plan, error) {
	prompt := fmt.Sprintf(
		"Generate a detailed project plan for: %s. "+
			"Include stages and specific tasks for each stage with dates. "+
			"Respond with a JSON object {\"stages\":[{\"name\":string,\"tasks\":"+
			"[{\"title\":string,\"description\":string,\"estimatedHours\":number,\"durationDays\":number}]}]}.",
		description,
	)
	text, err := g.generate(ctx, model, prompt)
	if err != nil {
		return plan.Plan{}, err
	}
	var p plan.Plan
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		return plan.Plan{}, fmt.Errorf("decoding plan: %w", err)
	}
	return p.Sanitize(), nil
}

// Insights asks the model for observations about a project snapshot.
func (g *Gemini) Insights(ctx context.Context, model string, projectData json.RawMessage) ([]plan.Insight, error) {
	prompt := fmt.Sprintf(
		"Analyze this project data and provide 3 key insights or suggestions for improvement: %s. "+
			"Respond with a JSON array of {\"title\":string,\"description\":string,\"urgency\":\"Low\"|\"Medium\"|\"High\"}.",
		string(projectData),
	)
	text, err := g.generate(ctx, model, prompt)
	if err != nil {
		return nil, err
	}
	var insights []plan.Insight
	if err := json.Unmarshal([]byte(text), &insights); err != nil {
		return nil, fmt.Errorf("decoding insights: %w", err)
	}
	return plan.FilterInsights(insights), nil
}

func (g *Gemini) generate(ctx context.Context, model, prompt string) (string, error) {
	if !g.Configured() {
		return "", ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	body, err := json.Marshal(geminiRequest{
		Contents:         []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{ResponseMIMEType: "application/json"},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decoding gemini response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
