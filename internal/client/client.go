// Package client implements the persistence client: an in-memory
// cache mirroring the last known document, a debounced write-through
// to the persistence service, and the one-time hydration load.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/protrackhq/protrack/internal/document"
	"github.com/protrackhq/protrack/internal/domain/member"
	"github.com/protrackhq/protrack/internal/domain/project"
	"github.com/protrackhq/protrack/internal/domain/settings"
	"github.com/protrackhq/protrack/internal/domain/timelog"
)

const (
	// DefaultDebounce is the quiet period that coalesces a burst of
	// saves into one outbound write.
	DefaultDebounce = 300 * time.Millisecond

	dataPath = "/api/data"
)

// Config configures a Client.
type Config struct {
	// BaseURL of the persistence service, e.g. "http://localhost:3001".
	BaseURL string
	// Debounce overrides DefaultDebounce when > 0.
	Debounce time.Duration
	// HTTPClient overrides http.DefaultClient.
	HTTPClient *http.Client
	// Legacy enables one-time migration of local-only state.
	Legacy *LegacyStore
	Logger *slog.Logger
}

// Client is an explicit object injected into the entity stores; its
// lifecycle is init (Load), running (debounced saves), shutdown
// (Flush). Local state is the source of truth for the running
// session: a failed flush is reported, never rolled back.
type Client struct {
	baseURL  string
	http     *http.Client
	debounce time.Duration
	legacy   *LegacyStore
	logger   *slog.Logger

	loadOnce sync.Once

	mu        sync.Mutex
	cache     document.Document
	timer     *time.Timer
	pending   bool
	onSaveErr func(error)
}

// New creates a client with the pre-load default document cached.
func New(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		http:     httpClient,
		debounce: debounce,
		legacy:   cfg.Legacy,
		logger:   logger,
		cache:    document.Default(),
	}
}

// OnSaveError registers the flush failure callback. At most one is
// active per session; a second call replaces the first.
func (c *Client) OnSaveError(cb func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSaveErr = cb
}

// Data returns a snapshot of the cached document.
func (c *Client) Data() document.Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Clone()
}

// Load fetches the remote document exactly once per session;
// concurrent and repeated callers share the one fetch. On failure the
// cache keeps its pre-load default and no error is surfaced. Legacy
// local state, if present, is merged over the loaded document (legacy
// wins), pushed to the service, and cleared only after a successful
// push.
func (c *Client) Load(ctx context.Context) document.Document {
	c.loadOnce.Do(func() { c.hydrate(ctx) })
	return c.Data()
}

func (c *Client) hydrate(ctx context.Context) {
	body, err := c.fetch(ctx)
	if err != nil {
		c.logger.Warn("load failed, keeping defaults", "error", err)
	} else {
		c.mu.Lock()
		doc, nerr := document.Normalize(body, c.cache)
		if nerr == nil {
			c.cache = doc
		}
		c.mu.Unlock()
		if nerr != nil {
			c.logger.Warn("load returned malformed document, keeping defaults", "error", nerr)
		}
	}

	legacy, ok := c.legacy.Read()
	if !ok {
		return
	}
	c.mu.Lock()
	c.cache = document.Apply(legacy, c.cache)
	c.mu.Unlock()
	if err := c.put(ctx); err != nil {
		c.logger.Warn("legacy migration push failed, keeping legacy files", "error", err)
		return
	}
	c.legacy.Clear()
}

func (c *Client) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+dataPath, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("load failed: status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		return nil, fmt.Errorf("load failed: content type %q", ct)
	}
	return io.ReadAll(resp.Body)
}

// Save merges a partial update into the cache and (re)starts the
// debounce window. Rapid saves collapse into a single outbound write
// carrying the latest merged cache. The call never blocks on I/O.
func (c *Client) Save(p document.Partial) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = document.Apply(p, c.cache)
	c.pending = true
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, c.flushAsync)
}

// SaveProjects implements project.Saver.
func (c *Client) SaveProjects(projects []project.Project) {
	c.Save(document.Partial{Projects: projects})
}

// SaveActiveProjectID implements project.Saver.
func (c *Client) SaveActiveProjectID(id string) {
	c.Save(document.Partial{ActiveProjectID: &id})
}

// SaveTimeLogs implements timelog.Saver.
func (c *Client) SaveTimeLogs(logs []timelog.TimeLog) {
	c.Save(document.Partial{TimeLogs: logs})
}

// SaveMembers implements member.Saver.
func (c *Client) SaveMembers(members []member.Member) {
	c.Save(document.Partial{Members: members})
}

// SaveAISettings implements settings.Saver.
func (c *Client) SaveAISettings(s settings.AISettings) {
	c.Save(document.Partial{AISettings: &s})
}

// Flush writes any pending state immediately. Used at shutdown so the
// debounce window cannot swallow the last edits.
func (c *Client) Flush(ctx context.Context) error {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	pending := c.pending
	c.mu.Unlock()
	if !pending {
		return nil
	}
	return c.put(ctx)
}

func (c *Client) flushAsync() {
	if err := c.put(context.Background()); err != nil {
		c.logger.Error("save failed", "error", err)
		c.mu.Lock()
		cb := c.onSaveErr
		c.mu.Unlock()
		if cb != nil {
			cb(err)
		}
	}
}

func (c *Client) put(ctx context.Context) error {
	c.mu.Lock()
	snapshot := c.cache.Clone()
	c.pending = false
	c.mu.Unlock()

	body, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+dataPath, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("save failed: status %d", resp.StatusCode)
	}
	return nil
}
