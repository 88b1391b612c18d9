package gitlab

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/notesync/internal/source"
)

const instrumentationName = "github.com/fyrsmithlabs/notesync/internal/gitlab"

// defaultTimeout bounds a single request. There is no per-call retry; a
// timed-out call simply fails until the next trigger.
const defaultTimeout = 30 * time.Second

// Client fetches issues from the tracker.
type Client interface {
	// ListIssues fetches all issues for one request target. The response
	// order is preserved.
	ListIssues(ctx context.Context, target source.RequestTarget) ([]Issue, error)

	// GetIssue fetches a single issue by project path and issue number.
	GetIssue(ctx context.Context, projectPath string, iid int) (*Issue, error)
}

// Config holds client configuration.
type Config struct {
	// BaseURL is the tracker root, e.g. "https://gitlab.com".
	BaseURL string
	// Token is sent as a bearer authorization header on every request.
	Token string
	// Timeout overrides the default per-request timeout when positive.
	Timeout time.Duration
}

// client implements the Client interface.
type client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *zap.Logger

	meter      metric.Meter
	reqCounter metric.Int64Counter
}

// NewClient creates a GitLab API client.
func NewClient(cfg *Config, logger *zap.Logger) (Client, error) {
	if cfg == nil || cfg.BaseURL == "" {
		return nil, fmt.Errorf("gitlab base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid gitlab base URL %q: %w", cfg.BaseURL, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
		meter:   otel.Meter(instrumentationName),
	}

	var err error
	c.reqCounter, err = c.meter.Int64Counter(
		"notesync.gitlab.requests_total",
		metric.WithDescription("Total GitLab API requests labeled by outcome (ok, http_error, network_error, decode_error)"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		logger.Warn("failed to create request counter", zap.Error(err))
	}

	return c, nil
}

// ListIssues implements Client.ListIssues.
func (c *client) ListIssues(ctx context.Context, target source.RequestTarget) ([]Issue, error) {
	var path string
	switch target.Scope {
	case source.ScopeProject:
		path = "/projects/" + url.PathEscape(target.ID) + "/issues"
	case source.ScopeGroup:
		path = "/groups/" + url.PathEscape(target.ID) + "/issues"
	case source.ScopePersonal:
		path = "/issues"
	default:
		return nil, fmt.Errorf("unknown target scope %q", target.Scope)
	}

	body, err := c.get(ctx, path, target.Filter)
	if err != nil {
		return nil, err
	}

	var issues []Issue
	if err := json.Unmarshal(body, &issues); err != nil {
		c.count(ctx, "decode_error")
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return issues, nil
}

// GetIssue implements Client.GetIssue.
func (c *client) GetIssue(ctx context.Context, projectPath string, iid int) (*Issue, error) {
	path := fmt.Sprintf("/projects/%s/issues/%d", url.PathEscape(projectPath), iid)

	body, err := c.get(ctx, path, "")
	if err != nil {
		return nil, err
	}

	var issue Issue
	if err := json.Unmarshal(body, &issue); err != nil {
		c.count(ctx, "decode_error")
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return &issue, nil
}

// get performs one authenticated GET against the API and returns the raw
// body for 2xx responses.
func (c *client) get(ctx context.Context, path, filter string) ([]byte, error) {
	reqURL := c.baseURL + "/api/v4" + path
	if filter != "" {
		reqURL += "?" + filter
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.count(ctx, "network_error")
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.count(ctx, "network_error")
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.count(ctx, "http_error")
		return nil, &StatusError{Status: resp.StatusCode, URL: reqURL}
	}

	c.count(ctx, "ok")
	c.logger.Debug("gitlab request",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)
	return body, nil
}

func (c *client) count(ctx context.Context, outcome string) {
	if c.reqCounter == nil {
		return
	}
	c.reqCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
