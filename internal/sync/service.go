package sync

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fyrsmithlabs/notesync/internal/gitlab"
	"github.com/fyrsmithlabs/notesync/internal/issue"
	"github.com/fyrsmithlabs/notesync/internal/source"
	"github.com/fyrsmithlabs/notesync/internal/template"
	"github.com/fyrsmithlabs/notesync/internal/vault"
)

const instrumentationName = "github.com/fyrsmithlabs/notesync/internal/sync"

// ErrRunInFlight is returned by TryRun when a run is already executing.
// The trigger is dropped, not queued.
var ErrRunInFlight = errors.New("a sync run is already in flight")

// Service runs issue synchronization.
type Service interface {
	// TryRun executes one run unless another is in flight, in which case
	// it returns ErrRunInFlight. All user-facing triggers go through here.
	TryRun(ctx context.Context) (*Result, error)

	// Run executes one run without checking the in-flight gate. The gate
	// is advisory: internal callers that know a run cannot overlap may
	// use this path directly.
	Run(ctx context.Context) (*Result, error)

	// Running reports whether a gated run is in flight.
	Running() bool

	// LastResult returns the most recently finished run, or nil.
	LastResult() *Result
}

// Config holds the per-run settings of the synchronizer.
type Config struct {
	// Level is the issue scope: project, group, personal or custom.
	Level string
	// Targets is the scope identifier, or a "P:id, G:id" list for the
	// custom level.
	Targets string
	// Filter is a raw query string appended to every issue request.
	Filter string
	// Purge deletes every file in the vault before any write.
	Purge bool
}

// Result summarizes one synchronization run.
type Result struct {
	RunID    string        `json:"run_id"`
	Issues   int           `json:"issues"`
	Created  int           `json:"created"`
	Updated  int           `json:"updated"`
	Skipped  int           `json:"skipped"`
	Failed   int           `json:"failed"`
	Purged   int           `json:"purged"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
}

// service implements the Service interface.
type service struct {
	cfg      *Config
	client   gitlab.Client
	store    *vault.Store
	renderer *template.Renderer
	notifier Notifier
	logger   *zap.Logger
	metrics  *Metrics
	tracer   trace.Tracer

	running    atomic.Bool
	lastResult atomic.Pointer[Result]
}

// New creates a synchronizer service.
func New(cfg *Config, client gitlab.Client, store *vault.Store, renderer *template.Renderer, notifier Notifier, logger *zap.Logger) (Service, error) {
	if cfg == nil {
		return nil, errors.New("sync config is required")
	}
	if client == nil {
		return nil, errors.New("gitlab client is required")
	}
	if store == nil {
		return nil, errors.New("vault store is required")
	}
	if renderer == nil {
		return nil, errors.New("template renderer is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}

	return &service{
		cfg:      cfg,
		client:   client,
		store:    store,
		renderer: renderer,
		notifier: notifier,
		logger:   logger,
		metrics:  NewMetrics(),
		tracer:   otel.Tracer(instrumentationName),
	}, nil
}

// TryRun implements Service.TryRun.
func (s *service) TryRun(ctx context.Context) (*Result, error) {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Debug("sync trigger dropped, run already in flight")
		return nil, ErrRunInFlight
	}
	defer s.running.Store(false)
	return s.run(ctx)
}

// Run implements Service.Run.
func (s *service) Run(ctx context.Context) (*Result, error) {
	return s.run(ctx)
}

// Running implements Service.Running.
func (s *service) Running() bool {
	return s.running.Load()
}

// LastResult implements Service.LastResult.
func (s *service) LastResult() *Result {
	return s.lastResult.Load()
}

// run executes one full reconciliation pass.
func (s *service) run(ctx context.Context) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "sync.run")
	defer span.End()

	res := &Result{RunID: uuid.NewString(), Started: time.Now()}
	logger := s.logger.With(zap.String("run_id", res.RunID))

	defer func() {
		res.Duration = time.Since(res.Started)
		s.lastResult.Store(res)
		s.metrics.ObserveRun(res)
	}()

	targets, err := source.Resolve(s.cfg.Level, s.cfg.Targets, s.cfg.Filter)
	if err != nil {
		return nil, s.fail(ctx, span, logger, res, err)
	}

	raw, err := s.fetchAll(ctx, targets)
	if err != nil {
		return nil, s.fail(ctx, span, logger, res, fmt.Errorf("failed to fetch issues: %w", err))
	}
	res.Issues = len(raw)

	if s.cfg.Purge {
		purged, err := s.store.Purge()
		if err != nil {
			return nil, s.fail(ctx, span, logger, res, err)
		}
		res.Purged = purged
		logger.Info("purged vault before write", zap.Int("deleted", purged))
	}

	for _, record := range raw {
		n := issue.Normalize(record)
		if err := s.reconcile(ctx, n, res); err != nil {
			res.Failed++
			logger.Error("failed to reconcile issue",
				zap.String("issue", n.References.Full),
				zap.String("filename", n.Filename),
				zap.Error(err))
		}
	}

	logger.Info("sync run finished",
		zap.Int("issues", res.Issues),
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed),
		zap.Duration("duration", time.Since(res.Started)))
	return res, nil
}

// fail records a whole-run failure and notifies once.
func (s *service) fail(ctx context.Context, span trace.Span, logger *zap.Logger, res *Result, err error) error {
	res.Failed++
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	logger.Error("sync run failed", zap.Error(err))
	s.notifier.RunFailed(ctx, err)
	return err
}

// fetchAll fetches every target and flattens the results in target
// order. A single target is fetched inline; multiple targets (custom
// scope) fetch in parallel, and one failure fails the whole run with no
// partial result.
func (s *service) fetchAll(ctx context.Context, targets []source.RequestTarget) ([]gitlab.Issue, error) {
	if len(targets) == 1 {
		return s.client.ListIssues(ctx, targets[0])
	}

	results := make([][]gitlab.Issue, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	for i, target := range targets {
		g.Go(func() error {
			issues, err := s.client.ListIssues(gctx, target)
			if err != nil {
				return fmt.Errorf("target %s %s: %w", target.Scope, target.ID, err)
			}
			results[i] = issues
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var flat []gitlab.Issue
	for _, r := range results {
		flat = append(flat, r...)
	}
	return flat, nil
}

// reconcile lands one issue in exactly one of three outcomes: created,
// updated, or skipped.
func (s *service) reconcile(ctx context.Context, n issue.Normalized, res *Result) error {
	doc, err := s.renderer.Render(n)
	if err != nil {
		return err
	}
	name := n.Filename + ".md"

	if !s.store.Exists(name) {
		if err := s.store.Write(name, doc.Content); err != nil {
			return err
		}
		res.Created++
		s.notifier.IssueCreated(ctx, n)
		return nil
	}

	existing, err := s.store.Read(name)
	if err != nil {
		return err
	}
	current, _ := vault.ExtractFrontmatter(existing)
	if !vault.NeedsUpdate(current, doc.Frontmatter) {
		res.Skipped++
		return nil
	}

	merged, err := vault.MergeFrontmatter(existing, doc.Frontmatter)
	if err != nil {
		return err
	}
	if err := s.store.Write(name, merged); err != nil {
		return err
	}
	res.Updated++
	s.notifier.IssueUpdated(ctx, n)
	return nil
}
