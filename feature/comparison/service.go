package comparison

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"score-ledger/core/logger"
	"score-ledger/core/metrics"
	"score-ledger/core/reconcile"
	"score-ledger/core/storage"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ErrBusy is returned when a sweep over a different window is already running.
var ErrBusy = errors.New("another sweep window is running")

// Service runs sweeps one at a time per source and keeps the last report.
type Service struct {
	engine  *Engine
	guard   *reconcile.Guard[*ComparisonReport]
	metrics *metrics.Metrics
	tracer  trace.Tracer
	client  storage.Client
	bucket  string
	logger  *zap.Logger

	mu      sync.Mutex
	running map[string]time.Time
}

// NewService creates a Service. client may be nil when reports are not archived.
func NewService(engine *Engine, client storage.Client, bucket string, m *metrics.Metrics, logger *zap.Logger) *Service {
	if m == nil {
		m = metrics.New()
	}
	return &Service{
		engine:  engine,
		guard:   reconcile.NewGuard[*ComparisonReport](),
		metrics: m,
		tracer:  otel.Tracer("score-ledger/comparison"),
		client:  client,
		bucket:  bucket,
		logger:  logger,
		running: make(map[string]time.Time),
	}
}

// DefaultAfter is the start of the configured sweep window.
func (s *Service) DefaultAfter() time.Time {
	return s.engine.now().Add(-s.engine.cfg.Window())
}

func (s *Service) scope(dryRun bool) string {
	if dryRun {
		return s.engine.cfg.Source + "|dry-run"
	}
	return s.engine.cfg.Source
}

// Run sweeps the window starting at after. A caller arriving while a sweep of the
// same kind and window is running waits for it and receives its report; shared
// reports this. A caller asking for another window gets ErrBusy.
func (s *Service) Run(ctx context.Context, after time.Time, dryRun bool) (report *ComparisonReport, shared bool, err error) {
	scope := s.scope(dryRun)

	s.mu.Lock()
	running, busy := s.running[scope]
	s.mu.Unlock()
	if busy && !running.Equal(after) {
		return nil, false, fmt.Errorf("%w: sweep after %s in progress", ErrBusy, running.Format(time.RFC3339))
	}

	report, shared, err = s.guard.Do(scope, func() (*ComparisonReport, error) {
		s.mu.Lock()
		s.running[scope] = after
		s.mu.Unlock()
		defer func() {
			s.mu.Lock()
			delete(s.running, scope)
			s.mu.Unlock()
		}()
		return s.run(ctx, after, dryRun)
	})
	if err == nil && shared && !report.After.Equal(after) {
		return nil, true, fmt.Errorf("%w: sweep after %s was running", ErrBusy, report.After.Format(time.RFC3339))
	}
	return report, shared, err
}

// Last returns the last completed report and when it finished.
func (s *Service) Last(dryRun bool) (*ComparisonReport, time.Time, bool) {
	return s.guard.Last(s.scope(dryRun))
}

func (s *Service) run(ctx context.Context, after time.Time, dryRun bool) (*ComparisonReport, error) {
	sweepID := uuid.NewString()
	l := logger.WithSweep(s.logger, sweepID, s.engine.cfg.ChannelID)

	ctx, span := s.tracer.Start(ctx, "comparison.sweep", trace.WithAttributes(
		attribute.String("sweep.id", sweepID),
		attribute.String("sweep.source", s.engine.cfg.Source),
		attribute.Bool("sweep.dry_run", dryRun),
	))
	defer span.End()

	start := time.Now()
	l.Info("Sweep started", zap.Time("after", after), zap.Bool("dry_run", dryRun))

	engine := *s.engine
	engine.logger = l
	report, err := engine.Sweep(ctx, after, reconcile.Options{DryRun: dryRun})

	s.metrics.SweepDuration.WithLabelValues(strconv.FormatBool(dryRun)).Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.Sweeps.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		l.Error("Sweep aborted", zap.Error(err))
		return nil, err
	}
	report.SweepID = sweepID

	outcome := "ok"
	if len(report.Errors) > 0 {
		outcome = "partial"
	}
	s.metrics.Sweeps.WithLabelValues(outcome).Inc()
	for _, bucket := range Buckets {
		if n := report.Counts[bucket]; n > 0 {
			s.metrics.Findings.WithLabelValues(bucket).Add(float64(n))
			span.SetAttributes(attribute.Int("sweep."+bucket, n))
		}
	}

	l.Info("Sweep finished",
		zap.Any("counts", report.Counts),
		zap.Int("executed", report.Executed),
		zap.Bool("consistent", report.Consistent()),
		zap.Duration("took", time.Since(start)),
	)

	if engine.cfg.ArchiveReports && s.client != nil {
		if err := s.archive(ctx, report); err != nil {
			l.Warn("Report archive failed", zap.Error(err))
		}
	}
	return report, nil
}

// archive uploads the report as JSON under reports/<source>/<date>/<sweep id>.json.
func (s *Service) archive(ctx context.Context, report *ComparisonReport) error {
	name := fmt.Sprintf("reports/%s/%s/%s.json", report.Source, report.Before.UTC().Format("2006-01-02"), report.SweepID)
	return storage.PutJSON(ctx, s.client, s.bucket, name, report)
}

// InstrumentFeedback counts marker calls made through port.
func InstrumentFeedback(port FeedbackPort, m *metrics.Metrics) FeedbackPort {
	return &countingFeedback{port: port, metrics: m}
}

type countingFeedback struct {
	port    FeedbackPort
	metrics *metrics.Metrics
}

func (c *countingFeedback) AddReaction(ctx context.Context, icon, channelID, ts string) error {
	c.metrics.Feedback.WithLabelValues("add").Inc()
	return c.port.AddReaction(ctx, icon, channelID, ts)
}

func (c *countingFeedback) RemoveReaction(ctx context.Context, icon, channelID, ts string) error {
	c.metrics.Feedback.WithLabelValues("remove").Inc()
	return c.port.RemoveReaction(ctx, icon, channelID, ts)
}
