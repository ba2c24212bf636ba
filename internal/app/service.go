// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	feedqueue "github.com/okian/podium/internal/adapters/mq/queue"
	workerpool "github.com/okian/podium/internal/adapters/mq/worker"
	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/domain/criteria"
	"github.com/okian/podium/internal/domain/dedupe"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/progress"
	"github.com/okian/podium/internal/domain/ranking"
	"github.com/okian/podium/internal/domain/scoring"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultWorkerCount = 4
	defaultQueueSize   = 10_000
	defaultDedupeSize  = 50_000
	defaultDBPath      = "podium.db"
)

// SubmitRequest carries one judge's full score submission for a project.
// Ratings maps criterion id to raw score. Authorization (that the judge
// may score this event) is the caller's responsibility.
type SubmitRequest struct {
	JudgeID   string             `json:"judge_id" validate:"required"`
	ProjectID string             `json:"project_id" validate:"required"`
	EventID   string             `json:"event_id" validate:"required"`
	Ratings   map[string]float64 `json:"scores" validate:"required,min=1"`
	Comments  string             `json:"comments"`
}

// SubmitResult reports the stored score row after a submission.
type SubmitResult struct {
	ScoreID    string  `json:"score_id"`
	TotalScore float64 `json:"total_score"`
}

// Aggregate is a project's read-time aggregate across its judges.
type Aggregate struct {
	AverageScore *float64 `json:"average_score"`
	JudgeCount   int      `json:"judge_count"`
}

// Service implements score submission, aggregation reads, leaderboard
// ranking, judge progress, and feed ingestion over the repository.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	registry  *criteria.Registry
	tracker   *progress.Tracker
	deduper   dedupe.Deduper
	feedQueue feedqueue.Queue
	pool      *workerpool.Pool
	validate  *validator.Validate

	// Configuration
	dbPath      string
	workerCount int
	queueSize   int
	dedupeSize  int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDBPath sets the SQLite database path (":memory:" for ephemeral).
func WithDBPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dbPath = path
		}
	}
}

// WithStore injects a pre-built store, bypassing WithDBPath.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithWorkerCount sets the number of feed worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the feed update queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the feed deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dbPath:      defaultDBPath,
		workerCount: defaultWorkerCount,
		queueSize:   defaultQueueSize,
		dedupeSize:  defaultDedupeSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting judging service...")

	if s.store == nil {
		store, err := repository.NewSQLiteStore(s.dbPath)
		if err != nil {
			return fmt.Errorf("open score store: %w", err)
		}
		s.store = store
	}

	s.registry = criteria.NewRegistry(criteria.WithSource(s.store))
	s.tracker = progress.NewTracker(progress.WithSource(s.store))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.feedQueue = feedqueue.NewInMemoryQueue(feedqueue.WithCapacity(s.queueSize))
	s.validate = validator.New(validator.WithRequiredStructEnabled())

	s.pool = workerpool.NewPool(s.workerCount, s.feedQueue, s.store)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "judging service started",
		logger.String("dbPath", s.dbPath),
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping judging service...",
		logger.Int("queueLength", s.feedQueue.Len(ctx)),
		logger.Int64("dedupeEntries", s.deduper.Size()),
	)

	if s.pool != nil {
		s.pool.Stop()
	}
	if s.feedQueue != nil {
		_ = s.feedQueue.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(ctx, "score store did not close cleanly", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "judging service stopped")
}

// ready reports whether Start has completed.
func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// SubmitScore validates one judge's submission, computes the weighted
// normalized total, and upserts the score with all detail rows in one
// transaction. A resubmission for the same (judge, project) updates the
// existing row; nothing is persisted on a validation failure.
func (s *Service) SubmitScore(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	if err := s.ready(); err != nil {
		return SubmitResult{}, err
	}
	start := time.Now()
	defer func() {
		metrics.RecordSubmissionLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := s.validate.Struct(req); err != nil {
		metrics.RecordValidationRejection("bad_request")
		return SubmitResult{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	project, err := s.store.GetProject(ctx, req.ProjectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.RecordValidationRejection("project_not_found")
			return SubmitResult{}, fmt.Errorf("project %q: %w", req.ProjectID, ErrProjectNotFound)
		}
		return SubmitResult{}, fmt.Errorf("load project: %w", err)
	}
	if project.EventID != req.EventID {
		metrics.RecordValidationRejection("event_mismatch")
		return SubmitResult{}, fmt.Errorf("project %q belongs to event %q: %w", req.ProjectID, project.EventID, ErrEventMismatch)
	}
	if !project.Status.Scorable() {
		metrics.RecordValidationRejection("not_scorable")
		return SubmitResult{}, fmt.Errorf("project %q has status %q: %w", req.ProjectID, project.Status, ErrNotScorable)
	}

	crits, err := s.registry.List(ctx, req.EventID)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("resolve criteria: %w", err)
	}
	if err := scoring.ValidateRatings(crits, req.Ratings); err != nil {
		metrics.RecordValidationRejection("invalid_rating")
		return SubmitResult{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	total := scoring.JudgeTotal(crits, req.Ratings)
	now := time.Now().UTC()
	score := model.Score{
		ID:         uuid.NewString(),
		ProjectID:  req.ProjectID,
		JudgeID:    req.JudgeID,
		EventID:    req.EventID,
		TotalScore: total,
		Comments:   req.Comments,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	details := make([]model.ScoreDetail, 0, len(req.Ratings))
	for _, c := range crits {
		raw, ok := req.Ratings[c.ID]
		if !ok {
			continue
		}
		details = append(details, model.ScoreDetail{CriteriaID: c.ID, Score: raw})
	}

	scoreID, updated, err := s.store.SaveScore(ctx, score, details)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("save score: %w", err)
	}

	metrics.RecordScoreSubmitted()
	if updated {
		metrics.RecordScoreResubmission()
	}
	s.logger.Debug(ctx, "score saved",
		logger.String("scoreID", scoreID),
		logger.String("judgeID", req.JudgeID),
		logger.String("projectID", req.ProjectID),
		logger.Float64("total", total),
	)
	return SubmitResult{ScoreID: scoreID, TotalScore: total}, nil
}

// ProjectAggregate returns the mean of judge totals and the judge count
// for a project. A project nobody has scored yet has a nil average.
func (s *Service) ProjectAggregate(ctx context.Context, projectID string) (Aggregate, error) {
	if err := s.ready(); err != nil {
		return Aggregate{}, err
	}
	metrics.RecordAggregateQuery()

	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Aggregate{}, fmt.Errorf("project %q: %w", projectID, ErrProjectNotFound)
		}
		return Aggregate{}, fmt.Errorf("load project: %w", err)
	}
	totals, err := s.store.JudgeTotals(ctx, projectID)
	if err != nil {
		return Aggregate{}, fmt.Errorf("load judge totals: %w", err)
	}
	avg, count := scoring.Aggregate(totals)
	return Aggregate{AverageScore: avg, JudgeCount: count}, nil
}

// Leaderboard ranks the event's eligible projects. snapshot, when
// non-nil, supplies prior ranks for delta display; passing nil skips
// previous-rank annotation.
func (s *Service) Leaderboard(ctx context.Context, eventID string, snapshot map[string]int) ([]ranking.Entry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	metrics.RecordLeaderboardQuery()

	projects, err := s.store.ListProjects(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	totals, err := s.store.TotalsByProject(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("load event totals: %w", err)
	}

	aggs := make(map[string]ranking.Aggregate, len(totals))
	for projectID, ts := range totals {
		avg, count := scoring.Aggregate(ts)
		aggs[projectID] = ranking.Aggregate{Average: avg, JudgeCount: count}
	}
	entries := ranking.Rank(projects, aggs)
	return ranking.ApplySnapshot(entries, snapshot), nil
}

// JudgeProgress reports how many of the event's scorable projects the
// judge has scored.
func (s *Service) JudgeProgress(ctx context.Context, judgeID, eventID string) (progress.Report, error) {
	if err := s.ready(); err != nil {
		return progress.Report{}, err
	}
	metrics.RecordProgressQuery()

	report, err := s.tracker.Progress(ctx, judgeID, eventID)
	if err != nil {
		return progress.Report{}, fmt.Errorf("judge progress: %w", err)
	}
	return report, nil
}

// Criteria returns the criteria in effect for an event, applying the
// default-template fallback when none are configured.
func (s *Service) Criteria(ctx context.Context, eventID string) ([]model.Criterion, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.registry.List(ctx, eventID)
}

// SeenAndRecord atomically checks and records a feed delivery id.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordFeedDuplicate()
	}
	return seen
}

// Unrecord removes a delivery id so the update can be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// EnqueueFeedUpdate submits a project status feed update for async
// application. Returns false on backpressure.
func (s *Service) EnqueueFeedUpdate(ctx context.Context, u model.FeedUpdate) bool {
	ok := s.feedQueue.Enqueue(ctx, u)
	if ok {
		metrics.UpdateFeedQueueSize(s.feedQueue.Len(ctx))
	}
	return ok
}

// SyncProject applies a project status update synchronously, bypassing
// the queue. Tests and embedders use this; the HTTP feed goes through
// EnqueueFeedUpdate.
func (s *Service) SyncProject(ctx context.Context, p model.Project) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.store.UpsertProject(ctx, p); err != nil {
		return fmt.Errorf("sync project: %w", err)
	}
	return nil
}

// PutCriterion ingests one admin-configured criterion row.
func (s *Service) PutCriterion(ctx context.Context, c model.Criterion) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.store.PutCriterion(ctx, c); err != nil {
		return fmt.Errorf("put criterion: %w", err)
	}
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}
	if !s.started {
		return stats
	}

	stats["queueLength"] = s.feedQueue.Len(ctx)
	stats["dedupeEntries"] = s.deduper.Size()

	if projects, scores, err := s.store.Stats(ctx); err == nil {
		stats["projectsTracked"] = projects
		stats["scoresStored"] = scores
		metrics.UpdateProjectsTracked(projects)
		metrics.UpdateScoresStored(scores)
	}
	return stats
}
