// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"

	recordqueue "github.com/Waqar080206/usar-ranklist/internal/adapters/mq/queue"
	workerpool "github.com/Waqar080206/usar-ranklist/internal/adapters/mq/worker"
	repository "github.com/Waqar080206/usar-ranklist/internal/adapters/repository"
	"github.com/Waqar080206/usar-ranklist/internal/domain/dedupe"
	"github.com/Waqar080206/usar-ranklist/internal/domain/model"
	"github.com/Waqar080206/usar-ranklist/internal/domain/query"
	"github.com/Waqar080206/usar-ranklist/internal/domain/rank"
	"github.com/Waqar080206/usar-ranklist/internal/domain/types"
	"github.com/Waqar080206/usar-ranklist/pkg/logger"
	"github.com/Waqar080206/usar-ranklist/pkg/metrics"
)

// Service wires the record store, ingest pipeline and query engine behind
// the operations the HTTP API needs.
type Service struct {
	mu sync.RWMutex

	// Core components
	store       repository.Store
	deduper     dedupe.Deduper
	recordQueue recordqueue.Queue
	workerPool  *workerpool.Pool
	engine      *query.Engine

	// Configuration
	workerCount   int
	queueSize     int
	dedupeSize    int
	strictQuery   bool
	missingPolicy rank.MissingPolicy
	seedFile      string

	// State
	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the record store. Defaults to an in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithWorkerCount sets the number of ingest workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the ingest queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the duplicate-detection cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithStrictQuery makes one invalid record abort a whole query instead of
// being skipped and reported.
func WithStrictQuery(strict bool) Option {
	return func(s *Service) {
		s.strictQuery = strict
	}
}

// WithMissingMetricPolicy sets the ranker's missing-metric policy.
func WithMissingMetricPolicy(p rank.MissingPolicy) Option {
	return func(s *Service) {
		if p != "" {
			s.missingPolicy = p
		}
	}
}

// WithSeedFile sets an optional JSON file of parsed results loaded at start.
func WithSeedFile(path string) Option {
	return func(s *Service) {
		s.seedFile = path
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

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:   runtime.NumCPU() * 2,
		queueSize:     10000,
		dedupeSize:    50000,
		missingPolicy: rank.MissingError,
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

	s.logger.Info(ctx, "starting ranklist service...")

	if s.store == nil {
		s.store = repository.NewMemStore(ctx)
	}
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.recordQueue = recordqueue.NewInMemoryQueue(
		recordqueue.WithCapacity(s.queueSize),
	)
	s.engine = query.New(
		query.WithStrict(s.strictQuery),
		query.WithRanker(rank.New(rank.WithMissingPolicy(s.missingPolicy))),
	)

	s.workerPool = workerpool.NewPool(s.workerCount, s.recordQueue, s.store)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "ranklist service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)

	if s.seedFile != "" {
		if err := s.loadSeedFile(ctx); err != nil {
			return fmt.Errorf("loading seed file: %w", err)
		}
	}
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
	s.logger.Info(ctx, "stopping ranklist service...")

	if s.recordQueue != nil {
		_ = s.recordQueue.Close()
	}
	if s.workerPool != nil {
		s.workerPool.Stop()
	}
	if closer, ok := s.store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	s.started = false
	s.logger.Info(ctx, "ranklist service stopped")
}

// loadSeedFile ingests a parsed-results JSON file directly into the store,
// bypassing the queue so the data is queryable before the server accepts
// traffic. Invalid records are skipped and logged.
func (s *Service) loadSeedFile(ctx context.Context) error {
	data, err := os.ReadFile(s.seedFile)
	if err != nil {
		return fmt.Errorf("reading %s: %w", s.seedFile, err)
	}
	var records []model.StudentRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("parsing %s: %w", s.seedFile, err)
	}

	var loaded, skipped int
	for _, rec := range records {
		if rec.RollNo == "" || s.deduper.SeenAndRecord(ctx, rec.RollNo) {
			skipped++
			continue
		}
		if _, err := s.store.Put(ctx, rec); err != nil {
			s.deduper.Unrecord(ctx, rec.RollNo)
			skipped++
			continue
		}
		loaded++
	}
	s.logger.Info(ctx, "seed data loaded",
		logger.String("file", s.seedFile),
		logger.Int("loaded", loaded),
		logger.Int("skipped", skipped),
	)
	return nil
}

// SubmitOutcome reports what happened to one batch of submitted records.
type SubmitOutcome struct {
	Accepted   int      `json:"accepted"`
	Duplicates int      `json:"duplicates"`
	Rejected   []string `json:"rejected,omitempty"`
}

// SubmitRecords queues a batch of raw records for ingestion. Records whose
// roll number was already seen count as duplicates; a full queue rolls back
// the seen mark and reports backpressure via ErrBackpressure.
func (s *Service) SubmitRecords(ctx context.Context, records []model.StudentRecord) (SubmitOutcome, error) {
	var out SubmitOutcome
	for _, rec := range records {
		if rec.RollNo == "" {
			out.Rejected = append(out.Rejected, rec.RollNo)
			metrics.RecordRejected()
			continue
		}
		if s.deduper.SeenAndRecord(ctx, rec.RollNo) {
			out.Duplicates++
			metrics.RecordDuplicate()
			continue
		}
		if !s.recordQueue.Enqueue(ctx, rec) {
			s.deduper.Unrecord(ctx, rec.RollNo)
			return out, fmt.Errorf("%w: record %s not queued", ErrBackpressure, rec.RollNo)
		}
		out.Accepted++
	}
	return out, nil
}

// Ranklist evaluates a filtered, ranked query over the current cohort.
func (s *Service) Ranklist(ctx context.Context, f query.Filter, metric rank.Metric, order rank.Order) (types.Ranklist, error) {
	start := time.Now()
	defer func() {
		metrics.RecordQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	records, err := s.store.List(ctx)
	if err != nil {
		metrics.RecordQueryError()
		return types.Ranklist{}, fmt.Errorf("listing records: %w", err)
	}

	res, err := s.engine.Query(records, f, metric, order)
	if err != nil {
		metrics.RecordQueryError()
		return types.Ranklist{}, err
	}
	metrics.RecordRanklistQuery(string(metric))

	out := types.Ranklist{
		Total:         res.Count,
		AverageMetric: res.AverageMetric,
		Excluded:      res.Excluded,
		Skipped:       res.Skipped,
		Entries:       make([]types.Entry, len(res.Ranked)),
	}
	for i, r := range res.Ranked {
		out.Entries[i] = toEntry(r)
	}
	if res.TopPerformer != nil {
		top := toEntry(*res.TopPerformer)
		out.TopPerformer = &top
	}
	return out, nil
}

// StudentDetail is the per-student view incl. subject scores.
type StudentDetail struct {
	types.Entry
	Programme string               `json:"programme,omitempty"`
	MaxMarks  float64              `json:"max_marks"`
	Subjects  []model.SubjectScore `json:"subjects"`
}

// Student returns the detail view for one roll number.
// The derived metrics are recomputed on the fly, same as in ranklists.
func (s *Service) Student(ctx context.Context, rollNo string) (StudentDetail, error) {
	rec, err := s.store.Get(ctx, rollNo)
	if err != nil {
		return StudentDetail{}, err
	}

	res, err := s.engine.Query([]model.StudentRecord{rec}, query.Filter{}, rank.MetricSGPA, rank.OrderDesc)
	if err != nil || len(res.Ranked) == 0 {
		// Record carries no sgpa; fall back to a marks-based pass.
		res, err = s.engine.Query([]model.StudentRecord{rec}, query.Filter{}, rank.MetricTotalMarks, rank.OrderDesc)
		if err != nil {
			return StudentDetail{}, err
		}
	}
	if len(res.Ranked) == 0 {
		return StudentDetail{}, fmt.Errorf("%w: %s", repository.ErrNotFound, rollNo)
	}

	entry := toEntry(res.Ranked[0])
	entry.Rank = 0 // a single-record pass carries no meaningful rank
	return StudentDetail{
		Entry:     entry,
		Programme: rec.Programme,
		MaxMarks:  rec.MaxMarks,
		Subjects:  rec.Subjects,
	}, nil
}

// FilterOptions is the vocabulary the browser view builds its selects from.
type FilterOptions struct {
	Branches      []model.Branch `json:"branches"`
	Semesters     []string       `json:"semesters"`
	Batches       []string       `json:"batches"`
	TotalStudents int            `json:"total_students"`
}

// Filters returns the available filter values over the current cohort.
// Batches sort newest first, matching the published ranklist UI.
func (s *Service) Filters(ctx context.Context) (FilterOptions, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return FilterOptions{}, fmt.Errorf("listing records: %w", err)
	}

	semSet := make(map[string]struct{})
	batchSet := make(map[string]struct{})
	for _, rec := range records {
		if rec.Semester != "" {
			semSet[rec.Semester] = struct{}{}
		}
		if rec.Batch != "" {
			batchSet[rec.Batch] = struct{}{}
		}
	}

	out := FilterOptions{
		Branches:      model.AllBranches(),
		Semesters:     sortedKeys(semSet, false),
		Batches:       sortedKeys(batchSet, true),
		TotalStudents: len(records),
	}
	return out, nil
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
	if s.started {
		queueLen := s.recordQueue.Len(ctx)
		total := s.store.Count(ctx)
		stats["queueLength"] = queueLen
		stats["totalStudents"] = total

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateStoreRecords(total)
		metrics.UpdateWorkerCount(s.workerCount)
	}
	return stats
}

// QueueLen returns the current depth of the ingest queue. Used by tooling
// that waits for a submitted batch to drain.
func (s *Service) QueueLen(ctx context.Context) int {
	return s.recordQueue.Len(ctx)
}

func toEntry(r rank.Ranked) types.Entry {
	b, ok := model.BranchByShort(r.Branch)
	if !ok {
		b = model.UnknownBranch
	}
	return types.Entry{
		Rank:       r.Rank,
		RollNo:     r.RollNo,
		Name:       r.Name,
		Branch:     r.Branch,
		BranchName: b.Name,
		Semester:   r.Semester,
		Batch:      r.Batch,
		SGPA:       r.SGPA,
		Percentage: r.Percentage,
		TotalMarks: r.TotalMarks,
		Credits:    r.Credits,
	}
}

func sortedKeys(set map[string]struct{}, reverse bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if reverse {
		for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
			keys[i], keys[j] = keys[j], keys[i]
		}
	}
	return keys
}
