package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cesargomez89/requestline/internal/constants"
	"github.com/cesargomez89/requestline/internal/domain"
	"github.com/cesargomez89/requestline/internal/enrichment"
	"github.com/cesargomez89/requestline/internal/logger"
	"github.com/cesargomez89/requestline/internal/store"
)

const persistTimeout = 5 * time.Second

// Enricher runs one background task per submission: look up metadata,
// update the row in place, then announce the change.
type Enricher struct {
	baseCtx  context.Context
	repo     *store.DB
	provider enrichment.Provider
	events   Publisher
	logger   *logger.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	timeout  time.Duration
	mu       sync.Mutex
	closed   bool
}

func NewEnricher(repo *store.DB, provider enrichment.Provider, events Publisher, timeout time.Duration, log *logger.Logger) *Enricher {
	if provider == nil {
		provider = enrichment.Noop{}
	}
	if timeout <= 0 {
		timeout = constants.DefaultEnrichTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Enricher{
		baseCtx:  ctx,
		cancel:   cancel,
		repo:     repo,
		provider: provider,
		events:   publisherOrNop(events),
		timeout:  timeout,
		logger:   log.WithComponent("enricher"),
	}
}

// Enabled reports whether a real provider is configured.
func (e *Enricher) Enabled() bool {
	return e.provider.Name() != constants.ProviderNone
}

// Enqueue starts enrichment for sub and returns the task id. It returns ""
// when enrichment is disabled or the enricher is shutting down.
func (e *Enricher) Enqueue(sub domain.Submission) string {
	if !e.Enabled() {
		return ""
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		e.logger.Warn("Enrichment skipped during shutdown", "submission_id", sub.ID)
		return ""
	}
	e.wg.Add(1)
	e.mu.Unlock()

	taskID := uuid.New().String()
	go e.run(taskID, sub)
	return taskID
}

func (e *Enricher) run(taskID string, sub domain.Submission) {
	defer e.wg.Done()

	log := e.logger.WithSession(sub.SessionID).WithTask(taskID, sub.ID)
	defer func() {
		if r := recover(); r != nil {
			log.Error("Enrichment task panicked", "panic", r)
		}
	}()

	start := time.Now()
	res := e.lookup(sub)

	ctx, cancel := context.WithTimeout(e.baseCtx, persistTimeout)
	defer cancel()

	updated, err := e.repo.ApplyEnrichment(ctx, sub.ID, res)
	if err != nil {
		log.Error("Failed to store enrichment", "error", err)
		return
	}
	if !updated {
		log.Debug("Submission gone or already enriched")
		return
	}

	fresh, err := e.repo.GetSubmission(ctx, sub.SessionID, sub.ID)
	if err != nil {
		log.Warn("Failed to reload enriched submission", "error", err)
		return
	}

	log.Info("Submission enriched",
		"provider", e.provider.Name(),
		"matched", res.Matched,
		"duration", time.Since(start),
	)

	ev := newEvent(domain.EventSubmissionEnriched, sub.SessionID)
	ev.Submission = fresh
	e.events.Publish(ev)
}

func (e *Enricher) lookup(sub domain.Submission) enrichment.Result {
	ctx, cancel := context.WithTimeout(e.baseCtx, e.timeout)
	defer cancel()

	if sub.SpotifyID != nil && *sub.SpotifyID != "" {
		return e.provider.LookupByID(ctx, *sub.SpotifyID, sub.SongName, sub.Artist)
	}
	return e.provider.Lookup(ctx, sub.SongName, sub.Artist)
}

// Shutdown stops accepting work and waits for running tasks. When ctx ends
// first, running tasks are cancelled and ctx.Err() is returned.
func (e *Enricher) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.cancel()
		return nil
	case <-ctx.Done():
		e.cancel()
		<-done
		return ctx.Err()
	}
}
