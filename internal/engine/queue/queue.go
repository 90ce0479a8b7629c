// Package queue persists mutations captured while offline and replays them on sync.
package queue

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/swcache/internal/core/domain"
	"go.trai.ch/swcache/internal/core/ports"
	"go.trai.ch/zerr"
)

// Queue is the FIFO offline action queue stored as one JSON array under the offline-queue key.
type Queue struct {
	blobs    blobStore
	fetcher  ports.Fetcher
	hub      ports.ClientHub
	registry ports.SyncRegistrar
	logger   ports.Logger
	metrics  ports.Metrics
	origin   *url.URL
	now      func() time.Time
	newID    func() string

	// mu guards the read-modify-write of the stored array.
	mu sync.Mutex
	// flushMu serializes flushes so that concurrent triggers never replay an action twice.
	flushMu sync.Mutex
}

// New creates a Queue. registry may be nil when no background sync facility exists.
// origin resolves relative action URLs.
func New(
	storage ports.CacheStorage,
	fetcher ports.Fetcher,
	hub ports.ClientHub,
	registry ports.SyncRegistrar,
	logger ports.Logger,
	metrics ports.Metrics,
	origin *url.URL,
) *Queue {
	return &Queue{
		blobs:    blobStore{storage: storage},
		fetcher:  fetcher,
		hub:      hub,
		registry: registry,
		logger:   logger,
		metrics:  metrics,
		origin:   origin,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Enqueue appends action with a fresh id and timestamp and asks for a background sync.
func (q *Queue) Enqueue(ctx context.Context, action domain.QueuedAction) (domain.QueuedAction, error) {
	if action.URL == "" {
		return domain.QueuedAction{}, domain.ErrInvalidAction
	}
	action.ID = q.newID()
	action.Timestamp = q.now().UTC()
	action.Method = action.NormalizedMethod()

	q.mu.Lock()
	actions, err := q.load(ctx)
	if err == nil {
		actions = append(actions, action)
		err = q.save(ctx, actions)
	}
	q.mu.Unlock()
	if err != nil {
		q.logger.Error(err)
		return domain.QueuedAction{}, err
	}

	if q.registry != nil {
		if err := q.registry.Register(ctx, domain.SyncBackground); err != nil {
			q.logger.Error(zerr.Wrap(err, "background sync registration failed"))
		}
	}
	return action, nil
}

// Pending returns the queued actions in insertion order.
func (q *Queue) Pending(ctx context.Context) ([]domain.QueuedAction, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.load(ctx)
}

// Flush replays every queued action in order and then removes all of them, successful or not.
// Failed items are reported in the result, never re-queued. Actions enqueued while the flush
// runs stay queued for the next one.
func (q *Queue) Flush(ctx context.Context) (domain.SyncResult, error) {
	q.flushMu.Lock()
	defer q.flushMu.Unlock()

	batch, err := q.Pending(ctx)
	if err != nil {
		q.logger.Error(err)
		return domain.SyncResult{}, err
	}
	if len(batch) == 0 {
		return domain.SyncResult{}, nil
	}

	q.broadcast(ctx, domain.SyncStartedMessage(len(batch)))

	result := domain.SyncResult{Total: len(batch)}
	for _, action := range batch {
		if err := q.replay(ctx, action); err != nil {
			q.logger.Warn("offline action failed: " + action.URL)
			result.Failures = append(result.Failures, domain.ActionFailure{
				ID:    action.ID,
				URL:   action.URL,
				Error: err.Error(),
			})
			q.metrics.ObserveSyncAction(false)
			continue
		}
		result.Successful++
		q.metrics.ObserveSyncAction(true)
	}

	if err := q.remove(ctx, batch); err != nil {
		q.logger.Error(err)
		return result, err
	}

	q.broadcast(ctx, domain.SyncCompleteMessage(result))
	return result, nil
}

func (q *Queue) replay(ctx context.Context, action domain.QueuedAction) error {
	target, err := url.Parse(action.URL)
	if err != nil {
		return zerr.Wrap(err, domain.ErrInvalidURL.Error())
	}
	if q.origin != nil {
		target = q.origin.ResolveReference(target)
	}

	req := &domain.Request{
		Method: action.NormalizedMethod(),
		URL:    target,
		Header: make(http.Header),
		Body:   action.Payload,
	}
	if len(action.Payload) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := q.fetcher.Fetch(ctx, req)
	if err != nil {
		return err
	}
	if !resp.Successful() {
		return zerr.With(zerr.New("unexpected status"), "status", resp.Status)
	}
	return nil
}

// remove deletes the attempted batch from the stored array.
func (q *Queue) remove(ctx context.Context, batch []domain.QueuedAction) error {
	done := make(map[string]bool, len(batch))
	for _, a := range batch {
		done[a.ID] = true
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	current, err := q.load(ctx)
	if err != nil {
		return err
	}
	rest := current[:0]
	for _, a := range current {
		if !done[a.ID] {
			rest = append(rest, a)
		}
	}
	if len(rest) == 0 {
		return q.blobs.remove(ctx, domain.OfflineQueueKey)
	}
	return q.save(ctx, rest)
}

func (q *Queue) load(ctx context.Context) ([]domain.QueuedAction, error) {
	var actions []domain.QueuedAction
	if _, err := q.blobs.read(ctx, domain.OfflineQueueKey, &actions, domain.ErrQueueCorrupt); err != nil {
		return nil, err
	}
	return actions, nil
}

func (q *Queue) save(ctx context.Context, actions []domain.QueuedAction) error {
	if err := q.blobs.write(ctx, domain.OfflineQueueKey, actions, q.now()); err != nil {
		return errors.Join(domain.ErrQueueWriteFailed, err)
	}
	return nil
}

func (q *Queue) broadcast(ctx context.Context, msg domain.Message) {
	if q.hub == nil {
		return
	}
	if err := q.hub.Broadcast(ctx, msg); err != nil {
		q.logger.Error(err)
	}
}
