package dispatch

import (
	"context"
	"slices"
	"sync"

	"go.trai.ch/swcache/internal/core/domain"
	"go.trai.ch/swcache/internal/core/ports"
)

// Scheduler records sync registrations and runs them when connectivity returns.
// Registrations for the same tag coalesce.
type Scheduler struct {
	logger ports.Logger

	mu      sync.Mutex
	pending map[domain.SyncTag]struct{}
	run     func(ctx context.Context, tag domain.SyncTag) error
	running sync.Mutex
}

// NewScheduler creates an unbound Scheduler. It starts running tags once a Dispatcher binds it.
func NewScheduler(logger ports.Logger) *Scheduler {
	return &Scheduler{
		logger:  logger,
		pending: make(map[domain.SyncTag]struct{}),
	}
}

func (s *Scheduler) bind(run func(ctx context.Context, tag domain.SyncTag) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.run = run
}

// Register marks tag as pending.
func (s *Scheduler) Register(_ context.Context, tag domain.SyncTag) error {
	if !KnownSyncTag(tag) {
		return domain.ErrUnknownSyncTag
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[tag] = struct{}{}
	return nil
}

// Pending lists the pending tags in a stable order.
func (s *Scheduler) Pending() []domain.SyncTag {
	s.mu.Lock()
	defer s.mu.Unlock()
	tags := make([]domain.SyncTag, 0, len(s.pending))
	for tag := range s.pending {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}

// RunPending runs every pending tag once. Tags that fail stay pending for the next attempt.
// It returns the tags that completed.
func (s *Scheduler) RunPending(ctx context.Context) []domain.SyncTag {
	s.running.Lock()
	defer s.running.Unlock()

	s.mu.Lock()
	run := s.run
	if run == nil {
		s.mu.Unlock()
		return nil
	}
	tags := make([]domain.SyncTag, 0, len(s.pending))
	for tag := range s.pending {
		tags = append(tags, tag)
	}
	clear(s.pending)
	s.mu.Unlock()
	slices.Sort(tags)

	var done []domain.SyncTag
	for _, tag := range tags {
		if err := run(ctx, tag); err != nil {
			s.logger.Error(err)
			s.mu.Lock()
			s.pending[tag] = struct{}{}
			s.mu.Unlock()
			continue
		}
		s.logger.Info("sync completed: " + string(tag))
		done = append(done, tag)
	}
	return done
}
