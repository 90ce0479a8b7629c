// Package dispatch routes client commands and sync tags to their handlers.
package dispatch

import (
	"context"
	"encoding/json"

	"go.trai.ch/swcache/internal/core/domain"
	"go.trai.ch/swcache/internal/core/ports"
	"go.trai.ch/zerr"
)

// Lifecycle is the part of the lifecycle manager commands act on.
type Lifecycle interface {
	Version() domain.CacheVersion
	SkipWaiting(ctx context.Context) error
	Add(ctx context.Context, rawURL string) error
	Info(ctx context.Context) (domain.CacheInfo, error)
	Clear(ctx context.Context, all bool) ([]string, error)
	Refresh(ctx context.Context) (int, error)
}

// ActionQueue is the offline action queue.
type ActionQueue interface {
	Enqueue(ctx context.Context, action domain.QueuedAction) (domain.QueuedAction, error)
	Flush(ctx context.Context) (domain.SyncResult, error)
}

// ProgressStore is the progress backup slot.
type ProgressStore interface {
	Save(ctx context.Context, data json.RawMessage) (domain.ProgressBackup, error)
	Report(ctx context.Context) (bool, error)
}

type commandHandler func(ctx context.Context, d *Dispatcher, cmd domain.Command) (*domain.Message, error)

type syncHandler func(ctx context.Context, d *Dispatcher) error

var commandHandlers = map[domain.CommandType]commandHandler{
	domain.CommandSkipWaiting:        handleSkipWaiting,
	domain.CommandCacheAsset:         handleCacheAsset,
	domain.CommandGetCacheInfo:       handleGetCacheInfo,
	domain.CommandQueueOfflineAction: handleQueueOfflineAction,
	domain.CommandClearCache:         handleClearCache,
	domain.CommandGetVersion:         handleGetVersion,
	domain.CommandBackupProgress:     handleBackupProgress,
}

var syncHandlers = map[domain.SyncTag]syncHandler{
	domain.SyncBackground:    syncBackground,
	domain.SyncContentUpdate: syncContentUpdate,
}

// Dispatcher executes commands and sync tags.
type Dispatcher struct {
	lifecycle Lifecycle
	queue     ActionQueue
	backup    ProgressStore
	logger    ports.Logger
}

// New creates a Dispatcher and binds sched to its sync table.
func New(lifecycle Lifecycle, queue ActionQueue, backup ProgressStore, sched *Scheduler, logger ports.Logger) *Dispatcher {
	d := &Dispatcher{
		lifecycle: lifecycle,
		queue:     queue,
		backup:    backup,
		logger:    logger,
	}
	if sched != nil {
		sched.bind(d.Sync)
	}
	return d
}

// Handle runs cmd and returns its reply, or nil when the command has none.
func (d *Dispatcher) Handle(ctx context.Context, cmd domain.Command) (*domain.Message, error) {
	h, ok := commandHandlers[cmd.Type]
	if !ok {
		return nil, domain.ErrUnknownCommand
	}
	reply, err := h(ctx, d, cmd)
	if err != nil {
		d.logger.Error(zerr.With(err, "command", string(cmd.Type)))
		return nil, err
	}
	return reply, nil
}

// Reply runs cmd and always produces a message: the reply, an ERROR message, or nil when the
// command succeeded without a reply.
func (d *Dispatcher) Reply(ctx context.Context, cmd domain.Command) *domain.Message {
	reply, err := d.Handle(ctx, cmd)
	if err != nil {
		msg := domain.ErrorMessage(err)
		return &msg
	}
	return reply
}

// Sync runs the job registered for tag.
func (d *Dispatcher) Sync(ctx context.Context, tag domain.SyncTag) error {
	h, ok := syncHandlers[tag]
	if !ok {
		return domain.ErrUnknownSyncTag
	}
	return h(ctx, d)
}

// KnownSyncTag reports whether tag has a handler.
func KnownSyncTag(tag domain.SyncTag) bool {
	_, ok := syncHandlers[tag]
	return ok
}

func handleSkipWaiting(ctx context.Context, d *Dispatcher, _ domain.Command) (*domain.Message, error) {
	return nil, d.lifecycle.SkipWaiting(ctx)
}

func handleCacheAsset(ctx context.Context, d *Dispatcher, cmd domain.Command) (*domain.Message, error) {
	if cmd.URL == "" {
		return nil, domain.ErrInvalidCommand
	}
	return nil, d.lifecycle.Add(ctx, cmd.URL)
}

func handleGetCacheInfo(ctx context.Context, d *Dispatcher, _ domain.Command) (*domain.Message, error) {
	info, err := d.lifecycle.Info(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.Message{Type: domain.MessageCacheInfo, Version: info.Version, Info: &info}, nil
}

func handleQueueOfflineAction(ctx context.Context, d *Dispatcher, cmd domain.Command) (*domain.Message, error) {
	if cmd.Action == nil {
		return nil, domain.ErrInvalidCommand
	}
	queued, err := d.queue.Enqueue(ctx, *cmd.Action)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(queued)
	if err != nil {
		return nil, err
	}
	return &domain.Message{Type: domain.MessageAcknowledged, Data: data}, nil
}

func handleClearCache(ctx context.Context, d *Dispatcher, _ domain.Command) (*domain.Message, error) {
	deleted, err := d.lifecycle.Clear(ctx, false)
	if err != nil {
		return nil, err
	}
	for _, name := range deleted {
		d.logger.Info("cleared cache " + name)
	}
	return nil, nil
}

func handleGetVersion(_ context.Context, d *Dispatcher, _ domain.Command) (*domain.Message, error) {
	return &domain.Message{Type: domain.MessageVersion, Version: d.lifecycle.Version().String()}, nil
}

func handleBackupProgress(ctx context.Context, d *Dispatcher, cmd domain.Command) (*domain.Message, error) {
	_, err := d.backup.Save(ctx, cmd.Data)
	return nil, err
}

// syncBackground flushes the offline queue, then surfaces any progress backup.
func syncBackground(ctx context.Context, d *Dispatcher) error {
	res, err := d.queue.Flush(ctx)
	if err != nil {
		return err
	}
	if res.Failed() > 0 {
		d.logger.Warn("background sync finished with failures")
	}
	if _, err := d.backup.Report(ctx); err != nil {
		return err
	}
	return nil
}

func syncContentUpdate(ctx context.Context, d *Dispatcher) error {
	_, err := d.lifecycle.Refresh(ctx)
	return err
}
