package queue

import (
	"context"
	"encoding/json"
	"time"

	"go.trai.ch/swcache/internal/core/domain"
	"go.trai.ch/swcache/internal/core/ports"
)

// Backup is the single-slot progress snapshot. Every Save overwrites the previous one.
type Backup struct {
	blobs  blobStore
	hub    ports.ClientHub
	logger ports.Logger
	now    func() time.Time
}

// NewBackup creates a Backup.
func NewBackup(storage ports.CacheStorage, hub ports.ClientHub, logger ports.Logger) *Backup {
	return &Backup{
		blobs:  blobStore{storage: storage},
		hub:    hub,
		logger: logger,
		now:    time.Now,
	}
}

// Save replaces the stored snapshot with data.
func (b *Backup) Save(ctx context.Context, data json.RawMessage) (domain.ProgressBackup, error) {
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	backup := domain.ProgressBackup{Data: data, Timestamp: b.now().UTC()}
	if err := b.blobs.write(ctx, domain.ProgressBackupKey, backup, backup.Timestamp); err != nil {
		b.logger.Error(err)
		return domain.ProgressBackup{}, err
	}
	return backup, nil
}

// Load returns the stored snapshot.
// Returns nil, nil if nothing was saved.
func (b *Backup) Load(ctx context.Context) (*domain.ProgressBackup, error) {
	var backup domain.ProgressBackup
	found, err := b.blobs.read(ctx, domain.ProgressBackupKey, &backup, domain.ErrBackupCorrupt)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &backup, nil
}

// Report broadcasts PROGRESS_BACKUP_FOUND when a snapshot exists. It reports whether one did.
func (b *Backup) Report(ctx context.Context) (bool, error) {
	return b.report(ctx, func(msg domain.Message) error {
		return b.hub.Broadcast(ctx, msg)
	})
}

// ReportTo sends PROGRESS_BACKUP_FOUND to one client when a snapshot exists.
func (b *Backup) ReportTo(ctx context.Context, clientID string) (bool, error) {
	return b.report(ctx, func(msg domain.Message) error {
		return b.hub.Send(ctx, clientID, msg)
	})
}

func (b *Backup) report(ctx context.Context, send func(domain.Message) error) (bool, error) {
	backup, err := b.Load(ctx)
	if err != nil {
		b.logger.Error(err)
		return false, err
	}
	if backup == nil {
		return false, nil
	}
	if err := send(domain.Message{Type: domain.MessageProgressBackupFound, Data: backup.Data}); err != nil {
		b.logger.Error(err)
		return true, err
	}
	return true, nil
}
