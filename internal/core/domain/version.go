package domain

import "strings"

// DefaultCacheVersion is the cache generation used when none is configured.
const DefaultCacheVersion = "study-companion-v1.3.0"

// OfflineDataCacheName names the cache that holds the offline queue and the progress backup.
// It is not a cache version and survives version rollover.
const OfflineDataCacheName = "offline-data"

// Logical keys inside the offline-data cache.
const (
	OfflineQueueKey   = "offline-queue"
	ProgressBackupKey = "progress-backup"
)

// CacheVersion identifies one cache generation.
type CacheVersion string

// String returns the cache name.
func (v CacheVersion) String() string {
	return string(v)
}

// IsCurrent reports whether the named cache belongs to this generation.
func (v CacheVersion) IsCurrent(name string) bool {
	return name == string(v)
}

// IsStale reports whether the named cache is an older or foreign generation that activation
// should delete.
func (v CacheVersion) IsStale(name string) bool {
	return !v.IsCurrent(name) && !IsReservedCache(name)
}

// IsReservedCache reports whether the named cache is owned by something other than the
// lifecycle manager.
func IsReservedCache(name string) bool {
	return strings.EqualFold(name, OfflineDataCacheName)
}
