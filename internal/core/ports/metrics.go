package ports

import (
	"time"

	"go.trai.ch/swcache/internal/core/domain"
)

// Metrics records operational counters.
//
//go:generate mockgen -source=metrics.go -destination=mocks/mock_metrics.go -package=mocks
type Metrics interface {
	// ObserveResolve records one routed request. An empty source means the request failed.
	ObserveResolve(strategy domain.Strategy, source domain.Source, elapsed time.Duration)
	// ObserveSyncAction records the replay of one queued action.
	ObserveSyncAction(ok bool)
}
