// Package router classifies intercepted requests and resolves them with a fetch strategy.
package router

import (
	"strings"

	"go.trai.ch/swcache/internal/core/domain"
)

var imageExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
	"svg":  true,
	"webp": true,
}

// Selector maps a request to exactly one strategy. It has no side effects.
type Selector struct {
	policy domain.Policy
}

// NewSelector creates a Selector for the given policy.
func NewSelector(policy domain.Policy) Selector {
	return Selector{policy: policy}
}

// Select returns the strategy for req. Rules are checked in priority order.
func (s Selector) Select(req *domain.Request) domain.Strategy {
	if !req.IsGet() || req.URL == nil {
		return domain.StrategyBypass
	}
	if s.isTracking(req) {
		return domain.StrategyBypass
	}

	ext := req.Extension()
	accept := strings.ToLower(req.Accept())

	switch {
	case ext == "mp3" || strings.Contains(accept, "audio") || req.Destination == domain.DestinationAudio:
		return domain.StrategyAudioFallback
	case req.Destination == domain.DestinationImage || imageExtensions[ext]:
		return domain.StrategyCacheFirst
	case req.Destination == domain.DestinationDocument || strings.Contains(accept, "text/html"):
		return domain.StrategyNetworkFirst
	case s.policy.IsCDNHost(req.URL.Hostname()):
		return domain.StrategyStaleWhileRevalidate
	default:
		return domain.StrategyDefault
	}
}

func (s Selector) isTracking(req *domain.Request) bool {
	switch strings.ToLower(req.URL.Scheme) {
	case "http", "https", "":
	default:
		// chrome-extension:, moz-extension: and friends.
		return true
	}
	return s.policy.IsTrackingHost(req.URL.Hostname())
}
