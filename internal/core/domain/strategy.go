package domain

// Strategy is the fetch-handling policy selected for a request.
type Strategy uint8

const (
	// StrategyBypass sends the request straight to the network and never touches the cache.
	StrategyBypass Strategy = iota
	// StrategyAudioFallback serves audio cache-first with a silent fallback.
	StrategyAudioFallback
	// StrategyCacheFirst serves images cache-first with a background refresh.
	StrategyCacheFirst
	// StrategyNetworkFirst serves HTML from the network, falling back to the cache.
	StrategyNetworkFirst
	// StrategyStaleWhileRevalidate serves allow-listed CDN resources from cache while refreshing.
	StrategyStaleWhileRevalidate
	// StrategyDefault is cache-first with origin/allow-list gated writes.
	StrategyDefault

	strategyCount
)

var strategyNames = [strategyCount]string{
	StrategyBypass:               "bypass",
	StrategyAudioFallback:        "audio-fallback",
	StrategyCacheFirst:           "cache-first",
	StrategyNetworkFirst:         "network-first",
	StrategyStaleWhileRevalidate: "stale-while-revalidate",
	StrategyDefault:              "default",
}

// String returns the strategy tag.
func (s Strategy) String() string {
	if s >= strategyCount {
		return "unknown"
	}
	return strategyNames[s]
}

// Strategies returns every strategy in declaration order.
func Strategies() []Strategy {
	out := make([]Strategy, 0, strategyCount)
	for s := range strategyCount {
		out = append(out, s)
	}
	return out
}

// StrategyCount is the number of strategies.
const StrategyCount = int(strategyCount)
