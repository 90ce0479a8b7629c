// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/swcache/internal/adapters/browser"
	_ "go.trai.ch/swcache/internal/adapters/config"
	_ "go.trai.ch/swcache/internal/adapters/logger"
	_ "go.trai.ch/swcache/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/swcache/internal/app"
)
