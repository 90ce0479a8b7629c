package browser

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/swcache/internal/core/ports"
)

// NodeID is the unique identifier for the window opener Graft node.
const NodeID graft.ID = "adapter.browser"

func init() {
	graft.Register(graft.Node[ports.WindowOpener]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.WindowOpener, error) {
			return New(), nil
		},
	})
}
