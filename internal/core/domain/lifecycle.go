package domain

// LifecycleState is the state of the cache generation owned by this process.
type LifecycleState uint8

const (
	// StateInstalling is the initial state while assets are precached.
	StateInstalling LifecycleState = iota
	// StateWaiting means install finished and activation has not been triggered yet.
	StateWaiting
	// StateActivating means old versions are being removed.
	StateActivating
	// StateActive is terminal.
	StateActive
)

// String returns the state name.
func (s LifecycleState) String() string {
	switch s {
	case StateInstalling:
		return "installing"
	case StateWaiting:
		return "waiting"
	case StateActivating:
		return "activating"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}

// CanTransition reports whether next directly follows s.
func (s LifecycleState) CanTransition(next LifecycleState) bool {
	return next == s+1 && next <= StateActive
}
