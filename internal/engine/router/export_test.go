// export_test.go exports private symbols for white-box testing.
package router

import "time"

// Strategies exposes the dispatch table.
var Strategies = strategies

// SetClock replaces the router clock.
func (r *Router) SetClock(now func() time.Time) {
	r.now = now
}
