// export_test.go exports private fields for white-box testing.
package queue

import "time"

// SetClock replaces the queue clock.
func (q *Queue) SetClock(now func() time.Time) {
	q.now = now
}

// SetIDs replaces the id generator.
func (q *Queue) SetIDs(next func() string) {
	q.newID = next
}

// SetClock replaces the backup clock.
func (b *Backup) SetClock(now func() time.Time) {
	b.now = now
}
