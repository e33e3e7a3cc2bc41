package server

import "time"

// timestampLayout matches the millisecond UTC format SQLite's strftime
// assigns to submitted_at, so clock-generated instants compare correctly
// against stored ones as strings.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// Clock supplies the current time. Injected so potential-rank previews and
// "today" resolution are deterministic in tests.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// NewClock returns the wall clock.
func NewClock() Clock { return realClock{} }

func timestamp(c Clock) string {
	return c.Now().UTC().Format(timestampLayout)
}

func today(c Clock) string {
	return c.Now().UTC().Format("2006-01-02")
}
