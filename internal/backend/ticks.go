package backend

import "time"

// Ticks is a backend timestamp: an integer count of nanoseconds since the
// Unix epoch. The client divides by TicksPerMillisecond for display; it never
// produces authoritative timestamps itself.
type Ticks int64

// TicksPerMillisecond is the boundary scale factor.
const TicksPerMillisecond = int64(time.Millisecond)

// Millis converts t to a standard millisecond timestamp.
func (t Ticks) Millis() int64 {
	return int64(t) / TicksPerMillisecond
}

// Time converts t to a time.Time.
func (t Ticks) Time() time.Time {
	return time.Unix(0, int64(t))
}

// TicksAt converts a time.Time to backend ticks. Only the dev server should
// need this; real timestamps are backend-assigned.
func TicksAt(ts time.Time) Ticks {
	return Ticks(ts.UnixNano())
}
