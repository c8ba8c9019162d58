package clock

import "time"

// Clock is an abstraction for time reads, allowing time to be mocked in tests.
type Clock interface {
	Now() time.Time
}

// Real implements Clock using the system time.
type Real struct{}

// Now returns the current system time in UTC.
func (Real) Now() time.Time {
	return time.Now().UTC()
}

// NewReal creates a system-backed clock.
func NewReal() Clock {
	return Real{}
}

// Mock implements Clock with a controllable time for testing.
type Mock struct {
	current time.Time
}

// NewMock creates a Mock starting at the given time.
// A zero time starts the mock at the current system time.
func NewMock(start time.Time) *Mock {
	if start.IsZero() {
		start = time.Now().UTC()
	}
	return &Mock{current: start}
}

// Now returns the mock's current time.
func (m *Mock) Now() time.Time {
	return m.current
}

// Advance moves the mock clock forward by the given duration.
func (m *Mock) Advance(d time.Duration) {
	m.current = m.current.Add(d)
}

// Set sets the mock clock to a specific time.
func (m *Mock) Set(t time.Time) {
	m.current = t
}
