package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReal_NowIsUTC(t *testing.T) {
	c := NewReal()
	now := c.Now()

	assert.Equal(t, time.UTC, now.Location())
	assert.WithinDuration(t, time.Now().UTC(), now, time.Second)
}

func TestMock_StartsAtGivenTime(t *testing.T) {
	start := time.Date(2026, 2, 12, 21, 38, 0, 0, time.UTC)
	m := NewMock(start)

	assert.Equal(t, start, m.Now())
}

func TestMock_ZeroStartDefaultsToNow(t *testing.T) {
	m := NewMock(time.Time{})
	assert.WithinDuration(t, time.Now().UTC(), m.Now(), time.Second)
}

func TestMock_Advance(t *testing.T) {
	start := time.Date(2026, 2, 12, 21, 38, 0, 0, time.UTC)
	m := NewMock(start)

	m.Advance(500 * time.Millisecond)
	assert.Equal(t, start.Add(500*time.Millisecond), m.Now())

	m.Advance(30 * time.Second)
	assert.Equal(t, start.Add(30*time.Second+500*time.Millisecond), m.Now())
}

func TestMock_Set(t *testing.T) {
	m := NewMock(time.Date(2026, 2, 12, 21, 38, 0, 0, time.UTC))
	later := time.Date(2026, 2, 13, 8, 0, 0, 0, time.UTC)

	m.Set(later)
	assert.Equal(t, later, m.Now())
}

func TestMock_ImplementsClock(t *testing.T) {
	var _ Clock = (*Mock)(nil)
	var _ Clock = Real{}
}
