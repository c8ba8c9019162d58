package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/helionav/starcharts/pkg/core"
)

func TestContext_Empty(t *testing.T) {
	ctx := NewContext()

	assert.Nil(t, ctx.Get())
	assert.Empty(t, ctx.SectorID())
	assert.Empty(t, ctx.StarName())
	assert.False(t, ctx.Active())
	assert.True(t, ctx.EnteredAt().IsZero())
}

func TestContext_SetAndClear(t *testing.T) {
	ctx := NewContext()
	sector := &core.Sector{ID: "A0", Name: "Sol"}
	entered := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	ctx.Set(sector, "Sol", entered)

	assert.Same(t, sector, ctx.Get())
	assert.Equal(t, "A0", ctx.SectorID())
	assert.Equal(t, "Sol", ctx.StarName())
	assert.Equal(t, entered, ctx.EnteredAt())
	assert.True(t, ctx.Active())

	ctx.Clear()

	assert.Nil(t, ctx.Get())
	assert.False(t, ctx.Active())
	assert.Empty(t, ctx.StarName())
}

func TestContext_SetReplaces(t *testing.T) {
	ctx := NewContext()
	ctx.Set(&core.Sector{ID: "A0"}, "Sol", time.Now())
	ctx.Set(&core.Sector{ID: "B1"}, "Alpha A", time.Now())

	assert.Equal(t, "B1", ctx.SectorID())
	assert.Equal(t, "Alpha A", ctx.StarName())
}
