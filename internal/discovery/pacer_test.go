package discovery_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/helionav/starcharts/internal/discovery"
	"github.com/helionav/starcharts/pkg/core"
)

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		objType core.ObjectType
		want    core.NotificationLevel
	}{
		{core.TypeStar, core.LevelMajor},
		{core.TypePlanet, core.LevelMajor},
		{core.TypeStation, core.LevelMajor},
		{core.TypeMoon, core.LevelMinor},
		{core.TypeBeacon, core.LevelMinor},
		{core.TypeAsteroid, core.LevelBackground},
		{core.TypeDebris, core.LevelBackground},
		{core.TypeUnknown, core.LevelBackground},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, discovery.CategoryOf(tt.objType), string(tt.objType))
	}
}

func TestShouldNotify_MajorHasNoCooldown(t *testing.T) {
	pacer := discovery.NewPacer(discovery.DefaultCooldowns())
	rec := &core.ObjectRecord{ID: "A0_EARTH", Type: core.TypePlanet}
	now := time.Now()

	assert.True(t, pacer.ShouldNotify(rec, now))
	assert.True(t, pacer.ShouldNotify(rec, now))
}

func TestShouldNotify_MinorCooldown(t *testing.T) {
	pacer := discovery.NewPacer(discovery.DefaultCooldowns())
	rec := &core.ObjectRecord{ID: "A0_EUROPA", Type: core.TypeMoon}
	t0 := time.Now()

	assert.True(t, pacer.ShouldNotify(rec, t0))
	assert.False(t, pacer.ShouldNotify(rec, t0.Add(5*time.Second)))
	assert.True(t, pacer.ShouldNotify(rec, t0.Add(10*time.Second)))
}

func TestShouldNotify_BackgroundCooldown(t *testing.T) {
	pacer := discovery.NewPacer(discovery.DefaultCooldowns())
	rec := &core.ObjectRecord{ID: "A0_BELT1", Type: core.TypeAsteroid}
	t0 := time.Now()

	assert.True(t, pacer.ShouldNotify(rec, t0))
	assert.False(t, pacer.ShouldNotify(rec, t0.Add(29*time.Second)))
	assert.True(t, pacer.ShouldNotify(rec, t0.Add(30*time.Second)))
}

func TestShouldNotify_CooldownIsPerID(t *testing.T) {
	pacer := discovery.NewPacer(discovery.DefaultCooldowns())
	now := time.Now()

	assert.True(t, pacer.ShouldNotify(&core.ObjectRecord{ID: "A0_EUROPA", Type: core.TypeMoon}, now))
	assert.True(t, pacer.ShouldNotify(&core.ObjectRecord{ID: "A0_IO", Type: core.TypeMoon}, now))
}

func TestBurstWindow_SuppressesEverything(t *testing.T) {
	pacer := discovery.NewPacer(discovery.DefaultCooldowns())
	star := &core.ObjectRecord{ID: "A0_SOL", Type: core.TypeStar}
	t0 := time.Now()

	pacer.StartBurst(t0, 10*time.Second)

	assert.True(t, pacer.BurstActive(t0))
	assert.False(t, pacer.ShouldNotify(star, t0), "major suppressed during burst")
	assert.False(t, pacer.ShouldNotify(star, t0.Add(9*time.Second)))

	// window expired, normal pacing resumes
	after := t0.Add(10 * time.Second)
	assert.False(t, pacer.BurstActive(after))
	assert.True(t, pacer.ShouldNotify(star, after))
}

func TestBurstWindow_SuppressedNotificationNotLedgered(t *testing.T) {
	pacer := discovery.NewPacer(discovery.DefaultCooldowns())
	moon := &core.ObjectRecord{ID: "A0_EUROPA", Type: core.TypeMoon}
	t0 := time.Now()

	pacer.StartBurst(t0, 10*time.Second)
	assert.False(t, pacer.ShouldNotify(moon, t0))

	// the suppressed attempt must not start the cooldown
	assert.True(t, pacer.ShouldNotify(moon, t0.Add(11*time.Second)))
}

func TestReset(t *testing.T) {
	pacer := discovery.NewPacer(discovery.DefaultCooldowns())
	moon := &core.ObjectRecord{ID: "A0_EUROPA", Type: core.TypeMoon}
	t0 := time.Now()

	pacer.StartBurst(t0, 10*time.Second)
	pacer.Reset()

	assert.False(t, pacer.BurstActive(t0))
	assert.True(t, pacer.ShouldNotify(moon, t0))
}
