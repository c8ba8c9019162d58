package target_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helionav/starcharts/internal/target"
	"github.com/helionav/starcharts/internal/waypoint"
	"github.com/helionav/starcharts/pkg/core"
)

// spyComputer records every call the bridge makes.
type spyComputer struct {
	setTargets  []*core.ObjectRecord
	setVirtuals []*core.Waypoint
	clears      int
	current     string
}

func (c *spyComputer) SetTarget(rec *core.ObjectRecord) {
	c.setTargets = append(c.setTargets, rec)
	c.current = rec.ID
}

func (c *spyComputer) SetVirtualTarget(wp *core.Waypoint) {
	c.setVirtuals = append(c.setVirtuals, wp)
	c.current = wp.ID
}

func (c *spyComputer) ClearTarget() {
	c.clears++
	c.current = ""
}

func (c *spyComputer) CurrentTargetID() string { return c.current }

type stubCatalog struct {
	records map[string]*core.ObjectRecord
}

func (s *stubCatalog) Get(id string) *core.ObjectRecord {
	return s.records[core.CanonicalID(id)]
}

func newBridge(t *testing.T) (*target.Bridge, *spyComputer, *waypoint.Registry, *[]string) {
	t.Helper()

	cat := &stubCatalog{records: map[string]*core.ObjectRecord{
		"A0_SOL":    {ID: "A0_SOL", SectorID: "A0", Type: core.TypeStar, DisplayName: "Sol"},
		"A0_EUROPA": {ID: "A0_EUROPA", SectorID: "A0", Type: core.TypeMoon, DisplayName: "Europa"},
	}}
	reg := waypoint.NewRegistry(cat)
	computer := &spyComputer{}

	discovered := &[]string{}
	bridge := target.NewBridge(target.Dependencies{
		Catalog:   cat,
		Waypoints: reg,
		Computer:  computer,
		Log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Discover: func(rec *core.ObjectRecord) {
			*discovered = append(*discovered, rec.ID)
		},
	})
	return bridge, computer, reg, discovered
}

func TestSelectByID_CatalogHit(t *testing.T) {
	bridge, computer, _, discovered := newBridge(t)

	require.NoError(t, bridge.SelectByID("a0_europa"))

	require.Len(t, computer.setTargets, 1)
	assert.Equal(t, "A0_EUROPA", computer.setTargets[0].ID)
	assert.Empty(t, computer.setVirtuals)
	assert.Equal(t, "A0_EUROPA", bridge.CurrentTargetID())

	// selecting a catalog object auto-discovers it
	assert.Equal(t, []string{"A0_EUROPA"}, *discovered)
}

func TestSelectByID_WaypointHit(t *testing.T) {
	bridge, computer, reg, discovered := newBridge(t)
	require.NoError(t, reg.Add(core.Waypoint{ID: "WP1", Position: core.Vector3{X: 100}}))

	require.NoError(t, bridge.SelectByID("wp1"))

	require.Len(t, computer.setVirtuals, 1)
	assert.Equal(t, "WP1", computer.setVirtuals[0].ID)
	assert.Empty(t, computer.setTargets)
	assert.Empty(t, *discovered, "waypoints never discover")
}

func TestSelectByID_UnknownTarget(t *testing.T) {
	bridge, computer, _, _ := newBridge(t)

	err := bridge.SelectByID("A0_NOPE")
	assert.ErrorIs(t, err, target.ErrUnknownTarget)
	assert.Empty(t, computer.setTargets)
	assert.Empty(t, computer.setVirtuals)
	assert.Equal(t, 0, computer.clears)
}

func TestSelectByID_CatalogShadowsNothing(t *testing.T) {
	// catalog resolution wins; waypoint ids cannot shadow catalog ids
	// because the registry rejects collisions at Add time
	_, _, reg, _ := newBridge(t)
	err := reg.Add(core.Waypoint{ID: "A0_SOL"})
	assert.ErrorIs(t, err, waypoint.ErrInvalidWaypoint)
}

func TestSelectByID_ReplacesPreviousSelection(t *testing.T) {
	bridge, computer, reg, _ := newBridge(t)
	require.NoError(t, reg.Add(core.Waypoint{ID: "WP1"}))

	require.NoError(t, bridge.SelectByID("A0_SOL"))
	require.NoError(t, bridge.SelectByID("WP1"))

	assert.Equal(t, "WP1", bridge.CurrentTargetID())
	assert.Len(t, computer.setTargets, 1)
	assert.Len(t, computer.setVirtuals, 1)
}

func TestClearVirtual_CurrentTarget(t *testing.T) {
	bridge, computer, reg, _ := newBridge(t)
	require.NoError(t, reg.Add(core.Waypoint{ID: "WP1", Position: core.Vector3{X: 100}}))
	require.NoError(t, bridge.SelectByID("WP1"))

	bridge.ClearVirtual("WP1")

	assert.Equal(t, "", bridge.CurrentTargetID())
	assert.Equal(t, 1, computer.clears)
	assert.Nil(t, reg.Get("WP1"))
}

func TestClearVirtual_NotCurrentTarget(t *testing.T) {
	bridge, computer, reg, _ := newBridge(t)
	require.NoError(t, reg.Add(core.Waypoint{ID: "WP1"}))
	require.NoError(t, bridge.SelectByID("A0_SOL"))

	bridge.ClearVirtual("WP1")

	assert.Equal(t, "A0_SOL", bridge.CurrentTargetID(), "unrelated target untouched")
	assert.Equal(t, 0, computer.clears)
	assert.Nil(t, reg.Get("WP1"))
}

func TestClearVirtual_UnknownIDIsNoop(t *testing.T) {
	bridge, computer, _, _ := newBridge(t)
	bridge.ClearVirtual("WP_MISSING")
	assert.Equal(t, 0, computer.clears)
}

func TestCurrentTargetID_ReflectsExternalCycling(t *testing.T) {
	bridge, computer, _, _ := newBridge(t)

	// the host cycles targets without going through the bridge
	computer.current = "a0_sol"
	assert.Equal(t, "A0_SOL", bridge.CurrentTargetID())
}

func TestSyncExternal_AutoDiscoversCatalogTarget(t *testing.T) {
	bridge, computer, _, discovered := newBridge(t)

	computer.current = "A0_EUROPA"
	bridge.SyncExternal()
	assert.Equal(t, []string{"A0_EUROPA"}, *discovered)

	// non-catalog ids are ignored
	computer.current = "WP1"
	bridge.SyncExternal()
	assert.Len(t, *discovered, 1)

	computer.current = ""
	bridge.SyncExternal()
	assert.Len(t, *discovered, 1)
}
