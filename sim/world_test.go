package sim

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidlane/nightrunner/core"
	"github.com/voidlane/nightrunner/crash"
	"github.com/voidlane/nightrunner/event"
	"github.com/voidlane/nightrunner/parameter"
)

func TestWorldBootstrap(t *testing.T) {
	w := NewWorld(parameter.Default(), 7)

	assert.Greater(t, w.Stats().SegmentsBuilt, uint64(0))
	assert.Positive(t, w.Arena().Live())

	events := w.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, event.TypeSegmentSpawned, events[0].Type)
}

func TestStepAdvancesPlayer(t *testing.T) {
	tun := parameter.Default()
	w := NewWorld(tun, 11)
	p, ok := w.SpawnAgent(core.RolePlayer, 10, 0)
	require.True(t, ok)

	start := p.TrackDist
	for i := 0; i < 600; i++ {
		w.Step(core.ControlInput{Throttle: 0.8})
	}
	assert.Greater(t, p.TrackDist, start+50)
	assert.GreaterOrEqual(t, p.ForwardVel, tun.SpeedFloor)
	assert.Greater(t, w.gen.Frontier(), p.TrackDist, "generation must stay ahead of the lead")
	assert.Equal(t, uint64(600), w.Stats().Ticks)
}

func TestTrailingWindow(t *testing.T) {
	tun := parameter.Default()
	w := NewWorld(tun, 3)
	p, ok := w.SpawnAgent(core.RolePlayer, 10, 0)
	require.True(t, ok)

	for i := 0; i < 2400; i++ {
		w.Step(core.ControlInput{Throttle: 1})
	}
	require.Greater(t, p.TrackDist, tun.TrailBehind*2, "run long enough to prune")
	assert.Greater(t, w.Stats().SegmentsPruned, uint64(0))

	trail := p.TrackDist - tun.TrailBehind
	for _, h := range w.Hazards() {
		assert.GreaterOrEqual(t, h.TrackDist, trail, "hazards behind the window must be gone")
	}
}

func TestDespawnTrailingTraffic(t *testing.T) {
	tun := parameter.Default()
	w := NewWorld(tun, 19)
	_, ok := w.SpawnAgent(core.RolePlayer, 10, 0)
	require.True(t, ok)
	traffic, ok := w.SpawnAgent(core.RoleTraffic, 5, 1)
	require.True(t, ok)
	w.SetIntent(traffic.ID, core.AutopilotIntent{TargetSpeed: tun.SpeedFloor})

	despawned := false
	for i := 0; i < 3600 && !despawned; i++ {
		w.Step(core.ControlInput{Throttle: 1})
		for _, ev := range w.Events() {
			if ev.Type == event.TypeAgentDespawned && ev.Agent == traffic.ID {
				despawned = true
			}
		}
	}
	require.True(t, despawned, "slow traffic must fall out of the trailing window")
	assert.Len(t, w.Agents(), 1)
	assert.Equal(t, uint64(1), w.Stats().Despawns)
}

func TestDanglingLaneReassigned(t *testing.T) {
	tun := parameter.Default()
	w := NewWorld(tun, 23)
	p, ok := w.SpawnAgent(core.RolePlayer, 10, 0)
	require.True(t, ok)

	// Prune the track out from under the player
	seg, segOK := w.Arena().Get(p.Lane.Segment)
	require.True(t, segOK)
	w.Arena().PruneBefore(seg.EndDist() + 1)

	w.Step(core.ControlInput{}) // Controller flags the dangling lane
	require.True(t, p.NeedsLane)
	w.Step(core.ControlInput{}) // Generator pass reassigns
	assert.False(t, p.NeedsLane)
	assert.Equal(t, uint64(1), w.Stats().LaneReassigns)
	_, ok = w.Arena().Get(p.Lane.Segment)
	assert.True(t, ok, "reassigned lane must reference a live segment")
}

func TestLethalHazardCrashesPlayer(t *testing.T) {
	tun := parameter.Default()
	w := NewWorld(tun, 31)
	p, ok := w.SpawnAgent(core.RolePlayer, 10, 0)
	require.True(t, ok)
	p.ForwardVel = 50

	crashed := false
	var crashEv event.Event
	for i := 0; i < 1200 && !crashed; i++ {
		// Keep a lethal wall planted right ahead of the player
		w.hazards = w.hazards[:0]
		w.AddHazard(core.Hazard{
			Pos:      p.Pos.Add(mgl64.Vec3{3, 0, 0}),
			Severity: 1, MassFactor: 1, Kind: core.DamageLethal,
			TrackDist: p.TrackDist + 3,
		})
		w.Step(core.ControlInput{Throttle: 1})
		for _, ev := range w.Events() {
			if ev.Type == event.TypeCrash {
				crashed = true
				crashEv = ev
			}
		}
	}
	require.True(t, crashed)
	assert.Equal(t, p.ID, crashEv.Agent)
	assert.Equal(t, core.ControlAutopilot, p.Control, "crash hands control to the autopilot")
	assert.NotEqual(t, crash.StateDriving, w.CrashState(p.ID))
	assert.Greater(t, w.Stats().Crashes, uint64(0))
}

func TestContinueRunResetsDamage(t *testing.T) {
	tun := parameter.Default()
	w := NewWorld(tun, 37)
	p, ok := w.SpawnAgent(core.RolePlayer, 10, 0)
	require.True(t, ok)

	p.Damage.Accumulate(3, 1, 0, 0, 0)
	p.YawOffset = 0.8
	require.Greater(t, p.Damage.Total, 0.0)

	require.True(t, w.ContinueRun(p.ID))
	assert.Zero(t, p.Damage.Total)
	assert.Zero(t, p.YawOffset)
	assert.Equal(t, tun.SpeedFloor, p.ForwardVel)

	assert.False(t, w.ContinueRun(999), "unknown agent reports failure")
}
