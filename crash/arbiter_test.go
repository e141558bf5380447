package crash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidlane/nightrunner/core"
	"github.com/voidlane/nightrunner/parameter"
)

func drivingAgent(role core.Role, vf float64) *core.Agent {
	a := core.NewAgent(1, role, core.LaneRef{}, parameter.SpeedFloor)
	a.ForwardVel = vf
	return a
}

func TestLethalImpactCrashesSameTick(t *testing.T) {
	tun := parameter.Default()
	ar := NewArbiter(tun)
	a := drivingAgent(core.RolePlayer, 30)

	ev := ar.Evaluate(a, Impact{Severity: 0.9, Speed: 28})
	require.NotNil(t, ev, "lethal contact above the speed gate must crash on the same tick")
	assert.Equal(t, ReasonLethalImpact, ev.Reason)
	assert.Equal(t, StateCrashing, ar.StateOf(a.ID))
	assert.True(t, a.CrashFlag)
	assert.Equal(t, core.ControlAutopilot, a.Control)
}

func TestCrashFlagSingleTick(t *testing.T) {
	tun := parameter.Default()
	ar := NewArbiter(tun)
	a := drivingAgent(core.RolePlayer, 30)

	require.NotNil(t, ar.Evaluate(a, Impact{Severity: 0.9, Speed: 28}))
	assert.True(t, a.CrashFlag)

	assert.Nil(t, ar.Evaluate(a, Impact{}))
	assert.False(t, a.CrashFlag, "flag marks only the transition tick")
}

func TestLethalSeverityAloneInsufficient(t *testing.T) {
	tun := parameter.Default()
	ar := NewArbiter(tun)
	a := drivingAgent(core.RolePlayer, 30)

	// Severity above the gate but impact speed below it
	assert.Nil(t, ar.Evaluate(a, Impact{Severity: 0.95, Speed: tun.CrashImpactSpeed - 1}))
	assert.Equal(t, StateDriving, ar.StateOf(a.ID))

	// Speed above the gate but severity below it
	assert.Nil(t, ar.Evaluate(a, Impact{Severity: tun.LethalSeverity - 0.1, Speed: 40}))
	assert.Equal(t, StateDriving, ar.StateOf(a.ID))
}

func TestStructuralCrashWithoutImpact(t *testing.T) {
	tun := parameter.Default()
	ar := NewArbiter(tun)
	a := drivingAgent(core.RolePlayer, 30)
	a.Damage.Total = tun.DamageMax + 0.01

	ev := ar.Evaluate(a, Impact{})
	require.NotNil(t, ev, "accumulated damage alone must crash, no contact required")
	assert.Equal(t, ReasonStructural, ev.Reason)
}

func TestSpinAloneNeverCrashes(t *testing.T) {
	tun := parameter.Default()
	ar := NewArbiter(tun)
	a := drivingAgent(core.RolePlayer, tun.SpeedFloor)
	a.YawOffset = tun.YawFail + 0.5

	for i := 0; i < 300; i++ {
		assert.Nil(t, ar.Evaluate(a, Impact{}))
	}
	assert.Equal(t, StateDriving, ar.StateOf(a.ID))
}

func TestCompoundFailure(t *testing.T) {
	tun := parameter.Default()
	ar := NewArbiter(tun)
	a := drivingAgent(core.RolePlayer, tun.SpeedFloor)
	a.YawOffset = -tun.YawFail - 0.2
	a.Damage.Total = tun.CompoundDamageFrac*tun.DamageMax + 0.1

	ev := ar.Evaluate(a, Impact{})
	require.NotNil(t, ev)
	assert.Equal(t, ReasonCompound, ev.Reason)
}

func TestCompoundNeedsStall(t *testing.T) {
	tun := parameter.Default()
	ar := NewArbiter(tun)
	a := drivingAgent(core.RolePlayer, tun.SpeedFloor+tun.StallTolerance+1)
	a.YawOffset = tun.YawFail + 0.2
	a.Damage.Total = tun.CompoundDamageFrac*tun.DamageMax + 0.1

	assert.Nil(t, ar.Evaluate(a, Impact{}), "spinning at speed is drift, not a crash")
}

func TestFullCycleHandsControlBack(t *testing.T) {
	tun := parameter.Default()
	ar := NewArbiter(tun)
	a := drivingAgent(core.RolePlayer, 30)

	require.NotNil(t, ar.Evaluate(a, Impact{Severity: 1, Speed: 30}))
	a.Damage.Total = 2 // Under every threshold after the hit

	// Hold phase
	for i := 0; i < tun.CrashHoldTicks; i++ {
		assert.Equal(t, StateCrashing, ar.StateOf(a.ID))
		assert.Nil(t, ar.Evaluate(a, Impact{}))
	}
	assert.Equal(t, StateRecovering, ar.StateOf(a.ID))

	// Stable recovery
	a.YawOffset = 0
	for i := 0; i < tun.RecoveryTicks; i++ {
		assert.Equal(t, core.ControlAutopilot, a.Control, "autopilot holds authority through recovery")
		ar.Evaluate(a, Impact{})
	}
	assert.Equal(t, StateDriving, ar.StateOf(a.ID))
	assert.Equal(t, core.ControlPlayer, a.Control, "player regains control after the stability window")
}

func TestRecoveryWindowRestartsOnWobble(t *testing.T) {
	tun := parameter.Default()
	ar := NewArbiter(tun)
	a := drivingAgent(core.RolePlayer, 30)

	require.NotNil(t, ar.Evaluate(a, Impact{Severity: 1, Speed: 30}))
	a.Damage.Total = 2
	for i := 0; i < tun.CrashHoldTicks; i++ {
		ar.Evaluate(a, Impact{})
	}
	require.Equal(t, StateRecovering, ar.StateOf(a.ID))

	a.YawOffset = 0
	for i := 0; i < tun.RecoveryTicks-1; i++ {
		ar.Evaluate(a, Impact{})
	}

	// Wobble one tick short of stable: the whole window restarts
	a.YawOffset = tun.YawStable * 2
	ar.Evaluate(a, Impact{})
	a.YawOffset = 0
	for i := 0; i < tun.RecoveryTicks-1; i++ {
		ar.Evaluate(a, Impact{})
		assert.Equal(t, StateRecovering, ar.StateOf(a.ID))
	}
	ar.Evaluate(a, Impact{})
	assert.Equal(t, StateDriving, ar.StateOf(a.ID))
}

func TestTrafficAgentStaysAutopilot(t *testing.T) {
	tun := parameter.Default()
	ar := NewArbiter(tun)
	a := drivingAgent(core.RoleTraffic, 30)
	require.Equal(t, core.ControlAutopilot, a.Control)

	require.NotNil(t, ar.Evaluate(a, Impact{Severity: 1, Speed: 30}))
	a.Damage.Total = 2
	a.YawOffset = 0
	for i := 0; i < tun.CrashHoldTicks+tun.RecoveryTicks+5; i++ {
		ar.Evaluate(a, Impact{})
	}
	assert.Equal(t, StateDriving, ar.StateOf(a.ID))
	assert.Equal(t, core.ControlAutopilot, a.Control)
}

func TestForgetDropsState(t *testing.T) {
	tun := parameter.Default()
	ar := NewArbiter(tun)
	a := drivingAgent(core.RolePlayer, 30)

	require.NotNil(t, ar.Evaluate(a, Impact{Severity: 1, Speed: 30}))
	ar.Forget(a.ID)
	assert.Equal(t, StateDriving, ar.StateOf(a.ID))
}
