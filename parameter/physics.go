package parameter

// Compiled defaults for the simulation core. Tuning (tuning.go) snapshots
// these at startup; systems read the snapshot, never the constants directly,
// so a config override changes every consumer at once.

// Fixed timestep
const (
	TickRate    = 60
	DefaultDt   = 1.0 / TickRate
	EventQueue  = 256 // Ring capacity, power of two
	EventMask   = EventQueue - 1
)

// Track generation
const (
	SegmentLenMin   = 40.0
	SegmentLenMax   = 120.0
	YawDeltaMax     = 0.9 // Radians, scaled by difficulty
	TangentAlphaMin = 0.4
	TangentAlphaMax = 0.6
	MinTurnRadius   = 60.0
	GenAttempts     = 4
	ArcSamples      = 16

	LaneWidth        = 4.0
	LaneCount        = 3
	TunnelWidthScale = 0.7

	ForkYawDelta  = 0.35
	ForkSpread    = 6.0 // Lateral separation coefficient, grows as spread*t^2
	ForkCommitSep = 4.0 // Separation at which the branch choice is committed

	GenerateAhead = 400.0
	TrailBehind   = 150.0
)

// Lane following and drift
const (
	LaneOmega     = 8.0 // Spring frequency; damping is 2*omega (critical)
	SoftEdgeFrac  = 0.85
	EdgeGain      = 40.0
	SpeedRef      = 30.0
	SpeedModMin   = 0.75
	SpeedModMax   = 1.25
	AutoMod       = 1.5
	HandbrakeMod  = 0.25
	SteerGain     = 2.5
	YawDamping    = 4.0
	DriftGain     = 0.8
	SlipGain      = 1.2
	ThrottleAccel = 12.0
	BrakeDecel    = 25.0
	HandbrakeDrag = 10.0
	LinearDrag    = 0.05
	SpeedFloor    = 8.0
	SpeedMax      = 70.0
)

// Collision and damage
const (
	BroadPhaseRadius = 6.0
	AgentHalfLength  = 2.2
	AgentHalfWidth   = 1.0
	HazardHalfExtent = 1.2
	ImpactThreshold  = 1.0
	ImpulseGain      = 1.8
	VirtualMassBase  = 1.0
	YawKickGain      = 0.12
	DamageGain       = 0.004
	YawKickEpsilon   = 0.1

	DegradeSteerFront = 0.4
	DegradeOmegaSide  = 0.5
	DegradeSlipRear   = 0.6
)

// Crash arbitration
const (
	LethalSeverity     = 0.8
	CrashImpactSpeed   = 25.0
	DamageMax          = 10.0
	YawFail            = 1.2 // Radians
	CompoundDamageFrac = 0.6
	StallTolerance     = 0.5
	CrashHoldTicks     = 12
	RecoveryTicks      = 90
	RecoverySpeed      = 14.0
	YawStable          = 0.15
)
