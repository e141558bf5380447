package parameter

import (
	"encoding/json"
	"fmt"
	"os"
)

// Tuning is the runtime snapshot of every tunable the core reads.
// A zero Tuning is invalid; construct with Default and optionally
// overlay a JSON file. Immutable once the world is built.
type Tuning struct {
	Dt float64 `json:"dt"`

	// Track generation
	SegmentLenMin   float64 `json:"segmentLenMin"`
	SegmentLenMax   float64 `json:"segmentLenMax"`
	YawDeltaMax     float64 `json:"yawDeltaMax"`
	TangentAlphaMin float64 `json:"tangentAlphaMin"`
	TangentAlphaMax float64 `json:"tangentAlphaMax"`
	MinTurnRadius   float64 `json:"minTurnRadius"`
	GenAttempts     int     `json:"genAttempts"`
	LaneWidth       float64 `json:"laneWidth"`
	LaneCount       int     `json:"laneCount"`
	ForkYawDelta    float64 `json:"forkYawDelta"`
	ForkSpread      float64 `json:"forkSpread"`
	ForkCommitSep   float64 `json:"forkCommitSep"`
	GenerateAhead   float64 `json:"generateAhead"`
	TrailBehind     float64 `json:"trailBehind"`

	// Lane following and drift
	LaneOmega     float64 `json:"laneOmega"`
	SoftEdgeFrac  float64 `json:"softEdgeFrac"`
	EdgeGain      float64 `json:"edgeGain"`
	SpeedRef      float64 `json:"speedRef"`
	SteerGain     float64 `json:"steerGain"`
	YawDamping    float64 `json:"yawDamping"`
	DriftGain     float64 `json:"driftGain"`
	SlipGain      float64 `json:"slipGain"`
	ThrottleAccel float64 `json:"throttleAccel"`
	BrakeDecel    float64 `json:"brakeDecel"`
	HandbrakeDrag float64 `json:"handbrakeDrag"`
	LinearDrag    float64 `json:"linearDrag"`
	SpeedFloor    float64 `json:"speedFloor"`
	SpeedMax      float64 `json:"speedMax"`

	// Collision and damage
	BroadPhaseRadius float64 `json:"broadPhaseRadius"`
	AgentHalfLength  float64 `json:"agentHalfLength"`
	AgentHalfWidth   float64 `json:"agentHalfWidth"`
	HazardHalfExtent float64 `json:"hazardHalfExtent"`
	ImpactThreshold  float64 `json:"impactThreshold"`
	ImpulseGain      float64 `json:"impulseGain"`
	VirtualMassBase  float64 `json:"virtualMassBase"`
	YawKickGain      float64 `json:"yawKickGain"`
	DamageGain       float64 `json:"damageGain"`

	// Crash arbitration
	LethalSeverity     float64 `json:"lethalSeverity"`
	CrashImpactSpeed   float64 `json:"crashImpactSpeed"`
	DamageMax          float64 `json:"damageMax"`
	YawFail            float64 `json:"yawFail"`
	CompoundDamageFrac float64 `json:"compoundDamageFrac"`
	StallTolerance     float64 `json:"stallTolerance"`
	CrashHoldTicks     int     `json:"crashHoldTicks"`
	RecoveryTicks      int     `json:"recoveryTicks"`
	RecoverySpeed      float64 `json:"recoverySpeed"`
	YawStable          float64 `json:"yawStable"`
	HandbackToPlayer   bool    `json:"handbackToPlayer"`
}

// Default returns the compiled tuning snapshot
func Default() *Tuning {
	return &Tuning{
		Dt: DefaultDt,

		SegmentLenMin:   SegmentLenMin,
		SegmentLenMax:   SegmentLenMax,
		YawDeltaMax:     YawDeltaMax,
		TangentAlphaMin: TangentAlphaMin,
		TangentAlphaMax: TangentAlphaMax,
		MinTurnRadius:   MinTurnRadius,
		GenAttempts:     GenAttempts,
		LaneWidth:       LaneWidth,
		LaneCount:       LaneCount,
		ForkYawDelta:    ForkYawDelta,
		ForkSpread:      ForkSpread,
		ForkCommitSep:   ForkCommitSep,
		GenerateAhead:   GenerateAhead,
		TrailBehind:     TrailBehind,

		LaneOmega:     LaneOmega,
		SoftEdgeFrac:  SoftEdgeFrac,
		EdgeGain:      EdgeGain,
		SpeedRef:      SpeedRef,
		SteerGain:     SteerGain,
		YawDamping:    YawDamping,
		DriftGain:     DriftGain,
		SlipGain:      SlipGain,
		ThrottleAccel: ThrottleAccel,
		BrakeDecel:    BrakeDecel,
		HandbrakeDrag: HandbrakeDrag,
		LinearDrag:    LinearDrag,
		SpeedFloor:    SpeedFloor,
		SpeedMax:      SpeedMax,

		BroadPhaseRadius: BroadPhaseRadius,
		AgentHalfLength:  AgentHalfLength,
		AgentHalfWidth:   AgentHalfWidth,
		HazardHalfExtent: HazardHalfExtent,
		ImpactThreshold:  ImpactThreshold,
		ImpulseGain:      ImpulseGain,
		VirtualMassBase:  VirtualMassBase,
		YawKickGain:      YawKickGain,
		DamageGain:       DamageGain,

		LethalSeverity:     LethalSeverity,
		CrashImpactSpeed:   CrashImpactSpeed,
		DamageMax:          DamageMax,
		YawFail:            YawFail,
		CompoundDamageFrac: CompoundDamageFrac,
		StallTolerance:     StallTolerance,
		CrashHoldTicks:     CrashHoldTicks,
		RecoveryTicks:      RecoveryTicks,
		RecoverySpeed:      RecoverySpeed,
		YawStable:          YawStable,
		HandbackToPlayer:   true,
	}
}

// Load returns Default overlaid with values from a JSON file
func Load(path string) (*Tuning, error) {
	t := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tuning: %w", err)
	}
	if err := json.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("parse tuning %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate rejects configurations that would break core invariants
func (t *Tuning) Validate() error {
	switch {
	case t.Dt <= 0:
		return fmt.Errorf("tuning: dt must be positive, got %v", t.Dt)
	case t.SpeedFloor <= 0:
		return fmt.Errorf("tuning: speedFloor must be positive, got %v", t.SpeedFloor)
	case t.SpeedMax <= t.SpeedFloor:
		return fmt.Errorf("tuning: speedMax %v must exceed speedFloor %v", t.SpeedMax, t.SpeedFloor)
	case t.MinTurnRadius <= 0:
		return fmt.Errorf("tuning: minTurnRadius must be positive, got %v", t.MinTurnRadius)
	case t.SegmentLenMin <= 0 || t.SegmentLenMax < t.SegmentLenMin:
		return fmt.Errorf("tuning: bad segment length range [%v, %v]", t.SegmentLenMin, t.SegmentLenMax)
	case t.LaneCount < 1:
		return fmt.Errorf("tuning: laneCount must be at least 1, got %d", t.LaneCount)
	case t.GenAttempts < 1:
		return fmt.Errorf("tuning: genAttempts must be at least 1, got %d", t.GenAttempts)
	}
	return nil
}

// HalfGroupWidth returns half the width of the full lane group
func (t *Tuning) HalfGroupWidth() float64 {
	return float64(t.LaneCount) * t.LaneWidth / 2
}
