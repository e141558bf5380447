package core

import (
	"github.com/go-gl/mathgl/mgl64"
)

// HazardID is assigned by the external spawner
type HazardID uint64

// DamageKind tags what a hazard does on contact
type DamageKind uint8

const (
	DamageCosmetic DamageKind = iota
	DamageMechanical
	DamageLethal
)

// EnergyScale returns the damage-energy multiplier for the kind
func (k DamageKind) EnergyScale() float64 {
	switch k {
	case DamageCosmetic:
		return 0.25
	case DamageLethal:
		return 1.5
	default:
		return 1.0
	}
}

// Hazard is a static obstacle supplied by the external spawner.
// The resolver reads it, never mutates it; the world prunes it once it
// falls behind the trailing window.
type Hazard struct {
	ID         HazardID
	Segment    uint64 // Segment it was placed on; zero for scripted drops
	Pos        mgl64.Vec3
	TrackDist  float64 // Arc distance along the track where it was placed
	Severity   float64 // [0,1]
	MassFactor float64 // [0,1], scales virtual mass and box extent
	Kind       DamageKind
}
