package event

import (
	"github.com/voidlane/nightrunner/core"
	"github.com/voidlane/nightrunner/crash"
)

// Type discriminates simulation events
type Type uint8

const (
	TypeNone Type = iota
	TypeCrash
	TypeSegmentSpawned
	TypeForkOpened
	TypeForkCommitted
	TypeAgentDespawned
)

func (t Type) String() string {
	switch t {
	case TypeCrash:
		return "crash"
	case TypeSegmentSpawned:
		return "segment-spawned"
	case TypeForkOpened:
		return "fork-opened"
	case TypeForkCommitted:
		return "fork-committed"
	case TypeAgentDespawned:
		return "agent-despawned"
	}
	return "none"
}

// Event is one simulation notification. Fixed-size value type so the ring
// buffer never allocates on push; unused fields stay zero.
type Event struct {
	Type Type
	Tick uint64

	Agent   core.AgentID
	Segment uint64

	// Crash payload
	Reason crash.Reason
	Speed  float64
	Damage float64

	// Fork payload
	KeptLeft bool
}

func Crash(tick uint64, ev *crash.CrashEvent) Event {
	return Event{
		Type:   TypeCrash,
		Tick:   tick,
		Agent:  ev.Agent,
		Reason: ev.Reason,
		Speed:  ev.Speed,
		Damage: ev.Damage,
	}
}

func SegmentSpawned(tick, index uint64) Event {
	return Event{Type: TypeSegmentSpawned, Tick: tick, Segment: index}
}

func ForkOpened(tick, parent uint64) Event {
	return Event{Type: TypeForkOpened, Tick: tick, Segment: parent}
}

func ForkCommitted(tick, kept uint64, keptLeft bool) Event {
	return Event{Type: TypeForkCommitted, Tick: tick, Segment: kept, KeptLeft: keptLeft}
}

func AgentDespawned(tick uint64, id core.AgentID) Event {
	return Event{Type: TypeAgentDespawned, Tick: tick, Agent: id}
}
