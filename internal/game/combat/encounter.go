package combat

import (
	"fmt"

	"github.com/cory-johannsen/fulcrum/internal/game/world"
)

// Status is the lifecycle state of an encounter. Transitions are one-way:
// active moves to exactly one terminal state and never back.
type Status string

const (
	StatusActive     Status = "active"
	StatusPlayersWin Status = "players_win"
	StatusNPCsWin    Status = "npcs_win"
	StatusFled       Status = "fled"
)

// Terminal reports whether the status accepts no further actions.
func (s Status) Terminal() bool {
	return s != StatusActive
}

// Encounter is one combat in progress. It is owned exclusively by the Engine;
// callers interact with it through Engine methods and receive snapshots.
//
// Invariant: CurrentTurnIndex is always a valid index into TurnOrder.
type Encounter struct {
	ID               string
	LocationID       string
	Status           Status
	Participants     []*Participant
	TurnOrder        []string
	CurrentTurnIndex int
	RoundNumber      int
	ActiveZones      []*Zone
	PendingReaction  *PendingReaction
	Log              []string

	location *world.Location
}

// Participant returns the participant with the given id, or nil.
func (e *Encounter) Participant(id string) *Participant {
	for _, p := range e.Participants {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// CurrentActorID returns the id of the participant whose turn it is.
//
// Precondition: TurnOrder must be non-empty.
func (e *Encounter) CurrentActorID() string {
	return e.TurnOrder[e.CurrentTurnIndex]
}

// CurrentActor returns the participant whose turn it is.
func (e *Encounter) CurrentActor() *Participant {
	return e.Participant(e.CurrentActorID())
}

// appendLog adds a formatted line to the encounter's append-only log.
func (e *Encounter) appendLog(format string, args ...any) {
	e.Log = append(e.Log, fmt.Sprintf(format, args...))
}

// livingMembers returns the participants of faction that still count toward
// the fight: alive, not fled.
func (e *Encounter) livingMembers(faction Faction) []*Participant {
	var out []*Participant
	for _, p := range e.Participants {
		if p.Faction == faction && p.IsAlive() {
			out = append(out, p)
		}
	}
	return out
}

// zoneByID returns the active zone with the given id, or nil.
func (e *Encounter) zoneByID(id string) *Zone {
	for _, z := range e.ActiveZones {
		if z.ID == id {
			return z
		}
	}
	return nil
}

// removeZone deletes the zone with the given id from the active set.
func (e *Encounter) removeZone(id string) {
	for i, z := range e.ActiveZones {
		if z.ID == id {
			e.ActiveZones = append(e.ActiveZones[:i], e.ActiveZones[i+1:]...)
			return
		}
	}
}

// Snapshot returns a copy of the encounter safe to hand to subscribers.
// Participants and zones are copied shallowly into fresh slices; the log is
// copied in full.
func (e *Encounter) Snapshot() EncounterSnapshot {
	participants := make([]ParticipantSnapshot, 0, len(e.Participants))
	for _, p := range e.Participants {
		statuses := make([]string, 0, len(p.Statuses))
		for _, s := range p.Statuses {
			statuses = append(statuses, s.ID)
		}
		participants = append(participants, ParticipantSnapshot{
			ID:         p.ID,
			Name:       p.Name,
			Faction:    p.Faction,
			CurrentHP:  p.CurrentHP,
			MaxHP:      p.MaxHP,
			Statuses:   statuses,
			Initiative: p.Initiative,
			Fled:       p.Fled,
			X:          p.X,
			Y:          p.Y,
		})
	}

	log := make([]string, len(e.Log))
	copy(log, e.Log)

	turnOrder := make([]string, len(e.TurnOrder))
	copy(turnOrder, e.TurnOrder)

	return EncounterSnapshot{
		ID:               e.ID,
		LocationID:       e.LocationID,
		Status:           e.Status,
		Participants:     participants,
		TurnOrder:        turnOrder,
		CurrentTurnIndex: e.CurrentTurnIndex,
		RoundNumber:      e.RoundNumber,
		ActiveZoneCount:  len(e.ActiveZones),
		Log:              log,
	}
}

// EncounterSnapshot is the immutable view of an encounter published to
// subscribers.
type EncounterSnapshot struct {
	ID               string
	LocationID       string
	Status           Status
	Participants     []ParticipantSnapshot
	TurnOrder        []string
	CurrentTurnIndex int
	RoundNumber      int
	ActiveZoneCount  int
	Log              []string
}

// ParticipantSnapshot is the published view of one combatant.
type ParticipantSnapshot struct {
	ID         string
	Name       string
	Faction    Faction
	CurrentHP  int
	MaxHP      int
	Statuses   []string
	Initiative int
	Fled       bool
	X          int
	Y          int
}
