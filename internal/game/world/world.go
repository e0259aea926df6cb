// Package world defines the collaborator boundary the combat engine consumes:
// character sheets, NPC spawning, reward mutation, and location geometry.
// The engine owns encounter state; the world is consulted at the edges of a
// fight and when rewards are granted.
package world

import (
	"context"
	"errors"

	"github.com/cory-johannsen/fulcrum/internal/game/inventory"
	"github.com/cory-johannsen/fulcrum/internal/game/npc"
	"github.com/cory-johannsen/fulcrum/internal/game/rules"
)

// Sentinel errors returned by world lookups.
var (
	ErrCharacterNotFound = errors.New("world: character not found")
	ErrTemplateNotFound  = errors.New("world: npc template not found")
	ErrLocationNotFound  = errors.New("world: location not found")
)

// Character is the sheet data combat needs for a player participant.
type Character struct {
	ID        string
	Name      string
	Level     int
	XP        int
	Stats     rules.Stats
	Skills    map[string]int
	Talents   []string
	Abilities []string

	CurrentHP        int
	MaxHP            int
	CurrentComposure int
	MaxComposure     int

	Equipment *inventory.Equipment
}

// Location describes the combat-relevant geometry of a place: its bounds and
// impassable tiles.
type Location struct {
	ID      string
	Name    string
	Width   int
	Height  int
	Blocked map[[2]int]bool
}

// Passable reports whether (x, y) is inside the location and unblocked.
func (l *Location) Passable(x, y int) bool {
	if x < 0 || y < 0 || x >= l.Width || y >= l.Height {
		return false
	}
	return !l.Blocked[[2]int{x, y}]
}

// CharacterStore fetches and mutates player character state.
type CharacterStore interface {
	// Character returns the sheet for id.
	Character(ctx context.Context, id string) (*Character, error)
	// UpdateVitals writes a character's HP and composure after combat.
	UpdateVitals(ctx context.Context, id string, hp, composure int) error
	// GrantXP adds experience to a character.
	GrantXP(ctx context.Context, id string, xp int) error
	// GrantItem adds qty of itemID to a character's inventory.
	GrantItem(ctx context.Context, id, itemID string, qty int) error
}

// Spawner creates live NPC instances from templates.
type Spawner interface {
	// SpawnNPC instantiates the template with fresh identity and full HP.
	SpawnNPC(ctx context.Context, templateID string) (*npc.Instance, error)
}

// Locations resolves location geometry for movement validation.
type Locations interface {
	// Location returns the geometry for id.
	Location(ctx context.Context, id string) (*Location, error)
}

// World is the full collaborator surface the combat engine consumes.
type World interface {
	CharacterStore
	Spawner
	Locations
}
