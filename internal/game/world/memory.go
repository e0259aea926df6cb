package world

import (
	"context"
	"fmt"
	"sync"

	"github.com/cory-johannsen/fulcrum/internal/game/inventory"
	"github.com/cory-johannsen/fulcrum/internal/game/npc"
)

// InMemory is a mutex-guarded in-process World implementation. It backs the
// demo binary and tests; a campaign server would substitute a storage-backed
// implementation.
type InMemory struct {
	mu         sync.RWMutex
	characters map[string]*Character
	templates  map[string]*npc.Template
	locations  map[string]*Location
}

// NewInMemory creates an empty in-memory world with the given NPC templates.
//
// Precondition: templates may be nil; it is treated as empty.
func NewInMemory(templates map[string]*npc.Template) *InMemory {
	if templates == nil {
		templates = make(map[string]*npc.Template)
	}
	return &InMemory{
		characters: make(map[string]*Character),
		templates:  templates,
		locations:  make(map[string]*Location),
	}
}

// AddCharacter registers a character sheet.
//
// Precondition: c must be non-nil with a non-empty ID.
func (w *InMemory) AddCharacter(c *Character) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.characters[c.ID] = c
}

// AddLocation registers location geometry.
func (w *InMemory) AddLocation(l *Location) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.locations[l.ID] = l
}

// Character returns the sheet for id.
func (w *InMemory) Character(_ context.Context, id string) (*Character, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	c, ok := w.characters[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCharacterNotFound, id)
	}
	return c, nil
}

// UpdateVitals writes a character's HP and composure.
func (w *InMemory) UpdateVitals(_ context.Context, id string, hp, composure int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	c, ok := w.characters[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCharacterNotFound, id)
	}
	c.CurrentHP = hp
	c.CurrentComposure = composure
	return nil
}

// GrantXP adds experience to a character.
func (w *InMemory) GrantXP(_ context.Context, id string, xp int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	c, ok := w.characters[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCharacterNotFound, id)
	}
	c.XP += xp
	return nil
}

// GrantItem adds qty of itemID to a character's inventory.
func (w *InMemory) GrantItem(_ context.Context, id, itemID string, qty int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	c, ok := w.characters[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCharacterNotFound, id)
	}
	if c.Equipment == nil {
		c.Equipment = inventory.NewEquipment("", "")
	}
	c.Equipment.AddItem(itemID, qty)
	return nil
}

// SpawnNPC instantiates the template with fresh identity and full HP.
func (w *InMemory) SpawnNPC(_ context.Context, templateID string) (*npc.Instance, error) {
	w.mu.RLock()
	tmpl, ok := w.templates[templateID]
	w.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, templateID)
	}
	return npc.Spawn(tmpl), nil
}

// Location returns the geometry for id.
func (w *InMemory) Location(_ context.Context, id string) (*Location, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	l, ok := w.locations[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocationNotFound, id)
	}
	return l, nil
}
