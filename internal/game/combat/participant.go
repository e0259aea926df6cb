// Package combat implements the Fulcrum combat state machine: encounters,
// turn order, action resolution, zones, reactions, NPC decisions, and reward
// grants.
package combat

import (
	"strings"

	"github.com/cory-johannsen/fulcrum/internal/game/inventory"
	"github.com/cory-johannsen/fulcrum/internal/game/npc"
	"github.com/cory-johannsen/fulcrum/internal/game/rules"
	"github.com/cory-johannsen/fulcrum/internal/game/ruleset"
	"github.com/cory-johannsen/fulcrum/internal/game/world"
)

// Faction identifies which side a participant fights for.
type Faction string

const (
	FactionPlayer Faction = "player"
	FactionNPC    Faction = "npc"
)

// ActiveStatus is one status effect currently on a participant.
type ActiveStatus struct {
	ID        string
	Remaining int // rounds left; ignored for permanent statuses
}

// Participant is one combatant inside an encounter. The encounter owns this
// state for the duration of the fight; the world is synchronized at the edges.
type Participant struct {
	ID      string
	Name    string
	Faction Faction
	Level   int

	Stats     rules.Stats
	Skills    map[string]int
	Talents   []string
	Abilities []string

	CurrentHP        int
	MaxHP            int
	TempHP           int
	CurrentComposure int
	MaxComposure     int
	Resources        map[string]rules.Pool

	Statuses    []ActiveStatus
	Initiative  int
	AbilityUses map[string]int
	Fled        bool

	X int
	Y int

	Equipment *inventory.Equipment

	// NPC-only fields.
	TemplateID   string
	BehaviorTags []string
	XPValue      int
	Loot         *npc.LootTable
}

// newPlayerParticipant builds a Participant from a character sheet.
func newPlayerParticipant(c *world.Character) *Participant {
	vitals := rules.BaseVitals(c.Level, c.Stats)

	hp := c.CurrentHP
	if hp <= 0 || hp > vitals.MaxHP {
		hp = vitals.MaxHP
	}
	composure := c.CurrentComposure
	if composure <= 0 || composure > vitals.MaxComposure {
		composure = vitals.MaxComposure
	}

	eq := c.Equipment
	if eq == nil {
		eq = inventory.NewEquipment("", "")
	}

	return &Participant{
		ID:               c.ID,
		Name:             c.Name,
		Faction:          FactionPlayer,
		Level:            c.Level,
		Stats:            c.Stats,
		Skills:           c.Skills,
		Talents:          append([]string(nil), c.Talents...),
		Abilities:        append([]string(nil), c.Abilities...),
		CurrentHP:        hp,
		MaxHP:            vitals.MaxHP,
		CurrentComposure: composure,
		MaxComposure:     vitals.MaxComposure,
		Resources:        vitals.Resources,
		AbilityUses:      make(map[string]int),
		Equipment:        eq,
	}
}

// newNPCParticipant builds a Participant from a spawned NPC instance.
func newNPCParticipant(inst *npc.Instance) *Participant {
	vitals := rules.BaseVitals(inst.Level, inst.Stats)
	return &Participant{
		ID:               inst.ID,
		Name:             inst.Name,
		Faction:          FactionNPC,
		Level:            inst.Level,
		Stats:            inst.Stats,
		Skills:           inst.Skills,
		Abilities:        append([]string(nil), inst.Abilities...),
		CurrentHP:        inst.CurrentHP,
		MaxHP:            inst.MaxHP,
		CurrentComposure: vitals.MaxComposure,
		MaxComposure:     vitals.MaxComposure,
		Resources:        vitals.Resources,
		AbilityUses:      make(map[string]int),
		Equipment:        inventory.NewEquipment(inst.WeaponID, inst.ArmorID),
		TemplateID:       inst.TemplateID,
		BehaviorTags:     append([]string(nil), inst.BehaviorTags...),
		XPValue:          inst.XPValue,
		Loot:             inst.Loot,
	}
}

// IsAlive reports whether the participant has hit points left and has not
// fled.
func (p *Participant) IsAlive() bool {
	return p.CurrentHP > 0 && !p.Fled
}

// SkillRank returns the participant's rank in skill, defaulting to 0.
func (p *Participant) SkillRank(skill string) int {
	return p.Skills[skill]
}

// HasStatus reports whether the participant carries the status.
func (p *Participant) HasStatus(id string) bool {
	for _, s := range p.Statuses {
		if s.ID == id {
			return true
		}
	}
	return false
}

// AddStatus applies the status with the given duration. Re-applying an
// existing status refreshes its remaining duration.
func (p *Participant) AddStatus(id string, duration int) {
	for i := range p.Statuses {
		if p.Statuses[i].ID == id {
			if duration > p.Statuses[i].Remaining {
				p.Statuses[i].Remaining = duration
			}
			return
		}
	}
	p.Statuses = append(p.Statuses, ActiveStatus{ID: id, Remaining: duration})
}

// RemoveStatus removes the status. It reports whether the status was present.
func (p *Participant) RemoveStatus(id string) bool {
	for i, s := range p.Statuses {
		if s.ID == id {
			p.Statuses = append(p.Statuses[:i], p.Statuses[i+1:]...)
			return true
		}
	}
	return false
}

// ApplyDamage subtracts damage, consuming temporary HP first.
//
// Precondition: damage >= 0.
// Postcondition: CurrentHP >= 0.
func (p *Participant) ApplyDamage(damage int) {
	if p.TempHP > 0 {
		absorbed := damage
		if absorbed > p.TempHP {
			absorbed = p.TempHP
		}
		p.TempHP -= absorbed
		damage -= absorbed
	}
	p.CurrentHP -= damage
	if p.CurrentHP < 0 {
		p.CurrentHP = 0
	}
}

// Heal restores hit points up to the maximum.
//
// Precondition: amount >= 0.
func (p *Participant) Heal(amount int) {
	p.CurrentHP += amount
	if p.CurrentHP > p.MaxHP {
		p.CurrentHP = p.MaxHP
	}
}

// KnowsAbility reports whether id is in the participant's learned ability
// list. The comparison is case-insensitive, matching registry lookups.
func (p *Participant) KnowsAbility(id string) bool {
	for _, a := range p.Abilities {
		if strings.EqualFold(a, id) {
			return true
		}
	}
	return false
}

// SpendResource deducts amount from the named pool. It reports whether the
// pool held enough.
func (p *Participant) SpendResource(name string, amount int) bool {
	pool, ok := p.Resources[name]
	if !ok || pool.Current < amount {
		return false
	}
	pool.Current -= amount
	p.Resources[name] = pool
	return true
}

// skipTurnStatus returns the first status that forfeits the participant's
// turn, or nil.
func (p *Participant) skipTurnStatus(statuses *ruleset.StatusRegistry) *ruleset.StatusDef {
	for _, s := range p.Statuses {
		if def, ok := statuses.Get(s.ID); ok && def.SkipTurn {
			return def
		}
	}
	return nil
}

// downedButAlive reports whether the participant is at zero HP but held in a
// status that keeps them from counting as defeated.
func (p *Participant) downedButAlive(statuses *ruleset.StatusRegistry) bool {
	for _, s := range p.Statuses {
		if def, ok := statuses.Get(s.ID); ok && def.DownedButAlive {
			return true
		}
	}
	return false
}
