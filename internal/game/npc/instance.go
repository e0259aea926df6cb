package npc

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/fulcrum/internal/game/rules"
)

// Instance is a live NPC spawned into an encounter.
type Instance struct {
	// ID uniquely identifies this runtime instance.
	ID string
	// TemplateID is the source template's ID.
	TemplateID string
	// Name is copied from the template for display.
	Name string
	// Stats is the instance's attribute block.
	Stats rules.Stats
	// Skills maps skill name to rank.
	Skills map[string]int
	// Abilities lists the ability IDs the instance can use.
	Abilities []string
	// BehaviorTags steer the decision policy.
	BehaviorTags []string
	// CurrentHP and MaxHP track hit points.
	CurrentHP int
	MaxHP     int
	// WeaponID and ArmorID reference inventory definitions.
	WeaponID string
	ArmorID  string
	// Level is copied from the template.
	Level int
	// XPValue is the experience the instance is worth when defeated.
	XPValue int
	// Loot is the loot table copied from the template; nil means no loot.
	Loot *LootTable
}

// Spawn creates a live instance from a template. Max HP derives from the
// template's level and stat block via the base vitals formula.
//
// Precondition: tmpl must be non-nil and validated.
// Postcondition: CurrentHP == MaxHP >= 5.
func Spawn(tmpl *Template) *Instance {
	stats := tmpl.RuleStats()
	vitals := rules.BaseVitals(tmpl.Level, stats)

	skills := make(map[string]int, len(tmpl.Skills))
	for name, rank := range tmpl.Skills {
		skills[name] = rank
	}

	return &Instance{
		ID:           uuid.New().String(),
		TemplateID:   tmpl.ID,
		Name:         tmpl.Name,
		Stats:        stats,
		Skills:       skills,
		Abilities:    append([]string(nil), tmpl.Abilities...),
		BehaviorTags: append([]string(nil), tmpl.BehaviorTags...),
		CurrentHP:    vitals.MaxHP,
		MaxHP:        vitals.MaxHP,
		WeaponID:     tmpl.WeaponID,
		ArmorID:      tmpl.ArmorID,
		Level:        tmpl.Level,
		XPValue:      tmpl.XPValue,
		Loot:         tmpl.Loot,
	}
}

// HasBehavior reports whether the instance carries the given behavior tag.
func (i *Instance) HasBehavior(tag string) bool {
	for _, b := range i.BehaviorTags {
		if b == tag {
			return true
		}
	}
	return false
}

// HasAbility reports whether the instance knows the given ability.
func (i *Instance) HasAbility(id string) bool {
	for _, a := range i.Abilities {
		if a == id {
			return true
		}
	}
	return false
}
