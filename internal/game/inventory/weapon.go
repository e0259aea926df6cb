// Package inventory defines the equipment content of the Fulcrum ruleset:
// weapons, armor, and consumable items, loaded from YAML, plus the equipped
// set a combatant carries into an encounter.
package inventory

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/fulcrum/internal/game/rules"
	"github.com/cory-johannsen/fulcrum/internal/game/ruleset"
)

// Reach constants for WeaponDef.Reach.
const (
	ReachMelee  = "melee"
	ReachRanged = "ranged"
)

// WeaponDef defines a weapon category's combat properties, loaded from YAML.
type WeaponDef struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	Category    string     `yaml:"category"` // e.g. "blades", "great_weapons"
	Reach       string     `yaml:"reach"`    // "melee" | "ranged"
	Damage      string     `yaml:"damage"`   // dice expression, e.g. "2d6"
	Skill       string     `yaml:"skill"`    // governing skill name
	SkillStat   rules.Stat `yaml:"skill_stat"`
	Penalty     int        `yaml:"penalty"`   // defense penalty imposed on the defender
	DRIgnore    int        `yaml:"dr_ignore"` // portion of defender DR this weapon ignores
	Tags        []string   `yaml:"tags,omitempty"`
	Description string     `yaml:"description,omitempty"`
}

// Validate checks that the WeaponDef satisfies its invariants.
//
// Precondition: d is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (d *WeaponDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if d.Reach != ReachMelee && d.Reach != ReachRanged {
		errs = append(errs, fmt.Errorf("Reach must be melee or ranged; got %q", d.Reach))
	}
	if d.Damage == "" {
		errs = append(errs, errors.New("Damage must not be empty"))
	}
	if d.Skill == "" {
		errs = append(errs, errors.New("Skill must not be empty"))
	}
	if d.SkillStat == "" {
		errs = append(errs, errors.New("SkillStat must not be empty"))
	}
	if d.DRIgnore < 0 {
		errs = append(errs, errors.New("DRIgnore must be >= 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("weapon validation failed: %v", errs)
	}
	return nil
}

// ContextTags returns the descriptive tags this weapon contributes to an
// action context: its reach, category, governing stat, and declared tags.
func (d *WeaponDef) ContextTags() []string {
	tags := make([]string, 0, len(d.Tags)+3)
	tags = append(tags, d.Reach, d.Category, string(d.SkillStat))
	tags = append(tags, d.Tags...)
	return tags
}

// Unarmed is the fallback weapon used when a combatant has nothing equipped.
var Unarmed = &WeaponDef{
	ID:        "unarmed",
	Name:      "Unarmed Strike",
	Category:  "brawling",
	Reach:     ReachMelee,
	Damage:    "1d4",
	Skill:     "Brawling",
	SkillStat: rules.StatMight,
}

// ItemDef defines a consumable or passive item, loaded from YAML.
type ItemDef struct {
	ID          string                  `yaml:"id"`
	Name        string                  `yaml:"name"`
	Description string                  `yaml:"description,omitempty"`
	Kind        string                  `yaml:"kind"`              // "healing" | "passive" | "junk"
	Potency     int                     `yaml:"potency,omitempty"` // HP restored for healing items
	Passive     []ruleset.ModifierEntry `yaml:"passive,omitempty"` // passive effects while carried
}

// Item kind constants.
const (
	ItemHealing = "healing"
	ItemPassive = "passive"
	ItemJunk    = "junk"
)

// Validate checks that the ItemDef satisfies its invariants.
func (d *ItemDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	switch d.Kind {
	case ItemHealing, ItemPassive, ItemJunk:
	default:
		errs = append(errs, fmt.Errorf("Kind must be one of healing, passive, junk; got %q", d.Kind))
	}
	if d.Kind == ItemHealing && d.Potency < 1 {
		errs = append(errs, errors.New("Potency must be >= 1 for healing items"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("item validation failed: %v", errs)
	}
	return nil
}
