package inventory

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/fulcrum/internal/game/rules"
)

// ArmorDef defines an armor category's defensive properties, loaded from YAML.
type ArmorDef struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	Category    string     `yaml:"category"` // e.g. "light", "heavy"
	DR          int        `yaml:"dr"`
	Skill       string     `yaml:"skill"` // governing defense skill name
	SkillStat   rules.Stat `yaml:"skill_stat"`
	Description string     `yaml:"description,omitempty"`
}

// Validate checks that the ArmorDef satisfies its invariants.
//
// Precondition: d is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (d *ArmorDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if d.DR < 0 {
		errs = append(errs, errors.New("DR must be >= 0"))
	}
	if d.Skill == "" {
		errs = append(errs, errors.New("Skill must not be empty"))
	}
	if d.SkillStat == "" {
		errs = append(errs, errors.New("SkillStat must not be empty"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("armor validation failed: %v", errs)
	}
	return nil
}

// Unarmored is the fallback armor used when a combatant has nothing equipped.
var Unarmored = &ArmorDef{
	ID:        "unarmored",
	Name:      "Natural/Unarmored",
	Category:  "natural",
	DR:        0,
	Skill:     "Natural/Unarmored",
	SkillStat: rules.StatReflexes,
}
