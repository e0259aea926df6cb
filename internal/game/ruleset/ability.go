package ruleset

import (
	"fmt"
	"strings"
)

// EffectKind is the closed set of ability effect behaviors the engine knows
// how to resolve. Data files carry free-form type strings; anything the
// engine does not recognize maps to EffectUnknown and is skipped with a log
// line rather than treated as an error.
type EffectKind int

const (
	EffectUnknown EffectKind = iota
	EffectModifyAttack
	EffectDirectDamage
	EffectHeal
	EffectApplyStatus
	EffectApplyStatusRoll
	EffectMoveTarget
	EffectMoveTargetRoll
	EffectMoveSelf
	EffectCreateZone
	EffectAOEDamage
	EffectRandomStatus
)

var effectKinds = map[string]EffectKind{
	"modify_attack":     EffectModifyAttack,
	"direct_damage":     EffectDirectDamage,
	"heal":              EffectHeal,
	"apply_status":      EffectApplyStatus,
	"apply_status_roll": EffectApplyStatusRoll,
	"move_target":       EffectMoveTarget,
	"move_target_roll":  EffectMoveTargetRoll,
	"move_self":         EffectMoveSelf,
	"create_zone":       EffectCreateZone,
	"aoe_damage":        EffectAOEDamage,
	"random_status":     EffectRandomStatus,
}

// Effect is one declared effect on an ability.
type Effect struct {
	Type        string    `yaml:"type"`
	Amount      string    `yaml:"amount,omitempty"`       // dice expression for damage/heal
	DamageType  string    `yaml:"damage_type,omitempty"`  // descriptive only
	StatusID    string    `yaml:"status_id,omitempty"`    // apply_status / apply_status_roll
	StatusList  []string  `yaml:"status_list,omitempty"`  // random_status
	SaveStat    string    `yaml:"save_stat,omitempty"`    // stat governing the save roll
	DC          int       `yaml:"dc,omitempty"`           // save difficulty class
	Distance    int       `yaml:"distance,omitempty"`     // move effects
	DamageBoost string    `yaml:"damage_boost,omitempty"` // modify_attack extra damage dice
	Zone        *ZoneSpec `yaml:"zone,omitempty"`         // create_zone parameters
	Radius      int       `yaml:"radius,omitempty"`       // aoe_damage reach
}

// Kind maps the effect's data-defined type string to its closed behavior.
func (e Effect) Kind() EffectKind {
	return effectKinds[e.Type]
}

// ZoneSpec declares the area effect created by a create_zone effect.
type ZoneSpec struct {
	Shape    string        `yaml:"shape"`  // currently only "radius"
	Radius   int           `yaml:"radius"` // Chebyshev reach from the center tile
	Duration int           `yaml:"duration"`
	Triggers []ZoneTrigger `yaml:"triggers"`
}

// Zone trigger names.
const (
	TriggerOnEnter     = "on_enter"
	TriggerOnTurnStart = "on_turn_start"
)

// ZoneTrigger binds a trigger condition to the effect it resolves.
type ZoneTrigger struct {
	On     string `yaml:"on"` // "on_enter" | "on_turn_start"
	Effect Effect `yaml:"effect"`
}

// Cost is an ability's resource cost.
type Cost struct {
	Resource string `yaml:"resource"`
	Amount   int    `yaml:"amount"`
}

// AbilityDef is the static definition of an ability, loaded from YAML.
type AbilityDef struct {
	ID               string   `yaml:"id"`
	Name             string   `yaml:"name"`
	Description      string   `yaml:"description"`
	School           string   `yaml:"school"`
	Tier             int      `yaml:"tier"`
	Cost             *Cost    `yaml:"cost,omitempty"`
	UsesPerEncounter int      `yaml:"uses_per_encounter"` // 0 = unlimited
	Tags             []string `yaml:"tags,omitempty"`
	Effects          []Effect `yaml:"effects"`
}

// Validate checks the definition's invariants.
func (d *AbilityDef) Validate() error {
	var errs []string
	if d.ID == "" {
		errs = append(errs, "id must not be empty")
	}
	if d.Tier < 0 {
		errs = append(errs, "tier must be >= 0")
	}
	if d.Cost != nil {
		if d.Cost.Resource == "" {
			errs = append(errs, "cost.resource must not be empty")
		}
		if d.Cost.Amount < 1 {
			errs = append(errs, "cost.amount must be >= 1")
		}
	}
	if d.UsesPerEncounter < 0 {
		errs = append(errs, "uses_per_encounter must be >= 0")
	}
	for i, e := range d.Effects {
		if e.Type == "" {
			errs = append(errs, fmt.Sprintf("effects[%d]: type must not be empty", i))
		}
		if e.Kind() == EffectCreateZone {
			if e.Zone == nil {
				errs = append(errs, fmt.Sprintf("effects[%d]: create_zone requires a zone block", i))
			} else {
				if e.Zone.Shape != "radius" {
					errs = append(errs, fmt.Sprintf("effects[%d]: unsupported zone shape %q", i, e.Zone.Shape))
				}
				if e.Zone.Radius < 0 {
					errs = append(errs, fmt.Sprintf("effects[%d]: zone.radius must be >= 0", i))
				}
				if e.Zone.Duration < 1 {
					errs = append(errs, fmt.Sprintf("effects[%d]: zone.duration must be >= 1", i))
				}
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("ability %q: %s", d.ID, strings.Join(errs, "; "))
	}
	return nil
}

// AbilityRegistry holds all known AbilityDefs keyed by ID.
type AbilityRegistry struct {
	defs map[string]*AbilityDef
}

// NewAbilityRegistry creates an empty AbilityRegistry.
func NewAbilityRegistry() *AbilityRegistry {
	return &AbilityRegistry{defs: make(map[string]*AbilityDef)}
}

// Register adds def, overwriting any existing entry with the same ID.
func (r *AbilityRegistry) Register(def *AbilityDef) {
	r.defs[def.ID] = def
}

// Get returns the AbilityDef for id, or (nil, false) if not found.
// The lookup is case-insensitive.
func (r *AbilityRegistry) Get(id string) (*AbilityDef, bool) {
	if d, ok := r.defs[id]; ok {
		return d, true
	}
	for key, d := range r.defs {
		if strings.EqualFold(key, id) {
			return d, true
		}
	}
	return nil, false
}

// All returns a snapshot slice of all registered AbilityDefs.
func (r *AbilityRegistry) All() []*AbilityDef {
	out := make([]*AbilityDef, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	return out
}

// LoadAbilities reads every *.yaml file in dir as an AbilityDef and returns a
// populated AbilityRegistry.
func LoadAbilities(dir string) (*AbilityRegistry, error) {
	reg := NewAbilityRegistry()
	err := eachYAML(dir, func(path string, data []byte) error {
		var def AbilityDef
		if err := decodeStrict(data, &def); err != nil {
			return fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := def.Validate(); err != nil {
			return fmt.Errorf("%q: %w", path, err)
		}
		reg.Register(&def)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}
