package ruleset

import (
	"fmt"
	"strings"
)

// ModifierEntry is one declared passive modifier on a talent or item.
// EffectType is a free-form string in the data files; the modifier layer maps
// it to a closed category and ignores kinds it does not recognize.
type ModifierEntry struct {
	EffectType   string   `yaml:"effect_type"`
	Target       string   `yaml:"target,omitempty"`        // stat, skill, resource, or roll target
	Value        int      `yaml:"value,omitempty"`         // numeric magnitude where applicable
	RequiredTags []string `yaml:"required_tags,omitempty"` // all must be present in the action context
}

// TalentDef is the static definition of a passive talent, loaded from YAML.
type TalentDef struct {
	ID          string          `yaml:"id"`
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Tier        int             `yaml:"tier"`
	Modifiers   []ModifierEntry `yaml:"modifiers"`
}

// Validate checks the definition's invariants.
func (d *TalentDef) Validate() error {
	var errs []string
	if d.ID == "" {
		errs = append(errs, "id must not be empty")
	}
	if d.Tier < 0 {
		errs = append(errs, "tier must be >= 0")
	}
	for i, m := range d.Modifiers {
		if m.EffectType == "" {
			errs = append(errs, fmt.Sprintf("modifiers[%d]: effect_type must not be empty", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("talent %q: %s", d.ID, strings.Join(errs, "; "))
	}
	return nil
}

// TalentRegistry holds all known TalentDefs keyed by ID.
type TalentRegistry struct {
	defs map[string]*TalentDef
}

// NewTalentRegistry creates an empty TalentRegistry.
func NewTalentRegistry() *TalentRegistry {
	return &TalentRegistry{defs: make(map[string]*TalentDef)}
}

// Register adds def, overwriting any existing entry with the same ID.
func (r *TalentRegistry) Register(def *TalentDef) {
	r.defs[def.ID] = def
}

// Get returns the TalentDef for id, or (nil, false) if not found.
func (r *TalentRegistry) Get(id string) (*TalentDef, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// All returns a snapshot slice of all registered TalentDefs.
func (r *TalentRegistry) All() []*TalentDef {
	out := make([]*TalentDef, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	return out
}

// LoadTalents reads every *.yaml file in dir as a TalentDef and returns a
// populated TalentRegistry.
func LoadTalents(dir string) (*TalentRegistry, error) {
	reg := NewTalentRegistry()
	err := eachYAML(dir, func(path string, data []byte) error {
		var def TalentDef
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
