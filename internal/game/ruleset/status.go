// Package ruleset holds the data-driven content definitions of the Fulcrum
// ruleset: status effects, talents, and abilities, loaded from YAML.
package ruleset

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Duration type values for StatusDef.
const (
	DurationRounds    = "rounds"
	DurationPermanent = "permanent"
)

// StatusDef is the static definition of a status effect, loaded from YAML.
type StatusDef struct {
	ID              string   `yaml:"id"`
	Name            string   `yaml:"name"`
	Description     string   `yaml:"description"`
	DurationType    string   `yaml:"duration_type"`    // "rounds" | "permanent"
	DefaultDuration int      `yaml:"default_duration"` // rounds; 0 with "rounds" means 1
	SkipTurn        bool     `yaml:"skip_turn"`        // actor loses their turn, status removed
	AttackPenalty   int      `yaml:"attack_penalty"`
	DefensePenalty  int      `yaml:"defense_penalty"`
	RestrictActions []string `yaml:"restrict_actions"`
	ThreatRange     int      `yaml:"threat_range"` // > 0 grants reactions when engaged actors leave range
	DownedButAlive  bool     `yaml:"downed_but_alive"`
	LuaOnTick       string   `yaml:"lua_on_tick"` // script name run at each round boundary
}

// Validate checks the definition's invariants.
func (d *StatusDef) Validate() error {
	var errs []string
	if d.ID == "" {
		errs = append(errs, "id must not be empty")
	}
	switch d.DurationType {
	case DurationRounds, DurationPermanent:
	default:
		errs = append(errs, fmt.Sprintf("duration_type must be %q or %q; got %q",
			DurationRounds, DurationPermanent, d.DurationType))
	}
	if d.DefaultDuration < 0 {
		errs = append(errs, "default_duration must be >= 0")
	}
	if d.ThreatRange < 0 {
		errs = append(errs, "threat_range must be >= 0")
	}
	if len(errs) > 0 {
		return fmt.Errorf("status %q: %s", d.ID, strings.Join(errs, "; "))
	}
	return nil
}

// StatusRegistry holds all known StatusDefs keyed by ID.
type StatusRegistry struct {
	defs map[string]*StatusDef
}

// NewStatusRegistry creates an empty StatusRegistry.
func NewStatusRegistry() *StatusRegistry {
	return &StatusRegistry{defs: make(map[string]*StatusDef)}
}

// Register adds def, overwriting any existing entry with the same ID.
//
// Precondition: def must not be nil and def.ID must not be empty.
func (r *StatusRegistry) Register(def *StatusDef) {
	r.defs[def.ID] = def
}

// Get returns the StatusDef for id, or (nil, false) if not found.
// The lookup is case-insensitive.
func (r *StatusRegistry) Get(id string) (*StatusDef, bool) {
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

// All returns a snapshot slice of all registered StatusDefs.
func (r *StatusRegistry) All() []*StatusDef {
	out := make([]*StatusDef, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	return out
}

// LoadStatuses reads every *.yaml file in dir as a StatusDef and returns a
// populated StatusRegistry.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil registry, or an error if any file fails
// to parse or validate.
func LoadStatuses(dir string) (*StatusRegistry, error) {
	reg := NewStatusRegistry()
	err := eachYAML(dir, func(path string, data []byte) error {
		var def StatusDef
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

// eachYAML invokes fn for every *.yaml file in dir.
func eachYAML(dir string, fn func(path string, data []byte) error) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading content dir %q: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %q: %w", path, err)
		}
		if err := fn(path, data); err != nil {
			return err
		}
	}
	return nil
}

// decodeStrict decodes YAML rejecting unknown fields.
func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(out)
}
