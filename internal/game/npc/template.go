// Package npc defines NPC templates, live combat instances, and loot
// generation for the Fulcrum combat engine.
package npc

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/fulcrum/internal/game/rules"
)

// Behavior tags recognized by the NPC decision policy.
const (
	BehaviorCowardly       = "cowardly"
	BehaviorTargetsWeakest = "targets_weakest"
)

// Template is the static definition of an NPC kind, loaded from YAML.
type Template struct {
	ID           string             `yaml:"id"`
	Name         string             `yaml:"name"`
	Description  string             `yaml:"description,omitempty"`
	Level        int                `yaml:"level"`
	Stats        map[rules.Stat]int `yaml:"stats"`
	Skills       map[string]int     `yaml:"skills,omitempty"`
	Abilities    []string           `yaml:"abilities,omitempty"`
	BehaviorTags []string           `yaml:"behavior_tags,omitempty"`
	WeaponID     string             `yaml:"weapon,omitempty"`
	ArmorID      string             `yaml:"armor,omitempty"`
	Loot         *LootTable         `yaml:"loot,omitempty"`
	XPValue      int                `yaml:"xp_value,omitempty"`
}

// Validate checks that the template satisfies its invariants.
//
// Precondition: t must not be nil.
func (t *Template) Validate() error {
	var errs []error
	if t.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if t.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if t.Level < 1 {
		errs = append(errs, errors.New("Level must be >= 1"))
	}
	for stat, score := range t.Stats {
		if score < 1 {
			errs = append(errs, fmt.Errorf("stat %s must be >= 1, got %d", stat, score))
		}
	}
	if t.Loot != nil {
		if err := t.Loot.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("npc template validation failed: %v", errs)
	}
	return nil
}

// HasBehavior reports whether the template carries the given behavior tag.
func (t *Template) HasBehavior(tag string) bool {
	for _, b := range t.BehaviorTags {
		if b == tag {
			return true
		}
	}
	return false
}

// RuleStats converts the template's stat block to a rules.Stats map.
func (t *Template) RuleStats() rules.Stats {
	stats := make(rules.Stats, len(t.Stats))
	for stat, score := range t.Stats {
		stats[stat] = score
	}
	return stats
}

// LoadTemplates reads every *.yaml file in dir, parses each as a Template,
// validates it, and returns the templates keyed by ID.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-empty map, or an error if any file fails to
// parse or validate.
func LoadTemplates(dir string) (map[string]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading npc template dir %q: %w", dir, err)
	}

	templates := make(map[string]*Template)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var tmpl Template
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&tmpl); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := tmpl.Validate(); err != nil {
			return nil, fmt.Errorf("%q: %w", path, err)
		}
		templates[tmpl.ID] = &tmpl
	}
	return templates, nil
}
