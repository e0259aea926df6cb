package world

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/fulcrum/internal/game/inventory"
	"github.com/cory-johannsen/fulcrum/internal/game/rules"
)

// characterFile is the YAML shape of a character sheet on disk.
type characterFile struct {
	ID        string         `yaml:"id"`
	Name      string         `yaml:"name"`
	Level     int            `yaml:"level"`
	XP        int            `yaml:"xp"`
	Stats     map[string]int `yaml:"stats"`
	Skills    map[string]int `yaml:"skills"`
	Talents   []string       `yaml:"talents"`
	Abilities []string       `yaml:"abilities"`

	CurrentHP        int `yaml:"current_hp"`
	MaxHP            int `yaml:"max_hp"`
	CurrentComposure int `yaml:"current_composure"`
	MaxComposure     int `yaml:"max_composure"`

	Weapon string         `yaml:"weapon"`
	Armor  string         `yaml:"armor"`
	Items  map[string]int `yaml:"items"`
}

// locationFile is the YAML shape of location geometry on disk.
type locationFile struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Width   int      `yaml:"width"`
	Height  int      `yaml:"height"`
	Blocked [][2]int `yaml:"blocked"`
}

// LoadCharacters reads every *.yaml file in dir and returns the parsed
// character sheets keyed by ID.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns the characters, or an error if any file fails to
// parse or validate.
func LoadCharacters(dir string) (map[string]*Character, error) {
	chars := make(map[string]*Character)
	err := eachYAML(dir, func(path string, data []byte) error {
		var cf characterFile
		if err := decodeStrict(data, &cf); err != nil {
			return fmt.Errorf("parsing %q: %w", path, err)
		}
		if cf.ID == "" {
			return fmt.Errorf("%q: character id must not be empty", path)
		}
		if cf.MaxHP < 1 {
			return fmt.Errorf("%q: character %s max_hp must be >= 1, got %d", path, cf.ID, cf.MaxHP)
		}

		stats := make(rules.Stats, len(cf.Stats))
		for name, score := range cf.Stats {
			stats[rules.Stat(name)] = score
		}

		equipment := inventory.NewEquipment(cf.Weapon, cf.Armor)
		for itemID, qty := range cf.Items {
			equipment.AddItem(itemID, qty)
		}

		chars[cf.ID] = &Character{
			ID:               cf.ID,
			Name:             cf.Name,
			Level:            cf.Level,
			XP:               cf.XP,
			Stats:            stats,
			Skills:           cf.Skills,
			Talents:          cf.Talents,
			Abilities:        cf.Abilities,
			CurrentHP:        cf.CurrentHP,
			MaxHP:            cf.MaxHP,
			CurrentComposure: cf.CurrentComposure,
			MaxComposure:     cf.MaxComposure,
			Equipment:        equipment,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return chars, nil
}

// LoadLocations reads every *.yaml file in dir and returns the parsed
// location geometry keyed by ID.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns the locations, or an error if any file fails to
// parse or validate.
func LoadLocations(dir string) (map[string]*Location, error) {
	locs := make(map[string]*Location)
	err := eachYAML(dir, func(path string, data []byte) error {
		var lf locationFile
		if err := decodeStrict(data, &lf); err != nil {
			return fmt.Errorf("parsing %q: %w", path, err)
		}
		if lf.ID == "" {
			return fmt.Errorf("%q: location id must not be empty", path)
		}
		if lf.Width < 2 || lf.Height < 2 {
			return fmt.Errorf("%q: location %s must be at least 2x2, got %dx%d", path, lf.ID, lf.Width, lf.Height)
		}

		blocked := make(map[[2]int]bool, len(lf.Blocked))
		for _, tile := range lf.Blocked {
			blocked[tile] = true
		}

		locs[lf.ID] = &Location{
			ID:      lf.ID,
			Name:    lf.Name,
			Width:   lf.Width,
			Height:  lf.Height,
			Blocked: blocked,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return locs, nil
}

func eachYAML(dir string, fn func(path string, data []byte) error) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading dir %q: %w", dir, err)
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

func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(out)
}
