package inventory

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Registry holds all loaded equipment definitions keyed by ID.
type Registry struct {
	weapons map[string]*WeaponDef
	armor   map[string]*ArmorDef
	items   map[string]*ItemDef
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		weapons: make(map[string]*WeaponDef),
		armor:   make(map[string]*ArmorDef),
		items:   make(map[string]*ItemDef),
	}
}

// RegisterWeapon adds def, overwriting any existing entry with the same ID.
func (r *Registry) RegisterWeapon(def *WeaponDef) { r.weapons[def.ID] = def }

// RegisterArmor adds def, overwriting any existing entry with the same ID.
func (r *Registry) RegisterArmor(def *ArmorDef) { r.armor[def.ID] = def }

// RegisterItem adds def, overwriting any existing entry with the same ID.
func (r *Registry) RegisterItem(def *ItemDef) { r.items[def.ID] = def }

// Weapon returns the WeaponDef for id. An empty or unknown id yields the
// Unarmed fallback, so an attack can always resolve.
func (r *Registry) Weapon(id string) *WeaponDef {
	if d, ok := r.weapons[id]; ok {
		return d
	}
	return Unarmed
}

// Armor returns the ArmorDef for id. An empty or unknown id yields the
// Unarmored fallback.
func (r *Registry) Armor(id string) *ArmorDef {
	if d, ok := r.armor[id]; ok {
		return d
	}
	return Unarmored
}

// Item returns the ItemDef for id, or (nil, false) if not found.
func (r *Registry) Item(id string) (*ItemDef, bool) {
	d, ok := r.items[id]
	return d, ok
}

// LoadWeapons reads every *.yaml file in dir into the registry.
//
// Precondition: dir must be a readable directory.
func (r *Registry) LoadWeapons(dir string) error {
	return eachYAML(dir, func(path string, data []byte) error {
		var def WeaponDef
		if err := decodeStrict(data, &def); err != nil {
			return fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := def.Validate(); err != nil {
			return fmt.Errorf("%q: %w", path, err)
		}
		r.RegisterWeapon(&def)
		return nil
	})
}

// LoadArmor reads every *.yaml file in dir into the registry.
func (r *Registry) LoadArmor(dir string) error {
	return eachYAML(dir, func(path string, data []byte) error {
		var def ArmorDef
		if err := decodeStrict(data, &def); err != nil {
			return fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := def.Validate(); err != nil {
			return fmt.Errorf("%q: %w", path, err)
		}
		r.RegisterArmor(&def)
		return nil
	})
}

// LoadItems reads every *.yaml file in dir into the registry.
func (r *Registry) LoadItems(dir string) error {
	return eachYAML(dir, func(path string, data []byte) error {
		var def ItemDef
		if err := decodeStrict(data, &def); err != nil {
			return fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := def.Validate(); err != nil {
			return fmt.Errorf("%q: %w", path, err)
		}
		r.RegisterItem(&def)
		return nil
	})
}

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

func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(out)
}
