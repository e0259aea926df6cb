package world

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/fulcrum/internal/game/rules"
)

func writeYAML(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestLoadCharacters(t *testing.T) {
	dir := t.TempDir()
	writeYAML(t, dir, "ava.yaml", `
id: ava
name: Ava
level: 3
xp: 120
stats:
  Might: 18
  Reflexes: 14
skills:
  Blades: 3
talents:
  - veteran
abilities:
  - minor_heal
current_hp: 12
max_hp: 15
current_composure: 10
max_composure: 12
weapon: sword
armor: leather
items:
  potion: 2
`)

	chars, err := LoadCharacters(dir)
	require.NoError(t, err)
	require.Contains(t, chars, "ava")

	ava := chars["ava"]
	assert.Equal(t, "Ava", ava.Name)
	assert.Equal(t, 3, ava.Level)
	assert.Equal(t, 18, ava.Stats[rules.Stat("Might")])
	assert.Equal(t, 3, ava.Skills["Blades"])
	assert.Equal(t, []string{"veteran"}, ava.Talents)
	assert.Equal(t, "sword", ava.Equipment.WeaponID)
	assert.Equal(t, "leather", ava.Equipment.ArmorID)
	assert.Equal(t, 2, ava.Equipment.Items["potion"])
}

func TestLoadCharactersRejectsUnknownField(t *testing.T) {
	dir := t.TempDir()
	writeYAML(t, dir, "bad.yaml", `
id: bad
name: Bad
max_hp: 10
hit_points: 10
`)

	_, err := LoadCharacters(dir)
	assert.Error(t, err)
}

func TestLoadCharactersRejectsZeroMaxHP(t *testing.T) {
	dir := t.TempDir()
	writeYAML(t, dir, "bad.yaml", `
id: bad
name: Bad
max_hp: 0
`)

	_, err := LoadCharacters(dir)
	assert.ErrorContains(t, err, "max_hp")
}

func TestLoadLocations(t *testing.T) {
	dir := t.TempDir()
	writeYAML(t, dir, "crossroads.yaml", `
id: crossroads
name: The Crossroads
width: 10
height: 8
blocked:
  - [4, 4]
  - [4, 5]
`)

	locs, err := LoadLocations(dir)
	require.NoError(t, err)
	require.Contains(t, locs, "crossroads")

	loc := locs["crossroads"]
	assert.Equal(t, "The Crossroads", loc.Name)
	assert.True(t, loc.Passable(0, 0))
	assert.False(t, loc.Passable(4, 4))
	assert.False(t, loc.Passable(10, 0))
}

func TestLoadLocationsRejectsTinyGrid(t *testing.T) {
	dir := t.TempDir()
	writeYAML(t, dir, "closet.yaml", `
id: closet
name: Closet
width: 1
height: 1
`)

	_, err := LoadLocations(dir)
	assert.ErrorContains(t, err, "at least 2x2")
}
