package npc_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/fulcrum/internal/game/npc"
	"github.com/cory-johannsen/fulcrum/internal/game/rules"
)

// stubSource returns canned values for deterministic loot rolls.
type stubSource struct {
	intn   int
	chance float64
}

func (s stubSource) Intn(n int) int {
	if s.intn >= n {
		return n - 1
	}
	return s.intn
}

func (s stubSource) Float64() float64 { return s.chance }

func TestLoadTemplates(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bandit.yaml"), []byte(`
id: bandit
name: Bandit
level: 2
stats:
  Might: 12
  Reflexes: 14
skills:
  Blades: 3
abilities: [Nausea]
behavior_tags: [targets_weakest]
weapon: shortsword
armor: leather
xp_value: 50
loot:
  currency:
    min: 5
    max: 20
  items:
    - item: healing_draught
      chance: 0.25
      min_qty: 1
      max_qty: 1
`), 0o600))

	templates, err := npc.LoadTemplates(dir)
	require.NoError(t, err)
	require.Len(t, templates, 1)

	bandit := templates["bandit"]
	require.NotNil(t, bandit)
	assert.Equal(t, 2, bandit.Level)
	assert.Equal(t, 12, bandit.Stats[rules.StatMight])
	assert.True(t, bandit.HasBehavior(npc.BehaviorTargetsWeakest))
	assert.False(t, bandit.HasBehavior(npc.BehaviorCowardly))
	require.NotNil(t, bandit.Loot)
}

func TestLoadTemplatesRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(`
id: bad
name: Bad
level: 0
`), 0o600))

	_, err := npc.LoadTemplates(dir)
	assert.Error(t, err)
}

func TestSpawn(t *testing.T) {
	tmpl := &npc.Template{
		ID:    "wolf",
		Name:  "Wolf",
		Level: 1,
		Stats: map[rules.Stat]int{
			rules.StatEndurance: 14,
			rules.StatVitality:  12,
		},
		Abilities: []string{"Minor Heal"},
		XPValue:   25,
	}
	require.NoError(t, tmpl.Validate())

	inst := npc.Spawn(tmpl)
	assert.NotEmpty(t, inst.ID)
	assert.Equal(t, "wolf", inst.TemplateID)
	// 10 + 1 + mods: Endurance +2, Vitality +1, others 0
	assert.Equal(t, 14, inst.MaxHP)
	assert.Equal(t, inst.MaxHP, inst.CurrentHP)
	assert.True(t, inst.HasAbility("Minor Heal"))
	assert.False(t, inst.HasAbility("Fireball"))

	other := npc.Spawn(tmpl)
	assert.NotEqual(t, inst.ID, other.ID)
}

func TestLootTableValidate(t *testing.T) {
	lt := &npc.LootTable{Items: []npc.ItemDrop{{ItemID: "", Chance: 0.5, MinQty: 1, MaxQty: 1}}}
	assert.Error(t, lt.Validate())

	lt = &npc.LootTable{Items: []npc.ItemDrop{{ItemID: "x", Chance: 1.5, MinQty: 1, MaxQty: 1}}}
	assert.Error(t, lt.Validate())

	lt = &npc.LootTable{Currency: &npc.CurrencyDrop{Min: 10, Max: 5}}
	assert.Error(t, lt.Validate())

	lt = &npc.LootTable{}
	assert.NoError(t, lt.Validate())
}

func TestGenerateLootDropChance(t *testing.T) {
	lt := npc.LootTable{
		Currency: &npc.CurrencyDrop{Min: 5, Max: 10},
		Items: []npc.ItemDrop{
			{ItemID: "gem", Chance: 0.5, MinQty: 2, MaxQty: 2},
		},
	}
	require.NoError(t, lt.Validate())

	// Chance roll below the threshold: the item drops.
	result := npc.GenerateLoot(lt, stubSource{intn: 3, chance: 0.49})
	require.Len(t, result.Items, 1)
	assert.Equal(t, "gem", result.Items[0].ItemDefID)
	assert.Equal(t, 2, result.Items[0].Quantity)
	assert.NotEmpty(t, result.Items[0].InstanceID)
	assert.Equal(t, 8, result.Currency)

	// Chance roll at the threshold: no drop.
	result = npc.GenerateLoot(lt, stubSource{intn: 0, chance: 0.5})
	assert.Empty(t, result.Items)
	assert.Equal(t, 5, result.Currency)
}
