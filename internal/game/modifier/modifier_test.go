package modifier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/fulcrum/internal/game/modifier"
	"github.com/cory-johannsen/fulcrum/internal/game/ruleset"
)

func talent(id string, mods ...ruleset.ModifierEntry) *ruleset.TalentDef {
	return &ruleset.TalentDef{ID: id, Name: id, Modifiers: mods}
}

func TestAggregateSumsSameCategory(t *testing.T) {
	snap := modifier.Snapshot{
		Talents: []*ruleset.TalentDef{
			talent("a",
				ruleset.ModifierEntry{EffectType: "damage_bonus", Value: 2},
				ruleset.ModifierEntry{EffectType: "dr_bonus", Value: 1},
			),
			talent("b", ruleset.ModifierEntry{EffectType: "damage_bonus", Value: 3}),
		},
		ItemPassives: []ruleset.ModifierEntry{
			{EffectType: "damage_bonus", Value: 1},
		},
	}

	bundle := modifier.Aggregate(snap, modifier.Context{ActionType: "attack"})
	assert.Equal(t, 6, bundle.DamageBonus)
	assert.Equal(t, 1, bundle.DRBonus)
}

func TestAggregateRequiredTagsSubset(t *testing.T) {
	snap := modifier.Snapshot{
		Talents: []*ruleset.TalentDef{
			talent("melee_only", ruleset.ModifierEntry{
				EffectType:   "damage_bonus",
				Value:        4,
				RequiredTags: []string{"melee", "blades"},
			}),
		},
	}

	// Both tags present: entry applies.
	bundle := modifier.Aggregate(snap, modifier.Context{
		ActionType: "attack",
		Tags:       []string{"melee", "blades", "Might"},
	})
	assert.Equal(t, 4, bundle.DamageBonus)

	// Missing one required tag: entry is skipped.
	bundle = modifier.Aggregate(snap, modifier.Context{
		ActionType: "attack",
		Tags:       []string{"melee"},
	})
	assert.Equal(t, 0, bundle.DamageBonus)
}

func TestAggregateContestedCheckTargetMustBeInContext(t *testing.T) {
	snap := modifier.Snapshot{
		Talents: []*ruleset.TalentDef{
			talent("might_checks", ruleset.ModifierEntry{
				EffectType: "contested_check",
				Target:     "Might",
				Value:      2,
			}),
		},
	}

	bundle := modifier.Aggregate(snap, modifier.Context{Tags: []string{"melee", "Might"}})
	assert.Equal(t, 2, bundle.ContestedCheckBonus("Might"))

	// A Finesse-governed action ignores the Might bonus.
	bundle = modifier.Aggregate(snap, modifier.Context{Tags: []string{"ranged", "Finesse"}})
	assert.Equal(t, 0, bundle.ContestedCheckBonus("Might"))
}

func TestAggregateCategories(t *testing.T) {
	snap := modifier.Snapshot{
		Talents: []*ruleset.TalentDef{
			talent("mixed",
				ruleset.ModifierEntry{EffectType: "stat_bonus", Target: "Might", Value: 1},
				ruleset.ModifierEntry{EffectType: "skill_bonus", Target: "Blades", Value: 2},
				ruleset.ModifierEntry{EffectType: "save_roll", Target: "Poison", Value: 3},
				ruleset.ModifierEntry{EffectType: "resource_max", Target: "Chi", Value: 2},
				ruleset.ModifierEntry{EffectType: "initiative", Value: 1},
				ruleset.ModifierEntry{EffectType: "composure_loss_reduction", Value: 2},
				ruleset.ModifierEntry{EffectType: "reroll_on_failure", Target: "Blades"},
				ruleset.ModifierEntry{EffectType: "ignore_status_penalty", Target: "Nausea"},
			),
		},
	}

	bundle := modifier.Aggregate(snap, modifier.Context{})
	assert.Equal(t, 1, bundle.StatBonuses["Might"])
	assert.Equal(t, 2, bundle.SkillBonuses["Blades"])
	assert.Equal(t, 3, bundle.SaveRollBonus("Poison"))
	assert.Equal(t, 2, bundle.ResourceMax["Chi"])
	assert.Equal(t, 1, bundle.InitiativeBonus)
	assert.Equal(t, 2, bundle.ComposureDR)
	require.Len(t, bundle.Rerolls, 1)
	require.Len(t, bundle.IgnoredPenalties, 1)
}

func TestAggregateIgnoresUnknownEffects(t *testing.T) {
	snap := modifier.Snapshot{
		Talents: []*ruleset.TalentDef{
			talent("future",
				ruleset.ModifierEntry{EffectType: "summon_familiar", Value: 99},
				ruleset.ModifierEntry{EffectType: "damage_bonus", Value: 1},
			),
		},
	}

	bundle := modifier.Aggregate(snap, modifier.Context{})
	assert.Equal(t, 1, bundle.DamageBonus)
}

func TestAggregateNeverPanicsOnArbitraryEntries(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		entry := ruleset.ModifierEntry{
			EffectType:   rapid.StringN(0, 24, 24).Draw(t, "effectType"),
			Target:       rapid.StringN(0, 12, 12).Draw(t, "target"),
			Value:        rapid.IntRange(-100, 100).Draw(t, "value"),
			RequiredTags: rapid.SliceOfN(rapid.StringN(0, 8, 8), 0, 3).Draw(t, "tags"),
		}
		snap := modifier.Snapshot{ItemPassives: []ruleset.ModifierEntry{entry}}
		bundle := modifier.Aggregate(snap, modifier.Context{Tags: []string{"melee"}})
		require.NotNil(t, bundle)
	})
}
