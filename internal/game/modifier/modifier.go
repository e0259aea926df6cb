// Package modifier aggregates the passive bonuses active on a combatant into
// a per-action bundle. A bundle is rebuilt from the combatant's talents and
// equipment for every roll; it is never cached, since gear and talents can
// change between actions.
package modifier

import (
	"github.com/cory-johannsen/fulcrum/internal/game/ruleset"
)

// Context describes the action a bundle is being built for. Tags carry the
// descriptive vocabulary of the action (weapon category, reach, governing
// stat, action type) that entries declare requirements against.
type Context struct {
	ActionType string
	Tags       []string
}

// HasTag reports whether tag is present in the context.
func (c Context) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// matches reports whether every required tag is present in the context.
func (c Context) matches(required []string) bool {
	for _, tag := range required {
		if !c.HasTag(tag) {
			return false
		}
	}
	return true
}

// Bundle is the per-action aggregate of all matching passive modifiers.
type Bundle struct {
	StatBonuses      map[string]int
	SkillBonuses     map[string]int
	RollBonuses      map[string]int // keyed "contested_check:<stat>", "save_roll:<target>"
	ResourceMax      map[string]int
	DamageBonus      int
	DRBonus          int
	InitiativeBonus  int
	ComposureDR      int
	Rerolls          []ruleset.ModifierEntry
	ResourceRestores []ruleset.ModifierEntry
	IgnoredPenalties []ruleset.ModifierEntry
}

// newBundle creates an empty Bundle.
func newBundle() *Bundle {
	return &Bundle{
		StatBonuses:  make(map[string]int),
		SkillBonuses: make(map[string]int),
		RollBonuses:  make(map[string]int),
		ResourceMax:  make(map[string]int),
	}
}

// ContestedCheckBonus returns the accumulated contested-check bonus for the
// given governing stat.
func (b *Bundle) ContestedCheckBonus(stat string) int {
	return b.RollBonuses["contested_check:"+stat]
}

// SaveRollBonus returns the accumulated save-roll bonus for the given target.
func (b *Bundle) SaveRollBonus(target string) int {
	return b.RollBonuses["save_roll:"+target]
}

// Snapshot is the combatant data a bundle is aggregated from: learned talent
// definitions plus the passive entries of carried equipment.
type Snapshot struct {
	Talents      []*ruleset.TalentDef
	ItemPassives []ruleset.ModifierEntry
}

// Aggregate scans every modifier entry in the snapshot and accumulates the
// entries whose required tags all appear in the context. Entries with an
// unrecognized effect type are skipped, so new data-defined effects degrade
// to no-ops instead of mis-aggregating.
//
// Postcondition: Returns a non-nil Bundle.
func Aggregate(snap Snapshot, ctx Context) *Bundle {
	bundle := newBundle()
	for _, talent := range snap.Talents {
		if talent == nil {
			continue
		}
		for _, entry := range talent.Modifiers {
			accumulate(bundle, entry, ctx)
		}
	}
	for _, entry := range snap.ItemPassives {
		accumulate(bundle, entry, ctx)
	}
	return bundle
}

func accumulate(b *Bundle, entry ruleset.ModifierEntry, ctx Context) {
	if !ctx.matches(entry.RequiredTags) {
		return
	}

	switch entry.EffectType {
	case "stat_bonus":
		if entry.Target != "" {
			b.StatBonuses[entry.Target] += entry.Value
		}
	case "skill_bonus", "skill_check":
		if entry.Target != "" {
			b.SkillBonuses[entry.Target] += entry.Value
		}
	case "contested_check":
		// Applies only when the targeted stat governs this action.
		if entry.Target != "" && ctx.HasTag(entry.Target) {
			b.RollBonuses["contested_check:"+entry.Target] += entry.Value
		}
	case "save_roll":
		if entry.Target != "" {
			b.RollBonuses["save_roll:"+entry.Target] += entry.Value
		}
	case "damage_bonus":
		b.DamageBonus += entry.Value
	case "dr_bonus", "damage_reduction":
		b.DRBonus += entry.Value
	case "resource_max":
		if entry.Target != "" {
			b.ResourceMax[entry.Target] += entry.Value
		}
	case "initiative":
		b.InitiativeBonus += entry.Value
	case "composure_loss_reduction":
		b.ComposureDR += entry.Value
	case "reroll_on_failure":
		b.Rerolls = append(b.Rerolls, entry)
	case "resource_restore_on_check", "resource_restore_on_trigger":
		b.ResourceRestores = append(b.ResourceRestores, entry)
	case "ignore_status_penalty", "ignore_terrain_penalty":
		b.IgnoredPenalties = append(b.IgnoredPenalties, entry)
	default:
		// Unknown effect kinds are data-defined extensions; ignore.
	}
}
