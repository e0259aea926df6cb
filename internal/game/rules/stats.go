// Package rules implements the Fulcrum deterministic rules layer: stat
// modifiers, contested checks, damage resolution, initiative, and derived
// vitals. All functions are pure given a dice.Source.
package rules

// Stat names the twelve attributes of the Fulcrum ruleset.
type Stat string

const (
	StatMight     Stat = "Might"
	StatEndurance Stat = "Endurance"
	StatFinesse   Stat = "Finesse"
	StatVitality  Stat = "Vitality"
	StatReflexes  Stat = "Reflexes"
	StatFortitude Stat = "Fortitude"
	StatLogic     Stat = "Logic"
	StatKnowledge Stat = "Knowledge"
	StatAwareness Stat = "Awareness"
	StatIntuition Stat = "Intuition"
	StatWillpower Stat = "Willpower"
	StatCharm     Stat = "Charm"
)

// AllStats lists every attribute in rulebook order.
var AllStats = []Stat{
	StatMight, StatEndurance, StatFinesse, StatVitality,
	StatReflexes, StatFortitude, StatLogic, StatKnowledge,
	StatAwareness, StatIntuition, StatWillpower, StatCharm,
}

// Stats holds a combatant's attribute scores keyed by stat name.
// Missing entries are treated as the baseline score of 10.
type Stats map[Stat]int

// Get returns the score for stat, defaulting to 10 when absent.
func (s Stats) Get(stat Stat) int {
	if score, ok := s[stat]; ok {
		return score
	}
	return 10
}

// Mod returns the modifier for stat.
func (s Stats) Mod(stat Stat) int {
	return Modifier(s.Get(stat))
}

// Modifier converts an attribute score to its roll modifier.
//
// Postcondition: return value == floor((score - 10) / 2).
func Modifier(score int) int {
	diff := score - 10
	if diff < 0 {
		return (diff - 1) / 2
	}
	return diff / 2
}

// SkillMasteryBonus returns the mastery tier bonus for a skill rank.
// Ranks 0-2 grant +0, 3-5 grant +1, 6-8 grant +2, and so on.
//
// Postcondition: return value == floor(rank / 3); negative ranks yield 0.
func SkillMasteryBonus(rank int) int {
	if rank < 0 {
		return 0
	}
	return rank / 3
}

// XPForLevel returns the total experience required to advance past level.
func XPForLevel(level int) int {
	if level < 1 {
		return 1000
	}
	return level * 1000
}
