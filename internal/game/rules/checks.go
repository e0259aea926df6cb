package rules

import "github.com/cory-johannsen/fulcrum/internal/game/dice"

// InitiativeStats lists the six attributes whose modifiers feed the
// initiative roll.
var InitiativeStats = []Stat{
	StatEndurance, StatReflexes, StatFortitude,
	StatLogic, StatIntuition, StatWillpower,
}

// InitiativeResult is the breakdown of an initiative roll.
type InitiativeResult struct {
	Roll      int
	Modifiers map[Stat]int
	Total     int
}

// Initiative rolls d20 plus the modifiers of the six initiative stats. There
// is no skill component.
//
// Precondition: src must be non-nil.
func Initiative(src dice.Source, stats Stats) InitiativeResult {
	roll := dice.D20(src)

	mods := make(map[Stat]int, len(InitiativeStats))
	total := roll
	for _, stat := range InitiativeStats {
		mod := stats.Mod(stat)
		mods[stat] = mod
		total += mod
	}

	return InitiativeResult{Roll: roll, Modifiers: mods, Total: total}
}

// CheckResult is the outcome of a d20 check against a difficulty class.
type CheckResult struct {
	Roll            int
	Total           int
	DC              int
	Success         bool
	CriticalSuccess bool
	CriticalFailure bool
}

// SkillCheck performs a standard d20 skill check: d20 + stat modifier + skill
// rank against the difficulty class.
//
// Precondition: src must be non-nil.
func SkillCheck(src dice.Source, statMod, skillRank, dc int) CheckResult {
	roll := dice.D20(src)
	total := roll + statMod + skillRank
	return CheckResult{
		Roll:            roll,
		Total:           total,
		DC:              dc,
		Success:         total >= dc,
		CriticalSuccess: roll == 20,
		CriticalFailure: roll == 1,
	}
}

// AbilityCheckDC returns the difficulty class for an ability of the given
// tier. Tiers 1-3 check against DC 12, 4-6 against 14, 7-9 against 16, and
// anything higher against 20.
func AbilityCheckDC(tier int) int {
	switch {
	case tier <= 3:
		return 12
	case tier <= 6:
		return 14
	case tier <= 9:
		return 16
	default:
		return 20
	}
}

// AbilityCheck performs a d20 check for activating a tiered ability:
// d20 + school rank + stat modifier against the tier's difficulty class.
//
// Precondition: src must be non-nil.
func AbilityCheck(src dice.Source, rank, statMod, tier int) CheckResult {
	roll := dice.D20(src)
	total := roll + rank + statMod
	dc := AbilityCheckDC(tier)
	return CheckResult{
		Roll:            roll,
		Total:           total,
		DC:              dc,
		Success:         total >= dc,
		CriticalSuccess: roll == 20,
		CriticalFailure: roll == 1,
	}
}
