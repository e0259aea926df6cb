package rules

import "github.com/cory-johannsen/fulcrum/internal/game/dice"

// Outcome classifies the result of a contested attack check.
type Outcome string

const (
	OutcomeCriticalFumble Outcome = "critical_fumble"
	OutcomeMiss           Outcome = "miss"
	OutcomeHit            Outcome = "hit"
	OutcomeSolidHit       Outcome = "solid_hit"
	OutcomeCriticalHit    Outcome = "critical_hit"
)

// IsHit reports whether the outcome lands the attack.
func (o Outcome) IsHit() bool {
	switch o {
	case OutcomeHit, OutcomeSolidHit, OutcomeCriticalHit:
		return true
	}
	return false
}

// AttackerInput carries the attacker's side of a contested check. Bonuses and
// penalties arrive pre-aggregated from the modifier layer.
type AttackerInput struct {
	StatScore   int // score of the weapon's governing stat
	SkillRank   int // rank in the weapon's governing skill
	RollBonus   int // aggregated attack roll bonuses
	RollPenalty int // aggregated attack roll penalties
}

// DefenderInput carries the defender's side of a contested check.
type DefenderInput struct {
	StatScore     int // score of the armor's governing stat
	SkillRank     int // rank in the armor's governing skill
	WeaponPenalty int // defense penalty imposed by the attacker's weapon
	RollBonus     int // aggregated defense roll bonuses
	RollPenalty   int // aggregated defense roll penalties
}

// ContestedResult is the full audit trail of a contested attack check.
type ContestedResult struct {
	AttackerRoll  int
	AttackerTotal int
	DefenderRoll  int
	DefenderTotal int
	Margin        int
	Outcome       Outcome
}

// ContestedCheck resolves an attacker-versus-defender opposed d20 roll.
// A natural 1 on the attacker's die is always a critical fumble and a natural
// 20 is always a critical hit, regardless of modifiers. Otherwise the margin
// (attacker total minus defender total) decides: >= 5 is a solid hit, >= 0 a
// hit, and anything less a miss.
//
// Precondition: src must be non-nil.
func ContestedCheck(src dice.Source, attacker AttackerInput, defender DefenderInput) ContestedResult {
	attackerRoll := dice.D20(src)
	defenderRoll := dice.D20(src)

	attackerTotal := attackerRoll +
		Modifier(attacker.StatScore) +
		SkillMasteryBonus(attacker.SkillRank) +
		attacker.RollBonus -
		attacker.RollPenalty

	defenderTotal := defenderRoll +
		Modifier(defender.StatScore) +
		SkillMasteryBonus(defender.SkillRank) -
		defender.WeaponPenalty +
		defender.RollBonus -
		defender.RollPenalty

	margin := attackerTotal - defenderTotal

	outcome := OutcomeMiss
	switch {
	case attackerRoll == 1:
		outcome = OutcomeCriticalFumble
	case attackerRoll == 20:
		outcome = OutcomeCriticalHit
	case margin >= 5:
		outcome = OutcomeSolidHit
	case margin >= 0:
		outcome = OutcomeHit
	}

	return ContestedResult{
		AttackerRoll:  attackerRoll,
		AttackerTotal: attackerTotal,
		DefenderRoll:  defenderRoll,
		DefenderTotal: defenderTotal,
		Margin:        margin,
		Outcome:       outcome,
	}
}
