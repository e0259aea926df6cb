package rules

import (
	"fmt"

	"github.com/cory-johannsen/fulcrum/internal/game/dice"
)

// DamageInput carries the inputs to a damage resolution. Bonuses, penalties,
// and the DR-ignore modifier arrive pre-aggregated from the modifier layer.
type DamageInput struct {
	DamageDice    string // weapon or ability dice expression, e.g. "2d6" or "0"
	StatScore     int    // score of the damage-governing stat
	DamageBonus   int    // aggregated flat damage bonuses
	DamagePenalty int    // aggregated flat damage penalties
	DRIgnore      int    // portion of the defender's DR the attacker ignores
	DefenderDR    int    // defender's base damage reduction
}

// DamageResult is the full breakdown of a damage resolution.
//
// Invariant: FinalDamage >= 0 and DRApplied <= Subtotal.
type DamageResult struct {
	Rolls       []int
	RollTotal   int
	StatBonus   int
	MiscBonus   int
	Subtotal    int
	DRApplied   int
	FinalDamage int
}

// Damage resolves a damage roll against the defender's damage reduction.
// A malformed dice expression yields a zero-damage result alongside the parse
// error so callers can log it and continue.
//
// Precondition: src must be non-nil.
// Postcondition: result.FinalDamage >= 0; result.DRApplied never exceeds
//
//	result.Subtotal.
func Damage(src dice.Source, in DamageInput) (DamageResult, error) {
	expr, err := dice.Parse(in.DamageDice)
	if err != nil {
		return DamageResult{}, fmt.Errorf("rules: damage dice: %w", err)
	}

	roll := dice.Roll(expr, src)

	statBonus := Modifier(in.StatScore)
	miscBonus := in.DamageBonus - in.DamagePenalty
	subtotal := roll.Total() + statBonus + miscBonus

	effectiveDR := in.DefenderDR - in.DRIgnore
	if effectiveDR < 0 {
		effectiveDR = 0
	}

	drApplied := effectiveDR
	if drApplied > subtotal {
		drApplied = subtotal
	}

	final := subtotal - effectiveDR
	if final < 0 {
		final = 0
	}

	return DamageResult{
		Rolls:       roll.Dice,
		RollTotal:   roll.Total(),
		StatBonus:   statBonus,
		MiscBonus:   miscBonus,
		Subtotal:    subtotal,
		DRApplied:   drApplied,
		FinalDamage: final,
	}, nil
}
