package combat

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fulcrum/internal/game/modifier"
	"github.com/cory-johannsen/fulcrum/internal/game/rules"
)

// attackBoost carries the temporary riders a modify_attack effect adds to the
// basic attack it wraps.
type attackBoost struct {
	damageDice string
	rollBonus  int
}

// handleAttack resolves a basic weapon attack from actor against targetID.
// A missing or already-defeated target degrades to a logged wasted action;
// the turn is still consumed.
func (e *Engine) handleAttack(enc *Encounter, actor *Participant, targetID string, log []string, boost *attackBoost) []string {
	target := enc.Participant(targetID)
	if target == nil || !target.IsAlive() {
		log = append(log, actor.Name+" swings at nothing.")
		return log
	}

	weapon := e.gear.Weapon(equippedWeaponID(actor))
	armor := e.gear.Armor(equippedArmorID(target))

	atkCtx := modifier.Context{ActionType: "attack", Tags: weapon.ContextTags()}
	atkBundle := e.aggregate(actor, atkCtx)

	defCtx := modifier.Context{ActionType: "defense", Tags: []string{armor.Category, string(armor.SkillStat)}}
	defBundle := e.aggregate(target, defCtx)

	attacker := rules.AttackerInput{
		StatScore:   actor.Stats.Get(weapon.SkillStat),
		SkillRank:   actor.SkillRank(weapon.Skill),
		RollBonus:   atkBundle.ContestedCheckBonus(string(weapon.SkillStat)),
		RollPenalty: e.statusAttackPenalty(actor, atkBundle),
	}
	if boost != nil {
		attacker.RollBonus += boost.rollBonus
	}

	defender := rules.DefenderInput{
		StatScore:     target.Stats.Get(armor.SkillStat),
		SkillRank:     target.SkillRank(armor.Skill),
		WeaponPenalty: weapon.Penalty,
		RollBonus:     defBundle.ContestedCheckBonus(string(armor.SkillStat)),
		RollPenalty:   e.statusDefensePenalty(target),
	}

	check := rules.ContestedCheck(e.src(), attacker, defender)
	log = append(log, fmt.Sprintf("%s attacks %s with %s: %d vs %d (%s).",
		actor.Name, target.Name, weapon.Name,
		check.AttackerTotal, check.DefenderTotal, check.Outcome))

	if !check.Outcome.IsHit() {
		if check.Outcome == rules.OutcomeCriticalFumble {
			log = append(log, actor.Name+" fumbles badly!")
		}
		return log
	}

	bonusDamage := atkBundle.DamageBonus
	if boost != nil && boost.damageDice != "" {
		extra, err := e.roller.RollExpr(boost.damageDice)
		if err != nil {
			e.logger.Warn("malformed boost dice, ignoring",
				zap.String("expression", boost.damageDice),
				zap.Error(err),
			)
		} else {
			bonusDamage += extra.Total()
		}
	}

	dmg, err := rules.Damage(e.src(), rules.DamageInput{
		DamageDice:  weapon.Damage,
		StatScore:   actor.Stats.Get(weapon.SkillStat),
		DamageBonus: bonusDamage,
		DRIgnore:    weapon.DRIgnore,
		DefenderDR:  armor.DR + defBundle.DRBonus,
	})
	if err != nil {
		e.logger.Warn("malformed weapon damage dice",
			zap.String("weapon", weapon.ID),
			zap.Error(err),
		)
	}

	target.ApplyDamage(dmg.FinalDamage)
	log = append(log, fmt.Sprintf("%s takes %d damage (%d absorbed).",
		target.Name, dmg.FinalDamage, dmg.DRApplied))

	switch check.Outcome {
	case rules.OutcomeSolidHit:
		log = e.applyStatus(target, "staggered", 0, log)
	case rules.OutcomeCriticalHit:
		log = e.applyStatus(target, "bleeding", 0, log)
	}

	if !target.IsAlive() {
		log = append(log, target.Name+" falls!")
	}
	return log
}

func equippedWeaponID(p *Participant) string {
	if p.Equipment == nil {
		return ""
	}
	return p.Equipment.WeaponID
}

func equippedArmorID(p *Participant) string {
	if p.Equipment == nil {
		return ""
	}
	return p.Equipment.ArmorID
}

// statusAttackPenalty sums the attack penalties of the actor's active
// statuses, unless a modifier lets the actor ignore status penalties.
func (e *Engine) statusAttackPenalty(p *Participant, bundle *modifier.Bundle) int {
	for _, entry := range bundle.IgnoredPenalties {
		if entry.EffectType == "ignore_status_penalty" {
			return 0
		}
	}
	penalty := 0
	for _, st := range p.Statuses {
		if def, ok := e.statuses.Get(st.ID); ok {
			penalty += def.AttackPenalty
		}
	}
	return penalty
}

func (e *Engine) statusDefensePenalty(p *Participant) int {
	penalty := 0
	for _, st := range p.Statuses {
		if def, ok := e.statuses.Get(st.ID); ok {
			penalty += def.DefensePenalty
		}
	}
	return penalty
}

// applyStatus adds the status to the target, logging the result. An ID
// missing from the registry is skipped so data typos do not abort combat.
func (e *Engine) applyStatus(target *Participant, statusID string, duration int, log []string) []string {
	def, ok := e.statuses.Get(statusID)
	if !ok {
		e.logger.Warn("unknown status, skipping", zap.String("status_id", statusID))
		return log
	}
	if duration <= 0 {
		duration = def.DefaultDuration
		if duration <= 0 {
			duration = 1
		}
	}
	target.AddStatus(def.ID, duration)
	return append(log, target.Name+" is now "+def.Name+"!")
}
