package combat

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fulcrum/internal/game/dice"
	"github.com/cory-johannsen/fulcrum/internal/game/modifier"
	"github.com/cory-johannsen/fulcrum/internal/game/rules"
	"github.com/cory-johannsen/fulcrum/internal/game/ruleset"
)

// handleAbility resolves an ability use. An unknown ability id, an exhausted
// per-encounter budget, or an unpayable cost forfeits the turn with a log
// line; individual effects the engine does not recognize are skipped.
func (e *Engine) handleAbility(enc *Encounter, actor *Participant, req ActionRequest, log []string) []string {
	def, ok := e.abilities.Get(req.AbilityID)
	if !ok {
		e.logger.Warn("unknown ability, forfeiting turn",
			zap.String("actor_id", actor.ID),
			zap.String("ability_id", req.AbilityID),
		)
		log = append(log, actor.Name+" fumbles with an unfamiliar technique.")
		return log
	}

	if !actor.KnowsAbility(def.ID) {
		e.logger.Warn("ability not learned, forfeiting turn",
			zap.String("actor_id", actor.ID),
			zap.String("ability_id", def.ID),
		)
		log = append(log, actor.Name+" has never learned "+def.Name+".")
		return log
	}

	if def.UsesPerEncounter > 0 && actor.AbilityUses[def.ID] >= def.UsesPerEncounter {
		log = append(log, actor.Name+" cannot use "+def.Name+" again this fight.")
		return log
	}

	if def.Cost != nil && def.Cost.Amount > 0 {
		if !actor.SpendResource(def.Cost.Resource, def.Cost.Amount) {
			log = append(log, fmt.Sprintf("%s lacks the %s to use %s.",
				actor.Name, def.Cost.Resource, def.Name))
			return log
		}
	}
	actor.AbilityUses[def.ID]++

	log = append(log, actor.Name+" uses "+def.Name+"!")

	target := enc.Participant(req.TargetID)
	for _, effect := range def.Effects {
		log = e.resolveEffect(enc, actor, target, def, effect, req, log)
	}
	return log
}

func (e *Engine) resolveEffect(enc *Encounter, actor, target *Participant, def *ruleset.AbilityDef, effect ruleset.Effect, req ActionRequest, log []string) []string {
	switch effect.Kind() {

	case ruleset.EffectModifyAttack:
		log = e.handleAttack(enc, actor, req.TargetID, log, &attackBoost{
			damageDice: effect.DamageBoost,
		})

	case ruleset.EffectDirectDamage:
		if target == nil || !target.IsAlive() {
			log = append(log, "The effect strikes nothing.")
			return log
		}
		dmg := e.rollAmount(effect.Amount)
		target.ApplyDamage(dmg)
		log = append(log, fmt.Sprintf("%s takes %d %s damage.", target.Name, dmg, effect.DamageType))
		if !target.IsAlive() {
			log = append(log, target.Name+" falls!")
		}

	case ruleset.EffectHeal:
		recipient := target
		if recipient == nil {
			recipient = actor
		}
		amount := e.rollAmount(effect.Amount)
		recipient.Heal(amount)
		log = append(log, fmt.Sprintf("%s recovers %d HP.", recipient.Name, amount))

	case ruleset.EffectApplyStatus:
		if target == nil || !target.IsAlive() {
			return log
		}
		log = e.applyStatus(target, effect.StatusID, 0, log)

	case ruleset.EffectApplyStatusRoll:
		if target == nil || !target.IsAlive() {
			return log
		}
		if e.saveRoll(target, effect.SaveStat, effect.DC) {
			log = append(log, target.Name+" resists the effect.")
			return log
		}
		log = e.applyStatus(target, effect.StatusID, 0, log)

	case ruleset.EffectMoveTarget:
		if target == nil || !target.IsAlive() {
			return log
		}
		log = e.forcedMove(enc, actor, target, effect.Distance, log)

	case ruleset.EffectMoveTargetRoll:
		if target == nil || !target.IsAlive() {
			return log
		}
		if e.saveRoll(target, effect.SaveStat, effect.DC) {
			log = append(log, target.Name+" holds their ground.")
			return log
		}
		log = e.forcedMove(enc, actor, target, effect.Distance, log)

	case ruleset.EffectMoveSelf:
		log = e.moveSelf(enc, actor, req.Coordinates, effect.Distance, log)

	case ruleset.EffectCreateZone:
		cx, cy := actor.X, actor.Y
		if req.Coordinates != nil {
			cx, cy = req.Coordinates[0], req.Coordinates[1]
		} else if target != nil {
			cx, cy = target.X, target.Y
		}
		zone := newRadiusZone(def.Name, actor.ID, cx, cy, effect.Zone)
		enc.ActiveZones = append(enc.ActiveZones, zone)
		log = append(log, fmt.Sprintf("%s covers the ground around (%d,%d).", def.Name, cx, cy))

	case ruleset.EffectAOEDamage:
		cx, cy := actor.X, actor.Y
		if req.Coordinates != nil {
			cx, cy = req.Coordinates[0], req.Coordinates[1]
		} else if target != nil {
			cx, cy = target.X, target.Y
		}
		dmg := e.rollAmount(effect.Amount)
		for _, p := range enc.Participants {
			if p.ID == actor.ID || !p.IsAlive() {
				continue
			}
			if chebyshev(p.X, p.Y, cx, cy) > effect.Radius {
				continue
			}
			p.ApplyDamage(dmg)
			log = append(log, fmt.Sprintf("%s is caught in the blast for %d damage.", p.Name, dmg))
			if !p.IsAlive() {
				log = append(log, p.Name+" falls!")
			}
		}

	case ruleset.EffectRandomStatus:
		if target == nil || !target.IsAlive() || len(effect.StatusList) == 0 {
			return log
		}
		pick := effect.StatusList[e.src().Intn(len(effect.StatusList))]
		log = e.applyStatus(target, pick, 0, log)

	default:
		e.logger.Warn("unknown effect type, skipping",
			zap.String("ability_id", def.ID),
			zap.String("effect_type", effect.Type),
		)
	}
	return log
}

// rollAmount rolls a dice expression, treating a malformed expression as zero
// after logging it.
func (e *Engine) rollAmount(expr string) int {
	if expr == "" {
		return 0
	}
	result, err := e.roller.RollExpr(expr)
	if err != nil {
		e.logger.Warn("malformed effect dice, treating as zero",
			zap.String("expression", expr),
			zap.Error(err),
		)
		return 0
	}
	return result.Total()
}

// saveRoll reports whether the target beats the DC on a d20 save governed by
// the named stat.
func (e *Engine) saveRoll(target *Participant, saveStat string, dc int) bool {
	roll := dice.D20(e.src())
	mod := target.Stats.Mod(rules.Stat(saveStat))
	bundle := e.aggregate(target, modifier.Context{ActionType: "save", Tags: []string{saveStat}})
	return roll+mod+bundle.SaveRollBonus(saveStat) >= dc
}
