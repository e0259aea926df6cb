package combat

import (
	"github.com/cory-johannsen/fulcrum/internal/game/ruleset"
)

// DecideNPCAction picks the NPC's next action from its behavior tags and
// known abilities. The decision is pure given the encounter state and the
// engine's dice source:
//
//	1. Heal self when below half HP and a heal ability is available.
//	2. Cowardly NPCs below 30% HP wait the round out.
//	3. Pick a target: the weakest living player for targets_weakest,
//	   otherwise a random one.
//	4. Half the time, open with a debuff ability if one is available.
//	5. Otherwise, attack.
func (e *Engine) DecideNPCAction(enc *Encounter, actor *Participant) ActionRequest {
	players := enc.livingMembers(FactionPlayer)
	if len(players) == 0 {
		return ActionRequest{Type: ActionWait}
	}

	if healID := e.usableAbility(actor, isHealAbility); healID != "" &&
		actor.CurrentHP*2 < actor.MaxHP {
		return ActionRequest{
			Type:      ActionUseAbility,
			AbilityID: healID,
			TargetID:  actor.ID,
		}
	}

	if hasTag(actor.BehaviorTags, "cowardly") && actor.CurrentHP*10 < actor.MaxHP*3 {
		return ActionRequest{Type: ActionWait}
	}

	var target *Participant
	if hasTag(actor.BehaviorTags, "targets_weakest") {
		target = players[0]
		for _, p := range players[1:] {
			if p.CurrentHP < target.CurrentHP {
				target = p
			}
		}
	} else {
		target = players[e.src().Intn(len(players))]
	}

	if debuffID := e.usableAbility(actor, isDebuffAbility); debuffID != "" &&
		e.src().Float64() < 0.5 {
		return ActionRequest{
			Type:      ActionUseAbility,
			AbilityID: debuffID,
			TargetID:  target.ID,
		}
	}

	return ActionRequest{Type: ActionAttack, TargetID: target.ID}
}

// usableAbility returns the first of the actor's abilities matching the
// predicate that the actor can still pay for.
func (e *Engine) usableAbility(actor *Participant, match func(*ruleset.AbilityDef) bool) string {
	for _, id := range actor.Abilities {
		def, ok := e.abilities.Get(id)
		if !ok || !match(def) {
			continue
		}
		if def.UsesPerEncounter > 0 && actor.AbilityUses[def.ID] >= def.UsesPerEncounter {
			continue
		}
		if def.Cost != nil && def.Cost.Amount > 0 {
			pool, ok := actor.Resources[def.Cost.Resource]
			if !ok || pool.Current < def.Cost.Amount {
				continue
			}
		}
		return def.ID
	}
	return ""
}

func isHealAbility(def *ruleset.AbilityDef) bool {
	for _, effect := range def.Effects {
		if effect.Kind() == ruleset.EffectHeal {
			return true
		}
	}
	return false
}

func isDebuffAbility(def *ruleset.AbilityDef) bool {
	for _, effect := range def.Effects {
		switch effect.Kind() {
		case ruleset.EffectApplyStatus, ruleset.EffectApplyStatusRoll, ruleset.EffectRandomStatus:
			return true
		}
	}
	return false
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
