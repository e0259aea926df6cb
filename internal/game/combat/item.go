package combat

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fulcrum/internal/game/inventory"
)

// handleItem consumes one carried item. Only healing items have a combat
// effect; anything else is spent with no result.
func (e *Engine) handleItem(enc *Encounter, actor *Participant, req ActionRequest, log []string) []string {
	def, ok := e.gear.Item(req.ItemID)
	if !ok {
		e.logger.Warn("unknown item, forfeiting turn",
			zap.String("actor_id", actor.ID),
			zap.String("item_id", req.ItemID),
		)
		log = append(log, actor.Name+" rummages for something that is not there.")
		return log
	}
	if actor.Equipment == nil || !actor.Equipment.ConsumeItem(def.ID) {
		log = append(log, actor.Name+" has no "+def.Name+" left.")
		return log
	}

	switch def.Kind {
	case inventory.ItemHealing:
		actor.Heal(def.Potency)
		log = append(log, fmt.Sprintf("%s uses %s and recovers %d HP.",
			actor.Name, def.Name, def.Potency))
	default:
		log = append(log, actor.Name+" uses "+def.Name+", to no visible effect.")
	}
	return log
}

// handleFlee rolls the configured flee chance. A fleeing player ends the
// encounter for the whole party; a fleeing NPC just leaves the fight. The
// return value reports whether the encounter ended.
func (e *Engine) handleFlee(ctx context.Context, enc *Encounter, actor *Participant, log *[]string) bool {
	if e.src().Float64() >= e.cfg.FleeChance {
		*log = append(*log, actor.Name+" tries to flee but cannot break away!")
		return false
	}

	if actor.Faction == FactionPlayer {
		enc.Status = StatusFled
		*log = append(*log, actor.Name+" flees, and the fight scatters!")
		e.syncPlayerVitals(ctx, enc)
		return true
	}

	actor.Fled = true
	*log = append(*log, actor.Name+" slips away from the fight!")
	return false
}
