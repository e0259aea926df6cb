package combat

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fulcrum/internal/game/npc"
)

// checkEndCondition evaluates whether either side is out of the fight and, if
// so, finalizes the encounter: status transition, reward grants, and vitals
// sync back to the world. A participant who is downed but alive still counts
// as out of the fight.
func (e *Engine) checkEndCondition(ctx context.Context, enc *Encounter, log *[]string) bool {
	if enc.Status.Terminal() {
		return true
	}

	playersStanding := e.standingCount(enc, FactionPlayer)
	npcsStanding := e.standingCount(enc, FactionNPC)

	switch {
	case npcsStanding == 0:
		enc.Status = StatusPlayersWin
		*log = append(*log, "The fight is won!")
		e.grantRewards(ctx, enc, log)
		e.syncPlayerVitals(ctx, enc)
		return true
	case playersStanding == 0:
		enc.Status = StatusNPCsWin
		*log = append(*log, "The party is defeated.")
		e.syncPlayerVitals(ctx, enc)
		return true
	}
	return false
}

// standingCount counts faction members still able to fight. Fled, dead, and
// downed-but-alive participants are all out.
func (e *Engine) standingCount(enc *Encounter, faction Faction) int {
	count := 0
	for _, p := range enc.Participants {
		if p.Faction != faction || !p.IsAlive() {
			continue
		}
		if p.downedButAlive(e.statuses) {
			continue
		}
		count++
	}
	return count
}

// grantRewards rolls loot for every defeated NPC and grants XP to every
// surviving player. Loot goes to the first surviving player; splitting the
// haul is a social matter, not an engine one.
func (e *Engine) grantRewards(ctx context.Context, enc *Encounter, log *[]string) {
	survivors := enc.livingMembers(FactionPlayer)
	if len(survivors) == 0 {
		return
	}

	totalXP := e.cfg.VictoryXP
	var drops []npc.LootResult

	for _, p := range enc.Participants {
		if p.Faction != FactionNPC || p.Fled || (p.CurrentHP > 0 && !p.downedButAlive(e.statuses)) {
			continue
		}
		totalXP += p.XPValue
		if p.Loot != nil {
			drops = append(drops, npc.GenerateLoot(*p.Loot, e.src()))
		}
	}

	recipient := survivors[0]
	for _, drop := range drops {
		if drop.Currency > 0 {
			*log = append(*log, fmt.Sprintf("%s collects %d coins.", recipient.Name, drop.Currency))
		}
		for _, item := range drop.Items {
			if err := e.world.GrantItem(ctx, recipient.ID, item.ItemDefID, item.Quantity); err != nil {
				e.logger.Error("loot grant failed",
					zap.String("character_id", recipient.ID),
					zap.String("item_id", item.ItemDefID),
					zap.Error(err),
				)
				continue
			}
			*log = append(*log, fmt.Sprintf("%s picks up %dx %s.", recipient.Name, item.Quantity, item.ItemDefID))
		}
	}

	for _, p := range survivors {
		if err := e.world.GrantXP(ctx, p.ID, totalXP); err != nil {
			e.logger.Error("xp grant failed",
				zap.String("character_id", p.ID),
				zap.Error(err),
			)
			continue
		}
		*log = append(*log, fmt.Sprintf("%s gains %d XP.", p.Name, totalXP))
	}
}

// syncPlayerVitals writes each player participant's HP and composure back to
// the world. Failures are logged; combat state is already final.
func (e *Engine) syncPlayerVitals(ctx context.Context, enc *Encounter) {
	for _, p := range enc.Participants {
		if p.Faction != FactionPlayer {
			continue
		}
		if err := e.world.UpdateVitals(ctx, p.ID, p.CurrentHP, p.CurrentComposure); err != nil {
			e.logger.Error("vitals sync failed",
				zap.String("character_id", p.ID),
				zap.Error(err),
			)
		}
	}
}
