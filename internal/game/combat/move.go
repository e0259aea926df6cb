package combat

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fulcrum/internal/game/inventory"
	"github.com/cory-johannsen/fulcrum/internal/game/ruleset"
)

// moveRange is the maximum Chebyshev distance a voluntary move covers in one
// action.
const moveRange = 5

// handleMove resolves a voluntary move. When the move would leave an
// opponent's threat range the move is suspended behind a PendingReaction and
// the second return value is true; the caller must not advance the turn.
func (e *Engine) handleMove(enc *Encounter, actor *Participant, req ActionRequest, log []string) ([]string, bool) {
	if req.Coordinates == nil {
		log = append(log, actor.Name+" shuffles in place.")
		return log, false
	}

	x, y := req.Coordinates[0], req.Coordinates[1]
	if chebyshev(actor.X, actor.Y, x, y) > moveRange {
		log = append(log, actor.Name+" cannot move that far.")
		return log, false
	}
	if enc.location != nil && !enc.location.Passable(x, y) {
		log = append(log, actor.Name+" finds the way blocked.")
		return log, false
	}
	if e.tileOccupied(enc, x, y) {
		log = append(log, actor.Name+" finds the spot already taken.")
		return log, false
	}

	if reactor := e.threateningOpponent(enc, actor, x, y); reactor != nil {
		enc.PendingReaction = &PendingReaction{
			ReactorID: reactor.ID,
			ActorID:   actor.ID,
			Type:      ReactionOpportunityAttack,
			destX:     x,
			destY:     y,
		}
		log = append(log, fmt.Sprintf("%s breaks away from %s!", actor.Name, reactor.Name))
		return log, true
	}

	return e.completeMove(enc, actor, x, y, log), false
}

// resolveReaction applies the reactor's decision on a pending opportunity
// attack, then completes the suspended move if the mover survives.
func (e *Engine) resolveReaction(ctx context.Context, enc *Encounter, req ActionRequest) (ActionResult, error) {
	pending := enc.PendingReaction
	enc.PendingReaction = nil

	reactor := enc.Participant(pending.ReactorID)
	mover := enc.Participant(pending.ActorID)
	log := []string{}

	if req.ReactionDecision == ReactionExecute && reactor != nil && reactor.IsAlive() {
		log = append(log, reactor.Name+" lashes out at the opening!")
		log = e.handleAttack(enc, reactor, pending.ActorID, log, nil)
	} else if reactor != nil {
		log = append(log, reactor.Name+" lets them go.")
	}

	if mover != nil && mover.IsAlive() {
		log = e.completeMove(enc, mover, pending.destX, pending.destY, log)
	}

	return e.finishAction(ctx, enc, log, true, "reaction resolved")
}

// completeMove updates the mover's tile and fires on_enter triggers for every
// zone the destination enters that the origin was not already inside.
func (e *Engine) completeMove(enc *Encounter, p *Participant, x, y int, log []string) []string {
	fromX, fromY := p.X, p.Y
	p.X, p.Y = x, y
	log = append(log, fmt.Sprintf("%s moves to (%d,%d).", p.Name, x, y))

	for _, zone := range enc.ActiveZones {
		if !zone.Contains(x, y) || zone.Contains(fromX, fromY) {
			continue
		}
		log = append(log, p.Name+" enters "+zone.Name+"!")
		for _, effect := range zone.triggersFor(ruleset.TriggerOnEnter) {
			log = e.applyZoneEffect(p, zone, effect, log)
		}
	}
	return log
}

// applyZoneEffect resolves a zone trigger effect against one participant.
// Zones support the damage and status effect kinds; anything else is skipped.
func (e *Engine) applyZoneEffect(p *Participant, zone *Zone, effect ruleset.Effect, log []string) []string {
	switch effect.Kind() {
	case ruleset.EffectDirectDamage:
		dmg := e.rollAmount(effect.Amount)
		p.ApplyDamage(dmg)
		log = append(log, fmt.Sprintf("%s takes %d damage from %s.", p.Name, dmg, zone.Name))
		if !p.IsAlive() {
			log = append(log, p.Name+" falls!")
		}
	case ruleset.EffectApplyStatus:
		log = e.applyStatus(p, effect.StatusID, 0, log)
	case ruleset.EffectApplyStatusRoll:
		if e.saveRoll(p, effect.SaveStat, effect.DC) {
			log = append(log, p.Name+" shrugs off "+zone.Name+".")
			return log
		}
		log = e.applyStatus(p, effect.StatusID, 0, log)
	default:
		e.logger.Warn("unsupported zone effect, skipping",
			zap.String("zone", zone.Name),
			zap.String("effect_type", effect.Type),
		)
	}
	return log
}

// threateningOpponent returns the first living opponent whose threat range
// covers the actor's current tile but not the destination. Nil means the move
// provokes nothing.
func (e *Engine) threateningOpponent(enc *Encounter, actor *Participant, destX, destY int) *Participant {
	for _, p := range enc.Participants {
		if p.Faction == actor.Faction || !p.IsAlive() {
			continue
		}
		reach := e.threatRange(p)
		if reach <= 0 {
			continue
		}
		inRange := chebyshev(p.X, p.Y, actor.X, actor.Y) <= reach
		leaving := chebyshev(p.X, p.Y, destX, destY) > reach
		if inRange && leaving {
			return p
		}
	}
	return nil
}

// threatRange is the widest reach the participant threatens: one tile for a
// melee weapon, extended by any status that declares a larger threat range.
func (e *Engine) threatRange(p *Participant) int {
	reach := 0
	if weapon := e.gear.Weapon(equippedWeaponID(p)); weapon.Reach == inventory.ReachMelee {
		reach = 1
	}
	for _, st := range p.Statuses {
		if def, ok := e.statuses.Get(st.ID); ok && def.ThreatRange > reach {
			reach = def.ThreatRange
		}
	}
	return reach
}

func (e *Engine) tileOccupied(enc *Encounter, x, y int) bool {
	for _, p := range enc.Participants {
		if p.IsAlive() && p.X == x && p.Y == y {
			return true
		}
	}
	return false
}

// forcedMove pushes the target away from the source by up to distance tiles,
// stopping at blocked or occupied tiles, then fires any zone on_enter
// triggers at the final tile.
func (e *Engine) forcedMove(enc *Encounter, source, target *Participant, distance int, log []string) []string {
	dx := sign(target.X - source.X)
	dy := sign(target.Y - source.Y)
	if dx == 0 && dy == 0 {
		dx = 1
	}

	x, y := target.X, target.Y
	for i := 0; i < distance; i++ {
		nx, ny := x+dx, y+dy
		if enc.location != nil && !enc.location.Passable(nx, ny) {
			break
		}
		if e.tileOccupied(enc, nx, ny) {
			break
		}
		x, y = nx, ny
	}

	if x == target.X && y == target.Y {
		log = append(log, target.Name+" does not budge.")
		return log
	}
	log = append(log, target.Name+" is thrown back!")
	return e.completeMove(enc, target, x, y, log)
}

// moveSelf relocates the actor toward the requested coordinates, covering at
// most distance tiles.
func (e *Engine) moveSelf(enc *Encounter, actor *Participant, coords *[2]int, distance int, log []string) []string {
	if coords == nil {
		return log
	}
	x, y := coords[0], coords[1]
	if chebyshev(actor.X, actor.Y, x, y) > distance {
		log = append(log, actor.Name+" cannot reach that spot.")
		return log
	}
	if enc.location != nil && !enc.location.Passable(x, y) {
		log = append(log, actor.Name+" finds the way blocked.")
		return log
	}
	if e.tileOccupied(enc, x, y) {
		log = append(log, actor.Name+" finds the spot already taken.")
		return log
	}
	return e.completeMove(enc, actor, x, y, log)
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
