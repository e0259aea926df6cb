package combat

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fulcrum/internal/game/ruleset"
)

// advanceTurn moves the turn pointer to the next participant still in the
// fight, wrapping into a new round when the order is exhausted. Dead and
// fled participants are passed over without consuming a turn.
func (e *Engine) advanceTurn(enc *Encounter, log *[]string) {
	n := len(enc.TurnOrder)
	if n == 0 {
		return
	}

	for i := 0; i < n; i++ {
		enc.CurrentTurnIndex = (enc.CurrentTurnIndex + 1) % n
		if enc.CurrentTurnIndex == 0 {
			e.startRound(enc, log)
		}
		actor := enc.CurrentActor()
		if actor != nil && actor.IsAlive() {
			e.zoneTurnStart(enc, actor, log)
			return
		}
	}
}

// startRound opens a new round: the round counter advances, zones burn down,
// and per-round status ticks run for every living participant.
func (e *Engine) startRound(enc *Encounter, log *[]string) {
	enc.RoundNumber++
	*log = append(*log, fmt.Sprintf("Round %d begins.", enc.RoundNumber))

	e.tickZones(enc, log)
	for _, p := range enc.Participants {
		if p.IsAlive() {
			e.tickStatuses(enc, p, log)
		}
	}
}

// tickZones decrements every zone's remaining duration and removes the
// expired ones.
func (e *Engine) tickZones(enc *Encounter, log *[]string) {
	kept := enc.ActiveZones[:0]
	for _, zone := range enc.ActiveZones {
		zone.Remaining--
		if zone.Remaining <= 0 {
			*log = append(*log, zone.Name+" dissipates.")
			continue
		}
		kept = append(kept, zone)
	}
	enc.ActiveZones = kept
}

// tickStatuses runs each active status's scripted tick and burns down
// round-limited durations, removing what expires.
func (e *Engine) tickStatuses(enc *Encounter, p *Participant, log *[]string) {
	kept := p.Statuses[:0]
	for _, st := range p.Statuses {
		def, ok := e.statuses.Get(st.ID)
		if !ok {
			continue
		}

		wasAlive := p.IsAlive()
		e.runStatusTick(enc, p, def, log)
		if wasAlive && !p.IsAlive() {
			*log = append(*log, p.Name+" succumbs to "+def.Name+"!")
		}

		if def.DurationType == ruleset.DurationRounds {
			st.Remaining--
			if st.Remaining <= 0 {
				*log = append(*log, p.Name+" is no longer "+def.Name+".")
				continue
			}
		}
		kept = append(kept, st)
	}
	p.Statuses = kept
}

// runStatusTick executes the status's tick script, if any, and applies its
// outcome. Script failures are logged and ignored so one bad script cannot
// stall a fight.
func (e *Engine) runStatusTick(enc *Encounter, p *Participant, def *ruleset.StatusDef, log *[]string) {
	if e.ticker == nil || def.LuaOnTick == "" {
		return
	}

	result, err := e.ticker.Tick(def.LuaOnTick, TickState{
		StatusID:  def.ID,
		Round:     enc.RoundNumber,
		CurrentHP: p.CurrentHP,
		MaxHP:     p.MaxHP,
	})
	if err != nil {
		e.logger.Warn("status tick script failed",
			zap.String("status_id", def.ID),
			zap.String("script", def.LuaOnTick),
			zap.Error(err),
		)
		return
	}

	switch {
	case result.HPDelta < 0:
		p.ApplyDamage(-result.HPDelta)
	case result.HPDelta > 0:
		p.Heal(result.HPDelta)
	}
	if result.Message != "" {
		*log = append(*log, fmt.Sprintf("%s: %s", p.Name, result.Message))
	}
}

// zoneTurnStart fires on_turn_start triggers for every zone the actor is
// standing in at the top of their turn.
func (e *Engine) zoneTurnStart(enc *Encounter, actor *Participant, log *[]string) {
	for _, zone := range enc.ActiveZones {
		if !zone.Contains(actor.X, actor.Y) {
			continue
		}
		for _, effect := range zone.triggersFor(ruleset.TriggerOnTurnStart) {
			*log = e.applyZoneEffect(actor, zone, effect, *log)
		}
	}
}
