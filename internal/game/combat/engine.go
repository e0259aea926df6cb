package combat

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/fulcrum/internal/game/dice"
	"github.com/cory-johannsen/fulcrum/internal/game/inventory"
	"github.com/cory-johannsen/fulcrum/internal/game/modifier"
	"github.com/cory-johannsen/fulcrum/internal/game/rules"
	"github.com/cory-johannsen/fulcrum/internal/game/ruleset"
	"github.com/cory-johannsen/fulcrum/internal/game/world"
)

// Config tunes the engine's chance-based behaviors.
type Config struct {
	// FleeChance is the probability in [0,1] that a flee attempt succeeds.
	FleeChance float64
	// VictoryXP is the flat XP granted to each surviving player on a win.
	VictoryXP int
}

// StatusTicker runs a data-defined script for a status at each round
// boundary. Implementations live outside this package; a nil ticker disables
// scripted ticks.
type StatusTicker interface {
	Tick(script string, state TickState) (TickResult, error)
}

// TickState is the input to a status tick script.
type TickState struct {
	StatusID  string
	Round     int
	CurrentHP int
	MaxHP     int
}

// TickResult is the outcome of a status tick script.
type TickResult struct {
	HPDelta int
	Message string
}

// Engine resolves actions against encounters. It holds no per-encounter
// locks; callers must serialize actions per encounter (the orchestrator
// does).
type Engine struct {
	logger    *zap.Logger
	roller    *dice.Roller
	statuses  *ruleset.StatusRegistry
	talents   *ruleset.TalentRegistry
	abilities *ruleset.AbilityRegistry
	gear      *inventory.Registry
	world     world.World
	ticker    StatusTicker
	cfg       Config
}

// NewEngine creates an Engine.
//
// Precondition: logger, roller, registries, and w must be non-nil. ticker may
// be nil to disable scripted status ticks.
func NewEngine(
	logger *zap.Logger,
	roller *dice.Roller,
	statuses *ruleset.StatusRegistry,
	talents *ruleset.TalentRegistry,
	abilities *ruleset.AbilityRegistry,
	gear *inventory.Registry,
	w world.World,
	ticker StatusTicker,
	cfg Config,
) *Engine {
	return &Engine{
		logger:    logger,
		roller:    roller,
		statuses:  statuses,
		talents:   talents,
		abilities: abilities,
		gear:      gear,
		world:     w,
		ticker:    ticker,
		cfg:       cfg,
	}
}

func (e *Engine) src() dice.Source { return e.roller.Source() }

// StartCombat spawns NPCs, builds participants, rolls initiative, and returns
// a new active encounter. A lookup failure for one participant is logged and
// skipped; it never aborts the others.
//
// Precondition: at least one player id and one NPC template id should be
// supplied; an encounter with no participants is an error.
// Postcondition: the returned encounter has a non-empty TurnOrder sorted by
// initiative, CurrentTurnIndex 0, RoundNumber 1.
func (e *Engine) StartCombat(ctx context.Context, locationID string, playerIDs, npcTemplateIDs []string) (*Encounter, error) {
	enc := &Encounter{
		ID:          uuid.New().String(),
		LocationID:  locationID,
		Status:      StatusActive,
		RoundNumber: 1,
	}

	if loc, err := e.world.Location(ctx, locationID); err != nil {
		e.logger.Warn("location lookup failed, movement unvalidated",
			zap.String("location_id", locationID),
			zap.Error(err),
		)
	} else {
		enc.location = loc
	}

	for _, id := range playerIDs {
		ch, err := e.world.Character(ctx, id)
		if err != nil {
			e.logger.Error("character lookup failed, skipping participant",
				zap.String("character_id", id),
				zap.Error(err),
			)
			enc.appendLog("%s could not join the fight.", id)
			continue
		}
		enc.Participants = append(enc.Participants, newPlayerParticipant(ch))
	}

	for _, templateID := range npcTemplateIDs {
		inst, err := e.world.SpawnNPC(ctx, templateID)
		if err != nil {
			e.logger.Error("npc spawn failed, skipping participant",
				zap.String("template_id", templateID),
				zap.Error(err),
			)
			continue
		}
		enc.Participants = append(enc.Participants, newNPCParticipant(inst))
	}

	if len(enc.Participants) == 0 {
		return nil, ErrNoParticipants
	}

	e.placeParticipants(enc)
	e.rollInitiative(enc)

	enc.appendLog("Combat begins! Round %d.", enc.RoundNumber)
	for _, id := range enc.TurnOrder {
		p := enc.Participant(id)
		enc.appendLog("%s rolled initiative %d.", p.Name, p.Initiative)
	}

	return enc, nil
}

// placeParticipants assigns starting tiles: players along the west edge,
// NPCs along the east edge, skipping blocked tiles when geometry is known.
func (e *Engine) placeParticipants(enc *Encounter) {
	width, height := 10, 10
	if enc.location != nil {
		width, height = enc.location.Width, enc.location.Height
	}

	nextFree := func(x, startY int) (int, int) {
		y := startY
		for i := 0; i < height; i++ {
			cand := (y + i) % height
			if enc.location == nil || enc.location.Passable(x, cand) {
				return x, cand
			}
		}
		return x, startY
	}

	playerY, npcY := 0, 0
	for _, p := range enc.Participants {
		switch p.Faction {
		case FactionPlayer:
			p.X, p.Y = nextFree(1, playerY)
			playerY = p.Y + 1
		case FactionNPC:
			p.X, p.Y = nextFree(width-2, npcY)
			npcY = p.Y + 1
		}
	}
}

// rollInitiative rolls for every participant and sorts the turn order
// descending. Ties keep submission order (stable sort).
func (e *Engine) rollInitiative(enc *Encounter) {
	for _, p := range enc.Participants {
		bundle := e.aggregate(p, modifier.Context{ActionType: "initiative"})
		result := rules.Initiative(e.src(), p.Stats)
		p.Initiative = result.Total + bundle.InitiativeBonus
		e.logger.Debug("initiative rolled",
			zap.String("participant", p.ID),
			zap.Int("roll", result.Roll),
			zap.Int("total", p.Initiative),
		)
	}

	ordered := make([]*Participant, len(enc.Participants))
	copy(ordered, enc.Participants)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Initiative > ordered[j].Initiative
	})

	enc.TurnOrder = make([]string, len(ordered))
	for i, p := range ordered {
		enc.TurnOrder[i] = p.ID
	}
	enc.CurrentTurnIndex = 0
}

// aggregate builds the participant's modifier bundle for the given context.
// Bundles are rebuilt per action and never cached.
func (e *Engine) aggregate(p *Participant, ctx modifier.Context) *modifier.Bundle {
	snap := modifier.Snapshot{}
	for _, id := range p.Talents {
		if def, ok := e.talents.Get(id); ok {
			snap.Talents = append(snap.Talents, def)
		}
	}
	if p.Equipment != nil {
		for itemID := range p.Equipment.Items {
			if def, ok := e.gear.Item(itemID); ok && def.Kind == inventory.ItemPassive {
				snap.ItemPassives = append(snap.ItemPassives, def.Passive...)
			}
		}
	}
	return modifier.Aggregate(snap, ctx)
}

// ApplyAction validates and resolves one action against the encounter.
// Rejections (wrong turn, finished encounter, pending reaction) leave the
// encounter unchanged. Degradable failures (missing target, unknown ability,
// malformed data) are logged and consume the turn as a wait.
//
// Precondition: enc must have been created by StartCombat; callers must
// serialize calls per encounter.
func (e *Engine) ApplyAction(ctx context.Context, enc *Encounter, actorID string, req ActionRequest) (ActionResult, error) {
	if enc.Status.Terminal() {
		return ActionResult{}, ErrCombatOver
	}

	if enc.PendingReaction != nil {
		if actorID != enc.PendingReaction.ReactorID || req.Type != ActionResolveReaction {
			return ActionResult{}, ErrReactionPending
		}
		return e.resolveReaction(ctx, enc, req)
	}

	if actorID != enc.CurrentActorID() {
		return ActionResult{}, ErrNotYourTurn
	}

	actor := enc.Participant(actorID)
	log := []string{}

	if def := actor.skipTurnStatus(e.statuses); def != nil {
		actor.RemoveStatus(def.ID)
		log = append(log, actor.Name+" is "+def.Name+" and loses their turn!")
		return e.finishAction(ctx, enc, log, true, actor.Name+" loses their turn")
	}

	switch req.Type {
	case ActionWait, ActionEndTurn:
		log = append(log, actor.Name+" waits.")

	case ActionAttack:
		log = e.handleAttack(enc, actor, req.TargetID, log, nil)

	case ActionUseAbility:
		log = e.handleAbility(enc, actor, req, log)

	case ActionUseItem:
		log = e.handleItem(enc, actor, req, log)

	case ActionMove:
		var suspended bool
		log, suspended = e.handleMove(enc, actor, req, log)
		if suspended {
			// The move is deferred until the reactor decides.
			enc.Log = append(enc.Log, log...)
			return ActionResult{
				Success:             true,
				Message:             "reaction opportunity",
				Log:                 log,
				NewTurnIndex:        enc.CurrentTurnIndex,
				ReactionOpportunity: enc.PendingReaction,
			}, nil
		}

	case ActionFlee:
		over := e.handleFlee(ctx, enc, actor, &log)
		if over {
			enc.Log = append(enc.Log, log...)
			return ActionResult{
				Success:      true,
				Message:      actor.Name + " fled",
				Log:          log,
				NewTurnIndex: enc.CurrentTurnIndex,
				CombatOver:   true,
			}, nil
		}

	default:
		e.logger.Warn("unknown action type, forfeiting turn",
			zap.String("encounter_id", enc.ID),
			zap.String("actor_id", actorID),
			zap.String("action", string(req.Type)),
		)
		log = append(log, actor.Name+" hesitates, unsure what to do.")
	}

	return e.finishAction(ctx, enc, log, true, actor.Name+" performed "+string(req.Type))
}

// finishAction runs the end-condition check, advances the turn, and builds
// the result. It is the single exit path for every resolved action.
func (e *Engine) finishAction(ctx context.Context, enc *Encounter, log []string, success bool, message string) (ActionResult, error) {
	over := e.checkEndCondition(ctx, enc, &log)
	if !over {
		e.advanceTurn(enc, &log)
		// Zone or status ticks at the round boundary can finish the fight.
		over = e.checkEndCondition(ctx, enc, &log)
	}

	enc.Log = append(enc.Log, log...)
	return ActionResult{
		Success:      success,
		Message:      message,
		Log:          log,
		NewTurnIndex: enc.CurrentTurnIndex,
		CombatOver:   over,
	}, nil
}

// CurrentActorIsNPC reports whether the next action belongs to an NPC and no
// reaction is pending. The orchestrator uses this to schedule NPC turns.
func (e *Engine) CurrentActorIsNPC(enc *Encounter) bool {
	if enc.Status.Terminal() || enc.PendingReaction != nil {
		return false
	}
	actor := enc.CurrentActor()
	return actor != nil && actor.Faction == FactionNPC
}
