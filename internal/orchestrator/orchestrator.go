// Package orchestrator routes actions to combat encounters, serializes them
// per encounter, publishes combat lifecycle events, and drives NPC turns on
// a thinking delay.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fulcrum/internal/events"
	"github.com/cory-johannsen/fulcrum/internal/game/combat"
)

// Narrator decorates a finished encounter's log with prose. Implementations
// must be fail-soft: always return usable text.
type Narrator interface {
	Narrate(ctx context.Context, encounterID string, log []string) string
}

// Archive persists finished encounters. The in-memory encounter remains the
// source of truth; archive failures are logged and never surfaced to players.
type Archive interface {
	SaveEncounter(ctx context.Context, snapshot combat.EncounterSnapshot) error
}

// StartedPayload is published on combat.started.
type StartedPayload struct {
	Snapshot combat.EncounterSnapshot
}

// UpdatedPayload is published on combat.updated after every resolved action.
type UpdatedPayload struct {
	Snapshot combat.EncounterSnapshot
	Result   combat.ActionResult
}

// EndedPayload is published on combat.ended.
type EndedPayload struct {
	Snapshot  combat.EncounterSnapshot
	Result    combat.ActionResult
	Narration string
}

// session pairs an encounter with the mutex that serializes its actions.
type session struct {
	mu  sync.Mutex
	enc *combat.Encounter
}

// Orchestrator owns the live encounters. All action submission goes through
// SubmitAction; per-encounter ordering is guaranteed by the session lock.
type Orchestrator struct {
	logger     *zap.Logger
	engine     *combat.Engine
	bus        *events.Bus
	narrator   Narrator // may be nil
	archive    Archive  // may be nil
	thinkDelay time.Duration

	mu       sync.RWMutex
	sessions map[string]*session
	closed   bool
}

// New creates an Orchestrator. narrator and archive may be nil to disable
// narration and archiving.
func New(logger *zap.Logger, engine *combat.Engine, bus *events.Bus, narrator Narrator, archive Archive, thinkDelay time.Duration) *Orchestrator {
	return &Orchestrator{
		logger:     logger,
		engine:     engine,
		bus:        bus,
		narrator:   narrator,
		archive:    archive,
		thinkDelay: thinkDelay,
		sessions:   make(map[string]*session),
	}
}

// StartEncounter spawns a new encounter, registers it, and publishes
// combat.started. If the first actor is an NPC its turn is scheduled.
func (o *Orchestrator) StartEncounter(ctx context.Context, locationID string, playerIDs, npcTemplateIDs []string) (combat.EncounterSnapshot, error) {
	enc, err := o.engine.StartCombat(ctx, locationID, playerIDs, npcTemplateIDs)
	if err != nil {
		return combat.EncounterSnapshot{}, err
	}

	sess := &session{enc: enc}
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return combat.EncounterSnapshot{}, combat.ErrCombatOver
	}
	o.sessions[enc.ID] = sess
	o.mu.Unlock()

	snapshot := enc.Snapshot()
	o.bus.Publish(events.Event{
		Topic:       events.TopicCombatStarted,
		EncounterID: enc.ID,
		Payload:     StartedPayload{Snapshot: snapshot},
	})
	o.logger.Info("encounter started",
		zap.String("encounter_id", enc.ID),
		zap.String("location_id", locationID),
		zap.Int("participants", len(snapshot.Participants)),
	)

	sess.mu.Lock()
	o.scheduleNPCLocked(sess)
	sess.mu.Unlock()
	return snapshot, nil
}

// SubmitAction applies one action to the named encounter. Calls for the same
// encounter are serialized; each completes fully before the next begins.
func (o *Orchestrator) SubmitAction(ctx context.Context, encounterID, actorID string, req combat.ActionRequest) (combat.ActionResult, error) {
	sess, err := o.session(encounterID)
	if err != nil {
		return combat.ActionResult{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return o.apply(ctx, sess, actorID, req)
}

// apply resolves the action and publishes the outcome. Callers must hold the
// session lock.
func (o *Orchestrator) apply(ctx context.Context, sess *session, actorID string, req combat.ActionRequest) (combat.ActionResult, error) {
	enc := sess.enc
	result, err := o.engine.ApplyAction(ctx, enc, actorID, req)
	if err != nil {
		return combat.ActionResult{}, err
	}

	snapshot := enc.Snapshot()
	if result.CombatOver {
		o.finish(ctx, enc, snapshot, result)
		return result, nil
	}

	o.bus.Publish(events.Event{
		Topic:       events.TopicCombatUpdated,
		EncounterID: enc.ID,
		Payload:     UpdatedPayload{Snapshot: snapshot, Result: result},
	})

	o.scheduleNPCLocked(sess)
	return result, nil
}

// finish publishes combat.ended with optional narration, archives the
// encounter, and drops the session.
func (o *Orchestrator) finish(ctx context.Context, enc *combat.Encounter, snapshot combat.EncounterSnapshot, result combat.ActionResult) {
	narration := ""
	if o.narrator != nil {
		narration = o.narrator.Narrate(ctx, enc.ID, snapshot.Log)
	}

	o.bus.Publish(events.Event{
		Topic:       events.TopicCombatEnded,
		EncounterID: enc.ID,
		Payload:     EndedPayload{Snapshot: snapshot, Result: result, Narration: narration},
	})
	o.logger.Info("encounter ended",
		zap.String("encounter_id", enc.ID),
		zap.String("status", string(snapshot.Status)),
		zap.Int("rounds", snapshot.RoundNumber),
	)

	if o.archive != nil {
		if err := o.archive.SaveEncounter(ctx, snapshot); err != nil {
			o.logger.Error("encounter archive failed",
				zap.String("encounter_id", enc.ID),
				zap.Error(err),
			)
		}
	}

	o.mu.Lock()
	delete(o.sessions, enc.ID)
	o.mu.Unlock()
}

// Encounter returns a snapshot of a live encounter.
func (o *Orchestrator) Encounter(encounterID string) (combat.EncounterSnapshot, error) {
	sess, err := o.session(encounterID)
	if err != nil {
		return combat.EncounterSnapshot{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.enc.Snapshot(), nil
}

func (o *Orchestrator) session(encounterID string) (*session, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	sess, ok := o.sessions[encounterID]
	if !ok {
		return nil, combat.ErrUnknownEncounter
	}
	return sess, nil
}

// scheduleNPCLocked arranges the next NPC turn after the thinking delay, if
// the turn pointer rests on an NPC or an NPC owes a reaction. Callers must
// hold the session lock; the timer callback re-checks the encounter state,
// so stale timers resolve to no-ops.
func (o *Orchestrator) scheduleNPCLocked(sess *session) {
	npcTurn := o.engine.CurrentActorIsNPC(sess.enc)
	npcReaction := false
	if pending := sess.enc.PendingReaction; pending != nil {
		reactor := sess.enc.Participant(pending.ReactorID)
		npcReaction = reactor != nil && reactor.Faction == combat.FactionNPC
	}
	if !npcTurn && !npcReaction {
		return
	}

	encounterID := sess.enc.ID
	time.AfterFunc(o.thinkDelay, func() {
		o.runNPC(encounterID, npcReaction)
	})
}

// runNPC executes one NPC turn or reaction. It validates the encounter state
// again under the session lock before acting.
func (o *Orchestrator) runNPC(encounterID string, reaction bool) {
	o.mu.RLock()
	closed := o.closed
	o.mu.RUnlock()
	if closed {
		return
	}

	sess, err := o.session(encounterID)
	if err != nil {
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	enc := sess.enc

	var actorID string
	var req combat.ActionRequest
	switch {
	case reaction:
		pending := enc.PendingReaction
		if pending == nil {
			return
		}
		actorID = pending.ReactorID
		req = combat.ActionRequest{
			Type:             combat.ActionResolveReaction,
			ReactionDecision: combat.ReactionExecute,
		}
	case o.engine.CurrentActorIsNPC(enc):
		actor := enc.CurrentActor()
		actorID = actor.ID
		req = o.engine.DecideNPCAction(enc, actor)
	default:
		return
	}

	if _, err := o.apply(context.Background(), sess, actorID, req); err != nil {
		o.logger.Error("npc action failed",
			zap.String("encounter_id", encounterID),
			zap.String("actor_id", actorID),
			zap.Error(err),
		)
	}
}

// Close stops the orchestrator from accepting new encounters and lets
// pending NPC timers lapse into no-ops.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	o.sessions = make(map[string]*session)
}
