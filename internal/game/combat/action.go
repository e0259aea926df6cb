package combat

import "errors"

// ActionType enumerates the commands a participant can submit.
type ActionType string

const (
	ActionAttack          ActionType = "attack"
	ActionUseAbility      ActionType = "use_ability"
	ActionUseItem         ActionType = "use_item"
	ActionMove            ActionType = "move"
	ActionFlee            ActionType = "flee"
	ActionEndTurn         ActionType = "end_turn"
	ActionWait            ActionType = "wait"
	ActionResolveReaction ActionType = "resolve_reaction"
)

// Reaction decision values for ActionRequest.ReactionDecision.
const (
	ReactionExecute = "execute"
	ReactionDecline = "decline"
)

// ActionRequest is the command a participant submits on their turn.
type ActionRequest struct {
	Type             ActionType
	TargetID         string
	AbilityID        string
	ItemID           string
	Coordinates      *[2]int
	ReactionDecision string
}

// ActionResult reports the outcome of one applied action.
type ActionResult struct {
	Success             bool
	Message             string
	Log                 []string
	NewTurnIndex        int
	CombatOver          bool
	ReactionOpportunity *PendingReaction
}

// Reaction type names.
const (
	ReactionOpportunityAttack = "opportunity_attack"
)

// PendingReaction suspends an action while a reactor decides whether to
// interrupt it. At most one exists per encounter at a time.
type PendingReaction struct {
	ReactorID string
	ActorID   string
	Type      string

	// deferred move, completed after the reaction resolves
	destX int
	destY int
}

// Sentinel errors from action application.
var (
	// ErrNotYourTurn rejects an action from anyone but the current actor.
	// The encounter is left unchanged.
	ErrNotYourTurn = errors.New("combat: not your turn")
	// ErrCombatOver rejects actions submitted after the encounter reached a
	// terminal status.
	ErrCombatOver = errors.New("combat: encounter is over")
	// ErrReactionPending rejects non-reaction actions while a reaction awaits
	// resolution.
	ErrReactionPending = errors.New("combat: a reaction is pending")
	// ErrUnknownEncounter is returned for an encounter id the engine does not
	// track.
	ErrUnknownEncounter = errors.New("combat: unknown encounter")
	// ErrNoParticipants is returned when combat cannot start because no
	// requested participant could be resolved.
	ErrNoParticipants = errors.New("combat: no resolvable participants")
)
