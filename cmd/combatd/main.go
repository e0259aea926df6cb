// Package main provides the combat daemon binary: it loads rules content,
// wires the combat engine, orchestrator, narrator, and encounter archive, and
// optionally runs a simulated encounter from the command line.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fulcrum/internal/config"
	"github.com/cory-johannsen/fulcrum/internal/events"
	"github.com/cory-johannsen/fulcrum/internal/game/combat"
	"github.com/cory-johannsen/fulcrum/internal/game/dice"
	"github.com/cory-johannsen/fulcrum/internal/game/inventory"
	"github.com/cory-johannsen/fulcrum/internal/game/npc"
	"github.com/cory-johannsen/fulcrum/internal/game/ruleset"
	"github.com/cory-johannsen/fulcrum/internal/game/world"
	"github.com/cory-johannsen/fulcrum/internal/narrative"
	"github.com/cory-johannsen/fulcrum/internal/observability"
	"github.com/cory-johannsen/fulcrum/internal/orchestrator"
	"github.com/cory-johannsen/fulcrum/internal/scripting"
	"github.com/cory-johannsen/fulcrum/internal/server"
	"github.com/cory-johannsen/fulcrum/internal/storage/postgres"
)

// scriptTicker adapts the scripting runner to the combat engine's
// StatusTicker contract.
type scriptTicker struct {
	runner *scripting.Runner
}

func (s *scriptTicker) Tick(script string, state combat.TickState) (combat.TickResult, error) {
	result, err := s.runner.RunTick(script, scripting.TickState{
		StatusID:  state.StatusID,
		Round:     state.Round,
		CurrentHP: state.CurrentHP,
		MaxHP:     state.MaxHP,
	})
	if err != nil {
		return combat.TickResult{}, err
	}
	return combat.TickResult{HPDelta: result.HPDelta, Message: result.Message}, nil
}

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	location := flag.String("location", "", "location ID for a simulated encounter; empty = no simulation")
	players := flag.String("players", "", "comma-separated character IDs for the simulated encounter")
	npcs := flag.String("npcs", "", "comma-separated NPC template IDs for the simulated encounter")
	noDB := flag.Bool("no-db", false, "skip PostgreSQL; encounters are not archived")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	roller := dice.NewLoggedRoller(dice.NewCryptoSource(), logger)

	// Load rules content.
	contentStart := time.Now()

	statuses, err := ruleset.LoadStatuses(cfg.Content.StatusesDir)
	if err != nil {
		logger.Fatal("loading status definitions", zap.Error(err))
	}
	talents, err := ruleset.LoadTalents(cfg.Content.TalentsDir)
	if err != nil {
		logger.Fatal("loading talent definitions", zap.Error(err))
	}
	abilities, err := ruleset.LoadAbilities(cfg.Content.AbilitiesDir)
	if err != nil {
		logger.Fatal("loading ability definitions", zap.Error(err))
	}

	gear := inventory.NewRegistry()
	if err := gear.LoadWeapons(cfg.Content.WeaponsDir); err != nil {
		logger.Fatal("loading weapon definitions", zap.Error(err))
	}
	if err := gear.LoadArmor(cfg.Content.ArmorDir); err != nil {
		logger.Fatal("loading armor definitions", zap.Error(err))
	}
	if err := gear.LoadItems(cfg.Content.ItemsDir); err != nil {
		logger.Fatal("loading item definitions", zap.Error(err))
	}

	templates, err := npc.LoadTemplates(cfg.Content.NPCsDir)
	if err != nil {
		logger.Fatal("loading npc templates", zap.Error(err))
	}

	gameWorld := world.NewInMemory(templates)
	characters, err := world.LoadCharacters(cfg.Content.CharactersDir)
	if err != nil {
		logger.Fatal("loading characters", zap.Error(err))
	}
	for _, c := range characters {
		gameWorld.AddCharacter(c)
	}
	locations, err := world.LoadLocations(cfg.Content.LocationsDir)
	if err != nil {
		logger.Fatal("loading locations", zap.Error(err))
	}
	for _, l := range locations {
		gameWorld.AddLocation(l)
	}

	logger.Info("content loaded",
		zap.Int("npc_templates", len(templates)),
		zap.Int("characters", len(characters)),
		zap.Int("locations", len(locations)),
		zap.Duration("elapsed", time.Since(contentStart)),
	)

	// Initialise the status tick scripting runner.
	var ticker combat.StatusTicker
	var runner *scripting.Runner
	if cfg.Content.ScriptsDir != "" {
		if info, statErr := os.Stat(cfg.Content.ScriptsDir); statErr == nil && info.IsDir() {
			runner, err = scripting.NewRunner(cfg.Content.ScriptsDir, scripting.DefaultInstructionLimit, logger)
			if err != nil {
				logger.Fatal("loading tick scripts", zap.Error(err))
			}
			defer runner.Close()
			ticker = &scriptTicker{runner: runner}
			logger.Info("tick scripts loaded", zap.Strings("scripts", runner.Scripts()))
		}
	}

	engine := combat.NewEngine(logger, roller, statuses, talents, abilities, gear, gameWorld, ticker, combat.Config{
		FleeChance: cfg.Engine.FleeChance,
		VictoryXP:  cfg.Engine.VictoryXP,
	})

	bus := events.NewBus(logger)
	defer bus.Close()

	var narrator orchestrator.Narrator
	if cfg.Narrative.Enabled {
		narrator = narrative.NewGenerator(cfg.Narrative,
			narrative.NewAnthropicCompleter(cfg.Narrative.APIKey), logger)
		logger.Info("narration enabled", zap.String("model", cfg.Narrative.Model))
	}

	var pool *postgres.Pool
	var archive orchestrator.Archive
	if !*noDB {
		dbStart := time.Now()
		pool, err = postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		archive = postgres.NewEncounterArchive(pool.DB())
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
	}

	orch := orchestrator.New(logger, engine, bus, narrator, archive, cfg.Engine.NPCThinkDelay)
	defer orch.Close()

	// Log every encounter event that crosses the bus.
	for _, topic := range []string{events.TopicCombatStarted, events.TopicCombatUpdated, events.TopicCombatEnded} {
		topic := topic
		bus.SubscribeFunc(topic, 64, func(ev events.Event) error {
			logger.Info("combat event",
				zap.String("topic", topic),
				zap.String("encounter_id", ev.EncounterID),
			)
			return nil
		})
	}

	lifecycle := server.NewLifecycle(logger)

	if pool != nil {
		lifecycle.Register("postgres", &server.FuncService{
			StartFn: func() error {
				for {
					time.Sleep(30 * time.Second)
					if err := pool.Health(ctx, 5*time.Second); err != nil {
						logger.Warn("database health check failed", zap.Error(err))
					}
				}
			},
			StopFn: func() {
				pool.Close()
			},
		})
	}

	if *location != "" {
		lifecycle.Register("simulation", &server.FuncService{
			StartFn: func() error {
				return runSimulation(ctx, orch, logger, *location, splitIDs(*players), splitIDs(*npcs))
			},
			StopFn: func() {},
		})
	}

	logger.Info("combat daemon initialized", zap.Duration("startup", time.Since(start)))

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

// runSimulation starts an encounter and auto-plays player turns with simple
// attacks until the encounter finishes. NPC turns run on the orchestrator's
// own scheduler.
func runSimulation(ctx context.Context, orch *orchestrator.Orchestrator, logger *zap.Logger, locationID string, playerIDs, npcTemplateIDs []string) error {
	snap, err := orch.StartEncounter(ctx, locationID, playerIDs, npcTemplateIDs)
	if err != nil {
		return fmt.Errorf("starting simulated encounter: %w", err)
	}
	logger.Info("simulated encounter started",
		zap.String("encounter_id", snap.ID),
		zap.Int("participants", len(snap.Participants)),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}

		snap, err := orch.Encounter(snap.ID)
		if errors.Is(err, combat.ErrUnknownEncounter) {
			logger.Info("simulated encounter finished")
			return nil
		}
		if err != nil {
			return err
		}
		if snap.Status != combat.StatusActive {
			continue
		}

		actorID := snap.TurnOrder[snap.CurrentTurnIndex]
		actor := findParticipant(snap, actorID)
		if actor == nil || actor.Faction != combat.FactionPlayer {
			continue
		}

		target := firstLivingNPC(snap)
		req := combat.ActionRequest{Type: combat.ActionWait}
		if target != nil {
			req = combat.ActionRequest{Type: combat.ActionAttack, TargetID: target.ID}
		}
		if _, err := orch.SubmitAction(ctx, snap.ID, actorID, req); err != nil {
			if errors.Is(err, combat.ErrCombatOver) || errors.Is(err, combat.ErrUnknownEncounter) {
				continue
			}
			if errors.Is(err, combat.ErrNotYourTurn) || errors.Is(err, combat.ErrReactionPending) {
				continue
			}
			return fmt.Errorf("submitting simulated action: %w", err)
		}
	}
}

func findParticipant(snap combat.EncounterSnapshot, id string) *combat.ParticipantSnapshot {
	for i := range snap.Participants {
		if snap.Participants[i].ID == id {
			return &snap.Participants[i]
		}
	}
	return nil
}

func firstLivingNPC(snap combat.EncounterSnapshot) *combat.ParticipantSnapshot {
	for i := range snap.Participants {
		p := &snap.Participants[i]
		if p.Faction == combat.FactionNPC && p.CurrentHP > 0 && !p.Fled {
			return p
		}
	}
	return nil
}

func splitIDs(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
