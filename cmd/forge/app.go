package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/cory-johannsen/forge/internal/combatlog"
	"github.com/cory-johannsen/forge/internal/config"
	"github.com/cory-johannsen/forge/internal/game/ai"
	"github.com/cory-johannsen/forge/internal/game/character"
	"github.com/cory-johannsen/forge/internal/game/combat"
	"github.com/cory-johannsen/forge/internal/game/dice"
	"github.com/cory-johannsen/forge/internal/game/encounter"
	"github.com/cory-johannsen/forge/internal/game/npc"
	"github.com/cory-johannsen/forge/internal/game/ruleset"
	"github.com/cory-johannsen/forge/internal/scripting"
	"github.com/cory-johannsen/forge/internal/storage/postgres"
)

// characterStore is what the commands need from character persistence.
type characterStore interface {
	encounter.CharacterStore
	Create(ctx context.Context, c *character.Character) (*character.Character, error)
}

// app holds the wired dependencies of one command invocation.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	source   dice.Source
	roller   *dice.Roller
	bestiary *npc.Bestiary
	races    []*ruleset.Race
	hostile  *ai.Registry
	scripts  *scripting.Manager

	pool       *postgres.Pool
	characters characterStore
	history    *postgres.EncounterRepository
	combatLog  *combatlog.Store

	closers []func()
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger, charDir string) (*app, error) {
	a := &app{cfg: cfg, logger: logger}
	if err := a.wire(ctx, charDir); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(ctx context.Context, charDir string) error {
	cc := a.cfg.Combat
	if cc.DiceSeed != 0 {
		a.source = dice.NewSeededSource(cc.DiceSeed)
	} else {
		a.source = dice.NewCryptoSource()
	}
	a.roller = dice.NewLoggedRoller(a.source, a.logger.Named("dice"))

	templates, err := npc.LoadTemplates(cc.CreaturesDir)
	if err != nil {
		return err
	}
	if a.bestiary, err = npc.NewBestiary(templates); err != nil {
		return err
	}
	if a.races, err = ruleset.LoadRaces(cc.RacesDir); err != nil {
		return err
	}

	// scripting stays off when no scripts directory exists; ai.Build then
	// rejects any creature that needs a script
	var caller ai.ScriptCaller
	if _, err := os.Stat(cc.ScriptsDir); err == nil {
		a.scripts = scripting.NewManager(a.roller, a.logger.Named("scripting"), cc.ScriptInstructionLimit)
		a.closers = append(a.closers, a.scripts.Close)
		if err := a.scripts.LoadDir(cc.ScriptsDir); err != nil {
			return err
		}
		caller = a.scripts
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking scripts dir: %w", err)
	}
	if a.hostile, err = ai.Build(templates, cc.HostilePolicy, caller, a.logger.Named("ai")); err != nil {
		return err
	}

	if a.cfg.Database.Enabled {
		a.pool, err = postgres.NewPool(ctx, a.cfg.Database)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, a.pool.Close)
		a.characters = postgres.NewCharacterRepository(a.pool.DB())
		a.history = postgres.NewEncounterRepository(a.pool.DB())
	} else {
		a.characters = encounter.FileStore{Dir: charDir}
	}

	if a.cfg.Redis.Enabled {
		client := combatlog.NewClient(a.cfg.Redis)
		a.closers = append(a.closers, func() { _ = client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		a.combatLog, err = combatlog.NewStore(&combatlog.Config{
			Client: client,
			TTL:    a.cfg.Redis.LogTTL,
			Logger: a.logger.Named("combatlog"),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *app) engineOptions() combat.EngineOptions {
	return combat.EngineOptions{
		MaxDecisionAttempts: a.cfg.Combat.MaxDecisionAttempts,
		DecisionTimeout:     a.cfg.Combat.DecisionTimeout,
	}
}

// service builds the encounter service over the wired stores.
func (a *app) service() (*encounter.Service, error) {
	ecfg := encounter.Config{
		Engine:     combat.NewEngine(a.roller, a.engineOptions(), a.logger.Named("combat")),
		Dice:       a.roller,
		Bestiary:   a.bestiary,
		Characters: a.characters,
		Hostile:    a.hostile,
		Options:    a.engineOptions(),
		Logger:     a.logger.Named("encounter"),
	}
	if a.history != nil {
		ecfg.History = a.history
	}
	if a.combatLog != nil {
		ecfg.Sinks = append(ecfg.Sinks, a.combatLog)
	}
	return encounter.NewService(ecfg)
}

// Close releases every resource opened by wire, newest first.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
