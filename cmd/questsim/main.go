// Command questsim runs the quest engine against a scripted scenario: it loads
// the server config, opens quest storage, replays each character's actions
// through the game host and saves the resulting quest progress.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/udisondev/l2quest/internal/config"
	"github.com/udisondev/l2quest/internal/db"
	"github.com/udisondev/l2quest/internal/game/quest"
	"github.com/udisondev/l2quest/internal/game/quest/quests"
	"github.com/udisondev/l2quest/internal/gameserver"
	"github.com/udisondev/l2quest/internal/html"
	"github.com/udisondev/l2quest/internal/logging"
	"github.com/udisondev/l2quest/internal/rnd"
)

const (
	DefaultConfigPath   = "config/questserver.yaml"
	DefaultScenarioPath = "config/scenario.yaml"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := flag.String("config", DefaultConfigPath, "quest server config (YAML)")
	scenarioPath := flag.String("scenario", DefaultScenarioPath, "scenario to replay (YAML)")
	flag.Parse()

	if p := os.Getenv("L2QUEST_CONFIG"); p != "" {
		*cfgPath = p
	}

	cfg, err := config.LoadQuestServer(*cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, logCloser := logging.New(cfg.Log, os.Stderr)
	defer logCloser.Close()
	slog.SetDefault(logger)

	slog.Info("questsim starting",
		"config", *cfgPath,
		"storage", cfg.Storage.Driver,
		"log_level", cfg.Log.Level)

	repo, closeRepo, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeRepo()

	registry, err := quests.NewRegistry()
	if err != nil {
		return fmt.Errorf("registering quests: %w", err)
	}

	cache, err := html.NewDirCache(cfg.HTML.Dir, cfg.HTML.Lazy)
	if err != nil {
		return fmt.Errorf("loading html: %w", err)
	}
	slog.Info("html cache ready", "dir", cfg.HTML.Dir, "preloaded", cache.Len())

	questMgr := quest.NewManager(registry, repo,
		quest.WithSource(rnd.FromSeed(cfg.RNGSeed)),
		quest.WithRates(quest.Rates{
			Drop:        cfg.Rates.QuestDrop,
			RewardItems: cfg.Rates.QuestRewardItems,
			RewardExp:   cfg.Rates.QuestRewardExp,
			RewardSp:    cfg.Rates.QuestRewardSp,
		}))

	host := gameserver.NewHost(questMgr, html.NewDialogManager(cache), gameserver.NewWriterSender(os.Stdout))

	scenario, err := gameserver.LoadScenario(*scenarioPath)
	if err != nil {
		return err
	}
	players, err := host.Setup(ctx, scenario)
	if err != nil {
		return fmt.Errorf("scenario setup: %w", err)
	}

	replayErr := host.ReplayAll(ctx, scenario, players)

	for name, p := range players {
		for _, e := range host.QuestJournal(p) {
			slog.Info("quest in progress",
				"character", name,
				"questName", e.QuestName,
				"cond", e.Cond)
		}
	}

	// Сохраняем прогресс даже после ошибки сценария
	shutdownCtx := context.WithoutCancel(ctx)
	if err := host.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("saving quest progress: %w", err)
	}
	if replayErr != nil {
		return fmt.Errorf("replaying scenario: %w", replayErr)
	}

	slog.Info("questsim finished", "players", len(players))
	return nil
}

// openStorage opens the configured quest repository and applies migrations.
// The memory driver returns a nil repository: progress lives only in memory.
func openStorage(ctx context.Context, cfg config.StorageConfig) (quest.QuestRepository, func(), error) {
	switch cfg.Driver {
	case config.StoragePostgres:
		if err := db.RunMigrations(ctx, cfg.DSN()); err != nil {
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		database, err := db.New(ctx, cfg.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		slog.Info("database connected", "driver", cfg.Driver)
		return database.Quests(), database.Close, nil

	case config.StorageSQLite:
		sqlDB, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite: %w", err)
		}
		slog.Info("database connected", "driver", cfg.Driver, "path", cfg.SQLitePath)
		return db.NewSQLiteQuestRepository(sqlDB), closer(sqlDB), nil

	default:
		slog.Warn("quest progress is not persisted", "driver", cfg.Driver)
		return nil, func() {}, nil
	}
}

func closer(sqlDB *sql.DB) func() {
	return func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("closing sqlite", "error", err)
		}
	}
}
