// Package main provides the duel server binary: it loads content, opens the
// configured store, and drives duels from an operator console while serving
// gRPC health checks.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/wasteland/internal/config"
	"github.com/cory-johannsen/wasteland/internal/game/ai"
	"github.com/cory-johannsen/wasteland/internal/game/combat"
	"github.com/cory-johannsen/wasteland/internal/game/dice"
	"github.com/cory-johannsen/wasteland/internal/gameserver"
	"github.com/cory-johannsen/wasteland/internal/observability"
	"github.com/cory-johannsen/wasteland/internal/scripting"
	"github.com/cory-johannsen/wasteland/internal/server"
	"github.com/cory-johannsen/wasteland/internal/storage"
	"github.com/cory-johannsen/wasteland/internal/storage/postgres"
	"github.com/cory-johannsen/wasteland/internal/storage/sqlite"
)

var errConsoleClosed = errors.New("console closed")

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	seed := flag.Uint64("seed", 0, "fixed dice seed for reproducible duels; 0 = crypto source")
	healthInterval := flag.Duration("health-interval", 10*time.Second, "storage health probe interval")
	withConsole := flag.Bool("console", true, "read operator commands from stdin")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	contentStart := time.Now()
	content, err := gameserver.LoadContent(cfg.Content)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("items", content.Items.Len()),
		zap.Int("npcs", content.NPCs.Len()),
		zap.Int("locations", content.Locations.LocationCount()),
		zap.Duration("elapsed", time.Since(contentStart)),
	)

	store, probe, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal("opening store", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer closeStore()
	logger.Info("store opened", zap.String("driver", cfg.Storage.Driver))

	var src dice.Source = dice.NewCryptoSource()
	if *seed != 0 {
		src = dice.NewSeededSource(*seed)
		logger.Warn("using seeded dice", zap.Uint64("seed", *seed))
	}
	roller := dice.NewLoggedSource(src, logger)

	// A nil *scripting.Manager must not reach the handler as a non-nil interface.
	var scripts ai.ScriptCaller
	if cfg.Content.ScriptRoot != "" {
		mgr := scripting.NewManager(roller, logger)
		defer mgr.Close()
		n, err := gameserver.LoadScripts(mgr, content.Locations, cfg.Content.ScriptRoot, logger)
		if err != nil {
			logger.Fatal("loading scripts", zap.Error(err))
		}
		logger.Info("scripts loaded", zap.Int("locations", n))
		scripts = mgr
	}

	var console *gameserver.Console
	prompter := gameserver.NewQueuePrompter(func(p gameserver.Prompt) { console.ShowPrompt(p) })
	engine := combat.NewEngine()
	handler := gameserver.NewDuelHandler(engine, store, content, scripts, prompter,
		sinkFor(&console, logger), roller, cfg.Duel, logger)
	console = gameserver.NewConsole(handler, store, content, prompter, cfg.Duel, os.Stdout, logger)

	health := server.NewHealthService(cfg.GameServer.Addr(), logger)
	lc := server.NewLifecycle(logger)
	lc.Add("health", health)
	lc.Go("health-watch", func(ctx context.Context) {
		health.Watch(ctx, *healthInterval, probe)
	})

	consoleCtx, stopConsole := context.WithCancel(ctx)
	defer stopConsole()
	if *withConsole {
		lc.Add("console", &server.FuncService{
			StartFn: func() error {
				if err := console.Serve(consoleCtx, os.Stdin); err != nil {
					return err
				}
				return errConsoleClosed
			},
			StopFn: stopConsole,
		})
	}

	logger.Info("duel server ready",
		zap.String("health_addr", cfg.GameServer.Addr()),
		zap.Duration("startup", time.Since(start)),
	)
	err = lc.Run(ctx)
	stopConsole()
	console.Wait()
	if err != nil && !errors.Is(err, errConsoleClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}

// sinkFor sends narration to both the console and the log. The console is
// resolved lazily because it is built after the handler.
func sinkFor(console **gameserver.Console, logger *zap.Logger) gameserver.Sink {
	return gameserver.Tee(lazySink{console}, gameserver.NewLogSink(logger))
}

type lazySink struct{ c **gameserver.Console }

func (l lazySink) TurnReport(ctx context.Context, r gameserver.TurnReport) {
	(*l.c).TurnReport(ctx, r)
}

func (l lazySink) DuelEnded(ctx context.Context, s gameserver.Summary) {
	(*l.c).DuelEnded(ctx, s)
}

// openStore opens the configured backend and returns its health probe and
// closer.
func openStore(ctx context.Context, cfg config.Config) (storage.Store, server.Probe, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, nil, err
		}
		probe := func(ctx context.Context) error { return pool.Health(ctx, 2*time.Second) }
		return postgres.NewStore(pool.DB()), probe, pool.Close, nil
	default:
		if dir := filepath.Dir(cfg.Storage.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, nil, err
			}
		}
		st, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		return st, st.Health, func() { _ = st.Close() }, nil
	}
}
