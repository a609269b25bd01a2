package daemon

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/matheus3301/chatsim/internal/api"
	"github.com/matheus3301/chatsim/internal/bus"
	"github.com/matheus3301/chatsim/internal/config"
	"github.com/matheus3301/chatsim/internal/engine"
	"github.com/matheus3301/chatsim/internal/lock"
	"github.com/matheus3301/chatsim/internal/logging"
	"github.com/matheus3301/chatsim/internal/profile"
	"github.com/matheus3301/chatsim/internal/status"
	"github.com/matheus3301/chatsim/internal/store"
)

// Params holds the resolved profile configuration passed to the fx module.
type Params struct {
	ProfileName string
	SocketPath  string // optional override for testing; empty = use default
	Verbose     bool
	Quiet       bool // log to the file only, e.g. when started by the TUI
}

func (p Params) socketPath() string {
	if p.SocketPath != "" {
		return p.SocketPath
	}
	return profile.SocketPath(p.ProfileName)
}

// Module returns the fx module for the daemon, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideConfig,
			provideBus,
			provideStateMachine,
			provideLock,
			provideStore,
			provideEngine,
			provideEngineService,
			NewServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	if err := profile.EnsureDir(p.ProfileName); err != nil {
		return nil, err
	}
	if p.Quiet {
		return logging.NewFileOnly(profile.LogPath(p.ProfileName), p.ProfileName, logging.Level(p.Verbose))
	}
	return logging.New(profile.LogPath(p.ProfileName), p.ProfileName, logging.Level(p.Verbose))
}

func provideConfig(logger *zap.Logger) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(profile.ConfigPath())
	if err != nil {
		return nil, err
	}
	logger.Info("config loaded",
		zap.Int("typing_indicator_ms", cfg.Engine.TypingIndicatorMS),
		zap.Int("receive_delay_ms", cfg.Engine.ReceiveDelayMS),
		zap.Int("preview_length", cfg.Engine.PreviewLength),
	)
	return cfg, nil
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	logger.Info("acquiring profile lock", zap.String("profile", p.ProfileName))
	l, err := lock.Acquire(profile.Dir(p.ProfileName))
	if err != nil {
		return nil, err
	}
	logger.Info("profile lock acquired")
	return l, nil
}

// provideStore takes the lock so the database is only opened by its owner.
func provideStore(p Params, _ *lock.Lock, logger *zap.Logger) (*store.DB, error) {
	dbPath := profile.DBPath(p.ProfileName)
	db, result, err := store.OpenMigrated(dbPath)
	if err != nil {
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideEngine(db *store.DB, cfg *config.Config, b *bus.Bus, m *status.Machine, logger *zap.Logger) *engine.Engine {
	ec := engine.DefaultConfig()
	ec.TypingDuration = cfg.Engine.TypingIndicator()
	ec.ReceiveDelay = cfg.Engine.ReceiveDelay()
	ec.PreviewLength = cfg.Engine.PreviewLength
	ec.LocalSender = cfg.Engine.LocalSender
	return engine.New(db, b, m, logger.Named("engine"), ec)
}

func provideEngineService(p Params, eng *engine.Engine, m *status.Machine, b *bus.Bus, logger *zap.Logger) *api.EngineService {
	return api.NewEngineService(p.ProfileName, p.socketPath(), eng, m, b, logger.Named("api"))
}

func registerLifecycle(lc fx.Lifecycle, srv *Server, lk *lock.Lock, db *store.DB, eng *engine.Engine, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("gRPC server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			srv.Stop(ctx)
			if err := eng.Close(); err != nil {
				logger.Warn("engine close", zap.Error(err))
			}
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			_ = logger.Sync()
			return nil
		},
	})
}
