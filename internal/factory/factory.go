package factory

import (
	"io"
	"log/slog"

	"github.com/tugochat/tugochat/internal/config"
	"github.com/tugochat/tugochat/internal/dependencies/clock"
	"github.com/tugochat/tugochat/internal/dependencies/random"
	"github.com/tugochat/tugochat/internal/engine"
	"github.com/tugochat/tugochat/internal/gateway/ws"
	"github.com/tugochat/tugochat/internal/matchmaking"
	"github.com/tugochat/tugochat/internal/registry"
	"github.com/tugochat/tugochat/internal/statestore"
	memorystore "github.com/tugochat/tugochat/internal/statestore/memory"
	redisstore "github.com/tugochat/tugochat/internal/statestore/redis"
	"github.com/tugochat/tugochat/internal/twitch"
)

// App contains all wired application components
type App struct {
	Config *config.Config

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Stores
	Tokens statestore.Store

	// Core
	Registry  *registry.Registry
	Queue     *matchmaking.Queue
	Service   *engine.Service
	Loop      *engine.Loop
	Scheduler *matchmaking.Scheduler

	// Collaborators
	Auth     *twitch.AuthService
	Monitors *twitch.MonitorManager
	Hub      *ws.Hub
}

// Config holds configuration for the application factory
type Config struct {
	// App is the loaded process configuration
	App *config.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	clk := clock.New()
	rnd := random.New()

	// Token store: Redis when configured, in-memory otherwise
	var tokens statestore.Store
	if cfg.App.RedisURL != "" {
		redisCfg := redisstore.DefaultConfig()
		redisCfg.URL = cfg.App.RedisURL
		store, err := redisstore.New(redisCfg)
		if err != nil {
			return nil, err
		}
		tokens = store
	} else {
		tokens = memorystore.New(clk)
	}

	return newWithDependencies(cfg.App, tokens, clk, rnd, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(appCfg *config.Config, tokens statestore.Store, clk clock.Clock, rnd random.Random, logger *slog.Logger) *App {
	reg := registry.New(appCfg.Ruleset(), clk, logger)
	queue := matchmaking.NewQueue(clk, logger)
	service := engine.NewService(reg, queue, logger)
	monitors := twitch.NewMonitorManager(service.SubmitPull, appCfg.PullCooldown, clk, logger)
	hub := ws.NewHub(queue, service, reg, monitors, logger)
	loop := engine.NewLoop(reg, hub, appCfg.LoopConfig(), logger)
	scheduler := matchmaking.NewScheduler(queue, reg, hub, appCfg.SchedulerConfig(), logger)
	auth := twitch.NewAuthService(twitch.AuthConfig{
		ClientID:     appCfg.TwitchClientID,
		ClientSecret: appCfg.TwitchClientSecret,
		RedirectURI:  appCfg.TwitchRedirectURI,
	}, tokens, rnd, logger)

	return &App{
		Config:    appCfg,
		Clock:     clk,
		Random:    rnd,
		Tokens:    tokens,
		Registry:  reg,
		Queue:     queue,
		Service:   service,
		Loop:      loop,
		Scheduler: scheduler,
		Auth:      auth,
		Monitors:  monitors,
		Hub:       hub,
	}
}
