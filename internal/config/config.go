package config

import (
	"fmt"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"

	"github.com/tugochat/tugochat/internal/engine"
	"github.com/tugochat/tugochat/internal/matchmaking"
)

// Config holds all process settings, loaded from the environment
type Config struct {
	// Twitch OAuth settings
	TwitchClientID     string `env:"TWITCH_CLIENT_ID,required=true"`
	TwitchClientSecret string `env:"TWITCH_CLIENT_SECRET,required=true"`
	TwitchRedirectURI  string `env:"TWITCH_REDIRECT_URI,default=http://localhost:3000/auth/callback"`

	// Server settings
	Host        string `env:"HOST"`
	Port        int    `env:"PORT,default=8000"`
	FrontendURL string `env:"FRONTEND_URL,default=http://localhost:3000"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`

	// Game settings
	GameDuration     time.Duration `env:"GAME_DURATION,default=2m"`
	EngagementWindow time.Duration `env:"ENGAGEMENT_WINDOW,default=30s"`
	TickInterval     time.Duration `env:"TICK_INTERVAL,default=100ms"`
	GracePeriod      time.Duration `env:"GRACE_PERIOD,default=30s"`
	PullCooldown     time.Duration `env:"PULL_COOLDOWN,default=500ms"`
	BasePullStrength float64       `env:"BASE_PULL_STRENGTH,default=1.0"`
	WinThreshold     float64       `env:"WIN_THRESHOLD,default=100.0"`

	// Matchmaking settings
	MatchInterval  time.Duration `env:"MATCH_INTERVAL,default=1s"`
	MatchStartDelay time.Duration `env:"MATCH_START_DELAY,default=5s"`

	// Redis settings (optional; memory token store when unset)
	RedisURL string `env:"REDIS_URL"`
}

// Load reads configuration from a .env file, if present, and the environment
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// Ruleset derives the per-match physics parameters
func (c *Config) Ruleset() engine.Ruleset {
	return engine.Ruleset{
		GameDuration:     c.GameDuration,
		EngagementWindow: c.EngagementWindow,
		BaseStrength:     c.BasePullStrength,
		WinThreshold:     c.WinThreshold,
		Damping:          0.5,
	}
}

// LoopConfig derives the game loop timings
func (c *Config) LoopConfig() engine.LoopConfig {
	return engine.LoopConfig{
		TickInterval: c.TickInterval,
		GracePeriod:  c.GracePeriod,
	}
}

// SchedulerConfig derives the matchmaking timings
func (c *Config) SchedulerConfig() matchmaking.SchedulerConfig {
	return matchmaking.SchedulerConfig{
		Interval:   c.MatchInterval,
		StartDelay: c.MatchStartDelay,
	}
}
