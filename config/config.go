package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the full application configuration.
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	Observability ObservabilityConfig `yaml:"observability"`
	Gamification  GamificationConfig  `yaml:"gamification"`
	Settlement    SettlementConfig    `yaml:"settlement"`
	Storage       StorageConfig       `yaml:"storage"`
	Notifications NotificationsConfig `yaml:"notifications"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// ObservabilityConfig holds logging/metrics configuration.
type ObservabilityConfig struct {
	Environment    string `yaml:"environment"`
	MetricsAddress string `yaml:"metrics_address"`
}

// GamificationConfig carries XP rate overrides. Zero values mean "use the
// built-in default" so a partial (or absent) block degrades silently. The
// flip side is that a rate cannot be configured to exactly 0; turning a
// component off entirely would need pointer-typed overrides.
type GamificationConfig struct {
	PresenceXP         int64 `yaml:"presence_xp"`
	GoalXP             int64 `yaml:"goal_xp"`
	AssistXP           int64 `yaml:"assist_xp"`
	SaveXP             int64 `yaml:"save_xp"`
	WinXP              int64 `yaml:"win_xp"`
	DrawXP             int64 `yaml:"draw_xp"`
	MvpXP              int64 `yaml:"mvp_xp"`
	BestGoalXP         int64 `yaml:"best_goal_xp"`
	CleanSheetXP       int64 `yaml:"clean_sheet_xp"`
	WorstPlayerPenalty int64 `yaml:"worst_player_penalty"`
}

// SettlementConfig holds match finalization knobs.
type SettlementConfig struct {
	MinPlayers int `yaml:"min_players"`
}

// StorageConfig exposes storage-adapter capabilities.
type StorageConfig struct {
	// MaxOpsPerCommit bounds how many staged writes one atomic commit may
	// carry. Season closure chunks its freeze writes by this.
	MaxOpsPerCommit int `yaml:"max_ops_per_commit"`
}

// NotificationsConfig holds dispatcher tuning.
type NotificationsConfig struct {
	RatePerSecond int `yaml:"rate_per_second"`
	Burst         int `yaml:"burst"`
}

const (
	defaultMinPlayers      = 6
	defaultMaxOpsPerCommit = 400
	defaultNotifyRate      = 25
	defaultNotifyBurst     = 50
)

// LoadConfig loads configuration from a YAML file, falling back to
// environment variables when the file is absent, then applies env overrides.
func LoadConfig(filename string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(filename)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("SETTLEMENT_MIN_PLAYERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Settlement.MinPlayers = n
		}
	}
	if v := os.Getenv("STORAGE_MAX_OPS_PER_COMMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Storage.MaxOpsPerCommit = n
		}
	}

	cfg.applyDefaults()

	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required (config file or DATABASE_URL)")
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Observability.Environment == "" {
		c.Observability.Environment = "development"
	}
	if c.Observability.MetricsAddress == "" {
		c.Observability.MetricsAddress = ":9090"
	}
	if c.Settlement.MinPlayers == 0 {
		c.Settlement.MinPlayers = defaultMinPlayers
	}
	if c.Storage.MaxOpsPerCommit == 0 {
		c.Storage.MaxOpsPerCommit = defaultMaxOpsPerCommit
	}
	if c.Notifications.RatePerSecond == 0 {
		c.Notifications.RatePerSecond = defaultNotifyRate
	}
	if c.Notifications.Burst == 0 {
		c.Notifications.Burst = defaultNotifyBurst
	}
}
