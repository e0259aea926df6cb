// Package config provides Viper-based configuration loading for the Fulcrum
// combat server.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings for the encounter archive.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// EngineConfig holds combat engine tuning knobs.
type EngineConfig struct {
	// NPCThinkDelay is how long an NPC "thinks" before acting on its turn.
	NPCThinkDelay time.Duration `mapstructure:"npc_think_delay"`
	// FleeChance is the probability in [0,1] that a flee attempt succeeds.
	FleeChance float64 `mapstructure:"flee_chance"`
	// VictoryXP is the flat XP granted to each surviving player on a win.
	VictoryXP int `mapstructure:"victory_xp"`
}

// NarrativeConfig holds settings for the external narration generator.
type NarrativeConfig struct {
	// Enabled toggles LLM narration; when false the fallback text is always used.
	Enabled bool `mapstructure:"enabled"`
	// Model is the Anthropic model identifier.
	Model string `mapstructure:"model"`
	// APIKey is the Anthropic API key; empty falls back to the environment.
	APIKey string `mapstructure:"api_key"`
	// Workers is the size of the bounded generation worker pool.
	Workers int `mapstructure:"workers"`
	// Timeout is the per-request deadline before falling back.
	Timeout time.Duration `mapstructure:"timeout"`
	// CacheSize is the maximum number of cached narration entries.
	CacheSize int `mapstructure:"cache_size"`
}

// ContentConfig holds the directories for data-driven rules content.
type ContentConfig struct {
	WeaponsDir   string `mapstructure:"weapons_dir"`
	ArmorDir     string `mapstructure:"armor_dir"`
	ItemsDir     string `mapstructure:"items_dir"`
	StatusesDir  string `mapstructure:"statuses_dir"`
	TalentsDir   string `mapstructure:"talents_dir"`
	AbilitiesDir string `mapstructure:"abilities_dir"`
	NPCsDir      string `mapstructure:"npcs_dir"`
	ScriptsDir   string `mapstructure:"scripts_dir"`

	CharactersDir string `mapstructure:"characters_dir"`
	LocationsDir  string `mapstructure:"locations_dir"`
}

// Config is the top-level application configuration.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Narrative NarrativeConfig `mapstructure:"narrative"`
	Content   ContentConfig   `mapstructure:"content"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateEngine(c.Engine); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateNarrative(c.Narrative); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return errors.New("config validation failed: " + strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error; got %q", l.Level)
	}
	switch l.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console; got %q", l.Format)
	}
	return nil
}

func validateEngine(e EngineConfig) error {
	if e.NPCThinkDelay < 0 {
		return fmt.Errorf("engine.npc_think_delay must be >= 0; got %s", e.NPCThinkDelay)
	}
	if e.FleeChance < 0 || e.FleeChance > 1 {
		return fmt.Errorf("engine.flee_chance must be in [0,1]; got %f", e.FleeChance)
	}
	if e.VictoryXP < 0 {
		return fmt.Errorf("engine.victory_xp must be >= 0; got %d", e.VictoryXP)
	}
	return nil
}

func validateNarrative(n NarrativeConfig) error {
	if !n.Enabled {
		return nil
	}
	if n.Model == "" {
		return errors.New("narrative.model must not be empty when narration is enabled")
	}
	if n.Workers < 1 {
		return fmt.Errorf("narrative.workers must be >= 1; got %d", n.Workers)
	}
	if n.Timeout <= 0 {
		return fmt.Errorf("narrative.timeout must be > 0; got %s", n.Timeout)
	}
	if n.CacheSize < 1 {
		return fmt.Errorf("narrative.cache_size must be >= 1; got %d", n.CacheSize)
	}
	return nil
}

// Load reads configuration from the given file path and environment variables.
// Environment variables use the FULCRUM_ prefix with underscores, e.g.
// FULCRUM_LOGGING_LEVEL overrides logging.level.
//
// Precondition: path must point to a readable YAML config file.
// Postcondition: Returns a validated Config or a non-nil error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvPrefix("FULCRUM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file %q: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers defaults so a minimal config file still validates.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 8)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", time.Hour)

	v.SetDefault("engine.npc_think_delay", time.Second)
	v.SetDefault("engine.flee_chance", 0.5)
	v.SetDefault("engine.victory_xp", 50)

	v.SetDefault("narrative.enabled", false)
	v.SetDefault("narrative.model", "claude-sonnet-4-5")
	v.SetDefault("narrative.workers", 4)
	v.SetDefault("narrative.timeout", 10*time.Second)
	v.SetDefault("narrative.cache_size", 256)

	v.SetDefault("content.weapons_dir", "content/weapons")
	v.SetDefault("content.armor_dir", "content/armor")
	v.SetDefault("content.items_dir", "content/items")
	v.SetDefault("content.statuses_dir", "content/statuses")
	v.SetDefault("content.talents_dir", "content/talents")
	v.SetDefault("content.abilities_dir", "content/abilities")
	v.SetDefault("content.npcs_dir", "content/npcs")
	v.SetDefault("content.scripts_dir", "content/scripts")
	v.SetDefault("content.characters_dir", "content/characters")
	v.SetDefault("content.locations_dir", "content/locations")
}
