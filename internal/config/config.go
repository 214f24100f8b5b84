// Package config provides Viper-based configuration loading for the duel server.
package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
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

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver string `mapstructure:"driver"`
	// SQLitePath is the database file used by the sqlite driver.
	SQLitePath string `mapstructure:"sqlite_path"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// GameServerConfig holds the duel server's gRPC listener settings.
type GameServerConfig struct {
	// GRPCHost is the bind address for the health service.
	GRPCHost string `mapstructure:"grpc_host"`
	// GRPCPort is the TCP port for the health service.
	GRPCPort int `mapstructure:"grpc_port"`
}

// Addr returns the "host:port" gRPC address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (g GameServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", g.GRPCHost, g.GRPCPort)
}

// DuelConfig holds the tunables of the turn orchestrator and action resolver.
type DuelConfig struct {
	// TurnWindow is how long players have to submit their choice each turn.
	TurnWindow time.Duration `mapstructure:"turn_window"`
	// SubPromptTimeout bounds each follow-up step (ammo, limb, item pickers).
	SubPromptTimeout time.Duration `mapstructure:"subprompt_timeout"`
	MaxTurns         int           `mapstructure:"max_turns"`
	MaxStimulants    int           `mapstructure:"max_stimulants"`
	FleeChanceHunt   float64       `mapstructure:"flee_chance_hunt"`
	FleeChanceBoss   float64       `mapstructure:"flee_chance_boss"`
	BrokenArmChance  float64       `mapstructure:"broken_arm_chance"`
	// FleeSpeed is the ordering speed of a flee attempt.
	FleeSpeed int `mapstructure:"flee_speed"`
	// InventoryCapacity is the base carrying weight of a player.
	InventoryCapacity float64 `mapstructure:"inventory_capacity"`
	// HuntCooldown is the wait between solo hunts of one player.
	HuntCooldown time.Duration `mapstructure:"hunt_cooldown"`
	// BossRespawn is the default wait before a killed boss can be fought
	// again, used when its template sets no respawn delay.
	BossRespawn time.Duration `mapstructure:"boss_respawn"`
}

// ContentConfig points at the static YAML and Lua content.
type ContentConfig struct {
	ItemsDir     string `mapstructure:"items_dir"`
	NPCsDir      string `mapstructure:"npcs_dir"`
	LocationsDir string `mapstructure:"locations_dir"`
	// ScriptRoot is the base for location script_dir paths; empty disables Lua hooks.
	ScriptRoot string `mapstructure:"script_root"`
}

// Config is the top-level application configuration.
type Config struct {
	Database   DatabaseConfig   `mapstructure:"database"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	GameServer GameServerConfig `mapstructure:"gameserver"`
	Duel       DuelConfig       `mapstructure:"duel"`
	Content    ContentConfig    `mapstructure:"content"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateStorage(c.Storage); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Storage.Driver == DriverPostgres {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGameServer(c.GameServer); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateDuel(c.Duel); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	switch s.Driver {
	case DriverPostgres:
		return nil
	case DriverSQLite:
		if strings.TrimSpace(s.SQLitePath) == "" {
			return fmt.Errorf("storage.sqlite_path must not be empty when storage.driver is sqlite")
		}
		return nil
	default:
		return fmt.Errorf("storage.driver must be one of [postgres, sqlite], got %q", s.Driver)
	}
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateGameServer(g GameServerConfig) error {
	var errs []string
	if g.GRPCHost == "" {
		errs = append(errs, "gameserver.grpc_host must not be empty")
	}
	if g.GRPCPort < 1 || g.GRPCPort > 65535 {
		errs = append(errs, fmt.Sprintf("gameserver.grpc_port must be 1-65535, got %d", g.GRPCPort))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDuel(d DuelConfig) error {
	var errs []string
	if d.TurnWindow <= 0 {
		errs = append(errs, fmt.Sprintf("duel.turn_window must be > 0, got %s", d.TurnWindow))
	}
	if d.SubPromptTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("duel.subprompt_timeout must be > 0, got %s", d.SubPromptTimeout))
	}
	if d.MaxTurns < 1 {
		errs = append(errs, fmt.Sprintf("duel.max_turns must be >= 1, got %d", d.MaxTurns))
	}
	if d.MaxStimulants < 1 {
		errs = append(errs, fmt.Sprintf("duel.max_stimulants must be >= 1, got %d", d.MaxStimulants))
	}
	for name, p := range map[string]float64{
		"flee_chance_hunt":  d.FleeChanceHunt,
		"flee_chance_boss":  d.FleeChanceBoss,
		"broken_arm_chance": d.BrokenArmChance,
	} {
		if p < 0 || p > 1 {
			errs = append(errs, fmt.Sprintf("duel.%s must be in [0, 1], got %v", name, p))
		}
	}
	if d.FleeSpeed < 0 {
		errs = append(errs, fmt.Sprintf("duel.flee_speed must be >= 0, got %d", d.FleeSpeed))
	}
	if d.InventoryCapacity <= 0 {
		errs = append(errs, fmt.Sprintf("duel.inventory_capacity must be > 0, got %v", d.InventoryCapacity))
	}
	if d.HuntCooldown < 0 || d.BossRespawn < 0 {
		errs = append(errs, "duel.hunt_cooldown and duel.boss_respawn must not be negative")
	}
	if len(errs) > 0 {
		// map iteration order is random
		sort.Strings(errs)
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with WASTELAND_ prefix
	v.SetEnvPrefix("WASTELAND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns a Viper instance holding only the built-in defaults.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "wasteland")
	v.SetDefault("database.password", "wasteland")
	v.SetDefault("database.name", "wasteland")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("storage.driver", DriverSQLite)
	v.SetDefault("storage.sqlite_path", "data/wasteland.db")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("gameserver.grpc_host", "127.0.0.1")
	v.SetDefault("gameserver.grpc_port", 50051)

	v.SetDefault("duel.turn_window", "40s")
	v.SetDefault("duel.subprompt_timeout", "30s")
	v.SetDefault("duel.max_turns", 20)
	v.SetDefault("duel.max_stimulants", 4)
	v.SetDefault("duel.flee_chance_hunt", 0.15)
	v.SetDefault("duel.flee_chance_boss", 0.10)
	v.SetDefault("duel.broken_arm_chance", 0.20)
	v.SetDefault("duel.flee_speed", 50)
	v.SetDefault("duel.inventory_capacity", 40.0)
	v.SetDefault("duel.hunt_cooldown", "2m")
	v.SetDefault("duel.boss_respawn", "1h")

	v.SetDefault("content.items_dir", "content/items")
	v.SetDefault("content.npcs_dir", "content/npcs")
	v.SetDefault("content.locations_dir", "content/locations")
	v.SetDefault("content.script_root", "content/scripts")
}
