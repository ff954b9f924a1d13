package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
)

// Environment overrides applied after the YAML file.
const (
	EnvLogLevel = "L2QUEST_LOG_LEVEL"
	EnvStorage  = "L2QUEST_STORAGE"
	EnvDSN      = "L2QUEST_DSN"
)

// QuestServer holds all configuration for the quest server.
type QuestServer struct {
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
	HTML    HTMLConfig    `yaml:"html"`
	Rates   Rates         `yaml:"rates"`

	// RNGSeed makes drops reproducible; 0 seeds from the OS.
	RNGSeed uint64 `yaml:"rng_seed"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level      string `yaml:"level"`  // debug, info, warn, error
	Format     string `yaml:"format"` // text or json
	File       string `yaml:"file"`   // empty disables the file sink
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// StorageConfig selects where quest progress is persisted.
type StorageConfig struct {
	Driver     string         `yaml:"driver"`
	Database   DatabaseConfig `yaml:"database"`
	SQLitePath string         `yaml:"sqlite_path"`

	// dsn overrides Database.DSN() when set from the environment.
	dsn string
}

// DSN returns the PostgreSQL connection string, honouring L2QUEST_DSN.
func (s StorageConfig) DSN() string {
	if s.dsn != "" {
		return s.dsn
	}
	return s.Database.DSN()
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// HTMLConfig locates quest dialog pages.
type HTMLConfig struct {
	Dir  string `yaml:"dir"`
	Lazy bool   `yaml:"lazy"` // load pages on first use instead of at startup
}

// Rates holds server rate multipliers for quest drops and rewards.
type Rates struct {
	QuestDrop        float64 `yaml:"quest_drop"`
	QuestRewardItems float64 `yaml:"quest_reward_items"`
	QuestRewardExp   float64 `yaml:"quest_reward_exp"`
	QuestRewardSp    float64 `yaml:"quest_reward_sp"`
}

// DefaultRates returns Rates with x1 multipliers.
func DefaultRates() Rates {
	return Rates{
		QuestDrop:        1.0,
		QuestRewardItems: 1.0,
		QuestRewardExp:   1.0,
		QuestRewardSp:    1.0,
	}
}

// DefaultQuestServer returns QuestServer config with sensible defaults.
func DefaultQuestServer() QuestServer {
	return QuestServer{
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
		Storage: StorageConfig{
			Driver: StorageMemory,
			Database: DatabaseConfig{
				Host:     "127.0.0.1",
				Port:     5432,
				User:     "l2quest",
				Password: "l2quest",
				DBName:   "l2quest",
				SSLMode:  "disable",
			},
			SQLitePath: "data/quests.db",
		},
		HTML: HTMLConfig{
			Dir:  "data/html",
			Lazy: true,
		},
		Rates: DefaultRates(),
	}
}

// LoadQuestServer loads quest server config from a YAML file and applies
// environment overrides. If the file doesn't exist, defaults are used.
func LoadQuestServer(path string) (QuestServer, error) {
	cfg := DefaultQuestServer()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	applyEnv(&cfg)
	cfg.Storage.Driver = strings.ToLower(cfg.Storage.Driver)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func applyEnv(cfg *QuestServer) {
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvStorage); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv(EnvDSN); v != "" {
		cfg.Storage.dsn = v
	}
}

// Validate checks values that would otherwise fail late at startup.
func (c QuestServer) Validate() error {
	var errs []error

	switch c.Storage.Driver {
	case StorageMemory, StoragePostgres:
	case StorageSQLite:
		if c.Storage.SQLitePath == "" {
			errs = append(errs, errors.New("storage.sqlite_path is required for sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}

	switch c.Log.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}

	rates := []struct {
		name  string
		value float64
	}{
		{"rates.quest_drop", c.Rates.QuestDrop},
		{"rates.quest_reward_items", c.Rates.QuestRewardItems},
		{"rates.quest_reward_exp", c.Rates.QuestRewardExp},
		{"rates.quest_reward_sp", c.Rates.QuestRewardSp},
	}
	for _, r := range rates {
		if r.value < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %v", r.name, r.value))
		}
	}

	return errors.Join(errs...)
}
