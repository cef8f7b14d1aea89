package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Resources ResourcesConfig
	Planner   PlannerConfig
	NLP       NLPConfig
	Browse    BrowseConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr string
}

// ResourcesConfig locates the NLP data directory and its manifest.
type ResourcesConfig struct {
	Dir      string
	Manifest string
}

// PlannerConfig holds routing parameters.
type PlannerConfig struct {
	SpeedKmph         float64 `mapstructure:"speed_kmph"`
	AttractionsPerDay int     `mapstructure:"attractions_per_day"`
	SolveTimeoutSecs  int     `mapstructure:"solve_timeout_secs"`
}

// NLPConfig holds enrichment parameters.
type NLPConfig struct {
	Topics      int
	MaxFeatures int     `mapstructure:"max_features"`
	MaxDF       float64 `mapstructure:"max_df"`
	MinDF       int     `mapstructure:"min_df"`
}

// BrowseConfig holds preferences the terminal browser persists between runs.
type BrowseConfig struct {
	City string
}

// Load reads configuration from file and env. Env var overrides use prefix TRIPWEAVER_.
func Load() (Config, error) {
	v := viper.New()

	dataHome := filepath.Join(os.Getenv("HOME"), ".local", "share", "tripweaver")

	// default values
	v.SetDefault("database.path", filepath.Join(dataHome, "tripweaver.db"))
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("resources.dir", filepath.Join(dataHome, "resources"))
	v.SetDefault("resources.manifest", filepath.Join(dataHome, "resources.txt"))
	v.SetDefault("planner.speed_kmph", 20.0)
	v.SetDefault("planner.attractions_per_day", 4)
	v.SetDefault("planner.solve_timeout_secs", 5)
	v.SetDefault("nlp.topics", 5)
	v.SetDefault("nlp.max_features", 1000)
	v.SetDefault("nlp.max_df", 0.85)
	v.SetDefault("nlp.min_df", 2)
	v.SetDefault("browse.city", "")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("TRIPWEAVER_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "tripweaver"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("TRIPWEAVER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
// Used by the TUI for preferences set interactively.
func Save(cfg Config) error {
	path := os.Getenv("TRIPWEAVER_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "tripweaver", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("server.addr", cfg.Server.Addr)
	v.Set("resources.dir", cfg.Resources.Dir)
	v.Set("resources.manifest", cfg.Resources.Manifest)
	v.Set("planner.speed_kmph", cfg.Planner.SpeedKmph)
	v.Set("planner.attractions_per_day", cfg.Planner.AttractionsPerDay)
	v.Set("planner.solve_timeout_secs", cfg.Planner.SolveTimeoutSecs)
	v.Set("nlp.topics", cfg.NLP.Topics)
	v.Set("nlp.max_features", cfg.NLP.MaxFeatures)
	v.Set("nlp.max_df", cfg.NLP.MaxDF)
	v.Set("nlp.min_df", cfg.NLP.MinDF)
	v.Set("browse.city", cfg.Browse.City)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
