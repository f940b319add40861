package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/limaJavier/coursetabling/pkg/model"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

const (
	StrategyEmbedded = model.StrategyEmbedded
	StrategyIsolated = model.StrategyIsolated
	StrategySat      = model.StrategySat

	BackendGini   = "gini"
	BackendKissat = "kissat"
)

var (
	validStrategies = []string{StrategyEmbedded, StrategyIsolated, StrategySat}
	validBackends   = []string{BackendGini, BackendKissat}
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Log    LogConfig
	Solver SolverConfig
}

type LogConfig struct {
	Level  string
	Format string
}

// SolverConfig selects the timetabler and bounds every solve.
type SolverConfig struct {
	Strategy   string
	Backend    string // Only used by the sat strategy
	Timeout    time.Duration
	MaxSteps   uint64
	KissatPath string
}

// Load reads the configuration from the environment, a .env file and the optional file (json, yaml or env).
func Load(file string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	if file == "" {
		v.SetConfigFile(".env")
		v.SetConfigType("env")
	} else {
		v.SetConfigFile(file)
		if extension := strings.TrimPrefix(filepath.Ext(file), "."); extension == "" || extension == "env" {
			v.SetConfigType("env")
		}
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || (!errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist)) {
			return nil, fmt.Errorf("cannot read config: %w", err)
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Solver = SolverConfig{
		Strategy:   strings.ToLower(v.GetString("SOLVER_STRATEGY")),
		Backend:    strings.ToLower(v.GetString("SOLVER_BACKEND")),
		Timeout:    parseDuration(v.GetString("SOLVER_TIMEOUT"), 30*time.Second),
		MaxSteps:   v.GetUint64("SOLVER_MAX_STEPS"),
		KissatPath: v.GetString("KISSAT_PATH"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	if !slices.Contains(validStrategies, cfg.Solver.Strategy) {
		return fmt.Errorf("%q is not a valid solver strategy, expected one of %v", cfg.Solver.Strategy, validStrategies)
	}
	if !slices.Contains(validBackends, cfg.Solver.Backend) {
		return fmt.Errorf("%q is not a valid solver backend, expected one of %v", cfg.Solver.Backend, validBackends)
	}
	if cfg.Solver.Timeout < 0 {
		return fmt.Errorf("solver timeout must not be negative: %v", cfg.Solver.Timeout)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SOLVER_STRATEGY", StrategyEmbedded)
	v.SetDefault("SOLVER_BACKEND", BackendGini)
	v.SetDefault("SOLVER_TIMEOUT", "30s")
	v.SetDefault("SOLVER_MAX_STEPS", 0)
	v.SetDefault("KISSAT_PATH", "kissat")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}
