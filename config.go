package veldt

import (
	jlconfig "github.com/JeremyLoy/config"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// EngineConfig is loaded from the environment at world creation. Every
// field can also be set programmatically through a WorldOption, which
// takes precedence over the environment.
type EngineConfig struct {
	// Namespace distinguishes this world's log and metric streams from
	// other worlds in the same process or fleet.
	Namespace string `config:"VELDT_NAMESPACE"`
	// LogLevel is any level accepted by zerolog (trace, debug, info, ...).
	LogLevel string `config:"VELDT_LOG_LEVEL"`
	// StatsdAddress enables metric emission when non-empty, e.g.
	// "localhost:8125".
	StatsdAddress string `config:"VELDT_STATSD_ADDRESS"`
	// ColumnCapacity is the initial per-column allocation for new tables
	// and sparse maps. Zero means the storage default.
	ColumnCapacity int `config:"VELDT_COLUMN_CAPACITY"`
}

func defaultConfig() EngineConfig {
	return EngineConfig{
		Namespace: "veldt",
		LogLevel:  "info",
	}
}

func loadConfig() (EngineConfig, error) {
	cfg := defaultConfig()
	if err := jlconfig.FromEnv().To(&cfg); err != nil {
		return cfg, eris.Wrap(err, "failed to load config from environment")
	}
	return cfg, nil
}

func (cfg EngineConfig) validate() error {
	if cfg.Namespace == "" {
		return eris.New("namespace must not be empty")
	}
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return eris.Wrapf(err, "invalid log level %q", cfg.LogLevel)
	}
	if cfg.ColumnCapacity < 0 {
		return eris.Errorf("column capacity must not be negative, got %d", cfg.ColumnCapacity)
	}
	return nil
}
