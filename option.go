package veldt

import (
	"github.com/rs/zerolog"
)

// WorldOption represents an option that can be used to augment how the World will be created.
type WorldOption struct {
	configOption func(*EngineConfig)
	worldOption  func(*World)
}

// WithNamespace sets the world's namespace, overriding VELDT_NAMESPACE.
// The namespace tags every log line and metric the world emits.
func WithNamespace(namespace string) WorldOption {
	return WorldOption{
		configOption: func(cfg *EngineConfig) { cfg.Namespace = namespace },
	}
}

// WithLogLevel sets the log level, overriding VELDT_LOG_LEVEL.
func WithLogLevel(level string) WorldOption {
	return WorldOption{
		configOption: func(cfg *EngineConfig) { cfg.LogLevel = level },
	}
}

// WithStatsdAddress enables metric emission to the given statsd endpoint,
// overriding VELDT_STATSD_ADDRESS.
func WithStatsdAddress(address string) WorldOption {
	return WorldOption{
		configOption: func(cfg *EngineConfig) { cfg.StatsdAddress = address },
	}
}

// WithColumnCapacity sets the initial per-column allocation for new tables
// and sparse maps, overriding VELDT_COLUMN_CAPACITY. Larger values trade
// memory for fewer grow-and-copy cycles on spawn-heavy workloads.
func WithColumnCapacity(capacity int) WorldOption {
	return WorldOption{
		configOption: func(cfg *EngineConfig) { cfg.ColumnCapacity = capacity },
	}
}

// WithLogger replaces the world's logger. The given logger is used as-is;
// the world does not attach its namespace or id fields to it.
func WithLogger(logger zerolog.Logger) WorldOption {
	return WorldOption{
		worldOption: func(w *World) { w.Logger = &logger },
	}
}
