package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Logging    LoggingConfig
	Generation GenerationServiceConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
}

type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LoggingConfig struct {
	Level      string
	Format     string
	Structured bool
}

// GenerationServiceConfig controls how the server runs generation requests.
type GenerationServiceConfig struct {
	// PresetPath points at a YAML GenerationConfig used as the default
	// preview preset. Empty means DefaultGenerationConfig.
	PresetPath           string
	MaxDimension         int
	MaxErosionIterations int
	MaxVoronoiCells      int
	// MaxConcurrent bounds simultaneous synchronous generation requests.
	MaxConcurrent int
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnvStr("PORT", "8080"),
			ReadTimeout:     getEnvDuration("READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:     getEnvDuration("IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
			RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 45*time.Second),
		},
		Database: DatabaseConfig{
			Path:            getEnvStr("DB_PATH", "./heightfield.db"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 1),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 1),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Logging: LoggingConfig{
			Level:      getEnvStr("LOG_LEVEL", "info"),
			Format:     getEnvStr("LOG_FORMAT", "json"),
			Structured: getEnvBool("LOG_STRUCTURED", true),
		},
		Generation: GenerationServiceConfig{
			PresetPath:           getEnvStr("GENERATION_CONFIG", ""),
			MaxDimension:         getEnvInt("MAX_DIMENSION", DefaultMaxDimension),
			MaxErosionIterations: getEnvInt("MAX_EROSION_ITERATIONS", DefaultMaxErosionIterations),
			MaxVoronoiCells:      getEnvInt("MAX_VORONOI_CELLS", DefaultMaxVoronoiCells),
			MaxConcurrent:        getEnvInt("MAX_CONCURRENT_GENERATIONS", 4),
		},
	}
}

// Limits converts the service settings into per-run limits.
func (g GenerationServiceConfig) Limits() Limits {
	return Limits{
		MaxDimension:         g.MaxDimension,
		MaxErosionIterations: g.MaxErosionIterations,
		MaxVoronoiCells:      g.MaxVoronoiCells,
	}
}

func getEnvStr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
