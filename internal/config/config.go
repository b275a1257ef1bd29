package config

import (
	"io"
	"time"

	"github.com/reoring/dashschema/internal/logger"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "DASHSCHEMA_"

type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Catalog CatalogConfig `koanf:"catalog"`
	Submit  SubmitConfig  `koanf:"submit"`
	Log     LogConfig     `koanf:"log"`
}

// ServerConfig configures the HTTP adapter over the schema catalog.
type ServerConfig struct {
	Host            string        `koanf:"host"             validate:"required"`
	Port            int           `koanf:"port"             validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// CatalogConfig selects the schema files and the deployment enumerations.
type CatalogConfig struct {
	// Dir overrides the embedded schemas when set.
	Dir         string   `koanf:"dir"`
	DataSources []string `koanf:"data_sources"`
	Columns     []string `koanf:"columns"`
	MaxDepth    int      `koanf:"max_depth"    validate:"min=0"`
}

// SubmitConfig points the submission client at a wizard server.
type SubmitConfig struct {
	BaseURL  string        `koanf:"base_url" validate:"omitempty,url"`
	Timeout  time.Duration `koanf:"timeout"  validate:"gt=0"`
	Retries  int           `koanf:"retries"  validate:"min=0,max=10"`
	Username string        `koanf:"username"`
	Password string        `koanf:"password"`
}

type LogConfig struct {
	Level     string `koanf:"level"      validate:"oneof=debug info warn error disabled"`
	JSON      bool   `koanf:"json"`
	AddSource bool   `koanf:"add_source"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Catalog: CatalogConfig{
			DataSources: []string{},
			Columns:     []string{},
		},
		Submit: SubmitConfig{
			BaseURL: "http://127.0.0.1:5000",
			Timeout: 10 * time.Second,
			Retries: 2,
		},
		Log: LogConfig{
			Level: string(logger.InfoLevel),
		},
	}
}

// LoggerConfig converts the log section for logger.NewLogger.
func (c LogConfig) LoggerConfig(out io.Writer) *logger.Config {
	cfg := logger.DefaultConfig()
	cfg.Level = logger.LogLevel(c.Level)
	cfg.JSON = c.JSON
	cfg.AddSource = c.AddSource
	if out != nil {
		cfg.Output = out
	}
	return cfg
}
