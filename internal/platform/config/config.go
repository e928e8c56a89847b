package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config se carga desde variables de entorno.
type Config struct {
	Port      int    `env:"PORT" envDefault:"8080"`
	AppName   string `env:"APP_NAME" envDefault:"child-immunization-history"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// Vacío => repos in-memory.
	DBDSN string `env:"DB_DSN"`
	// Vacío => lock en proceso.
	RedisURL string `env:"REDIS_URL"`

	// Vacío => calendario embebido.
	CatalogPath string `env:"CATALOG_PATH"`
	Timezone    string `env:"TIMEZONE" envDefault:"America/Asuncion"`

	SweepInterval             time.Duration `env:"SWEEP_INTERVAL" envDefault:"1h"`
	SweepConcurrency          int           `env:"SWEEP_CONCURRENCY" envDefault:"8"`
	NotificationRetentionDays int           `env:"NOTIFICATION_RETENTION_DAYS" envDefault:"365"`
	ReconcileMaxRetries       int           `env:"RECONCILE_MAX_RETRIES" envDefault:"3"`
	LockTTL                   time.Duration `env:"LOCK_TTL" envDefault:"10s"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"20"`

	// Sin base URL no hay verifier: modo dev con X-Debug-User-ID.
	OdinBaseURL string `env:"ODIN_BASE_URL"`
	OdinAPIKey  string `env:"ODIN_API_KEY"`
}

// ParseEnv carga target desde el entorno.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive")
	}
	if c.SweepConcurrency < 1 {
		return fmt.Errorf("SWEEP_CONCURRENCY must be >= 1")
	}
	if c.ReconcileMaxRetries < 1 {
		return fmt.Errorf("RECONCILE_MAX_RETRIES must be >= 1")
	}
	if c.NotificationRetentionDays < 0 {
		return fmt.Errorf("NOTIFICATION_RETENTION_DAYS must be >= 0")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Location resuelve la zona horaria con la que se calcula "hoy".
func (c Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", name, err)
	}
	return loc, nil
}

// Retention devuelve cuánto se conservan las notificaciones APLICADA. Cero desactiva la purga.
func (c Config) Retention() time.Duration {
	return time.Duration(c.NotificationRetentionDays) * 24 * time.Hour
}
