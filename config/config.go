package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const (
	SecuredMode = "secured"
	OpenMode    = "open"
)

// Config holds all runtime settings, populated from the environment.
type Config struct {
	Port         string `envconfig:"PORT" default:"3000"`
	JWTSecret    string `envconfig:"JWT_SECRET" default:"development-secret-key-change-in-production"`
	SecurityMode string `envconfig:"SECURITY_MODE" default:"secured"`
	DataDir      string `envconfig:"DATA_DIR" default:"db"`
	SeedDir      string `envconfig:"SEED_DIR" default:"db/seed"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	LogDev       bool   `envconfig:"LOG_DEV" default:"false"`
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}

	cfg.SecurityMode = strings.ToLower(strings.TrimSpace(cfg.SecurityMode))
	if cfg.SecurityMode == "" {
		cfg.SecurityMode = SecuredMode
	}
	if cfg.SecurityMode != SecuredMode && cfg.SecurityMode != OpenMode {
		return Config{}, fmt.Errorf("invalid SECURITY_MODE %q: allowed values are %q or %q",
			cfg.SecurityMode, SecuredMode, OpenMode)
	}

	return cfg, nil
}

// EntityFile returns the live document path for an entity family.
func (c Config) EntityFile(family string) string {
	return filepath.Join(c.DataDir, family+".json")
}

// SeedFile returns the seed document path for an entity family.
func (c Config) SeedFile(family string) string {
	return filepath.Join(c.SeedDir, family+".json")
}
