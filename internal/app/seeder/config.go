package seeder

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultRegions are the upstream region names imported when none are given.
var DefaultRegions = []string{"Africa", "Americas", "Asia", "Europe", "Oceania"}

// Config holds bulk seeding settings.
type Config struct {
	Regions     []string `yaml:"regions"     env:"SEEDER_REGIONS"     env-separator:","`
	Concurrency int      `yaml:"concurrency" env:"SEEDER_CONCURRENCY" env-default:"4"`
	DryRun      bool     `yaml:"dry_run"     env:"SEEDER_DRY_RUN"`
}

// LoadConfig reads seeder configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (via env-default tags).
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("seeder config: file %s not found", path)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("seeder config: read %s: %w", path, err)
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("seeder config: read env: %w", err)
	}
	return &cfg, nil
}
