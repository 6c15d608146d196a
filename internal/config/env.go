package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Settings are runtime options read from the environment. Command line
// flags take precedence when set explicitly.
type Settings struct {
	CaseDir          string `env:"PHASEAVG_CASE"              envDefault:"."`
	LogLevel         string `env:"PHASEAVG_LOG_LEVEL"         envDefault:"info"`
	CompressionLevel int    `env:"PHASEAVG_COMPRESSION_LEVEL" envDefault:"3"`
	History          bool   `env:"PHASEAVG_HISTORY"           envDefault:"true"`
	TimePrecision    int    `env:"PHASEAVG_TIME_PRECISION"    envDefault:"6"`
}

// LoadSettings parses Settings from the environment.
func LoadSettings() (*Settings, error) {
	s := &Settings{}
	if err := env.Parse(s); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return s, nil
}
