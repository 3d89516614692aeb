package main

import (
	"github.com/caarlos0/env/v11"
)

// Config is the full runtime configuration, populated from the
// environment.
type Config struct {
	Port            string `env:"PORT" envDefault:"8080"`
	AppEnv          string `env:"APP_ENV" envDefault:"local"`
	DevMode         bool   `env:"DEV_MODE" envDefault:"false"`
	LocalStorePath  string `env:"LOCAL_STORE_PATH" envDefault:"forgeite.db"`
	DatabaseURL     string `env:"DATABASE_URL"`
	NarratorURL     string `env:"NARRATOR_URL"`
	TokenSecret     string `env:"TOKEN_SECRET"`
	SaveIntervalSec int    `env:"SAVE_INTERVAL_SECONDS" envDefault:"5"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
