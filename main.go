package main

import (
	"log"
	"net/http"
	"time"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatal("failed to load configuration:", err)
	}
	log.Println("App environment:", cfg.AppEnv)
	if cfg.DevMode {
		log.Println("⚠️  DEV MODE ENABLED")
	}

	store, err := OpenStore(cfg.LocalStorePath)
	if err != nil {
		log.Fatal("failed to open local store:", err)
	}
	defer store.Close()
	log.Println("Local store ready at", cfg.LocalStorePath)

	// The remote mirror is optional. Without it the game runs entirely on
	// the local store; the leaderboard just reports unavailable.
	var mirror *Mirror
	if cfg.DatabaseURL != "" {
		mirror, err = OpenMirror(cfg.DatabaseURL)
		if err != nil {
			log.Println("remote mirror unavailable, continuing local-only:", err)
			mirror = nil
		} else {
			defer mirror.Close()
			log.Println("Connected to PostgreSQL mirror")
		}
	} else {
		log.Println("DATABASE_URL not set, running local-only")
	}

	if cfg.TokenSecret == "" {
		if cfg.DevMode {
			cfg.TokenSecret = "dev-only-secret"
			log.Println("⚠️  TOKEN_SECRET not set, using dev secret")
		} else {
			log.Fatal("TOKEN_SECRET is not set")
		}
	}

	engine := NewEngine()
	registry := NewRegistry(engine, store, mirror)
	app := &App{
		cfg:      cfg,
		engine:   engine,
		registry: registry,
		store:    store,
		mirror:   mirror,
		narrator: NewNarrator(cfg.NarratorURL),
		tokens:   NewTokenIssuer(cfg.TokenSecret),
	}

	startSaver(registry, time.Duration(cfg.SaveIntervalSec)*time.Second)

	mux := http.NewServeMux()
	registerRoutes(mux, app)

	addr := ":" + cfg.Port
	log.Println("Listening on", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}
