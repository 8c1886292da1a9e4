package main

import (
	"flag"
	"log"
	"os"

	"EngineMirror/internal/di"
	"EngineMirror/pkg/config"
)

func main() {
	configPath := flag.String("config", "", "config file path (defaults when empty)")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
