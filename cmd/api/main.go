package main

import (
	"flag"
	"net/http"

	"github.com/joho/godotenv"

	"public_diligence/pkg/api/diligence"
	"public_diligence/pkg/core/config"
	"public_diligence/pkg/core/logger"
	"public_diligence/pkg/core/pipeline"
)

func main() {
	godotenv.Load()

	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Log.Fatalf("Failed to load config: %v", err)
	}

	provider := pipeline.NewLiveProvider(cfg.Provider)
	orchestrator := pipeline.New(provider)
	handler := diligence.NewHandler(orchestrator)

	http.HandleFunc("/api/diligence", handler.HandleRun)
	http.HandleFunc("/api/diligence/download", handler.HandleDownload)

	logger.Log.Infof("Diligence API listening on %s", cfg.Addr())
	if err := http.ListenAndServe(cfg.Addr(), nil); err != nil {
		logger.Log.Fatalf("Server failed: %v", err)
	}
}
