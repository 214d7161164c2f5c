// Copyright (C) 2026 LatticeWorks AI (dev@latticeworks.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := riskintel.Config{
		Port:          envInt("RISKINTEL_PORT", 0),
		LLMBackend:    os.Getenv("LLM_BACKEND_TYPE"),
		WeaviateURL:   os.Getenv("WEAVIATE_SERVICE_URL"),
		OTelEndpoint:  os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		GinMode:       os.Getenv("GIN_MODE"),
		DataDir:       os.Getenv("RISKINTEL_DATA_DIR"),
		PolicyPath:    os.Getenv("RISK_POLICY_PATH"),
		SimulatorSeed: int64(envInt("RISK_SIMULATOR_SEED", 0)),
	}

	svc, err := riskintel.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize riskintel service: %v", err)
	}

	if err := svc.Run(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("Invalid integer environment variable, using default",
			"key", key, "value", raw)
		return fallback
	}
	return v
}
