// Copyright (C) 2026 LatticeWorks AI (dev@latticeworks.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"os"

	"github.com/spf13/cobra"
)

func runEvaluate(cmd *cobra.Command, args []string) {
	id := args[0]
	logger.Info("Requesting full risk evaluation", "provider_id", id)

	resp, err := newAPIClient().get("/v1/risk/calc/" + id)
	if err != nil {
		logger.Error("Evaluation failed", "provider_id", id, "error", err)
		os.Exit(1)
	}
	printJSON(resp)
}

func runStatus(cmd *cobra.Command, args []string) {
	id := args[0]

	resp, err := newAPIClient().get("/v1/risk/status/" + id)
	if err != nil {
		logger.Error("Status read failed", "provider_id", id, "error", err)
		os.Exit(1)
	}
	printJSON(resp)
}

func runResubmit(cmd *cobra.Command, args []string) {
	id := args[0]
	logger.Info("Resubmitting risk evaluation", "provider_id", id, "notes", len(analystNotes))

	body := map[string]any{"notes": analystNotes}
	resp, err := newAPIClient().post("/v1/risk/resubmit/"+id, body)
	if err != nil {
		logger.Error("Resubmission failed", "provider_id", id, "error", err)
		os.Exit(1)
	}
	printJSON(resp)
}

func runRefresh(cmd *cobra.Command, args []string) {
	id := args[0]

	resp, err := newAPIClient().post("/v1/risk/refresh/"+id, nil)
	if err != nil {
		logger.Error("Refresh failed", "provider_id", id, "error", err)
		os.Exit(1)
	}
	printJSON(resp)
}
