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

func runProviderAdd(cmd *cobra.Command, args []string) {
	body := map[string]any{
		"id":             providerID,
		"name":           providerName,
		"license_number": licenseNumber,
		"web_research":   webResearch,
		"doc_summary":    docSummary,
	}

	resp, err := newAPIClient().post("/v1/providers", body)
	if err != nil {
		logger.Error("Provider registration failed", "name", providerName, "error", err)
		os.Exit(1)
	}
	logger.Info("Provider registered", "provider_id", resp["provider_id"])
	printJSON(resp)
}

func runProviderList(cmd *cobra.Command, args []string) {
	resp, err := newAPIClient().get("/v1/providers")
	if err != nil {
		logger.Error("Provider list failed", "error", err)
		os.Exit(1)
	}
	printJSON(resp)
}
