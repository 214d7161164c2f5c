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

	"github.com/LatticeWorksAI/LatticeRisk/pkg/logging"
)

// --- Global Command Variables ---
var (
	serverURL     string
	analystNotes  []string
	providerName  string
	licenseNumber string
	webResearch   string
	docSummary    string
	providerID    string
	verbose       bool

	logger = logging.New(logging.Config{
		Level:   logging.LevelInfo,
		Service: "cli",
	})

	rootCmd = &cobra.Command{
		Use:   "lattice",
		Short: "A cli for the LatticeRisk provider risk intelligence service",
		Long: `Lattice talks to a running riskintel service to register providers,
trigger risk evaluations, resubmit with analyst notes, and inspect
risk status and history.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger = logging.New(logging.Config{
					Level:   logging.LevelDebug,
					Service: "cli",
				})
			}
		},
	}

	// --- Risk pipeline ---
	evaluateCmd = &cobra.Command{
		Use:   "evaluate [provider-id]",
		Short: "Run a full risk evaluation for a provider",
		Args:  cobra.ExactArgs(1),
		Run:   runEvaluate, // Defined in cmd_risk.go
	}
	statusCmd = &cobra.Command{
		Use:   "status [provider-id]",
		Short: "Show the current risk status, categories, and history",
		Args:  cobra.ExactArgs(1),
		Run:   runStatus, // Defined in cmd_risk.go
	}
	resubmitCmd = &cobra.Command{
		Use:   "resubmit [provider-id]",
		Short: "Resubmit the last evaluation with analyst notes",
		Args:  cobra.ExactArgs(1),
		Run:   runResubmit, // Defined in cmd_risk.go
	}
	refreshCmd = &cobra.Command{
		Use:   "refresh [provider-id]",
		Short: "Schedule a background re-evaluation",
		Args:  cobra.ExactArgs(1),
		Run:   runRefresh, // Defined in cmd_risk.go
	}

	// --- Provider registry ---
	providerCmd = &cobra.Command{
		Use:   "provider",
		Short: "Manage registered providers",
	}
	providerAddCmd = &cobra.Command{
		Use:   "add",
		Short: "Register a provider for risk tracking",
		Run:   runProviderAdd, // Defined in cmd_providers.go
	}
	providerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List all registered providers",
		Run:   runProviderList, // Defined in cmd_providers.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server",
		envOr("LATTICE_SERVER_URL", "http://localhost:12310"),
		"Base URL of the riskintel service")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	resubmitCmd.Flags().StringArrayVar(&analystNotes, "note", nil,
		"Analyst note to fold into the resubmission (repeatable)")

	providerAddCmd.Flags().StringVar(&providerID, "id", "",
		"Provider identifier (generated when omitted)")
	providerAddCmd.Flags().StringVar(&providerName, "name", "",
		"Provider display name (required)")
	providerAddCmd.Flags().StringVar(&licenseNumber, "license", "",
		"Provider license number")
	providerAddCmd.Flags().StringVar(&webResearch, "web-research", "",
		"Free-text web research context for the explanation prompt")
	providerAddCmd.Flags().StringVar(&docSummary, "doc-summary", "",
		"Free-text document summary context for the explanation prompt")
	_ = providerAddCmd.MarkFlagRequired("name")

	providerCmd.AddCommand(providerAddCmd, providerListCmd)
	rootCmd.AddCommand(evaluateCmd, statusCmd, resubmitCmd, refreshCmd, providerCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
