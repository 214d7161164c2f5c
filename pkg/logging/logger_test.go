// Copyright (C) 2026 LatticeWorks AI (dev@latticeworks.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", Level(99).String())
}

func TestDefault(t *testing.T) {
	logger := Default()
	require.NotNil(t, logger)
	t.Cleanup(func() { _ = logger.Close() })

	assert.Equal(t, LevelInfo, logger.config.Level)
	assert.Equal(t, "lattice", logger.config.Service)
	assert.NotNil(t, logger.Slog())
}

// TestExporterReceivesEntries verifies the async exporter fan-out
// delivers message, level, service, and attributes.
func TestExporterReceivesEntries(t *testing.T) {
	exporter := NewBufferedExporter()
	logger := New(Config{
		Level:    LevelInfo,
		Service:  "test-service",
		Quiet:    true,
		Exporter: exporter,
	})
	t.Cleanup(func() { _ = logger.Close() })

	logger.Info("evaluation requested", "provider_id", "prov-1", "attempt", 2)
	logger.Error("request failed", "error", "timeout")

	// Export runs on its own goroutine per entry.
	require.Eventually(t, func() bool {
		return len(exporter.Entries()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	var info, errEntry LogEntry
	for _, e := range exporter.Entries() {
		switch e.Level {
		case LevelInfo:
			info = e
		case LevelError:
			errEntry = e
		}
	}
	assert.Equal(t, "evaluation requested", info.Message)
	assert.Equal(t, "test-service", info.Service)
	assert.Equal(t, "prov-1", info.Attrs["provider_id"])
	assert.Equal(t, 2, info.Attrs["attempt"])
	assert.Equal(t, "request failed", errEntry.Message)
}

// TestExporterRespectsLevel verifies entries below the configured level
// never reach the exporter.
func TestExporterRespectsLevel(t *testing.T) {
	exporter := NewBufferedExporter()
	logger := New(Config{
		Level:    LevelWarn,
		Quiet:    true,
		Exporter: exporter,
	})
	t.Cleanup(func() { _ = logger.Close() })

	logger.Debug("ignored")
	logger.Info("also ignored")
	logger.Warn("kept")

	require.Eventually(t, func() bool {
		return len(exporter.Entries()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "kept", exporter.Entries()[0].Message)
}

// TestFileLogging verifies file output is JSON with the service
// attribute, named {service}_{date}.log.
func TestFileLogging(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{
		Level:   LevelInfo,
		LogDir:  dir,
		Service: "riskintel",
		Quiet:   true,
	})

	logger.Info("pipeline completed", "provider_id", "prov-1", "score", 26.5)
	require.NoError(t, logger.Close())

	filename := fmt.Sprintf("riskintel_%s.log", time.Now().Format("2006-01-02"))
	raw, err := os.ReadFile(filepath.Join(dir, filename))
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(raw))), &entry))
	assert.Equal(t, "pipeline completed", entry["msg"])
	assert.Equal(t, "riskintel", entry["service"])
	assert.Equal(t, "prov-1", entry["provider_id"])
	assert.Equal(t, 26.5, entry["score"])
}

func TestFileLogging_DefaultServiceName(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{LogDir: dir, Quiet: true})
	logger.Info("hello")
	require.NoError(t, logger.Close())

	filename := fmt.Sprintf("lattice_%s.log", time.Now().Format("2006-01-02"))
	_, err := os.Stat(filepath.Join(dir, filename))
	assert.NoError(t, err)
}

// TestWith verifies derived loggers carry extra attributes without
// touching the parent.
func TestWith(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{LogDir: dir, Service: "svc", Quiet: true})

	child := logger.With("provider_id", "prov-1")
	child.Info("child message")
	logger.Info("parent message")
	require.NoError(t, logger.Close())

	filename := fmt.Sprintf("svc_%s.log", time.Now().Format("2006-01-02"))
	raw, err := os.ReadFile(filepath.Join(dir, filename))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "prov-1", first["provider_id"])
	assert.NotContains(t, second, "provider_id")
}

func TestClose_NoFileNoExporter(t *testing.T) {
	logger := New(Config{Quiet: true})
	require.NoError(t, logger.Close())
}

func TestArgsToMap(t *testing.T) {
	m := argsToMap([]any{"a", 1, "b", "two", 3, "ignored-non-string-key"})
	assert.Equal(t, map[string]any{"a": 1, "b": "two"}, m)

	assert.Empty(t, argsToMap(nil))
	assert.Empty(t, argsToMap([]any{"dangling"}))
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".lattice/logs"), expandPath("~/.lattice/logs"))
	assert.Equal(t, "/var/log/lattice", expandPath("/var/log/lattice"))
}

func TestNopExporter(t *testing.T) {
	e := &NopExporter{}
	assert.NoError(t, e.Export(t.Context(), LogEntry{Message: "x"}))
	assert.NoError(t, e.Flush(t.Context()))
	assert.NoError(t, e.Close())
}
