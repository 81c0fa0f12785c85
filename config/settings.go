package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

// Settings is the engine configuration loaded from TOML.
type Settings struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	// GrammarPaths are directories searched for grammar files when a
	// language is registered by name rather than linked in.
	GrammarPaths []string `toml:"grammar_paths"`

	Worker    WorkerSettings  `toml:"worker"`
	Languages []LanguageMatch `toml:"languages"`
}

// WorkerSettings controls the optional out-of-process parse worker.
type WorkerSettings struct {
	Enabled bool `toml:"enabled"`

	// Transport is stdio, pipe, tcp, or websocket.
	Transport string `toml:"transport"`

	// Address is the pipe path, TCP address, or WebSocket URL, depending
	// on Transport. Unused for stdio.
	Address string `toml:"address"`

	// Command spawns the worker binary for the stdio transport. The other
	// transports connect to an already running worker at Address.
	Command []string `toml:"command"`
}

// LanguageMatch maps file extensions and exact filenames to a language ID.
type LanguageMatch struct {
	ID         string   `toml:"id"`
	Extensions []string `toml:"extensions"`
	Filenames  []string `toml:"filenames"`
}

// DefaultSettings returns the built-in configuration.
func DefaultSettings() *Settings {
	return &Settings{
		LogLevel: "info",
		Worker:   WorkerSettings{Transport: "stdio"},
		Languages: []LanguageMatch{
			{ID: "go", Extensions: []string{".go"}},
			{ID: "json", Extensions: []string{".json"}},
			{ID: "python", Extensions: []string{".py"}},
			{ID: "yaml", Extensions: []string{".yaml", ".yml"}},
		},
	}
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

var workerTransports = map[string]bool{
	"stdio":     true,
	"pipe":      true,
	"tcp":       true,
	"websocket": true,
}

// Validate implements Validatable.
func (s *Settings) Validate() error {
	if _, ok := logLevels[s.LogLevel]; !ok {
		return fmt.Errorf("unknown log_level %q", s.LogLevel)
	}
	if s.Worker.Enabled {
		if !workerTransports[s.Worker.Transport] {
			return fmt.Errorf("unknown worker transport %q", s.Worker.Transport)
		}
		if s.Worker.Transport == "stdio" {
			if len(s.Worker.Command) == 0 {
				return fmt.Errorf("stdio worker requires a command")
			}
		} else if s.Worker.Address == "" {
			return fmt.Errorf("worker transport %q requires an address", s.Worker.Transport)
		}
	}
	seen := make(map[string]bool, len(s.Languages))
	for _, l := range s.Languages {
		if l.ID == "" {
			return fmt.Errorf("language matcher with empty id")
		}
		if seen[l.ID] {
			return fmt.Errorf("duplicate language matcher for %q", l.ID)
		}
		seen[l.ID] = true
	}
	return nil
}

// SlogLevel translates LogLevel for slog handlers.
func (s *Settings) SlogLevel() slog.Level {
	if lvl, ok := logLevels[s.LogLevel]; ok {
		return lvl
	}
	return slog.LevelInfo
}

// LanguageFor returns the language ID matching a file path, or "" when no
// matcher applies. Exact filename matches win over extension matches.
func (s *Settings) LanguageFor(path string) string {
	base := filepath.Base(path)
	for _, l := range s.Languages {
		for _, name := range l.Filenames {
			if base == name {
				return l.ID
			}
		}
	}
	ext := strings.ToLower(filepath.Ext(base))
	if ext == "" {
		return ""
	}
	for _, l := range s.Languages {
		for _, e := range l.Extensions {
			if ext == strings.ToLower(e) {
				return l.ID
			}
		}
	}
	return ""
}
