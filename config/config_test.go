package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadTOMLMissingFileReturnsDefaults(t *testing.T) {
	defaults := DefaultSettings()
	cfg, err := LoadTOML[Settings](filepath.Join(t.TempDir(), "missing.toml"), defaults)
	if err != nil {
		t.Fatalf("LoadTOML: %v", err)
	}
	if cfg != defaults {
		t.Error("expected defaults pointer back for missing file")
	}
}

func TestLoadTOMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nextedit.toml")
	writeFile(t, path, `
log_level = "debug"

[worker]
enabled = true
transport = "tcp"
address = "127.0.0.1:7421"
`)

	cfg, err := LoadTOML[Settings](path, DefaultSettings())
	if err != nil {
		t.Fatalf("LoadTOML: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if !cfg.Worker.Enabled || cfg.Worker.Transport != "tcp" {
		t.Errorf("Worker = %+v, want enabled tcp", cfg.Worker)
	}
	// Defaults not mentioned in the file survive.
	if len(cfg.Languages) == 0 {
		t.Error("language matchers lost during load")
	}
}

func TestLoadTOMLValidationFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nextedit.toml")
	writeFile(t, path, `log_level = "loud"`)

	if _, err := LoadTOML[Settings](path, DefaultSettings()); err == nil {
		t.Fatal("expected validation error for unknown log level")
	}
}

func TestValidateWorkerAddress(t *testing.T) {
	s := DefaultSettings()
	s.Worker = WorkerSettings{Enabled: true, Transport: "tcp"}
	if err := s.Validate(); err == nil {
		t.Error("expected error for tcp worker without address")
	}
	s.Worker = WorkerSettings{Enabled: true, Transport: "stdio"}
	if err := s.Validate(); err == nil {
		t.Error("expected error for stdio worker without a command")
	}
	s.Worker = WorkerSettings{Enabled: true, Transport: "stdio", Command: []string{"nextedit-worker"}}
	if err := s.Validate(); err != nil {
		t.Errorf("stdio worker with command should validate: %v", err)
	}
}

func TestLanguageFor(t *testing.T) {
	s := DefaultSettings()
	s.Languages = append(s.Languages, LanguageMatch{ID: "make", Filenames: []string{"Makefile"}})

	cases := []struct {
		path string
		want string
	}{
		{"main.go", "go"},
		{"/src/pkg/util_test.GO", "go"},
		{"settings.yml", "yaml"},
		{"Makefile", "make"},
		{"notes.txt", ""},
		{"README", ""},
	}
	for _, c := range cases {
		if got := s.LanguageFor(c.path); got != c.want {
			t.Errorf("LanguageFor(%q) = %q, want %q", c.path, got, c.want)
		}
	}
}

func TestStoreSwapNotifiesListeners(t *testing.T) {
	store := NewStore(DefaultSettings())

	var gotOld, gotNew *Settings
	store.OnChange(func(old, new_ *Settings) {
		gotOld, gotNew = old, new_
	})

	next := DefaultSettings()
	next.LogLevel = "warn"
	store.Swap(next)

	if gotOld == nil || gotOld.LogLevel != "info" {
		t.Errorf("old = %+v, want default", gotOld)
	}
	if gotNew == nil || gotNew.LogLevel != "warn" {
		t.Errorf("new = %+v, want warn", gotNew)
	}
	if store.Get().LogLevel != "warn" {
		t.Errorf("Get().LogLevel = %q, want warn", store.Get().LogLevel)
	}
}

func TestReloaderKeepsOldConfigOnFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nextedit.toml")
	writeFile(t, path, `log_level = "debug"`)

	store := NewStore(DefaultSettings())
	r := NewReloader(store, path, DefaultSettings(), nil)
	if err := r.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if store.Get().LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", store.Get().LogLevel)
	}

	writeFile(t, path, `log_level = "loud"`)
	if err := r.Reload(); err == nil {
		t.Fatal("expected reload failure for invalid config")
	}
	if store.Get().LogLevel != "debug" {
		t.Errorf("LogLevel = %q after failed reload, want debug kept", store.Get().LogLevel)
	}
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nextedit.toml")
	writeFile(t, path, `log_level = "info"`)

	store := NewStore(DefaultSettings())
	r := NewReloader(store, path, DefaultSettings(), nil)

	w, err := r.Watch(WithDebounce(10 * time.Millisecond))
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()

	writeFile(t, path, `log_level = "error"`)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if store.Get().LogLevel == "error" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("watcher did not reload within deadline")
}
