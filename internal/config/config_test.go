package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	t.Setenv("XDG_RUNTIME_DIR", filepath.Join(dir, "run"))
	return dir
}

func writeConfig(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, "config", "floaty", name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_defaultsWithoutFile(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.KeyCmd != DefaultKeyCmd || cfg.OpenSame {
		t.Errorf("unexpected settings: %+v", cfg.Settings())
	}
	if cfg.AutosaveDelay != 800*time.Millisecond {
		t.Errorf("AutosaveDelay: got %v", cfg.AutosaveDelay)
	}
	if want := filepath.Join(dir, "data", "floaty", "notes.jsonl"); cfg.NotesPath != want {
		t.Errorf("NotesPath: got %q want %q", cfg.NotesPath, want)
	}
	if want := filepath.Join(dir, "run", "floaty.sock"); cfg.SocketPath != want {
		t.Errorf("SocketPath: got %q want %q", cfg.SocketPath, want)
	}
}

func TestLoad_yamlFile(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "config.yaml", "open_same: true\nkey_cmd: ctrl+k\nautosave_delay: 2s\ncapture_cmd: alacritty -e floaty capture\n")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.OpenSame || cfg.KeyCmd != "ctrl+k" {
		t.Errorf("settings not read: %+v", cfg.Settings())
	}
	if cfg.AutosaveDelay != 2*time.Second {
		t.Errorf("AutosaveDelay: got %v", cfg.AutosaveDelay)
	}
	if cfg.CaptureCmd != "alacritty -e floaty capture" {
		t.Errorf("CaptureCmd: got %q", cfg.CaptureCmd)
	}
}

func TestLoad_envOverride(t *testing.T) {
	isolate(t)
	t.Setenv("FLOATY_KEY_CMD", "alt+n")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.KeyCmd != "alt+n" {
		t.Errorf("KeyCmd: got %q", cfg.KeyCmd)
	}
}

func TestLoad_boltDefaultsToDBFile(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "config.json", `{"storage": "bolt"}`)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if filepath.Base(cfg.NotesPath) != "notes.db" {
		t.Errorf("NotesPath: got %q", cfg.NotesPath)
	}
}

func TestLoad_badFileFallsBackToDefaults(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "config.json", `{not json`)

	cfg, err := Load("")
	if !errors.Is(err, ErrConfigLoad) {
		t.Fatalf("expected ErrConfigLoad, got %v", err)
	}
	if cfg == nil || cfg.Settings() != DefaultSettings() {
		t.Errorf("expected default config alongside the error, got %+v", cfg)
	}
}

func TestLoad_unknownStorage(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "config.yaml", "storage: s3\n")

	if _, err := Load(""); !errors.Is(err, ErrConfigLoad) {
		t.Errorf("expected ErrConfigLoad, got %v", err)
	}
}

func TestLoad_explicitMissingPath(t *testing.T) {
	dir := isolate(t)
	if _, err := Load(filepath.Join(dir, "nope.yaml")); err != nil {
		t.Errorf("missing explicit file should not fail, got %v", err)
	}
}

func TestSave_roundTrip(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.OpenSame = true
	cfg.KeyCmd = "ctrl+e"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	again, err := Load("")
	if err != nil {
		t.Fatalf("Load after Save: %v", err)
	}
	if again.Settings() != (Settings{OpenSame: true, KeyCmd: "ctrl+e"}) {
		t.Errorf("settings did not round-trip: %+v", again.Settings())
	}
}
