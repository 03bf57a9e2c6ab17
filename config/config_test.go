package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Execution.MemorySize != 1<<20 {
		t.Errorf("expected MemorySize=1MiB, got %d", cfg.Execution.MemorySize)
	}
	if cfg.Execution.MaxSteps != 10_000_000 {
		t.Errorf("expected MaxSteps=10000000, got %d", cfg.Execution.MaxSteps)
	}
	if cfg.Execution.EnableTrace {
		t.Error("expected EnableTrace=false")
	}

	if !cfg.Plugins.FailOnMissingHandler {
		t.Error("expected FailOnMissingHandler=true")
	}
	if len(cfg.Plugins.Load) != 0 {
		t.Errorf("expected no plugins loaded by default, got %v", cfg.Plugins.Load)
	}

	if cfg.Debugger.HistorySize != 1000 {
		t.Errorf("expected HistorySize=1000, got %d", cfg.Debugger.HistorySize)
	}
	if cfg.Debugger.AutoStartTUI {
		t.Error("expected AutoStartTUI=false")
	}
	if !cfg.Debugger.ShowRegisters {
		t.Error("expected ShowRegisters=true")
	}
}

func TestGetConfigPath(t *testing.T) {
	path := GetConfigPath()
	if path == "" {
		t.Fatal("GetConfigPath returned empty string")
	}
	if filepath.Base(path) != "config.toml" {
		t.Errorf("expected path to end with config.toml, got %s", path)
	}

	if runtime.GOOS == "darwin" || runtime.GOOS == "linux" {
		dir := filepath.Dir(path)
		if filepath.Base(dir) != "rvm" && path != "config.toml" {
			t.Errorf("expected path in an rvm directory or the fallback, got %s", path)
		}
	}
}

func TestSaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test_config.toml")

	cfg := DefaultConfig()
	cfg.Execution.MaxSteps = 5_000_000
	cfg.Execution.EnableTrace = true
	cfg.Plugins.Load = []string{"life"}
	cfg.Debugger.HistorySize = 500

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if loaded.Execution.MaxSteps != 5_000_000 {
		t.Errorf("expected MaxSteps=5000000, got %d", loaded.Execution.MaxSteps)
	}
	if !loaded.Execution.EnableTrace {
		t.Error("expected EnableTrace=true")
	}
	if len(loaded.Plugins.Load) != 1 || loaded.Plugins.Load[0] != "life" {
		t.Errorf("expected Plugins.Load=[life], got %v", loaded.Plugins.Load)
	}
	if loaded.Debugger.HistorySize != 500 {
		t.Errorf("expected HistorySize=500, got %d", loaded.Debugger.HistorySize)
	}
}

func TestLoadNonExistentReturnsDefaults(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nonexistent.toml")

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom should not error on a non-existent file: %v", err)
	}
	if cfg.Execution.MaxSteps != 10_000_000 {
		t.Error("expected default config when the file does not exist")
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "invalid.toml")

	invalidTOML := `
[execution]
max_steps = "not a number"
`
	if err := os.WriteFile(configPath, []byte(invalidTOML), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	if _, err := LoadFrom(configPath); err == nil {
		t.Error("expected an error when loading invalid TOML")
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "subdir1", "subdir2", "config.toml")

	cfg := DefaultConfig()
	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("config file was not created")
	}
}
