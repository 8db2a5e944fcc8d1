package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	configContent := `# Comment line
output_dir: out
min_par_sim: 0.5
similarity: jaro
format: text
color: red,green
timeout: 30s
`
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		t.Fatalf("loadConfig error: %v", err)
	}

	if cfg.OutputDir != "out" {
		t.Errorf("OutputDir = %q, want %q", cfg.OutputDir, "out")
	}
	if cfg.MinParSim != 0.5 {
		t.Errorf("MinParSim = %v, want 0.5", cfg.MinParSim)
	}
	if cfg.Similarity != "jaro" {
		t.Errorf("Similarity = %q, want %q", cfg.Similarity, "jaro")
	}
	if cfg.Format != "text" {
		t.Errorf("Format = %q, want %q", cfg.Format, "text")
	}
	if cfg.Color != "red,green" {
		t.Errorf("Color = %q, want %q", cfg.Color, "red,green")
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}

	// Unset keys keep their defaults
	if cfg.MinSentSim != defaultConfig().MinSentSim {
		t.Errorf("MinSentSim = %v, want default %v", cfg.MinSentSim, defaultConfig().MinSentSim)
	}
	if cfg.Header1 != "Draft 1" {
		t.Errorf("Header1 = %q, want %q", cfg.Header1, "Draft 1")
	}
}

func TestLoadConfigEmpty(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig error: %v", err)
	}
	if cfg != defaultConfig() {
		t.Errorf("loadConfig(\"\") = %+v, want defaults", cfg)
	}

	emptyPath := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(emptyPath, nil, 0o644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	cfg, err = loadConfig(emptyPath)
	if err != nil {
		t.Fatalf("loadConfig(empty file) error: %v", err)
	}
	if cfg != defaultConfig() {
		t.Errorf("loadConfig(empty file) = %+v, want defaults", cfg)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown key", "bogus: 1\n"},
		{"wrong type", "window: many\n"},
		{"malformed", "format: [text\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("Failed to write test config: %v", err)
			}
			if _, err := loadConfig(path); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}

	if _, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*config)
		wantErr string
	}{
		{name: "defaults", modify: func(*config) {}},
		{name: "color default", modify: func(c *config) { c.Color = "default" }},
		{name: "color spec", modify: func(c *config) { c.Color = "blue:white,yellow" }},
		{name: "paragraph threshold", modify: func(c *config) { c.MinParSim = 1.5 }, wantErr: "min_par_sim"},
		{name: "sentence threshold", modify: func(c *config) { c.MinSentSim = -0.1 }, wantErr: "min_sent_sim"},
		{name: "slack", modify: func(c *config) { c.SimSlack = 2 }, wantErr: "sim_slack"},
		{name: "window", modify: func(c *config) { c.Window = 0 }, wantErr: "window"},
		{name: "workers", modify: func(c *config) { c.Workers = -1 }, wantErr: "workers"},
		{name: "timeout", modify: func(c *config) { c.Timeout = -time.Second }, wantErr: "timeout"},
		{name: "algorithm", modify: func(c *config) { c.Algorithm = "patience" }, wantErr: "algorithm"},
		{name: "similarity", modify: func(c *config) { c.Similarity = "bert" }, wantErr: "similarity"},
		{name: "tokenizer", modify: func(c *config) { c.Tokenizer = "chars" }, wantErr: "tokenizer"},
		{name: "format", modify: func(c *config) { c.Format = "pdf" }, wantErr: "format"},
		{name: "log level", modify: func(c *config) { c.LogLevel = "trace" }, wantErr: "log_level"},
		{name: "color", modify: func(c *config) { c.Color = "mauve" }, wantErr: "color"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.modify(&cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("validate() expected error mentioning %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("validate() = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidateJoinsErrors(t *testing.T) {
	cfg := defaultConfig()
	cfg.Window = 0
	cfg.Format = "pdf"

	err := cfg.validate()
	if err == nil {
		t.Fatal("validate() expected error, got nil")
	}
	for _, want := range []string{"window", "format"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("validate() = %v, want mention of %q", err, want)
		}
	}
}

func TestFindConfigFile(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)
	t.Setenv("XDG_CONFIG_HOME", "")

	t.Run("no config file exists", func(t *testing.T) {
		result, err := findConfigFile("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})

	t.Run("finds config under home", func(t *testing.T) {
		dir := filepath.Join(tmpHome, ".config", "revdiff")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("failed to create config dir: %v", err)
		}
		configPath := filepath.Join(dir, "config.yaml")
		if err := os.WriteFile(configPath, []byte("# config\n"), 0o644); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}
		defer os.RemoveAll(filepath.Join(tmpHome, ".config"))

		result, err := findConfigFile("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("respects XDG_CONFIG_HOME", func(t *testing.T) {
		customXDG := filepath.Join(tmpHome, "custom-xdg")
		dir := filepath.Join(customXDG, "revdiff")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("failed to create custom XDG dir: %v", err)
		}
		configPath := filepath.Join(dir, "config.yaml")
		if err := os.WriteFile(configPath, []byte("# custom xdg config\n"), 0o644); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}
		t.Setenv("XDG_CONFIG_HOME", customXDG)

		result, err := findConfigFile("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("explicit path", func(t *testing.T) {
		configPath := filepath.Join(tmpHome, "explicit.yaml")
		if err := os.WriteFile(configPath, []byte("# explicit\n"), 0o644); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		result, err := findConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("explicit path must exist", func(t *testing.T) {
		if _, err := findConfigFile(filepath.Join(tmpHome, "nope.yaml")); err == nil {
			t.Error("expected error, got nil")
		}
	})
}

func TestReadStopWords(t *testing.T) {
	words, err := readStopWords("")
	if err != nil || words != nil {
		t.Errorf("readStopWords(\"\") = %v, %v; want nil, nil", words, err)
	}

	path := filepath.Join(t.TempDir(), "stop.txt")
	if err := os.WriteFile(path, []byte("the a\nan\n\n  of\n"), 0o644); err != nil {
		t.Fatalf("failed to write stop words: %v", err)
	}
	words, err = readStopWords(path)
	if err != nil {
		t.Fatalf("readStopWords error: %v", err)
	}
	want := []string{"the", "a", "an", "of"}
	if strings.Join(words, ",") != strings.Join(want, ",") {
		t.Errorf("readStopWords() = %v, want %v", words, want)
	}

	if _, err := readStopWords(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}
