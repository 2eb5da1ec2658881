package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultWhenMissing(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	def := DefaultConfig()
	if cfg.DataDir != def.DataDir {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, def.DataDir)
	}
	if cfg.PageSize != 10 {
		t.Errorf("PageSize = %d, want 10", cfg.PageSize)
	}
	if cfg.MaxImageSize != 1000 {
		t.Errorf("MaxImageSize = %d, want 1000", cfg.MaxImageSize)
	}
	if cfg.LessRepetitionPercent() != 80 {
		t.Errorf("LessRepetition = %d, want 80", cfg.LessRepetitionPercent())
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	body := `{"data_dir": "/srv/quotes", "page_size": 5, "max_image_size": 2048, "recency_cache": "sqlite"}`
	if err := os.WriteFile(configPath, []byte(body), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DataDir != "/srv/quotes" {
		t.Errorf("DataDir = %q, want /srv/quotes", cfg.DataDir)
	}
	if cfg.PageSize != 5 {
		t.Errorf("PageSize = %d, want 5", cfg.PageSize)
	}
	if cfg.MaxImageBytes() != 2048*1024 {
		t.Errorf("MaxImageBytes() = %d, want %d", cfg.MaxImageBytes(), 2048*1024)
	}
	if cfg.RecencyCache != RecencySQLite {
		t.Errorf("RecencyCache = %q, want sqlite", cfg.RecencyCache)
	}
	// Untouched values keep defaults
	if cfg.RetryAttempts != 10 {
		t.Errorf("RetryAttempts = %d, want 10", cfg.RetryAttempts)
	}
}

func TestLoad_LessRepetitionZeroSurvives(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"less_repetition": 0}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LessRepetitionPercent() != 0 {
		t.Errorf("LessRepetition = %d, want 0", cfg.LessRepetitionPercent())
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"page_size": 5, "less_repetition": 50}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv("QUOTEBOOK_PAGE_SIZE", "25")
	t.Setenv("QUOTEBOOK_LESS_REPETITION", "0")
	t.Setenv("QUOTEBOOK_DISABLED_TOOLS", "quote_remove,quote_tag_remove")

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.PageSize != 25 {
		t.Errorf("PageSize = %d, want 25 (env override)", cfg.PageSize)
	}
	if cfg.LessRepetitionPercent() != 0 {
		t.Errorf("LessRepetition = %d, want 0 (env override)", cfg.LessRepetitionPercent())
	}
	if len(cfg.DisabledTools) != 2 {
		t.Errorf("DisabledTools = %v, want 2 entries", cfg.DisabledTools)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{not json}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoad_RejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"less repetition above 100", `{"less_repetition": 101}`},
		{"negative less repetition", `{"less_repetition": -1}`},
		{"negative page size", `{"page_size": -3}`},
		{"unknown recency cache", `{"recency_cache": "redis"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte(tt.body), 0600); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			if _, err := Load(tmpDir); err == nil {
				t.Errorf("Load(%s) expected error, got nil", tt.body)
			}
		})
	}
}

func TestMerge_DisabledToolsDeduplicated(t *testing.T) {
	base := &Config{DisabledTools: []string{"quote_remove", " quote_list "}}
	overlay := &Config{DisabledTools: []string{"quote_list", "quote_tag_add"}}

	result := Merge(base, overlay)

	want := []string{"quote_remove", "quote_list", "quote_tag_add"}
	if len(result.DisabledTools) != len(want) {
		t.Fatalf("DisabledTools = %v, want %v", result.DisabledTools, want)
	}
	for i, name := range want {
		if result.DisabledTools[i] != name {
			t.Errorf("DisabledTools[%d] = %q, want %q", i, result.DisabledTools[i], name)
		}
	}
}

func TestMerge_LessRepetitionIsCopied(t *testing.T) {
	base := DefaultConfig()
	result := Merge(base, &Config{})

	*result.LessRepetition = 10
	if base.LessRepetitionPercent() != 80 {
		t.Errorf("base LessRepetition mutated through merge result")
	}
}

func TestDurations(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.RetryDelay() != 2*time.Second {
		t.Errorf("RetryDelay() = %v, want 2s", cfg.RetryDelay())
	}
	if cfg.CleanupDelay() != time.Second {
		t.Errorf("CleanupDelay() = %v, want 1s", cfg.CleanupDelay())
	}
	if cfg.RecentTTL() != 500*time.Second {
		t.Errorf("RecentTTL() = %v, want 500s", cfg.RecentTTL())
	}
}
