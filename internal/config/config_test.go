package config

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := Default()
	if *cfg != *want {
		t.Errorf("defaults: got %+v, want %+v", *cfg, *want)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "log:\n  level: debug\n  mode: release\nencode:\n  format: dicos\n  base64: true\nrender:\n  mask_color: \"#ff0000\"\n  zoom: 2.5\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Log.Level != "debug" || cfg.Log.Mode != "release" {
		t.Errorf("log: got %+v", cfg.Log)
	}
	if cfg.Encode.Format != "dicos" || !cfg.Encode.Base64 {
		t.Errorf("encode: got %+v", cfg.Encode)
	}
	if cfg.Render.MaskColor != "#ff0000" || cfg.Render.Zoom != 2.5 {
		t.Errorf("render: got %+v", cfg.Render)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: warn\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("THREAT_SCAN_LOG_LEVEL", "error")
	t.Setenv("THREAT_SCAN_RENDER_ZOOM", "4")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("log.level: got %s, want error", cfg.Log.Level)
	}
	if cfg.Render.Zoom != 4 {
		t.Errorf("render.zoom: got %v, want 4", cfg.Render.Zoom)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load should fail for a missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"coco format", func(c *Config) { c.Encode.Format = "COCO" }, false},
		{"unknown format", func(c *Config) { c.Encode.Format = "tiff" }, true},
		{"bad color", func(c *Config) { c.Render.MaskColor = "#zzzzzz" }, true},
		{"zero zoom", func(c *Config) { c.Render.Zoom = 0 }, true},
		{"negative zoom", func(c *Config) { c.Render.Zoom = -1 }, true},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate: got %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"", zapcore.InfoLevel},
		{"debug", zapcore.DebugLevel},
		{"WARN", zapcore.WarnLevel},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil {
			t.Errorf("ParseLevel(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}
