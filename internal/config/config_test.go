package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8000" {
		t.Errorf("HTTPAddr = %q, want :8000", cfg.HTTPAddr)
	}
	if cfg.CaptureInterval != 750*time.Millisecond {
		t.Errorf("CaptureInterval = %s, want 750ms", cfg.CaptureInterval)
	}
	if cfg.TranscriptCapacity != 200 {
		t.Errorf("TranscriptCapacity = %d, want 200", cfg.TranscriptCapacity)
	}
}

func TestYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("http_addr: \":9001\"\ntranscript_capacity: 50\nocr_languages: [eng, deu]\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9001" {
		t.Errorf("HTTPAddr = %q, want :9001", cfg.HTTPAddr)
	}
	if cfg.TranscriptCapacity != 50 {
		t.Errorf("TranscriptCapacity = %d, want 50", cfg.TranscriptCapacity)
	}
	if len(cfg.OCRLanguages) != 2 || cfg.OCRLanguages[1] != "deu" {
		t.Errorf("OCRLanguages = %v", cfg.OCRLanguages)
	}
	// Unset fields keep defaults.
	if cfg.Model != "llama3.1-8b" {
		t.Errorf("Model = %q, want default", cfg.Model)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("http_addr: \":9001\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HTTP_ADDR", ":9002")
	t.Setenv("CAPTURE_INTERVAL", "1.5")
	t.Setenv("OCR_LANGUAGES", "eng, fra")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9002" {
		t.Errorf("HTTPAddr = %q, env should win over file", cfg.HTTPAddr)
	}
	if cfg.CaptureInterval != 1500*time.Millisecond {
		t.Errorf("CaptureInterval = %s, want 1.5s", cfg.CaptureInterval)
	}
	if len(cfg.OCRLanguages) != 2 || cfg.OCRLanguages[1] != "fra" {
		t.Errorf("OCRLanguages = %v", cfg.OCRLanguages)
	}
}

func TestMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("CAPTURE_INTERVAL", "-2")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// Negative values are ignored by the parser, default retained.
	if cfg.CaptureInterval != 750*time.Millisecond {
		t.Errorf("CaptureInterval = %s, want default", cfg.CaptureInterval)
	}
}
