package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"sdkgen/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Database.FunctionsGlob != "**/plugin-sdk.out.functions.csv" {
		t.Errorf("unexpected FunctionsGlob %q", cfg.Database.FunctionsGlob)
	}
	if cfg.Extract.AssumedCC != "" {
		t.Errorf("expected no assumed cc, got %q", cfg.Extract.AssumedCC)
	}
	if cfg.Extract.ReceiverMarker != "this" {
		t.Errorf("expected ReceiverMarker=this, got %q", cfg.Extract.ReceiverMarker)
	}
	if cfg.Extract.TypeReplacements["_BOOL1"] != "bool" {
		t.Errorf("expected _BOOL1 replacement, got %v", cfg.Extract.TypeReplacements)
	}
	if cfg.Generate.Output != "output" {
		t.Errorf("expected Output=output, got %q", cfg.Generate.Output)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/sdkgen.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "sdkgen.yaml")

	content := `
extract:
  assumed_cc: thiscall
  classes: ["CPed", "CAE*"]
generate:
  wrap_virtuals: true
  jobs: 4
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Extract.AssumedCC != "thiscall" {
		t.Errorf("expected AssumedCC=thiscall, got %q", cfg.Extract.AssumedCC)
	}
	if len(cfg.Extract.Classes) != 2 {
		t.Errorf("expected 2 class patterns, got %v", cfg.Extract.Classes)
	}
	if !cfg.Generate.WrapVirtuals {
		t.Error("expected WrapVirtuals=true")
	}
	if cfg.Generate.Jobs != 4 {
		t.Errorf("expected Jobs=4, got %d", cfg.Generate.Jobs)
	}
	// Untouched sections keep their defaults.
	if cfg.Database.Path != "database" {
		t.Errorf("expected default database path, got %q", cfg.Database.Path)
	}

	cc, err := cfg.AssumedConvention()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cc == nil || *cc != domain.Thiscall {
		t.Errorf("expected thiscall fallback, got %v", cc)
	}
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "sdkgen.yaml")

	content := `
generate:
  output: generated
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Generate.Output != "generated" {
		t.Errorf("expected Output=generated, got %q", cfg.Generate.Output)
	}
}

func TestValidate_UnknownAssumedCC(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Extract.AssumedCC = "pascal"

	err := cfg.Validate()
	if !errors.Is(err, domain.ErrUnknownCallingConvention) {
		t.Errorf("expected ErrUnknownCallingConvention, got %v", err)
	}
}

func TestStateDBPath(t *testing.T) {
	path := StateDBPath("/home/user/project")
	expected := filepath.Join("/home/user/project", ".sdkgen", "state.db")
	if path != expected {
		t.Errorf("expected %s, got %s", expected, path)
	}
}

func TestResolvePath(t *testing.T) {
	if got := ResolvePath("/root", "/abs/out"); got != "/abs/out" {
		t.Errorf("absolute path changed: %s", got)
	}
	if got := ResolvePath("/root", "out"); got != filepath.Join("/root", "out") {
		t.Errorf("unexpected relative resolution: %s", got)
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sdkgen.yaml")

	cfg := DefaultConfig()
	cfg.Extract.AssumedCC = "cdecl"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Extract.AssumedCC != "cdecl" {
		t.Errorf("expected AssumedCC=cdecl, got %q", loaded.Extract.AssumedCC)
	}
}
