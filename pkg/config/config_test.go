package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sezkp/sezkp/pkg/scheduler"
)

func TestFromEnvDefaultsWhenUnset(t *testing.T) {
	cfg := FromEnv(File{})
	want := scheduler.DefaultConfig()
	if cfg != want {
		t.Fatalf("FromEnv(empty) = %+v, want default %+v", cfg, want)
	}
}

func TestFromEnvReadsEnvironment(t *testing.T) {
	t.Setenv("SEZKP_FOLD_MODE", "minram")
	t.Setenv("SEZKP_WRAP_CADENCE", "8")
	t.Setenv("SEZKP_PROOF_STREAM_PATH", "/tmp/run.cborseq")

	cfg := FromEnv(File{})
	if cfg.Mode != scheduler.ModeMinRAM {
		t.Errorf("Mode = %v, want minram", cfg.Mode)
	}
	if cfg.WrapCadence != 8 {
		t.Errorf("WrapCadence = %d, want 8", cfg.WrapCadence)
	}
	if cfg.SidecarPath != "/tmp/run.cborseq" {
		t.Errorf("SidecarPath = %q, want /tmp/run.cborseq", cfg.SidecarPath)
	}
}

func TestFromEnvFallsBackToFileDefaults(t *testing.T) {
	file := File{FoldMode: "minram", WrapCadence: 4, ProofStreamPath: "defaults.cborseq"}
	cfg := FromEnv(file)
	if cfg.Mode != scheduler.ModeMinRAM || cfg.WrapCadence != 4 || cfg.SidecarPath != "defaults.cborseq" {
		t.Fatalf("FromEnv(file) = %+v, want values from file defaults", cfg)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("SEZKP_WRAP_CADENCE", "7")
	cfg := FromEnv(File{WrapCadence: 64})
	if cfg.WrapCadence != 7 {
		t.Fatalf("WrapCadence = %d, want env override 7", cfg.WrapCadence)
	}
}

func TestApplyFlagsOverridesEverything(t *testing.T) {
	base := scheduler.DefaultConfig()
	mode := "minram"
	cadence := uint64(5)
	path := "flag.cborseq"

	got := ApplyFlags(base, FlagOverrides{
		FoldMode:        &mode,
		WrapCadence:     &cadence,
		ProofStreamPath: &path,
	})
	if got.Mode != scheduler.ModeMinRAM || got.WrapCadence != 5 || got.SidecarPath != "flag.cborseq" {
		t.Fatalf("ApplyFlags = %+v, want all fields overridden", got)
	}
}

func TestApplyFlagsLeavesUnsetFieldsAlone(t *testing.T) {
	base := scheduler.Config{Mode: scheduler.ModeBalanced, WrapCadence: 1, SidecarPath: "x"}
	got := ApplyFlags(base, FlagOverrides{})
	if got != base {
		t.Fatalf("ApplyFlags(no overrides) = %+v, want unchanged %+v", got, base)
	}
}

func TestLoadFileMissingIsNotAnError(t *testing.T) {
	f, err := LoadFile(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("LoadFile on missing file: %v", err)
	}
	if f != (File{}) {
		t.Fatalf("LoadFile on missing file = %+v, want zero value", f)
	}
}

func TestLoadFileParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sezkp.yaml")
	contents := "fold_mode: minram\nwrap_cadence: 16\nproof_stream_path: run.cborseq\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	f, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	want := File{FoldMode: "minram", WrapCadence: 16, ProofStreamPath: "run.cborseq"}
	if f != want {
		t.Fatalf("LoadFile = %+v, want %+v", f, want)
	}
}
