// Package config loads the scheduler's three environment-backed settings
// (spec section 9: "the three environment variables are lifted to an
// explicit configuration struct ... no hidden globals") plus an optional
// YAML defaults file, into a plain scheduler.Config. Precedence, highest
// first: CLI flag > environment variable > YAML file > built-in default.
package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/sezkp/sezkp/pkg/scheduler"
	"github.com/sezkp/sezkp/pkg/sezkperr"
)

// File is the on-disk shape of the optional YAML defaults file, e.g.:
//
//	fold_mode: minram
//	wrap_cadence: 16
//	proof_stream_path: run.cborseq
type File struct {
	FoldMode        string `yaml:"fold_mode"`
	WrapCadence     uint64 `yaml:"wrap_cadence"`
	ProofStreamPath string `yaml:"proof_stream_path"`
}

// LoadFile reads and parses a YAML defaults file. A missing file is not an
// error: callers pass an empty File in that case and fall through to
// built-in defaults.
func LoadFile(path string) (File, error) {
	var f File
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return f, sezkperr.Wrap(sezkperr.KindIO, "reading config file", err)
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, sezkperr.Wrap(sezkperr.KindDecodeFormat, "parsing config file", err)
	}
	return f, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvUint64(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseUint(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

// FromEnv builds a scheduler.Config from SEZKP_FOLD_MODE, SEZKP_WRAP_CADENCE,
// and SEZKP_PROOF_STREAM_PATH, falling back to fileDefaults for any variable
// that is unset, and finally to scheduler.DefaultConfig.
func FromEnv(fileDefaults File) scheduler.Config {
	base := scheduler.DefaultConfig()

	mode := string(base.Mode)
	if fileDefaults.FoldMode != "" {
		mode = fileDefaults.FoldMode
	}
	wrapCadence := base.WrapCadence
	if fileDefaults.WrapCadence != 0 {
		wrapCadence = fileDefaults.WrapCadence
	}
	sidecarPath := base.SidecarPath
	if fileDefaults.ProofStreamPath != "" {
		sidecarPath = fileDefaults.ProofStreamPath
	}

	return scheduler.Config{
		Mode:        scheduler.Mode(getEnv("SEZKP_FOLD_MODE", mode)),
		WrapCadence: getEnvUint64("SEZKP_WRAP_CADENCE", wrapCadence),
		SidecarPath: getEnv("SEZKP_PROOF_STREAM_PATH", sidecarPath),
	}
}

// FlagOverrides carries the CLI flags ApplyFlags layers on top of cfg; every
// non-nil field overrides, even when it points at a zero value. Each field is
// a pointer so the CLI can distinguish "flag not passed" (nil) from "flag
// passed with a zero value".
type FlagOverrides struct {
	FoldMode        *string
	WrapCadence     *uint64
	ProofStreamPath *string
}

// ApplyFlags layers explicit CLI flags, the highest-precedence source, on
// top of cfg.
func ApplyFlags(cfg scheduler.Config, o FlagOverrides) scheduler.Config {
	if o.FoldMode != nil {
		cfg.Mode = scheduler.Mode(*o.FoldMode)
	}
	if o.WrapCadence != nil {
		cfg.WrapCadence = *o.WrapCadence
	}
	if o.ProofStreamPath != nil {
		cfg.SidecarPath = *o.ProofStreamPath
	}
	return cfg
}
