// Package config loads the pipeline's two settings (spec §6): the scratch
// root directory and the version-control subprocess binary name, each
// read from its environment variable with a sensible default.
package config

import "os"

type Config struct {
	ScratchRoot string
	GitBin      string
}

// Load reads CODEATLAS_SCRATCH_DIR and CODEATLAS_GIT_BIN, falling back to
// os.TempDir() and "git" respectively.
func Load() Config {
	cfg := Config{
		ScratchRoot: os.Getenv("CODEATLAS_SCRATCH_DIR"),
		GitBin:      os.Getenv("CODEATLAS_GIT_BIN"),
	}
	if cfg.ScratchRoot == "" {
		cfg.ScratchRoot = os.TempDir()
	}
	if cfg.GitBin == "" {
		cfg.GitBin = "git"
	}
	return cfg
}
