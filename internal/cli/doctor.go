package cli

import (
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/codeatlas-dev/codeatlas/internal/config"
)

// RunDoctor checks that the configured git binary is reachable on PATH.
func RunDoctor(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	path, err := exec.LookPath(cfg.GitBin)
	if err != nil {
		cmd.Printf("git binary %q: NOT FOUND\n", cfg.GitBin)
		return fmt.Errorf("doctor: %s not found on PATH: %w", cfg.GitBin, err)
	}

	cmd.Printf("git binary %q: OK (%s)\n", cfg.GitBin, path)
	cmd.Printf("scratch root: %s\n", cfg.ScratchRoot)
	return nil
}
