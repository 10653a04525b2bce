package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/codeatlas-dev/codeatlas/internal/config"
	"github.com/codeatlas-dev/codeatlas/internal/fileutil"
	"github.com/codeatlas-dev/codeatlas/internal/pipeline"
)

// RunAnalyze runs one analysis directly from the command line and prints
// the resulting report as indented JSON.
func RunAnalyze(cmd *cobra.Command, args []string) error {
	branch, _ := cmd.Flags().GetString("branch")
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	rep, err := pipeline.Run(ctx, cfg, pipeline.Request{RepoURL: args[0], Branch: branch})
	if err != nil {
		return err
	}
	return fileutil.PrintJSON(rep)
}
