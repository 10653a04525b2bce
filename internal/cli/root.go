// Package cli wires codeatlas's cobra commands: serve, analyze, doctor,
// and version.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the codeatlas root command.
func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "codeatlas",
		Short: "Analyze a remote C# repository into dependency graphs",
		Long: `codeatlas clones a remote repository, parses its C# sources, and
produces a file-level and namespace-level dependency graph together with
line-of-code metrics and cyclic-dependency groups.`,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server exposing POST /analyze and GET /health",
		RunE:  RunServe,
	}
	serveCmd.Flags().String("addr", ":8080", "address to listen on")

	analyzeCmd := &cobra.Command{
		Use:   "analyze <repo-url>",
		Short: "Run one analysis against a repository URL and print the report as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  RunAnalyze,
	}
	analyzeCmd.Flags().String("branch", "", "branch to analyze (default: remote HEAD)")

	doctorCmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that the configured git binary is reachable",
		RunE:  RunDoctor,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the codeatlas version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Println(version)
			return nil
		},
	}

	rootCmd.AddCommand(serveCmd, analyzeCmd, doctorCmd, versionCmd)
	return rootCmd
}
