// Package main provides the treeq CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/treeq/internal/config"
	"github.com/Sumatoshi-tech/treeq/pkg/version"
)

var cfgFile string //nolint:gochecknoglobals // CLI flag variable

func main() {
	rootCmd := buildRootCmd()

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "treeq",
		Short: "Tree-sitter query runner with predicate filtering",
		Long: `treeq compiles S-expression tree-sitter queries, runs them over source
files, and filters raw matches through the query's predicates: text
equality, regex, set membership, and property directives.`,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.treeq.yaml)")

	rootCmd.AddCommand(queryCmd())
	rootCmd.AddCommand(packsCmd())
	rootCmd.AddCommand(changesCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "treeq %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}

// loadConfig resolves the effective tool configuration for a command run.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}
