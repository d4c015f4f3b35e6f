// Package cli defines the workgraph command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the top-level "workgraph" command and registers all
// subcommands.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "workgraph",
		Short: "Hierarchical work-item engine served over MCP",
	}

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newUserCmd(),
		newAPIKeyCmd(),
		newAuditCmd(),
	)

	return root
}
