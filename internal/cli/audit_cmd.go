package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dstanek/workgraph/internal/config"
	"github.com/dstanek/workgraph/internal/domain/audit"
	"github.com/dstanek/workgraph/internal/sqlite"
)

func newAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the audit trail",
	}

	cmd.AddCommand(newAuditListCmd())
	return cmd
}

func newAuditListCmd() *cobra.Command {
	var entityID, action string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List audit entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			db, err := openDB(cfg.DB.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			opts := audit.ListOptions{EntityID: entityID, Limit: limit}
			if action != "" {
				a := audit.Action(action)
				opts.Action = &a
			}

			entries, err := sqlite.NewAuditRepository(db).List(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("listing audit entries: %w", err)
			}

			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-20s  %s  %s  %s\n",
					e.CreatedAt.Format("2006-01-02 15:04:05"), e.Action, e.ActorID, e.EntityID, e.Summary)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&entityID, "entity", "", "filter by entity id")
	cmd.Flags().StringVar(&action, "action", "", "filter by action")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum entries to print")
	return cmd
}
