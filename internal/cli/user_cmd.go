package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dstanek/workgraph/internal/config"
	"github.com/dstanek/workgraph/internal/domain/user"
	"github.com/dstanek/workgraph/internal/sqlite"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	cmd.AddCommand(newUserAddCmd())
	return cmd
}

func newUserAddCmd() *cobra.Command {
	var id, name string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("--name is required")
			}
			if id == "" {
				id = uuid.NewString()
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			db, err := openDB(cfg.DB.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			u := &user.User{ID: id, Name: name, CreatedAt: time.Now()}
			if err := sqlite.NewUserRepository(db).Create(cmd.Context(), u); err != nil {
				return fmt.Errorf("creating user: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", u.ID, u.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "user id (generated if omitted)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	return cmd
}
