package cli

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dstanek/workgraph/internal/config"
	"github.com/dstanek/workgraph/internal/sqlite"
)

func newAPIKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage API keys",
	}

	cmd.AddCommand(newAPIKeyAddCmd())
	return cmd
}

func newAPIKeyAddCmd() *cobra.Command {
	var userID, description string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Issue a new API key for a user",
		Long:  "Issue a new API key. The key is printed once; only its hash is stored.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return fmt.Errorf("--user is required")
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

			key, err := generateKey()
			if err != nil {
				return err
			}
			if err := sqlite.NewAPIKeyRepository(db).Insert(cmd.Context(), key, userID, description); err != nil {
				return fmt.Errorf("storing api key: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", key)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "owning user id")
	cmd.Flags().StringVar(&description, "description", "", "what the key is for")
	return cmd
}

func generateKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating key: %w", err)
	}
	return "wg_" + hex.EncodeToString(buf), nil
}
