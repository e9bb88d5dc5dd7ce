package cli

import (
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Retire a stored asset",
	Long: `Delete the asset stored under the given key.

Deleting a key that is already gone still succeeds; the operation is
idempotent. Only retire a key after its replacement reference has been
persisted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]

		if err := apiClient.Delete(cmd.Context(), key); err != nil {
			printer.Error("delete failed: %v", err)
			return err
		}

		if printer.JSONMode() {
			printer.JSON(map[string]string{"deleted": key})
			return nil
		}

		printer.Success("deleted %s", key)
		return nil
	},
}
