package cli

import (
	"github.com/spf13/cobra"

	"github.com/pixvault/pixvault/internal/pix/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change CLI configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if printer.JSONMode() {
			printer.JSON(cfg)
			return nil
		}
		printer.Field("base_url", cfg.BaseURL)
		printer.Field("owner_id", cfg.OwnerID)
		printer.Field("http_timeout", cfg.Timeout().String())
		return nil
	},
}

var configSetOwnerCmd = &cobra.Command{
	Use:   "set-owner <id>",
	Short: "Set the owner identity used for uploads",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg.OwnerID = args[0]
		if err := config.Save(cfg); err != nil {
			printer.Error("saving config: %v", err)
			return err
		}
		printer.Success("owner id set to %s", args[0])
		return nil
	},
}

var configSetURLCmd = &cobra.Command{
	Use:   "set-url <base-url>",
	Short: "Set the service base URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg.BaseURL = args[0]
		if err := config.Save(cfg); err != nil {
			printer.Error("saving config: %v", err)
			return err
		}
		printer.Success("base url set to %s", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetOwnerCmd)
	configCmd.AddCommand(configSetURLCmd)
}
