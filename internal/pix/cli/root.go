package cli

import (
	"github.com/spf13/cobra"

	"github.com/pixvault/pixvault/internal/pix/client"
	"github.com/pixvault/pixvault/internal/pix/config"
	"github.com/pixvault/pixvault/internal/pix/output"
)

var (
	jsonOutput bool
	quietMode  bool
	cfg        *config.Config
	apiClient  *client.Client
	printer    *output.Printer
)

var rootCmd = &cobra.Command{
	Use:   "pix",
	Short: "pixvault CLI - upload and manage stored media assets",
	Long: `pix is the command-line interface for a pixvault media storage service.

Upload image assets and retire superseded ones from the terminal.

Get started:
  pix config set-owner user-123   # Set the owner identity
  pix upload avatar.jpg           # Upload a file
  pix delete user-123/abc.jpg     # Retire a stored asset`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		printer = output.New(
			output.WithJSON(jsonOutput),
			output.WithQuiet(quietMode),
		)

		apiClient = client.New(cfg.BaseURL, cfg.OwnerID, cfg.Timeout())
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON (for scripting)")
	rootCmd.PersistentFlags().BoolVar(&quietMode, "quiet", false, "Suppress non-error output")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(configCmd)
}
