package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload an image asset",
	Long: `Upload a JPEG, PNG, or WebP image and print its key and public URL.

The owner identity comes from the owner_id config value or PIX_OWNER_ID.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath := args[0]

		if cfg.OwnerID == "" {
			printer.Error("no owner id configured; run 'pix config set-owner <id>' or set %s", "PIX_OWNER_ID")
			return fmt.Errorf("owner id required")
		}

		f, err := os.Open(filePath)
		if err != nil {
			printer.Error("cannot open %s: %v", filePath, err)
			return err
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return err
		}

		reader := printer.UploadBar(f, info.Size(), "uploading "+filepath.Base(filePath))

		result, err := apiClient.UploadReader(cmd.Context(), reader, filepath.Base(filePath), info.Size())
		if err != nil {
			printer.Error("upload failed: %v", err)
			return err
		}

		if printer.JSONMode() {
			printer.JSON(result)
			return nil
		}

		printer.Success("uploaded %s (%d bytes)", result.OriginalName, result.SizeBytes)
		printer.Field("key", result.Key)
		printer.Field("url", result.PublicURL)
		printer.Field("type", result.MimeType)
		return nil
	},
}
