package cmd

import (
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"
)

var (
	qrOut  string
	qrSize int
)

var qrCmd = &cobra.Command{
	Use:   "qr <guide-id>",
	Short: "Write a QR code linking to a guide",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		link := guideLink(serverURL, args[0])
		out := qrOut
		if out == "" {
			out = args[0] + ".png"
		}
		if err := qrcode.WriteFile(link, qrcode.Medium, qrSize, out); err != nil {
			return fmt.Errorf("failed to write QR code: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s for %s\n", out, link)
		return nil
	},
}

func guideLink(base, id string) string {
	return strings.TrimRight(base, "/") + "/app/guides/" + id
}

func init() {
	qrCmd.Flags().StringVarP(&qrOut, "out", "o", "", "output file (defaults to <guide-id>.png)")
	qrCmd.Flags().IntVar(&qrSize, "size", 256, "image size in pixels")
	rootCmd.AddCommand(qrCmd)
}
