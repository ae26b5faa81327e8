package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	authToken string
)

var rootCmd = &cobra.Command{
	Use:   "notebook-cli",
	Short: "Notebook CLI tool",
	Long: `notebook-cli works with notebook guides from the command line.

Available commands:
  guides    List the guides of the signed in user
  export    Convert a guide JSON file into a spreadsheet
  qr        Write a QR code linking to a guide
  sw        Print the service worker script
  watch     Stream live guide changes from a running server

Use "notebook-cli [command] --help" for more information about a specific command.`,
	SilenceUsage: true,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("NOTEBOOK_URL", "http://localhost:8080"), "base URL of the notebook server")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", os.Getenv("NOTEBOOK_TOKEN"), "auth_token cookie of a signed in session")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
