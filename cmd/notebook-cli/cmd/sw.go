package cmd

import (
	"github.com/nfrund/notebook/internal/offline"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var swCacheName string

var swCmd = &cobra.Command{
	Use:   "sw",
	Short: "Print the service worker script",
	Long: `Prints the service worker the server hands out at /service-worker.js.
Pass --cache-name to preview the script for a new cache version.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := offline.DefaultConfig()
		if swCacheName != "" {
			cfg.CacheName = swCacheName
		}
		w := offline.NewWorker(offline.NewStore(afero.NewMemMapFs(), "/"), cfg)
		script, err := w.ServiceWorkerScript()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(script)
		return err
	},
}

func init() {
	swCmd.Flags().StringVar(&swCacheName, "cache-name", "", "cache version to embed (default "+offline.DefaultCacheName+")")
	rootCmd.AddCommand(swCmd)
}
