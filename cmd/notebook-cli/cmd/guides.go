package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/nfrund/notebook/internal/domain"
	"github.com/nfrund/notebook/internal/handlers"
	"github.com/spf13/cobra"
)

var guidesFormat string

var guidesCmd = &cobra.Command{
	Use:   "guides",
	Short: "List the guides of the signed in user",
	Long: `Lists the guides of the user the session token belongs to.

Examples:
  notebook-cli guides --token $TOKEN
  notebook-cli guides --format json

Output formats:
  table - Human-readable table format (default)
  json  - The API response as is`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(serverURL, authToken)
		if err != nil {
			return err
		}
		var list []handlers.GuideSummary
		if err := c.getJSON(cmd.Context(), "/api/v1/guides", &list); err != nil {
			return err
		}

		switch guidesFormat {
		case "json":
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(list)
		case "table":
			return writeGuideTable(cmd.OutOrStdout(), list)
		default:
			return fmt.Errorf("unknown format %q, want table or json", guidesFormat)
		}
	},
}

func writeGuideTable(w io.Writer, list []handlers.GuideSummary) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No guides yet.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tKIND\tPROGRESS")
	for _, g := range list {
		progress := fmt.Sprintf("%d/%d", g.Progress.Done, g.Progress.Total)
		if g.Kind == domain.KindJournal {
			progress = fmt.Sprintf("%d entries", g.Entries)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", g.ID, g.Title, g.Kind, progress)
	}
	return tw.Flush()
}

func init() {
	guidesCmd.Flags().StringVar(&guidesFormat, "format", "table", "output format: table or json")
	rootCmd.AddCommand(guidesCmd)
}
