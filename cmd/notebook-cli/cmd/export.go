package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nfrund/notebook/internal/domain"
	"github.com/nfrund/notebook/internal/export"
	"github.com/spf13/cobra"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <guide.json>",
	Short: "Convert a guide JSON file into a spreadsheet",
	Long: `Reads a guide as returned by GET /api/v1/guides/<id> and writes it as an
.xlsx workbook with a summary sheet and one sheet per category.

Examples:
  notebook-cli export trip.json
  notebook-cli export trip.json --out ~/Desktop/trip.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := readGuide(args[0])
		if err != nil {
			return err
		}
		out := exportOut
		if out == "" {
			out = filepath.Join(filepath.Dir(args[0]), export.Filename(g))
		}

		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", out, err)
		}
		defer f.Close()
		if err := export.WriteXLSX(f, g); err != nil {
			return fmt.Errorf("failed to export guide: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
		return nil
	},
}

func readGuide(path string) (*domain.Guide, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var g domain.Guide
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("%s is not a guide: %w", path, err)
	}
	if g.Title == "" {
		return nil, fmt.Errorf("%s is not a guide: title is missing", path)
	}
	return &g, nil
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (defaults to the guide title next to the input)")
	rootCmd.AddCommand(exportCmd)
}
