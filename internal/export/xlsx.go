// Package export writes guides out as spreadsheets.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/nfrund/notebook/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	journalSheet = "Journal"
	// excel limits sheet names to 31 characters
	maxSheetName = 31
)

// ContentType is the MIME type of the files written by WriteXLSX.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Workbook builds a workbook for g: a summary sheet, then one sheet per
// category for checklists or a single journal sheet for journals. The caller
// closes the returned file.
func Workbook(g *domain.Guide) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		_ = f.Close()
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	if err := writeSummary(f, g, bold); err != nil {
		_ = f.Close()
		return nil, err
	}
	if g.Kind == domain.KindJournal {
		err = writeJournal(f, g, bold)
	} else {
		err = writeCategories(f, g, bold)
	}
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

// WriteXLSX encodes g as an .xlsx file to w.
func WriteXLSX(w io.Writer, g *domain.Guide) error {
	f, err := Workbook(g)
	if err != nil {
		return fmt.Errorf("failed to build workbook: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Filename returns a download name derived from the guide title.
func Filename(g *domain.Guide) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '-'
		default:
			return -1
		}
	}, g.Title)
	if name == "" {
		name = g.ID
	}
	return name + ".xlsx"
}

func header(bold int, titles ...string) []any {
	row := make([]any, len(titles))
	for i, t := range titles {
		row[i] = excelize.Cell{StyleID: bold, Value: t}
	}
	return row
}

func writeSummary(f *excelize.File, g *domain.Guide, bold int) error {
	sw, err := f.NewStreamWriter(summarySheet)
	if err != nil {
		return err
	}
	if err := sw.SetColWidth(1, 1, 18); err != nil {
		return err
	}
	if err := sw.SetColWidth(2, 2, 48); err != nil {
		return err
	}
	rows := [][]any{
		{excelize.Cell{StyleID: bold, Value: "Title"}, g.Title},
		{excelize.Cell{StyleID: bold, Value: "Subtitle"}, g.Subtitle},
		{excelize.Cell{StyleID: bold, Value: "Kind"}, string(g.Kind)},
	}
	if g.Kind == domain.KindJournal {
		rows = append(rows, []any{excelize.Cell{StyleID: bold, Value: "Entries"}, len(g.Entries)})
	} else {
		p := g.Progress()
		rows = append(rows,
			[]any{excelize.Cell{StyleID: bold, Value: "Checked"}, p.Done},
			[]any{excelize.Cell{StyleID: bold, Value: "Total"}, p.Total},
			[]any{excelize.Cell{StyleID: bold, Value: "Percent"}, p.Percent()},
		)
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}
	return sw.Flush()
}

func writeCategories(f *excelize.File, g *domain.Guide, bold int) error {
	used := map[string]bool{summarySheet: true}
	for ci, cat := range g.Categories {
		name := sheetName(cat.Name, ci, used)
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
		sw, err := f.NewStreamWriter(name)
		if err != nil {
			return err
		}
		if err := sw.SetColWidth(1, 2, 32); err != nil {
			return err
		}
		if err := sw.SetRow("A1", header(bold, "Card", "Item", "Checked")); err != nil {
			return err
		}
		row := 2
		for si, skill := range cat.Skills {
			for ii, item := range skill.Items {
				checked := ""
				if skill.Bullet.Checkable() && g.IsChecked(ci, si, ii) {
					checked = "✓"
				}
				cell, _ := excelize.CoordinatesToCellName(1, row)
				if err := sw.SetRow(cell, []any{skill.Title, item, checked}); err != nil {
					return err
				}
				row++
			}
		}
		if err := sw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func writeJournal(f *excelize.File, g *domain.Guide, bold int) error {
	if _, err := f.NewSheet(journalSheet); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(journalSheet)
	if err != nil {
		return err
	}
	if err := sw.SetColWidth(5, 5, 80); err != nil {
		return err
	}
	if err := sw.SetRow("A1", header(bold, "Date", "Title", "Mood", "Tags", "Content")); err != nil {
		return err
	}
	for i, e := range g.FilterEntries(domain.EntryFilter{}) {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{e.Date, e.Title, string(e.Mood), strings.Join(e.Tags, ", "), e.Content}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}
	return sw.Flush()
}

// sheetName makes a category name usable as a unique sheet name.
func sheetName(name string, ci int, used map[string]bool) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	clean = strings.Trim(clean, "'")
	if clean == "" {
		clean = fmt.Sprintf("Category %d", ci+1)
	}
	if r := []rune(clean); len(r) > maxSheetName {
		clean = string(r[:maxSheetName])
	}
	base := clean
	for n := 2; used[clean]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		r := []rune(base)
		if len(r)+len(suffix) > maxSheetName {
			r = r[:maxSheetName-len(suffix)]
		}
		clean = string(r) + suffix
	}
	used[clean] = true
	return clean
}
