package backup

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/dori/timelog/internal/model"
	"github.com/dori/timelog/internal/store"
)

// Sheet names of the timesheet workbook
const (
	SheetEntries = "Entries"
	SheetDaily   = "Daily Totals"
	SheetPto     = "PTO"
)

// WriteTimesheet writes an xlsx workbook with one row per entry, one row per
// date with its total, and the PTO days
func WriteTimesheet(w io.Writer, entries []model.Entry, pto []model.PtoEntry) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetEntries); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	for _, name := range []string{SheetDaily, SheetPto} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	rows := [][]any{{"Date", "Day", "Description", "Periods", "Hours", "Duration", "Completed"}}
	for _, e := range entries {
		start, end := e.TimeRange()
		periods := ""
		if start != "" {
			periods = fmt.Sprintf("%s-%s", start, end)
			if len(e.TimePeriods) > 1 {
				periods = fmt.Sprintf("%s (%d periods)", periods, len(e.TimePeriods))
			}
		}
		rows = append(rows, []any{
			e.Date, e.Day, e.Description, periods,
			hours(e.Duration.TotalSeconds), e.Duration.String(), e.Completed,
		})
	}
	if err := writeRows(f, SheetEntries, rows, header); err != nil {
		return err
	}

	rows = [][]any{{"Date", "Day", "Entries", "Hours", "Duration"}}
	for _, g := range store.SortedGroups(entries) {
		rows = append(rows, []any{
			g.Date, model.WeekdayName(g.Date), len(g.Entries),
			hours(g.TotalSeconds), model.FormatHMS(g.TotalSeconds),
		})
	}
	if err := writeRows(f, SheetDaily, rows, header); err != nil {
		return err
	}

	days := make([]model.PtoEntry, len(pto))
	copy(days, pto)
	sort.SliceStable(days, func(i, j int) bool { return days[i].Date > days[j].Date })
	rows = [][]any{{"Date", "Type", "Notes"}}
	for _, p := range days {
		rows = append(rows, []any{p.Date, p.Type.Label(), p.Notes})
	}
	if err := writeRows(f, SheetPto, rows, header); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write timesheet: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	return f.SetColWidth(sheet, "A", "G", 14)
}

// hours rounds to two decimals for spreadsheet arithmetic
func hours(totalSeconds int) float64 {
	return float64(totalSeconds*100/3600) / 100
}
