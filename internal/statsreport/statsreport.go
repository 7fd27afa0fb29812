// Package statsreport renders correction and cache statistics as an xlsx
// workbook for offline review of classifier quality.
package statsreport

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"filewise/internal/domain"
)

// Sheet names, in workbook order.
const (
	SheetSummary        = "Summary"
	SheetFields         = "Corrected Fields"
	SheetFileTypes      = "Predicted File Types"
	SheetCategories     = "Predicted Categories"
	SheetRules          = "Rules"
	ContentType         = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxRuleExampleCells = 3
)

// Input is everything the report summarizes. Cache and Rules may be nil.
type Input struct {
	Corrections *domain.CorrectionStats
	Cache       *domain.CacheStats
	Rules       []domain.ConsolidatedRule
	GeneratedAt time.Time
}

// Write renders the workbook to w.
func Write(w io.Writer, in Input) error {
	if in.Corrections == nil {
		return fmt.Errorf("statsreport: correction stats are required")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("statsreport: renaming sheet: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("statsreport: creating style: %w", err)
	}

	if err := writeSummary(f, header, in); err != nil {
		return err
	}
	counts := []struct {
		sheet  string
		label  string
		values map[string]int
	}{
		{SheetFields, "Field", in.Corrections.ByCorrectedField},
		{SheetFileTypes, "Predicted file type", in.Corrections.ByPredictedFileType},
		{SheetCategories, "Predicted category", in.Corrections.ByPredictedCategory},
	}
	for _, c := range counts {
		if err := writeCounts(f, header, c.sheet, c.label, c.values); err != nil {
			return err
		}
	}
	if err := writeRules(f, header, in.Rules); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("statsreport: writing workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, header int, in Input) error {
	generated := in.GeneratedAt
	if generated.IsZero() {
		generated = time.Now().UTC()
	}
	since := "all time"
	if in.Corrections.Since != nil {
		since = in.Corrections.Since.Format(time.RFC3339)
	}

	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Generated at", generated.Format(time.RFC3339)},
		{"Corrections since", since},
		{"Total corrections", in.Corrections.Total},
	}
	if in.Cache != nil {
		rows = append(rows,
			[]interface{}{"Valid cache entries", in.Cache.ValidEntries},
			[]interface{}{"Invalidated cache entries", in.Cache.InvalidEntries},
			[]interface{}{"Cache hits", in.Cache.TotalHits},
		)
	}
	return writeRows(f, header, SheetSummary, rows)
}

// writeCounts writes a two-column sheet sorted by descending count.
func writeCounts(f *excelize.File, header int, sheet, label string, values map[string]int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("statsreport: creating sheet %s: %w", sheet, err)
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if values[keys[i]] != values[keys[j]] {
			return values[keys[i]] > values[keys[j]]
		}
		return keys[i] < keys[j]
	})

	rows := [][]interface{}{{label, "Corrections"}}
	for _, k := range keys {
		rows = append(rows, []interface{}{k, values[k]})
	}
	return writeRows(f, header, sheet, rows)
}

func writeRules(f *excelize.File, header int, rules []domain.ConsolidatedRule) error {
	if _, err := f.NewSheet(SheetRules); err != nil {
		return fmt.Errorf("statsreport: creating sheet %s: %w", SheetRules, err)
	}
	rows := [][]interface{}{{"Field", "AI predicted", "Corrected to", "Count", "Avg. confidence", "Examples"}}
	for _, r := range rules {
		examples := r.Examples
		if len(examples) > maxRuleExampleCells {
			examples = examples[:maxRuleExampleCells]
		}
		rows = append(rows, []interface{}{
			string(r.Field), r.From, r.To, r.Count, r.AverageConfidence, strings.Join(examples, "; "),
		})
	}
	return writeRows(f, header, SheetRules, rows)
}

func writeRows(f *excelize.File, header int, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("statsreport: writing %s row %d: %w", sheet, i+1, err)
		}
	}
	if len(rows) > 0 {
		last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, header); err != nil {
			return fmt.Errorf("statsreport: styling %s: %w", sheet, err)
		}
	}
	return nil
}
