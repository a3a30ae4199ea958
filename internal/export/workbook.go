// Package export renders resolved query results as spreadsheets.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rpattn/contentql/internal/domain"
)

// InfoSheet holds one row of pagination numbers per root.
const InfoSheet = "_info"

const maxSheetName = 31

var infoHeader = []string{
	"root", "total", "pageSize", "currentPage", "totalPages",
	"hasNext", "hasPrev", "cursor", "nextSkip", "prevSkip", "error",
}

// WriteWorkbook writes one sheet per resolved root, sorted by root key, and a
// trailing info sheet. Nested values are JSON-encoded into their cells.
func WriteWorkbook(w io.Writer, result domain.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	keys := make([]string, 0, len(result.Data))
	for key := range result.Data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	used := map[string]bool{strings.ToLower(InfoSheet): true, "sheet1": true}
	for _, key := range keys {
		sheet := uniqueSheetName(key, used)
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
		if err := writeNodes(f, sheet, result.Data[key].Nodes); err != nil {
			return fmt.Errorf("failed to write sheet %s: %w", sheet, err)
		}
	}

	if _, err := f.NewSheet(InfoSheet); err != nil {
		return fmt.Errorf("failed to create info sheet: %w", err)
	}
	if err := writeInfo(f, keys, result); err != nil {
		return fmt.Errorf("failed to write info sheet: %w", err)
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeNodes(f *excelize.File, sheet string, nodes []domain.Object) error {
	var columns []string
	index := map[string]int{}
	for _, node := range nodes {
		for _, key := range node.Keys() {
			if _, ok := index[key]; ok {
				continue
			}
			index[key] = len(columns)
			columns = append(columns, key)
		}
	}

	if err := writeRow(f, sheet, 1, toAny(columns)); err != nil {
		return err
	}
	for i, node := range nodes {
		row := make([]any, len(columns))
		for _, field := range node {
			row[index[field.Key]] = cellValue(field.Value)
		}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeInfo(f *excelize.File, keys []string, result domain.Result) error {
	if err := writeRow(f, InfoSheet, 1, toAny(infoHeader)); err != nil {
		return err
	}
	row := 2
	for _, key := range keys {
		info := result.Data[key].Info
		values := []any{
			key, info.Total, info.PageSize, info.CurrentPage, info.TotalPages,
			info.HasNext, info.HasPrev, info.Cursor, info.NextSkip, info.PrevSkip, "",
		}
		if err := writeRow(f, InfoSheet, row, values); err != nil {
			return err
		}
		row++
	}
	for _, rootErr := range result.Errors {
		values := make([]any, len(infoHeader))
		values[0] = rootErr.Key
		values[len(values)-1] = rootErr.Err.Error()
		if err := writeRow(f, InfoSheet, row, values); err != nil {
			return err
		}
		row++
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// cellValue keeps primitives as they are so the spreadsheet sees numbers and
// booleans, and encodes everything else as JSON.
func cellValue(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case string, bool, int, int32, int64, float32, float64:
		return v
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	}
}

// uniqueSheetName derives a valid sheet name from a root key.
func uniqueSheetName(key string, used map[string]bool) string {
	base := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, key)
	if base == "" {
		base = "root"
	}
	if len(base) > maxSheetName {
		base = base[:maxSheetName]
	}

	name := base
	for i := 2; used[strings.ToLower(name)]; i++ {
		suffix := fmt.Sprintf("_%d", i)
		trimmed := base
		if len(trimmed)+len(suffix) > maxSheetName {
			trimmed = trimmed[:maxSheetName-len(suffix)]
		}
		name = trimmed + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}
