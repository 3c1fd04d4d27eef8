// Package inventory loads the reserved-stock spreadsheet export and
// derives the queue of SKUs that still need their reservations cleaned.
package inventory

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Item is one spreadsheet row: a SKU and its reserved unit count.
type Item struct {
	Sku           string
	ReservedUnits int
}

// FindWorkbook locates the spreadsheet export inside dir. Exactly one
// workbook file must exist; zero or several is a configuration error.
func FindWorkbook(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var workbooks []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".xls", ".xlsx":
			workbooks = append(workbooks, filepath.Join(dir, e.Name()))
		}
	}

	if len(workbooks) != 1 {
		return "", fmt.Errorf(
			"directory %q must contain exactly 1 spreadsheet file, found %d",
			dir, len(workbooks),
		)
	}
	return workbooks[0], nil
}

// LoadWorkbook reads every row of the first sheet, discarding the header
// row. The SKU lives in the second column and the reserved unit count in
// the third.
func LoadWorkbook(path string) ([]Item, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) > 0 {
		rows = rows[1:]
	}

	var items []Item
	for i, row := range rows {
		if len(row) < 3 {
			continue
		}
		sku := strings.TrimSpace(row[1])
		if sku == "" {
			continue
		}
		units, err := strconv.Atoi(strings.TrimSpace(row[2]))
		if err != nil {
			slog.Warn("skipping row with unreadable unit count",
				"row", i+2, "sku", sku, "units", row[2])
			continue
		}
		items = append(items, Item{Sku: sku, ReservedUnits: units})
	}

	return items, nil
}
