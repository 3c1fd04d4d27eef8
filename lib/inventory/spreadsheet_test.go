package inventory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestLoadWorkbook(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "export.xlsx")
	writeWorkbook(t, path, [][]interface{}{
		{"Produto", "SKU", "Reservado"},
		{"Camiseta P", "ABC123", 4},
		{"Camiseta M", "XYZ-9", 0},
		{"Sem unidades", "NOPE", "n/a"},
	})

	items, err := LoadWorkbook(path)
	require.NoError(t, err)
	require.Equal(t, []Item{
		{Sku: "ABC123", ReservedUnits: 4},
		{Sku: "XYZ-9", ReservedUnits: 0},
	}, items)
}

func TestFindWorkbookExactlyOne(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "export.xlsx"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "credentials.json5"), []byte("{}"), 0644))

	path, err := FindWorkbook(dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "export.xlsx"), path)
}

func TestFindWorkbookNone(t *testing.T) {
	_, err := FindWorkbook(t.TempDir())
	require.Error(t, err)
}

func TestFindWorkbookSeveral(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.xls"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.xlsx"), []byte("x"), 0644))

	_, err := FindWorkbook(dir)
	require.Error(t, err)
}
