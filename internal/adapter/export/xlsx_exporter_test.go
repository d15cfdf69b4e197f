package export

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rl1809/stockmap/internal/core/domain"
)

func sampleReport() domain.Report {
	return domain.BuildReport(domain.Inventory{Streets: []domain.Street{
		{Name: "A", Lots: []domain.Lot{
			{Name: "1", Product: "Widget", Quantity: 5, Sold: 2, Depreciated: -1},
			{Name: "2"},
		}},
	}})
}

func TestExportFile(t *testing.T) {
	dir := t.TempDir()
	exporter := NewXLSXExporter()

	path, err := exporter.ExportFile(context.Background(), sampleReport(), dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "product_report.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ReportSheet}, f.GetSheetList())

	rows, err := f.GetRows(ReportSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Street", "Lot", "Product", "Quantity", "Sold", "Depreciated"},
		{"A", "1", "Widget", "4", "2", "-1"},
		{"A", "2", "Empty", "0", "0", "0"},
	}, rows)
}

func TestExportReport_Writer(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewXLSXExporter()

	require.NoError(t, exporter.ExportReport(context.Background(), sampleReport(), &buf))
	assert.Equal(t, "product_report.xlsx", exporter.FileName())

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	value, err := f.GetCellValue(ReportSheet, "D2")
	require.NoError(t, err)
	assert.Equal(t, "4", value)
}

func TestExportReport_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewXLSXExporter().ExportReport(ctx, sampleReport(), &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}
