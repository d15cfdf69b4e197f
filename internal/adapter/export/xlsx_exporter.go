package export

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/rl1809/stockmap/internal/core/domain"
)

const (
	ReportFileName = "product_report.xlsx"
	ReportSheet    = "Product Report"
	defaultSheet   = "Sheet1"
)

// XLSXExporter writes the report as a single-sheet workbook.
type XLSXExporter struct{}

func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

func (e *XLSXExporter) FileName() string {
	return ReportFileName
}

func (e *XLSXExporter) ExportReport(ctx context.Context, report domain.Report, w io.Writer) error {
	f, err := e.workbook(ctx, report)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "write workbook")
	}
	return nil
}

// ExportFile writes product_report.xlsx into dir and returns its path.
func (e *XLSXExporter) ExportFile(ctx context.Context, report domain.Report, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create %s", dir)
	}

	f, err := e.workbook(ctx, report)
	if err != nil {
		return "", err
	}
	defer f.Close()

	path := filepath.Join(dir, ReportFileName)
	if err := f.SaveAs(path); err != nil {
		return "", errors.Wrapf(err, "save %s", path)
	}
	return path, nil
}

func (e *XLSXExporter) workbook(ctx context.Context, report domain.Report) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(defaultSheet, ReportSheet); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "rename sheet")
	}

	for i, row := range report.Table() {
		if err := ctx.Err(); err != nil {
			f.Close()
			return nil, err
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			f.Close()
			return nil, errors.Wrap(err, "cell name")
		}
		if err := f.SetSheetRow(ReportSheet, cell, &row); err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "write row %d", i+1)
		}
	}
	return f, nil
}
