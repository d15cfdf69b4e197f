package port

import (
	"context"
	"io"

	"github.com/rl1809/stockmap/internal/core/domain"
)

type ReportExporter interface {
	// ExportReport writes the report in the exporter's file format
	ExportReport(ctx context.Context, report domain.Report, w io.Writer) error

	// FileName is the name the report is saved or downloaded under
	FileName() string
}
