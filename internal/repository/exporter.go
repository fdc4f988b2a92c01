package repository

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"airwatch/internal/models"
	"airwatch/pkg/logging"
)

// Format is an export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a user-supplied format name
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", &models.ValidationError{
			Field:   "format",
			Value:   s,
			Message: fmt.Sprintf("unsupported export format %q, expected csv or xlsx", s),
		}
	}
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// ExportFileName returns a collision-free name for an adjusted export
func ExportFileName(format Format) string {
	return fmt.Sprintf("Adjusted_AQI_Data-%s.%s", uuid.NewString(), format)
}

// Export writes the adjusted table into a new file inside dir
func (r *fileRepository) Export(ctx context.Context, adjusted *models.AdjustedSeries, dir string, format Format) (string, error) {
	if adjusted == nil || adjusted.Len() == 0 {
		r.metrics.RecordExport(string(format), "empty")
		return "", &models.EmptyDataError{Stage: "export", Message: "no adjusted data to export"}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		r.metrics.RecordExport(string(format), "error")
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(dir, ExportFileName(format))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		r.metrics.RecordExport(string(format), "error")
		return "", fmt.Errorf("failed to create export file: %w", err)
	}

	if err := WriteTable(f, adjusted.Table, format); err != nil {
		f.Close()
		os.Remove(path)
		r.metrics.RecordExport(string(format), "error")
		r.logger.Error(ctx, "[EXPORT_ERROR] Failed to write export", logging.Fields{
			"path":   path,
			"format": string(format),
		}, err)
		return "", err
	}
	if err := f.Close(); err != nil {
		r.metrics.RecordExport(string(format), "error")
		return "", fmt.Errorf("failed to close export file: %w", err)
	}

	r.metrics.RecordExport(string(format), "success")
	r.logger.Info(ctx, "[EXPORT_COMPLETE] Adjusted data exported", logging.Fields{
		"path":   path,
		"format": string(format),
		"rows":   adjusted.Len(),
	})
	return path, nil
}

// WriteTable serialises a table with a header row in the given format
func WriteTable(w io.Writer, table dataframe.DataFrame, format Format) error {
	switch format {
	case FormatXLSX:
		return writeXLSX(w, table)
	case FormatCSV, "":
		if err := table.WriteCSV(w); err != nil {
			return fmt.Errorf("failed to write csv: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// writeXLSX stores numeric cells as numbers and everything else as text
func writeXLSX(w io.Writer, table dataframe.DataFrame) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	records := table.Records()
	for i, rec := range records {
		row := make([]interface{}, len(rec))
		for j, raw := range rec {
			if i > 0 {
				if v, err := strconv.ParseFloat(raw, 64); err == nil {
					row[j] = v
					continue
				}
			}
			row[j] = raw
		}

		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write xlsx row %d: %w", i, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}
