package formatter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/updatelog/internal/models"
)

// ReportRequest bundles the inputs of [ExportReport].
type ReportRequest struct {
	Records  []models.FailureRecord
	Messages []models.FailureMessage
	Resolve  SourceNameFunc
	Preamble string
}

// ExportReport generates the error report and writes it to path.
//
// Nothing is written when generation fails.
func ExportReport(req ReportRequest, path string) (string, error) {
	data, err := GenerateReport(req.Records, req.Messages, req.Resolve, req.Preamble)
	if err != nil {
		return "", fmt.Errorf("failed to generate report: %w", err)
	}

	if err := WriteReport(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// WriteReport writes data to path through a temp file in the same directory and an atomic rename.
//
// The temp file is removed on every failure path, so a failed write leaves no partial report behind.
func WriteReport(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".updatelog-report-*")
	if err != nil {
		return fmt.Errorf("failed to create temp report: %w", err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err = tmp.Chmod(0644); err != nil {
		return fmt.Errorf("failed to chmod report: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close report: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move report into place: %w", err)
	}
	return nil
}
