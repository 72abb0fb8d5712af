package report

import (
	"fmt"
	"os"
	"path/filepath"

	sonic "github.com/bytedance/sonic"
)

const DefaultBarcodeReportPath = "_barcode_report.json"

// WriteBarcodeReport dumps barcode -> tag pairs as a JSON object with sorted keys.
func WriteBarcodeReport(path string, entries map[string]string) error {
	if path == "" {
		path = DefaultBarcodeReportPath
	}
	if entries == nil {
		entries = map[string]string{}
	}

	raw, err := sonic.ConfigStd.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode barcode report: %w", err)
	}
	raw = append(raw, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create barcode report dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".barcode-report-*")
	if err != nil {
		return fmt.Errorf("create barcode report: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write barcode report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close barcode report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("publish barcode report: %w", err)
	}
	return nil
}

// ReadBarcodeReport loads a report written by WriteBarcodeReport.
func ReadBarcodeReport(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read barcode report: %w", err)
	}
	out := map[string]string{}
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode barcode report %s: %w", path, err)
	}
	return out, nil
}
