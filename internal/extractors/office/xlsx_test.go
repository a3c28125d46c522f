package office

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/taqdimot/slide-generation-service/internal/extract"
)

func writeXLSX(t *testing.T, build func(f *excelize.File)) string {
	t.Helper()

	f := excelize.NewFile()
	build(f)

	path := filepath.Join(t.TempDir(), "input.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close workbook: %v", err)
	}
	return path
}

func TestXLSXExtractSerializesRows(t *testing.T) {
	path := writeXLSX(t, func(f *excelize.File) {
		_ = f.SetCellValue("Sheet1", "A1", "Region")
		_ = f.SetCellValue("Sheet1", "B1", "Revenue")
		_ = f.SetCellValue("Sheet1", "A2", "North")
		_ = f.SetCellValue("Sheet1", "B2", 1200)
	})

	e := NewXLSX(20 << 20)
	res, err := e.Extract(context.Background(), extract.Job{LocalPath: path, FileName: "input.xlsx"})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	lines := strings.Split(res.Text, "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines: %q", len(lines), res.Text)
	}
	if lines[0] != "Sheet: Sheet1" {
		t.Fatalf("header line = %q", lines[0])
	}
	if lines[1] != "Region, Revenue" {
		t.Fatalf("row 1 = %q", lines[1])
	}
	if lines[2] != "North, 1200" {
		t.Fatalf("row 2 = %q", lines[2])
	}
	if res.Metadata["sheets"] != "1" || res.Metadata["totalRows"] != "2" {
		t.Fatalf("metadata = %v", res.Metadata)
	}
}

func TestXLSXExtractMultipleSheets(t *testing.T) {
	path := writeXLSX(t, func(f *excelize.File) {
		_ = f.SetCellValue("Sheet1", "A1", "one")
		_, _ = f.NewSheet("Costs")
		_ = f.SetCellValue("Costs", "A1", "two")
	})

	e := NewXLSX(20 << 20)
	res, err := e.Extract(context.Background(), extract.Job{LocalPath: path, FileName: "input.xlsx"})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	sections := strings.Split(res.Text, "\n\n")
	if len(sections) != 2 {
		t.Fatalf("got %d sections: %q", len(sections), res.Text)
	}
	if !strings.HasPrefix(sections[1], "Sheet: Costs\n") {
		t.Fatalf("second section = %q", sections[1])
	}
}

// An all-empty workbook serializes to an empty string so the router reports
// it as empty content rather than handing sheet headers to the generator.
func TestXLSXExtractEmptyWorkbook(t *testing.T) {
	path := writeXLSX(t, func(f *excelize.File) {})

	e := NewXLSX(20 << 20)
	res, err := e.Extract(context.Background(), extract.Job{LocalPath: path, FileName: "empty.xlsx"})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if res.Text != "" {
		t.Fatalf("text = %q, want empty", res.Text)
	}
}

func TestXLSXExtractRejectsNonWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.xlsx")
	if err := os.WriteFile(path, []byte("not a zip archive"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	e := NewXLSX(20 << 20)
	if _, err := e.Extract(context.Background(), extract.Job{LocalPath: path, FileName: "fake.xlsx"}); err == nil {
		t.Fatalf("expected open error for a non-workbook file")
	}
}
