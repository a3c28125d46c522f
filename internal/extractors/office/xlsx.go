package office

import (
	"context"
	"strconv"
	"strings"

	"github.com/taqdimot/slide-generation-service/internal/extract"
	"github.com/xuri/excelize/v2"
)

type XLSXExtractor struct {
	maxBytes int64
}

func NewXLSX(maxBytes int64) *XLSXExtractor {
	return &XLSXExtractor{maxBytes: maxBytes}
}

func (e *XLSXExtractor) Name() string       { return "document/xlsx" }
func (e *XLSXExtractor) MaxFileSize() int64 { return e.maxBytes }
func (e *XLSXExtractor) SupportedTypes() []string {
	return []string{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"}
}
func (e *XLSXExtractor) SupportedExtensions() []string { return []string{".xlsx"} }

func (e *XLSXExtractor) Extract(ctx context.Context, job extract.Job) (extract.Result, error) {
	select {
	case <-ctx.Done():
		return extract.Result{Success: false}, ctx.Err()
	default:
	}

	f, err := excelize.OpenFile(job.LocalPath)
	if err != nil {
		msg := err.Error()
		return extract.Result{Success: false, FileType: e.Name(), MIMEType: job.MIMEType, Error: &msg}, err
	}
	defer f.Close()

	text, meta, err := workbookToText(f)
	if err != nil {
		msg := err.Error()
		return extract.Result{Success: false, FileType: e.Name(), MIMEType: job.MIMEType, Error: &msg}, err
	}

	words, chars := extract.BuildCounts(text)
	return extract.Result{Success: true, Text: text, Method: "native", FileType: e.Name(), MIMEType: job.MIMEType, Metadata: meta, WordCount: words, CharCount: chars}, nil
}

// workbookToText serializes every sheet: a "Sheet: <name>" header line, then
// each row as comma-joined cell values, blank line between sheets. Row and
// column order are preserved exactly as stored.
func workbookToText(f *excelize.File) (string, map[string]string, error) {
	sheets := f.GetSheetList()
	meta := map[string]string{"sheets": strconv.Itoa(len(sheets))}

	var sections []string
	totalRows := 0
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}

		lines := make([]string, 0, len(rows)+1)
		lines = append(lines, "Sheet: "+sheet)
		for _, row := range rows {
			lines = append(lines, strings.Join(row, ", "))
		}
		totalRows += len(rows)
		if len(rows) == 0 {
			// Keep the header out of the output so an empty workbook reads
			// as empty content downstream.
			continue
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	meta["totalRows"] = strconv.Itoa(totalRows)
	return strings.Join(sections, "\n\n"), meta, nil
}
