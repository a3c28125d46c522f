package office

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/taqdimot/slide-generation-service/internal/extract"
	"github.com/xuri/excelize/v2"
)

// LegacyExtractor handles the pre-OOXML .xls family by converting the upload
// to .xlsx with LibreOffice, then reusing the workbook serialization.
type LegacyExtractor struct {
	binary  string
	timeout time.Duration
	maxSize int64
}

func NewLegacy(binary string, timeout time.Duration, maxSize int64) *LegacyExtractor {
	if strings.TrimSpace(binary) == "" {
		binary = "soffice"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &LegacyExtractor{binary: binary, timeout: timeout, maxSize: maxSize}
}

func (e *LegacyExtractor) Name() string       { return "document/legacy-excel" }
func (e *LegacyExtractor) MaxFileSize() int64 { return e.maxSize }
func (e *LegacyExtractor) SupportedTypes() []string {
	return []string{"application/vnd.ms-excel"}
}
func (e *LegacyExtractor) SupportedExtensions() []string { return []string{".xls"} }

func (e *LegacyExtractor) Extract(ctx context.Context, job extract.Job) (extract.Result, error) {
	localCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	outDir := filepath.Dir(job.LocalPath)
	cmd := exec.CommandContext(localCtx, e.binary, "--headless", "--convert-to", "xlsx", "--outdir", outDir, job.LocalPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		msg := fmt.Sprintf("libreoffice conversion failed: %v: %s", err, strings.TrimSpace(string(out)))
		return extract.Result{Success: false, Method: "libreoffice", FileType: e.Name(), MIMEType: job.MIMEType, Error: &msg}, err
	}

	xlsxPath := strings.TrimSuffix(job.LocalPath, filepath.Ext(job.LocalPath)) + ".xlsx"
	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		msg := err.Error()
		return extract.Result{Success: false, Method: "libreoffice", FileType: e.Name(), MIMEType: job.MIMEType, Error: &msg}, err
	}
	defer f.Close()

	text, meta, err := workbookToText(f)
	if err != nil {
		msg := err.Error()
		return extract.Result{Success: false, Method: "libreoffice", FileType: e.Name(), MIMEType: job.MIMEType, Error: &msg}, err
	}

	words, chars := extract.BuildCounts(text)
	return extract.Result{Success: true, Text: text, Method: "libreoffice", FileType: e.Name(), MIMEType: job.MIMEType, Metadata: meta, WordCount: words, CharCount: chars}, nil
}
