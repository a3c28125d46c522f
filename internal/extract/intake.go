package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

type UploadedFile struct {
	TempDir  string
	Path     string
	MIMEType string
	Size     int64
}

func (u UploadedFile) Cleanup() {
	if u.TempDir != "" {
		_ = os.RemoveAll(u.TempDir)
	}
}

// SaveUpload writes an io.Reader (the multipart file part) to a temp file and
// sniffs the MIME type from the stored bytes.
func SaveUpload(body io.Reader, fileName string, maxBytes int64) (UploadedFile, error) {
	tmpDir, err := os.MkdirTemp("", "slidegen-*")
	if err != nil {
		return UploadedFile{}, fmt.Errorf("temp dir: %w", err)
	}

	safeName := strings.TrimSpace(fileName)
	if safeName == "" {
		safeName = "input.bin"
	}
	outPath := filepath.Join(tmpDir, filepath.Base(safeName))

	f, err := os.Create(outPath)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return UploadedFile{}, fmt.Errorf("create: %w", err)
	}
	defer f.Close()

	lr := &io.LimitedReader{R: body, N: maxBytes + 1}
	n, err := io.Copy(f, lr)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return UploadedFile{}, fmt.Errorf("write: %w", err)
	}
	if n > maxBytes {
		_ = os.RemoveAll(tmpDir)
		return UploadedFile{}, fmt.Errorf("file exceeds %dMB limit", maxBytes/(1<<20))
	}

	if err := f.Sync(); err != nil {
		_ = os.RemoveAll(tmpDir)
		return UploadedFile{}, fmt.Errorf("sync: %w", err)
	}

	return UploadedFile{
		TempDir:  tmpDir,
		Path:     outPath,
		MIMEType: sniffMIMEType(outPath),
		Size:     n,
	}, nil
}

func sniffMIMEType(path string) string {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return ""
	}
	return mt.String()
}
