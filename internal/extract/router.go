package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Router normalizes one uploaded office document into plain text. The upload
// extension gates everything: unsupported families are rejected before the
// body is even saved, and an extraction that yields only whitespace is
// reported as empty content so the generation service is never called for it.
type Router struct {
	registry     *Registry
	maxFileBytes int64
}

func NewRouter(registry *Registry, maxFileBytes int64) *Router {
	return &Router{registry: registry, maxFileBytes: maxFileBytes}
}

func (r *Router) Extract(ctx context.Context, body io.Reader, fileName string) (Result, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		fileName = "input.bin"
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if !r.registry.Supports(ext) {
		return errResult(ErrUnsupportedFormat.Error()), ErrUnsupportedFormat
	}

	up, err := SaveUpload(body, fileName, r.maxFileBytes)
	if err != nil {
		return errResult(err.Error()), err
	}
	defer up.Cleanup()

	extractor, err := r.registry.Resolve(up.MIMEType, ext)
	if err != nil {
		msg := ErrUnsupportedFormat.Error()
		return Result{Success: false, MIMEType: up.MIMEType, FileType: "unknown", Error: &msg}, ErrUnsupportedFormat
	}

	if max := extractor.MaxFileSize(); max > 0 && up.Size > max {
		msg := fmt.Sprintf("file exceeds extractor limit (%dMB)", max/(1<<20))
		return Result{Success: false, MIMEType: up.MIMEType, FileType: extractor.Name(), Error: &msg}, errors.New(msg)
	}

	job := Job{
		LocalPath: up.Path,
		FileName:  fileName,
		MIMEType:  up.MIMEType,
		FileSize:  up.Size,
	}

	res, err := extractor.Extract(ctx, job)
	if err != nil {
		if res.Error == nil {
			msg := err.Error()
			res.Error = &msg
		}
		res.Success = false
		if res.MIMEType == "" {
			res.MIMEType = up.MIMEType
		}
		return res, err
	}

	if strings.TrimSpace(res.Text) == "" {
		msg := ErrEmptyContent.Error()
		res.Success = false
		res.Text = ""
		res.Error = &msg
		return res, ErrEmptyContent
	}

	res.Success = true
	if res.MIMEType == "" {
		res.MIMEType = up.MIMEType
	}
	if res.CharCount == 0 && res.Text != "" {
		res.WordCount, res.CharCount = BuildCounts(res.Text)
	}
	return res, nil
}

func errResult(message string) Result {
	return Result{Success: false, Error: &message}
}
