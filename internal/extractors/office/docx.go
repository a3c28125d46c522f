package office

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/taqdimot/slide-generation-service/internal/extract"
	"golang.org/x/net/html"
)

type DOCXExtractor struct {
	maxBytes int64
}

func NewDOCX(maxBytes int64) *DOCXExtractor {
	return &DOCXExtractor{maxBytes: maxBytes}
}

func (e *DOCXExtractor) Name() string       { return "document/docx" }
func (e *DOCXExtractor) MaxFileSize() int64 { return e.maxBytes }
func (e *DOCXExtractor) SupportedTypes() []string {
	return []string{"application/vnd.openxmlformats-officedocument.wordprocessingml.document"}
}
func (e *DOCXExtractor) SupportedExtensions() []string { return []string{".docx"} }

func (e *DOCXExtractor) Extract(ctx context.Context, job extract.Job) (extract.Result, error) {
	select {
	case <-ctx.Done():
		return extract.Result{Success: false}, ctx.Err()
	default:
	}

	// Primary path: walk word/document.xml. Falls back to a lossy raw-byte
	// markup strip when the container is not a readable OOXML package.
	if zr, err := zip.OpenReader(job.LocalPath); err == nil {
		defer zr.Close()
		if body, err := readZipFile(&zr.Reader, "word/document.xml"); err == nil {
			text := strings.TrimSpace(docxToText(body))
			words, chars := extract.BuildCounts(text)
			return extract.Result{Success: true, Text: text, Method: "native", FileType: e.Name(), MIMEType: job.MIMEType, WordCount: words, CharCount: chars}, nil
		}
	}

	b, err := os.ReadFile(job.LocalPath)
	if err != nil {
		msg := err.Error()
		return extract.Result{Success: false, FileType: e.Name(), MIMEType: job.MIMEType, Error: &msg}, err
	}

	text := stripMarkup(b)
	words, chars := extract.BuildCounts(text)
	return extract.Result{Success: true, Text: text, Method: "raw-strip", FileType: e.Name(), MIMEType: job.MIMEType, WordCount: words, CharCount: chars}, nil
}

// docxToText walks <w:body> producing plain text, one line per paragraph.
// Formatting, tables and styles are deliberately flattened: the output
// contract is plain text only.
func docxToText(b []byte) string {
	dec := xml.NewDecoder(bytes.NewReader(b))

	var paragraphs []string
	var current []string
	inParagraph := false

	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inParagraph = true
				current = nil
			case "tab":
				if inParagraph {
					current = append(current, "\t")
				}
			case "br":
				if inParagraph {
					current = append(current, " ")
				}
			}
		case xml.CharData:
			if inParagraph {
				current = append(current, string(t))
			}
		case xml.EndElement:
			if t.Name.Local == "p" && inParagraph {
				text := strings.TrimSpace(strings.Join(current, ""))
				if text != "" {
					paragraphs = append(paragraphs, text)
				}
				inParagraph = false
				current = nil
			}
		}
	}

	return strings.Join(paragraphs, "\n")
}

// stripMarkup decodes raw bytes as UTF-8, drops every angle-bracket-delimited
// sequence, and collapses whitespace runs to single spaces. Lossy by design.
func stripMarkup(b []byte) string {
	tz := html.NewTokenizer(bytes.NewReader(b))
	var sb strings.Builder
	for {
		tt := tz.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			sb.Write(tz.Text())
			sb.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("missing %s", name)
}
