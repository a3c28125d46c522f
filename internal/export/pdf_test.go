package export

import (
	"bytes"
	"errors"
	"image"
	"testing"
)

func snapshotSet(n, w, h int) []image.Image {
	out := make([]image.Image, n)
	for i := range out {
		out[i] = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	return out
}

func TestPDFFileName(t *testing.T) {
	if got := PDFFileName(samplePresentation()); got != "Q3_Sales_Review.pdf" {
		t.Fatalf("file name = %q", got)
	}
}

func TestWritePDFRequiresCompleteSnapshots(t *testing.T) {
	p := samplePresentation() // two slides

	var buf bytes.Buffer
	cases := [][]image.Image{
		nil,
		snapshotSet(1, 10, 10),
		{image.NewRGBA(image.Rect(0, 0, 10, 10)), nil},
	}
	for i, snaps := range cases {
		err := WritePDF(p, snaps, &buf)
		if !errors.Is(err, ErrSnapshotMissing) {
			t.Fatalf("case %d: expected ErrSnapshotMissing, got %v", i, err)
		}
	}
}

func TestWritePDFProducesDocument(t *testing.T) {
	p := samplePresentation()

	var buf bytes.Buffer
	if err := WritePDF(p, snapshotSet(2, 192, 108), &buf); err != nil {
		t.Fatalf("write pdf: %v", err)
	}

	out := buf.Bytes()
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output does not start with a PDF header")
	}
	// One page object per slide.
	if n := bytes.Count(out, []byte("/Type /Page")); n < 2 {
		t.Fatalf("page markers = %d, want at least 2", n)
	}
}

func TestWritePDFLandscapePageGeometry(t *testing.T) {
	p := samplePresentation()

	var buf bytes.Buffer
	if err := WritePDF(p, snapshotSet(2, 192, 108), &buf); err != nil {
		t.Fatalf("write pdf: %v", err)
	}

	// 192x108 snapshots at the fixed 3x upscale: pages must come out 576
	// wide by 324 tall, wider than tall.
	if !bytes.Contains(buf.Bytes(), []byte("/MediaBox [0 0 576.00 324.00]")) {
		t.Fatalf("page MediaBox is not 576x324 landscape")
	}
	if bytes.Contains(buf.Bytes(), []byte("/MediaBox [0 0 324.00 576.00]")) {
		t.Fatalf("portrait MediaBox present; page dimensions were swapped")
	}
}
