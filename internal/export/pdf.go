package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/taqdimot/slide-generation-service/internal/deck"
)

// ErrSnapshotMissing is the hard precondition failure: the paginated export
// consumes already-rendered slide rasters; if any slide has none, the whole
// export aborts rather than degrading.
var ErrSnapshotMissing = errors.New("rendered slide snapshots missing; render the deck before exporting to PDF")

// jpegQuality matches the interactive export's 0.95 rasterization quality.
const jpegQuality = 95

// pdfScale is the fixed upscale factor applied to the page size so exported
// text stays crisp when zoomed.
const pdfScale = 3

// PDFFileName derives the download name: underscored title plus extension.
func PDFFileName(p deck.Presentation) string {
	return p.ExportBaseName() + ".pdf"
}

// WritePDF paginates the rendered snapshots into a fixed-size landscape
// document, one page per slide in deck order, strictly sequential because
// each page accumulates into the same document. snapshots must be complete
// and ordered; Session.Snapshots enforces that.
func WritePDF(p deck.Presentation, snapshots []image.Image, out io.Writer) error {
	if len(snapshots) == 0 || len(snapshots) != len(p.Slides) {
		return ErrSnapshotMissing
	}
	for _, img := range snapshots {
		if img == nil {
			return ErrSnapshotMissing
		}
	}

	first := snapshots[0].Bounds()
	pageW := float64(first.Dx() * pdfScale)
	pageH := float64(first.Dy() * pdfScale)

	// SizeType is portrait-convention: the landscape orientation swaps the
	// two, so the wide dimension goes in as Ht.
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "L",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: pageH, Ht: pageW},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	for i, img := range snapshots {
		// First slide lands on the initial page; every later slide opens a
		// new one before being placed.
		pdf.AddPage()

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return fmt.Errorf("encode slide %d: %w", i+1, err)
		}

		name := fmt.Sprintf("slide-%d", i+1)
		pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "JPG"}, &buf)
		pdf.ImageOptions(name, 0, 0, pageW, pageH, false, fpdf.ImageOptions{ImageType: "JPG"}, 0, "")
	}

	if err := pdf.Output(out); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
