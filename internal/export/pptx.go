package export

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/taqdimot/slide-generation-service/internal/deck"
	"github.com/taqdimot/slide-generation-service/internal/images"
)

// Attribution is the fixed brand line stamped on the cover and every footer.
const Attribution = "AI Taqdimot Master"

// PPTX slide canvas in EMUs, 16:9.
const (
	slideCX = 12192000
	slideCY = 6858000
)

// coverFill is the solid slate used for the cover background and as the
// per-slide fallback when a background image cannot be fetched.
const coverFill = "1E293B"

// ImageFetcher pulls the raw bytes behind a background locator at packaging
// time. Injectable; a nil fetcher degrades every slide to the solid fill.
type ImageFetcher func(ctx context.Context, locator string) ([]byte, error)

// PPTXWriter serializes a Presentation into a slide-deck package: one cover
// unit, then one unit per slide built directly from data (it never consults
// the interactive renderer, but follows the same background-resolution
// policy so the two stay visually consistent).
type PPTXWriter struct {
	fetch ImageFetcher
}

func NewPPTXWriter(fetch ImageFetcher) *PPTXWriter {
	return &PPTXWriter{fetch: fetch}
}

// PPTXFileName derives the download name: underscored title plus extension.
func PPTXFileName(p deck.Presentation) string {
	return p.ExportBaseName() + ".pptx"
}

// Write emits the complete OOXML package. Background fetch failures degrade
// that one slide to a solid fill; they never abort the export.
func (w *PPTXWriter) Write(ctx context.Context, p deck.Presentation, out io.Writer) error {
	zw := zip.NewWriter(out)

	slideCount := len(p.Slides) + 1 // cover + content slides

	type media struct {
		name string
		data []byte
	}
	var mediaFiles []media

	// Background bytes per content slide; nil means solid-fill fallback.
	backgrounds := make([][]byte, len(p.Slides))
	if w.fetch != nil {
		for i, s := range p.Slides {
			locator := images.ResolveSized(s, i, images.ExportWidth, images.ExportHeight)
			b, err := w.fetch(ctx, locator)
			if err != nil {
				continue
			}
			backgrounds[i] = b
		}
	}

	parts := []struct {
		name string
		body string
	}{
		{"[Content_Types].xml", contentTypesXML(slideCount)},
		{"_rels/.rels", rootRelsXML},
		{"ppt/presentation.xml", presentationXML(slideCount)},
		{"ppt/_rels/presentation.xml.rels", presentationRelsXML(slideCount)},
		{"ppt/slideMasters/slideMaster1.xml", slideMasterXML},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", slideMasterRelsXML},
		{"ppt/slideLayouts/slideLayout1.xml", slideLayoutXML},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", slideLayoutRelsXML},
		{"ppt/theme/theme1.xml", themeXML},
	}

	// Cover slide is slide1; content slides follow in deck order.
	parts = append(parts,
		struct{ name, body string }{"ppt/slides/slide1.xml", coverSlideXML(p.Title)},
		struct{ name, body string }{"ppt/slides/_rels/slide1.xml.rels", slideRelsXML(0, false)},
	)
	for i, s := range p.Slides {
		num := i + 2
		hasImage := backgrounds[i] != nil
		parts = append(parts,
			struct{ name, body string }{fmt.Sprintf("ppt/slides/slide%d.xml", num), contentSlideXML(s, i, hasImage)},
			struct{ name, body string }{fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", num), slideRelsXML(num, hasImage)},
		)
		if hasImage {
			mediaFiles = append(mediaFiles, media{
				name: fmt.Sprintf("ppt/media/image%d.jpg", num),
				data: backgrounds[i],
			})
		}
	}

	for _, part := range parts {
		f, err := zw.Create(part.name)
		if err != nil {
			return fmt.Errorf("create %s: %w", part.name, err)
		}
		if _, err := f.Write([]byte(part.body)); err != nil {
			return fmt.Errorf("write %s: %w", part.name, err)
		}
	}

	for _, m := range mediaFiles {
		f, err := zw.Create(m.name)
		if err != nil {
			return fmt.Errorf("create %s: %w", m.name, err)
		}
		if _, err := f.Write(m.data); err != nil {
			return fmt.Errorf("write %s: %w", m.name, err)
		}
	}

	return zw.Close()
}

func escapeXML(s string) string {
	return xmlReplacer.Replace(s)
}

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)
