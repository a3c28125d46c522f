// Package render rasterizes one slide into a fixed 1920x1080 frame: resolved
// background, legibility overlay, index badge, title, bullet rows, primary
// keyword label and a zero-padded counter. The output is what the PDF export
// paginates, so it must stay visually consistent with the PPTX serializer's
// policy (same title, same bullet order, same background resolution).
package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
	"unicode"

	"github.com/fogleman/gg"
	"github.com/taqdimot/slide-generation-service/internal/deck"
	"github.com/taqdimot/slide-generation-service/internal/images"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

const (
	frameWidth  = images.RenderWidth
	frameHeight = images.RenderHeight
)

type Renderer struct {
	fetcher Fetcher

	badgeFace   font.Face
	titleFace   font.Face
	bulletFace  font.Face
	labelFace   font.Face
	counterFace font.Face
}

func NewRenderer(fetcher Fetcher) (*Renderer, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}

	face := func(f *opentype.Font, size float64) (font.Face, error) {
		return opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	}

	r := &Renderer{fetcher: fetcher}
	if r.badgeFace, err = face(bold, 28); err != nil {
		return nil, err
	}
	if r.titleFace, err = face(bold, 88); err != nil {
		return nil, err
	}
	if r.bulletFace, err = face(regular, 40); err != nil {
		return nil, err
	}
	if r.labelFace, err = face(bold, 26); err != nil {
		return nil, err
	}
	if r.counterFace, err = face(bold, 120); err != nil {
		return nil, err
	}
	return r, nil
}

// Render draws the slide at its deck position. Pure apart from the background
// fetch; a failed fetch falls back to the fixed fallback image, then to a
// solid fill. Background problems never surface as errors.
func (r *Renderer) Render(ctx context.Context, slide deck.Slide, index int) (image.Image, error) {
	dc := gg.NewContext(frameWidth, frameHeight)

	r.drawBackground(ctx, dc, slide, index)
	r.drawOverlay(dc)
	r.drawBadge(dc, index)
	r.drawTitle(dc, slide.Title)
	r.drawBullets(dc, slide.Content)
	r.drawFooter(dc, slide, index)

	return dc.Image(), nil
}

func (r *Renderer) drawBackground(ctx context.Context, dc *gg.Context, slide deck.Slide, index int) {
	locator := images.Resolve(slide, index)

	img, err := r.fetcher.Fetch(ctx, locator)
	if err != nil {
		img, err = r.fetcher.Fetch(ctx, images.FallbackImage)
	}
	if err != nil || img == nil {
		// slate-900
		dc.SetRGB255(0x1e, 0x29, 0x3b)
		dc.Clear()
		return
	}

	bounds := img.Bounds()
	iw, ih := float64(bounds.Dx()), float64(bounds.Dy())
	if iw == 0 || ih == 0 {
		dc.SetRGB255(0x1e, 0x29, 0x3b)
		dc.Clear()
		return
	}

	scale := math.Max(frameWidth/iw, frameHeight/ih)
	dx := (frameWidth - iw*scale) / 2
	dy := (frameHeight - ih*scale) / 2

	dc.Push()
	dc.Translate(dx, dy)
	dc.Scale(scale, scale)
	dc.DrawImage(img, 0, 0)
	dc.Pop()
}

// drawOverlay lays the multi-stop darkening gradients that keep white text
// readable over arbitrary photos.
func (r *Renderer) drawOverlay(dc *gg.Context) {
	horiz := gg.NewLinearGradient(0, 0, frameWidth, 0)
	horiz.AddColorStop(0, color.RGBA{A: 230})
	horiz.AddColorStop(0.5, color.RGBA{A: 102})
	horiz.AddColorStop(1, color.RGBA{})
	dc.SetFillStyle(horiz)
	dc.DrawRectangle(0, 0, frameWidth, frameHeight)
	dc.Fill()

	vert := gg.NewLinearGradient(0, frameHeight, 0, 0)
	vert.AddColorStop(0, color.RGBA{A: 204})
	vert.AddColorStop(0.5, color.RGBA{})
	vert.AddColorStop(1, color.RGBA{A: 51})
	dc.SetFillStyle(vert)
	dc.DrawRectangle(0, 0, frameWidth, frameHeight)
	dc.Fill()
}

func (r *Renderer) drawBadge(dc *gg.Context, index int) {
	label := fmt.Sprintf("SLIDE %d", index+1)

	dc.SetFontFace(r.badgeFace)
	w, h := dc.MeasureString(label)

	const x, y = 100.0, 90.0
	dc.SetRGBA255(0x4f, 0x46, 0xe5, 80)
	dc.DrawRoundedRectangle(x, y, w+50, h+30, 18)
	dc.Fill()

	dc.SetRGB255(0xe0, 0xe7, 0xff)
	dc.DrawString(label, x+25, y+h+8)
}

func (r *Renderer) drawTitle(dc *gg.Context, title string) {
	dc.SetFontFace(r.titleFace)

	const x, maxWidth = 100.0, 1300.0
	// Shadow pass first, then the text itself.
	dc.SetRGBA(0, 0, 0, 0.8)
	dc.DrawStringWrapped(title, x+4, 264, 0, 0, maxWidth, 1.1, gg.AlignLeft)
	dc.SetRGB(1, 1, 1)
	dc.DrawStringWrapped(title, x, 260, 0, 0, maxWidth, 1.1, gg.AlignLeft)
}

func (r *Renderer) drawBullets(dc *gg.Context, content []string) {
	dc.SetFontFace(r.bulletFace)

	const x, markerSize, maxWidth = 100.0, 22.0, 1200.0
	y := 520.0
	for _, line := range content {
		if y > frameHeight-220 {
			break
		}

		dc.SetRGB255(0x63, 0x66, 0xf1)
		dc.DrawRoundedRectangle(x, y-markerSize+4, markerSize, markerSize, 6)
		dc.Fill()

		wrapped := dc.WordWrap(line, maxWidth)
		dc.SetRGBA(1, 1, 1, 0.95)
		for _, part := range wrapped {
			dc.DrawString(part, x+markerSize+28, y)
			y += 54
		}
		y += 18
	}
}

func (r *Renderer) drawFooter(dc *gg.Context, slide deck.Slide, index int) {
	topic := slide.PrimaryKeyword()
	if topic == "" {
		topic = "Professional"
	}

	dc.SetFontFace(r.labelFace)
	dc.SetRGBA(1, 1, 1, 0.4)
	dc.DrawString("TOPIC", 100, frameHeight-130)
	dc.SetRGB255(0xa5, 0xb4, 0xfc)
	dc.DrawString(capitalize(topic), 100, frameHeight-90)

	counter := fmt.Sprintf("%02d", index+1)
	dc.SetFontFace(r.counterFace)
	cw, _ := dc.MeasureString(counter)
	dc.SetRGBA(1, 1, 1, 0.1)
	dc.DrawString(counter, frameWidth-100-cw, frameHeight-80)
}

func capitalize(s string) string {
	rs := []rune(strings.TrimSpace(s))
	if len(rs) == 0 {
		return s
	}
	rs[0] = unicode.ToUpper(rs[0])
	return string(rs)
}
