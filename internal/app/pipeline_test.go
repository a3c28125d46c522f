package app

import (
	"bytes"
	"context"
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/taqdimot/slide-generation-service/internal/deck"
	"github.com/taqdimot/slide-generation-service/internal/export"
	"github.com/taqdimot/slide-generation-service/internal/extract"
	"github.com/taqdimot/slide-generation-service/internal/generate"
	"github.com/taqdimot/slide-generation-service/internal/render"
	"github.com/taqdimot/slide-generation-service/internal/store"
)

type textExtractor struct {
	text string
}

func (e *textExtractor) Extract(ctx context.Context, job extract.Job) (extract.Result, error) {
	return extract.Result{Text: e.text, FileType: "document/docx"}, nil
}
func (e *textExtractor) SupportedTypes() []string      { return nil }
func (e *textExtractor) SupportedExtensions() []string { return []string{".docx"} }
func (e *textExtractor) Name() string                  { return "document/docx" }
func (e *textExtractor) MaxFileSize() int64            { return 0 }

type stubGenerator struct {
	calls int
	deck  deck.Presentation
	err   error
}

func (g *stubGenerator) Generate(ctx context.Context, text, sourceFileName string) (deck.Presentation, generate.Report, error) {
	g.calls++
	if g.err != nil {
		return deck.Presentation{}, generate.Report{}, g.err
	}
	return g.deck, generate.Report{SlideCount: len(g.deck.Slides)}, nil
}

type recordingHistory struct {
	saved []string
	err   error
}

func (h *recordingHistory) SaveHistory(p deck.Presentation, fileName string) (store.HistoryEntry, error) {
	if h.err != nil {
		return store.HistoryEntry{}, h.err
	}
	h.saved = append(h.saved, p.Title)
	return store.HistoryEntry{ID: "h1", Title: p.Title}, nil
}

type solidFetcher struct{}

func (solidFetcher) Fetch(ctx context.Context, locator string) (image.Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 36))
	for i := range img.Pix {
		img.Pix[i] = 0x40
	}
	return img, nil
}

func smallDeck() deck.Presentation {
	return deck.Presentation{
		Title: "Generated Deck",
		Slides: []deck.Slide{
			{ID: "a", Title: "One", Content: []string{"x"}, Layout: deck.LayoutBulletList, ImageKeyword: "office"},
			{ID: "b", Title: "Two", Content: []string{"y"}, Layout: deck.LayoutStandard, ImageKeyword: "city"},
		},
	}
}

func newTestPipeline(t *testing.T, gen *stubGenerator, hist History) *Pipeline {
	t.Helper()

	registry := extract.NewRegistry()
	registry.Register(&textExtractor{text: "Quarterly revenue grew in every region."})

	renderer, err := render.NewRenderer(solidFetcher{})
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	return &Pipeline{
		Router:    extract.NewRouter(registry, 1<<20),
		Generator: gen,
		Session:   deck.NewSession(),
		Renderer:  renderer,
		PPTX:      export.NewPPTXWriter(nil),
		History:   hist,
	}
}

func TestUploadHappyPath(t *testing.T) {
	gen := &stubGenerator{deck: smallDeck()}
	hist := &recordingHistory{}
	p := newTestPipeline(t, gen, hist)

	pres, report, err := p.Upload(context.Background(), strings.NewReader("body"), "q3.docx")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if pres.Title != "Generated Deck" || report.SlideCount != 2 {
		t.Fatalf("result: title=%q report=%+v", pres.Title, report)
	}

	got, ok := p.Session.Presentation()
	if !ok || got.Title != "Generated Deck" {
		t.Fatalf("session not populated")
	}
	if p.Session.SourceFile() != "q3.docx" {
		t.Fatalf("source file = %q", p.Session.SourceFile())
	}
	if len(hist.saved) != 1 || hist.saved[0] != "Generated Deck" {
		t.Fatalf("history saves = %v", hist.saved)
	}
}

func TestUploadUnsupportedFormatSkipsGeneration(t *testing.T) {
	gen := &stubGenerator{deck: smallDeck()}
	p := newTestPipeline(t, gen, nil)

	_, _, err := p.Upload(context.Background(), strings.NewReader("%PDF-1.4"), "report.pdf")
	if !errors.Is(err, extract.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if gen.calls != 0 {
		t.Fatalf("generator ran %d times for an unsupported upload", gen.calls)
	}
}

func TestUploadEmptyContentSkipsGeneration(t *testing.T) {
	gen := &stubGenerator{deck: smallDeck()}
	p := newTestPipeline(t, gen, nil)

	registry := extract.NewRegistry()
	registry.Register(&textExtractor{text: "   \n "})
	p.Router = extract.NewRouter(registry, 1<<20)

	_, _, err := p.Upload(context.Background(), strings.NewReader("body"), "blank.docx")
	if !errors.Is(err, extract.ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
	if gen.calls != 0 {
		t.Fatalf("generator ran on empty content")
	}
}

func TestUploadGenerationFailureLeavesSessionEmpty(t *testing.T) {
	gen := &stubGenerator{err: &generate.ParseError{Reason: "malformed payload"}}
	hist := &recordingHistory{}
	p := newTestPipeline(t, gen, hist)

	_, _, err := p.Upload(context.Background(), strings.NewReader("body"), "q3.docx")
	var pe *generate.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if _, ok := p.Session.Presentation(); ok {
		t.Fatalf("failed upload left a presentation behind")
	}
	if len(hist.saved) != 0 {
		t.Fatalf("failed upload was saved to history")
	}
}

func TestUploadHistoryFailureIsNotFatal(t *testing.T) {
	gen := &stubGenerator{deck: smallDeck()}
	hist := &recordingHistory{err: errors.New("disk full")}
	p := newTestPipeline(t, gen, hist)

	if _, _, err := p.Upload(context.Background(), strings.NewReader("body"), "q3.docx"); err != nil {
		t.Fatalf("history failure should be a warning, got %v", err)
	}
	if _, ok := p.Session.Presentation(); !ok {
		t.Fatalf("presentation missing after warned upload")
	}
}

func TestRenderAllCachesEverySlide(t *testing.T) {
	gen := &stubGenerator{deck: smallDeck()}
	p := newTestPipeline(t, gen, nil)

	if _, _, err := p.Upload(context.Background(), strings.NewReader("body"), "q3.docx"); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := p.RenderAll(context.Background()); err != nil {
		t.Fatalf("render all: %v", err)
	}

	snaps, ok := p.Session.Snapshots()
	if !ok || len(snaps) != 2 {
		t.Fatalf("snapshots = %d, ok=%v", len(snaps), ok)
	}
}

func TestExportPPTXWithoutPresentation(t *testing.T) {
	p := newTestPipeline(t, &stubGenerator{deck: smallDeck()}, nil)

	var buf bytes.Buffer
	if _, err := p.ExportPPTX(context.Background(), &buf); !errors.Is(err, deck.ErrNoPresentation) {
		t.Fatalf("expected ErrNoPresentation, got %v", err)
	}
}

func TestExportPDFRendersOnDemand(t *testing.T) {
	gen := &stubGenerator{deck: smallDeck()}
	p := newTestPipeline(t, gen, nil)

	if _, _, err := p.Upload(context.Background(), strings.NewReader("body"), "q3.docx"); err != nil {
		t.Fatalf("upload: %v", err)
	}

	var buf bytes.Buffer
	name, err := p.ExportPDF(context.Background(), &buf)
	if err != nil {
		t.Fatalf("export pdf: %v", err)
	}
	if name != "Generated_Deck.pdf" {
		t.Fatalf("file name = %q", name)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatalf("output is not a PDF document")
	}
}
