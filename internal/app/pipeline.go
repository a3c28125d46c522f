// Package app orchestrates the document-to-slide-deck pipeline: upload ->
// extraction -> generation -> session state -> render -> export, with
// best-effort history persistence on the side.
package app

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/taqdimot/slide-generation-service/internal/deck"
	"github.com/taqdimot/slide-generation-service/internal/export"
	"github.com/taqdimot/slide-generation-service/internal/extract"
	"github.com/taqdimot/slide-generation-service/internal/generate"
	"github.com/taqdimot/slide-generation-service/internal/render"
	"github.com/taqdimot/slide-generation-service/internal/store"
)

// History is the slice of the store the pipeline needs. Nil-able: a missing
// store degrades to warnings, never failures.
type History interface {
	SaveHistory(p deck.Presentation, fileName string) (store.HistoryEntry, error)
}

type Pipeline struct {
	Router    *extract.Router
	Generator generate.Generator
	Session   *deck.Session
	Renderer  *render.Renderer
	PPTX      *export.PPTXWriter
	History   History
}

// Upload runs one full upload attempt. Extraction must complete before
// generation starts; generation must complete before the deck becomes
// navigable. Any failure aborts the attempt and resets in-progress state
// (the session was already cleared by BeginUpload). A concurrent newer
// upload wins: this result is discarded if the epoch moved on.
func (p *Pipeline) Upload(ctx context.Context, body io.Reader, fileName string) (deck.Presentation, generate.Report, error) {
	epoch := p.Session.BeginUpload()

	res, err := p.Router.Extract(ctx, body, fileName)
	if err != nil {
		return deck.Presentation{}, generate.Report{}, err
	}

	pres, report, err := p.Generator.Generate(ctx, res.Text, fileName)
	if err != nil {
		return deck.Presentation{}, generate.Report{}, err
	}

	if !p.Session.CompleteGeneration(epoch, pres, fileName) {
		return deck.Presentation{}, generate.Report{}, fmt.Errorf("upload superseded by a newer one")
	}

	if p.History != nil {
		if _, err := p.History.SaveHistory(pres, fileName); err != nil {
			log.Printf("warning: history save failed: %v", err)
		}
	}

	return pres, report, nil
}

// RenderAll performs the off-screen render of the full slide sequence,
// strictly sequential in slide order, caching each raster in the session.
func (p *Pipeline) RenderAll(ctx context.Context) error {
	pres, ok := p.Session.Presentation()
	if !ok {
		return deck.ErrNoPresentation
	}
	for i, s := range pres.Slides {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		img, err := p.Renderer.Render(ctx, s, i)
		if err != nil {
			return fmt.Errorf("render slide %d: %w", i+1, err)
		}
		p.Session.SetSnapshot(i, img)
	}
	return nil
}

// ExportPPTX serializes the current deck from data. Returns the download
// file name.
func (p *Pipeline) ExportPPTX(ctx context.Context, out io.Writer) (string, error) {
	pres, ok := p.Session.Presentation()
	if !ok {
		return "", deck.ErrNoPresentation
	}
	if err := p.PPTX.Write(ctx, pres, out); err != nil {
		return "", err
	}
	return export.PPTXFileName(pres), nil
}

// ExportPDF paginates the rendered snapshots. Slides that were never
// rendered are rendered first; a snapshot that still cannot be produced
// aborts the whole export.
func (p *Pipeline) ExportPDF(ctx context.Context, out io.Writer) (string, error) {
	pres, ok := p.Session.Presentation()
	if !ok {
		return "", deck.ErrNoPresentation
	}

	snapshots, ok := p.Session.Snapshots()
	if !ok {
		if err := p.RenderAll(ctx); err != nil {
			return "", err
		}
		snapshots, ok = p.Session.Snapshots()
		if !ok {
			return "", export.ErrSnapshotMissing
		}
	}

	if err := export.WritePDF(pres, snapshots, out); err != nil {
		return "", err
	}
	return export.PDFFileName(pres), nil
}
