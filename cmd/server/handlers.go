package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strings"

	"github.com/taqdimot/slide-generation-service/internal/deck"
	"github.com/taqdimot/slide-generation-service/internal/export"
	"github.com/taqdimot/slide-generation-service/internal/extract"
	"github.com/taqdimot/slide-generation-service/internal/generate"
	"github.com/taqdimot/slide-generation-service/internal/store"
)

const (
	pptxContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	pdfContentType  = "application/pdf"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	_, active := metrics.get()
	status := "healthy"
	code := http.StatusOK

	ratio := cfg.HealthDegradeRatio
	if ratio <= 0 || ratio > 1 {
		ratio = 0.9
	}

	if active >= int64(float64(cfg.MaxConcurrentRequests)*ratio) {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]any{
		"status":  status,
		"active":  active,
		"store":   st != nil,
		"version": "1.0.0",
	})
}

func handleMetrics(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	total, active := metrics.get()

	writeJSON(w, http.StatusOK, map[string]any{
		"activeRequests": active,
		"totalRequests":  total,
		"goroutines":     runtime.NumGoroutine(),
		"memAllocMB":     m.Alloc / (1 << 20),
		"memSysMB":       m.Sys / (1 << 20),
	})
}

// handleUpload runs the full pipeline: multipart intake, extraction,
// generation, session install. The response carries the deck plus the
// repair report so the caller can surface what was adjusted.
func handleUpload(w http.ResponseWriter, r *http.Request) {
	// Upload cap plus slack for the multipart framing itself.
	r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadBytes+(1<<20))

	file, header, err := r.FormFile("file")
	if err != nil {
		writeErr(w, http.StatusBadRequest, "bad_request", "multipart field \"file\" required")
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(r.Context(), cfg.UploadPipelineTimeout)
	defer cancel()

	pres, report, err := pipeline.Upload(ctx, file, header.Filename)
	if err != nil {
		writeUploadErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"presentation": pres,
		"report":       report,
	})
}

func writeUploadErr(w http.ResponseWriter, err error) {
	var parseErr *generate.ParseError
	switch {
	case errors.Is(err, extract.ErrUnsupportedFormat):
		writeErr(w, http.StatusBadRequest, "unsupported_format", err.Error())
	case errors.Is(err, extract.ErrEmptyContent):
		writeErr(w, http.StatusBadRequest, "empty_content", err.Error())
	case errors.As(err, &parseErr):
		writeErr(w, http.StatusBadGateway, "generation_failed", generate.UserRetryMessage)
	case errors.Is(err, context.DeadlineExceeded):
		writeErr(w, http.StatusGatewayTimeout, "timeout", "Processing took too long. Please try again.")
	default:
		writeErr(w, http.StatusInternalServerError, "internal_error", sanitizeError(err))
	}
}

func handlePresentation(w http.ResponseWriter, r *http.Request) {
	pres, ok := sess.Presentation()
	if !ok {
		writeErr(w, http.StatusNotFound, "no_presentation", deck.ErrNoPresentation.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"presentation": pres,
		"activeSlide":  sess.ActiveSlide(),
		"sourceFile":   sess.SourceFile(),
	})
}

func handleNavigate(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[struct {
		Index int `json:"index"`
	}](r, cfg.MaxJSONBodyBytes)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "bad_request", sanitizeError(err))
		return
	}

	if _, ok := sess.Presentation(); !ok {
		writeErr(w, http.StatusNotFound, "no_presentation", deck.ErrNoPresentation.Error())
		return
	}

	active := sess.Navigate(req.Index)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"activeSlide": active,
	})
}

type editRequest struct {
	Index   int    `json:"index"`
	Action  string `json:"action"`
	Title   string `json:"title,omitempty"`
	Line    int    `json:"line,omitempty"`
	Text    string `json:"text,omitempty"`
	Keyword string `json:"keyword,omitempty"`
}

func (req editRequest) toEdit() (deck.Edit, error) {
	switch req.Action {
	case "set_title":
		return deck.SetTitle{Title: req.Title}, nil
	case "set_bullet":
		return deck.SetBullet{Line: req.Line, Text: req.Text}, nil
	case "remove_bullet":
		return deck.RemoveBullet{Line: req.Line}, nil
	case "add_bullet":
		return deck.AddBullet{}, nil
	case "set_image_keyword":
		return deck.SetImageKeyword{Keyword: req.Keyword}, nil
	default:
		return nil, fmt.Errorf("unknown edit action %q", req.Action)
	}
}

func handleEdit(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[editRequest](r, cfg.MaxJSONBodyBytes)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "bad_request", sanitizeError(err))
		return
	}

	edit, err := req.toEdit()
	if err != nil {
		writeErr(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	slide, err := sess.ApplyEdit(req.Index, edit)
	if err != nil {
		if errors.Is(err, deck.ErrNoPresentation) {
			writeErr(w, http.StatusNotFound, "no_presentation", err.Error())
			return
		}
		writeErr(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"slide":   slide,
	})
}

// Exports buffer the full document before sending any bytes so a mid-export
// failure still produces a clean JSON error instead of a truncated download.

func handleExportPPTX(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), cfg.ExportTimeout)
	defer cancel()

	var buf bytes.Buffer
	name, err := pipeline.ExportPPTX(ctx, &buf)
	if err != nil {
		writeExportErr(w, err)
		return
	}

	sendAttachment(w, name, pptxContentType, buf.Bytes())
}

func handleExportPDF(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), cfg.ExportTimeout)
	defer cancel()

	var buf bytes.Buffer
	name, err := pipeline.ExportPDF(ctx, &buf)
	if err != nil {
		writeExportErr(w, err)
		return
	}

	sendAttachment(w, name, pdfContentType, buf.Bytes())
}

func writeExportErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, deck.ErrNoPresentation):
		writeErr(w, http.StatusNotFound, "no_presentation", err.Error())
	case errors.Is(err, export.ErrSnapshotMissing):
		writeErr(w, http.StatusConflict, "snapshots_missing", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeErr(w, http.StatusGatewayTimeout, "timeout", "Export took too long. Please try again.")
	default:
		writeErr(w, http.StatusInternalServerError, "export_failed", sanitizeError(err))
	}
}

func sendAttachment(w http.ResponseWriter, name, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		handleSettingsGet(w, r)
	case http.MethodPut:
		withAdminAuth(handleSettingsPut)(w, r)
	default:
		w.Header().Set("Allow", "GET, PUT")
		writeErr(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method must be GET or PUT")
	}
}

// handleSettingsGet never fails: a missing or broken store degrades to the
// branding defaults with a warning in the payload.
func handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	if st == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"settings": branding,
			"warning":  "settings store unavailable; defaults in effect",
		})
		return
	}

	settings, err := st.Settings()
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"settings": branding,
		})
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: read settings: %v\n", err)
		writeJSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"settings": branding,
			"warning":  "settings could not be read; defaults in effect",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"settings": settings,
	})
}

func handleSettingsPut(w http.ResponseWriter, r *http.Request) {
	if st == nil {
		writeErr(w, http.StatusServiceUnavailable, "store_unavailable", "settings store unavailable")
		return
	}

	settings, err := parseJSON[store.SiteSettings](r, cfg.MaxJSONBodyBytes)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "bad_request", sanitizeError(err))
		return
	}

	if err := st.SaveSettings(settings); err != nil {
		writeErr(w, http.StatusInternalServerError, "store_error", sanitizeError(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"settings": settings,
	})
}

func handleSettingsFields(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"fields":  store.SettingsFields,
	})
}

func handleHistory(w http.ResponseWriter, r *http.Request) {
	if st == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"history": []store.HistoryEntry{},
			"warning": "history store unavailable",
		})
		return
	}

	entries, err := st.History()
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "store_error", sanitizeError(err))
		return
	}
	if entries == nil {
		entries = []store.HistoryEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"history": entries,
	})
}

// handleHistoryItem serves /history/{id}: GET reads one record, DELETE
// removes it, and POST /history/{id}/load reinstalls the stored deck as the
// active session.
func handleHistoryItem(w http.ResponseWriter, r *http.Request) {
	if st == nil {
		writeErr(w, http.StatusServiceUnavailable, "store_unavailable", "history store unavailable")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/history/")
	id, isLoad := strings.CutSuffix(rest, "/load")
	if strings.TrimSpace(id) == "" || strings.Contains(id, "/") {
		writeErr(w, http.StatusNotFound, "not_found", "record not found")
		return
	}

	if isLoad {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", "POST")
			writeErr(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method must be POST")
			return
		}
		handleHistoryLoad(w, id)
		return
	}

	switch r.Method {
	case http.MethodGet:
		entry, err := st.HistoryByID(id)
		if errors.Is(err, store.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "not_found", "record not found")
			return
		}
		if err != nil {
			writeErr(w, http.StatusInternalServerError, "store_error", sanitizeError(err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"entry":   entry,
		})
	case http.MethodDelete:
		err := st.DeleteHistory(id)
		if errors.Is(err, store.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "not_found", "record not found")
			return
		}
		if err != nil {
			writeErr(w, http.StatusInternalServerError, "store_error", sanitizeError(err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	default:
		w.Header().Set("Allow", "GET, DELETE")
		writeErr(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method must be GET or DELETE")
	}
}

func handleHistoryLoad(w http.ResponseWriter, id string) {
	entry, err := st.HistoryByID(id)
	if errors.Is(err, store.ErrNotFound) {
		writeErr(w, http.StatusNotFound, "not_found", "record not found")
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "store_error", sanitizeError(err))
		return
	}

	sess.Load(entry.Data, entry.FileName)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"presentation": entry.Data,
		"activeSlide":  0,
	})
}
