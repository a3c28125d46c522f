package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/taqdimot/slide-generation-service/internal/deck"
)

// UserRetryMessage is surfaced with every ParseError so the caller can tell
// the user what to do next.
const UserRetryMessage = "AI analysis failed. Please upload the file again or choose a different file."

// ParseError means the generation service's response could not be turned into
// a valid presentation: transport failure, malformed JSON, or missing
// required fields. One upload attempt gets exactly one call; the error is
// terminal for that attempt.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("generation parse error: %s", e.Reason)
}

// Generator is the narrow boundary the pipeline depends on, so tests can
// substitute a deterministic stub for the remote model.
type Generator interface {
	Generate(ctx context.Context, text, sourceFileName string) (deck.Presentation, Report, error)
}

// Client calls the Gemini generateContent endpoint with a structured-output
// contract and parses the reply into a Presentation.
type Client struct {
	apiKey     string
	apiURL     string
	model      string
	timeout    time.Duration
	httpClient *http.Client
}

func NewClient(apiKey, apiURL, model string, timeout time.Duration) *Client {
	if strings.TrimSpace(apiURL) == "" {
		apiURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if strings.TrimSpace(model) == "" {
		model = "gemini-3-flash-preview"
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		apiKey:     apiKey,
		apiURL:     strings.TrimRight(apiURL, "/"),
		model:      model,
		timeout:    timeout,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig map[string]any  `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (c *Client) Generate(ctx context.Context, text, sourceFileName string) (deck.Presentation, Report, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return deck.Presentation{}, Report{}, &ParseError{Reason: "GEMINI_API_KEY not configured"}
	}

	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: buildPrompt(text, sourceFileName)}}}},
		GenerationConfig: map[string]any{
			"responseMimeType": "application/json",
			"responseSchema":   responseSchema(),
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return deck.Presentation{}, Report{}, &ParseError{Reason: "marshal request: " + err.Error()}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.apiURL, c.model)

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, "POST", url, bytes.NewReader(bodyBytes))
	if err != nil {
		return deck.Presentation{}, Report{}, &ParseError{Reason: "create request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("User-Agent", "slidegen/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return deck.Presentation{}, Report{}, &ParseError{Reason: "request: " + err.Error()}
	}
	defer resp.Body.Close()

	var gr geminiResponse
	dec := json.NewDecoder(io.LimitReader(resp.Body, 20<<20))
	if err := dec.Decode(&gr); err != nil {
		return deck.Presentation{}, Report{}, &ParseError{Reason: "decode: " + err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reason := gr.Error.Message
		if reason == "" {
			reason = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return deck.Presentation{}, Report{}, &ParseError{Reason: reason}
	}

	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return deck.Presentation{}, Report{}, &ParseError{Reason: "model returned no candidates"}
	}

	payload := gr.Candidates[0].Content.Parts[0].Text
	return ParsePresentation([]byte(payload))
}

// ParsePresentation decodes the model's JSON payload, checks the required
// fields, and runs the bounds repair pass.
func ParsePresentation(payload []byte) (deck.Presentation, Report, error) {
	var p deck.Presentation
	if err := json.Unmarshal(payload, &p); err != nil {
		return deck.Presentation{}, Report{}, &ParseError{Reason: "invalid JSON: " + err.Error()}
	}

	if strings.TrimSpace(p.Title) == "" {
		return deck.Presentation{}, Report{}, &ParseError{Reason: "missing required field: title"}
	}
	if len(p.Slides) == 0 {
		return deck.Presentation{}, Report{}, &ParseError{Reason: "missing required field: slides"}
	}
	for i, s := range p.Slides {
		switch {
		case strings.TrimSpace(s.Title) == "":
			return deck.Presentation{}, Report{}, &ParseError{Reason: fmt.Sprintf("slide %d: missing required field: title", i+1)}
		case s.Content == nil:
			return deck.Presentation{}, Report{}, &ParseError{Reason: fmt.Sprintf("slide %d: missing required field: content", i+1)}
		case strings.TrimSpace(string(s.Layout)) == "":
			return deck.Presentation{}, Report{}, &ParseError{Reason: fmt.Sprintf("slide %d: missing required field: layout", i+1)}
		case strings.TrimSpace(s.ImageKeyword) == "":
			return deck.Presentation{}, Report{}, &ParseError{Reason: fmt.Sprintf("slide %d: missing required field: imageKeyword", i+1)}
		}
	}

	report := validateRepair(&p)
	return p, report, nil
}
