package generate

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestBuildPromptTruncatesOnRunes(t *testing.T) {
	// Two-byte rune: byte-based truncation would halve the budget and could
	// split the final rune.
	content := strings.Repeat("ş", maxInputChars+500)
	prompt := buildPrompt(content, "hisobot.docx")

	if !utf8.ValidString(prompt) {
		t.Fatalf("prompt is not valid UTF-8")
	}
	if strings.ContainsRune(prompt, utf8.RuneError) {
		t.Fatalf("truncation split a rune at the boundary")
	}
	if got := strings.Count(prompt, "ş"); got != maxInputChars {
		t.Fatalf("kept %d content runes, want %d", got, maxInputChars)
	}
}

func TestBuildPromptKeepsShortInputIntact(t *testing.T) {
	content := "Savdo hajmi o'tgan yilga nisbatan 40% oshdi."
	prompt := buildPrompt(content, "report.xlsx")

	if !strings.Contains(prompt, content) {
		t.Fatalf("short content was altered")
	}
	if !strings.Contains(prompt, `"report.xlsx"`) {
		t.Fatalf("file name missing from prompt")
	}
}
