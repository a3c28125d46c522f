package generate

import (
	"fmt"
	"unicode/utf8"
)

// maxInputChars is the hard truncation boundary applied to extracted text
// before submission. Counted in runes, not bytes, so non-ASCII documents
// get the full budget. Not sentence-aware.
const maxInputChars = 20000

// Slide count and bullet count bounds are part of the instruction given to
// the model; validateRepair enforces the upper bounds mechanically and flags
// the rest.
const (
	minSlides  = 8
	maxSlides  = 15
	minBullets = 3
	maxBullets = 6
)

func buildPrompt(content, fileName string) string {
	if utf8.RuneCountInString(content) > maxInputChars {
		content = string([]rune(content)[:maxInputChars])
	}
	return fmt.Sprintf(`You are a world-class professional presentation designer. Analyze the content of the file "%s" and produce a visual presentation that matches it.

IMPORTANT: for every slide, provide very concrete, visually descriptive English keywords for choosing a background image, regardless of the language of the source text.
Examples:
- A slide about war: "historical battle field, cinematic explosion, military strategy"
- A slide about business: "modern glass office skyscraper, business handshake, global trade"
- A slide about nature: "lush green forest, majestic mountains, clean energy"

Rules:
1. Split the text into logical blocks and fill each slide with enriched content.
2. For each slide, write 3-4 concrete English keywords in "imageKeyword", comma-separated, that an image search service (Unsplash/Flickr) understands.
3. Produce between 8 and 15 slides.
4. Give each slide 3-6 detailed bullet points.

Return ONLY JSON in this exact shape:
{
  "title": "Presentation title",
  "mainTheme": "modern",
  "slides": [
    {
      "id": "1",
      "title": "Slide title",
      "content": ["Detail 1", "Detail 2", "Detail 3"],
      "layout": "bullet-list",
      "theme": "creative",
      "imageKeyword": "cinematic historical scene, epic battle atmosphere"
    }
  ]
}

Text:
%s`, fileName, content)
}

// responseSchema is the strict structured-output contract sent with every
// generation request. Field requirements mirror the slide/presentation
// shapes: id, title, content, layout, imageKeyword at the slide level;
// title, slides at the presentation level.
func responseSchema() map[string]any {
	return map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"title":     map[string]any{"type": "STRING"},
			"mainTheme": map[string]any{"type": "STRING"},
			"slides": map[string]any{
				"type": "ARRAY",
				"items": map[string]any{
					"type": "OBJECT",
					"properties": map[string]any{
						"id":    map[string]any{"type": "STRING"},
						"title": map[string]any{"type": "STRING"},
						"content": map[string]any{
							"type":  "ARRAY",
							"items": map[string]any{"type": "STRING"},
						},
						"layout":       map[string]any{"type": "STRING"},
						"theme":        map[string]any{"type": "STRING"},
						"imageKeyword": map[string]any{"type": "STRING"},
					},
					"required": []string{"id", "title", "content", "layout", "imageKeyword"},
				},
			},
		},
		"required": []string{"title", "slides"},
	}
}
