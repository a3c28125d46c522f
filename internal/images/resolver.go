// Package images maps a slide's descriptive keywords to a background-image
// locator. Resolution is pure: identical inputs always produce the identical
// locator string. The bytes behind a locator are an external service's
// concern and are not guaranteed stable over time.
package images

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/taqdimot/slide-generation-service/internal/deck"
)

// FallbackTerms is used when a slide carries no imageKeyword.
const FallbackTerms = "abstract,technology,modern"

// FallbackImage is the single fixed locator substituted when a resolved
// background fails to load. Terminal fallback, same constant for every slide.
const FallbackImage = "https://images.unsplash.com/photo-1557683316-973673baf926?auto=format&fit=crop&q=80"

const searchBase = "https://loremflickr.com/g"

// Render and export consume the same resolution policy at different sizes.
const (
	RenderWidth  = 1920
	RenderHeight = 1080
	ExportWidth  = 1280
	ExportHeight = 720
)

// Resolve returns the background locator for a slide at its position in the
// deck. A customImage overrides keyword resolution entirely. The positional
// salt (position+100) keeps two slides with identical keywords on visually
// distinct images; it is an anti-duplication measure, not a caching key.
func Resolve(slide deck.Slide, position int) string {
	return ResolveSized(slide, position, RenderWidth, RenderHeight)
}

func ResolveSized(slide deck.Slide, position, width, height int) string {
	if strings.TrimSpace(slide.CustomImage) != "" {
		return slide.CustomImage
	}

	terms := strings.TrimSpace(slide.ImageKeyword)
	if terms == "" {
		terms = FallbackTerms
	}

	return fmt.Sprintf("%s/%d/%d/%s?lock=%d", searchBase, width, height, encodeComponent(terms), position+100)
}

// encodeComponent matches encodeURIComponent: spaces become %20, commas %2C.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
