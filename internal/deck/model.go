package deck

import (
	"regexp"
	"strings"
)

// Layout hints come from the generation service. They are advisory (rendering
// and export treat every slide the same) but must survive a round trip
// through storage untouched.
type Layout string

const (
	LayoutStandard   Layout = "standard"
	LayoutTitle      Layout = "title"
	LayoutTwoColumn  Layout = "two-column"
	LayoutBulletList Layout = "bullet-list"
	LayoutImageText  Layout = "image-text"
)

func (l Layout) Valid() bool {
	switch l {
	case LayoutStandard, LayoutTitle, LayoutTwoColumn, LayoutBulletList, LayoutImageText:
		return true
	}
	return false
}

type Theme string

const (
	ThemeModern    Theme = "modern"
	ThemeCorporate Theme = "corporate"
	ThemeCreative  Theme = "creative"
	ThemeMinimal   Theme = "minimal"
)

func (t Theme) Valid() bool {
	switch t {
	case ThemeModern, ThemeCorporate, ThemeCreative, ThemeMinimal:
		return true
	}
	return false
}

// Slide is one screen of content. IDs are assigned once by the generation
// client and never reassigned afterwards.
type Slide struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Content      []string `json:"content"`
	Layout       Layout   `json:"layout"`
	Theme        Theme    `json:"theme,omitempty"`
	ImageKeyword string   `json:"imageKeyword,omitempty"`
	CustomImage  string   `json:"customImage,omitempty"`
	Footer       string   `json:"footer,omitempty"`
}

// Clone returns a deep copy. Slides are value types everywhere else in the
// pipeline; the content slice is the only shared backing store to break.
func (s Slide) Clone() Slide {
	out := s
	out.Content = append([]string(nil), s.Content...)
	return out
}

// PrimaryKeyword is the first comma-separated imageKeyword term, used as the
// slide's topic label.
func (s Slide) PrimaryKeyword() string {
	if strings.TrimSpace(s.ImageKeyword) == "" {
		return ""
	}
	first := strings.SplitN(s.ImageKeyword, ",", 2)[0]
	return strings.TrimSpace(first)
}

// Presentation owns its slide sequence exclusively. Slide order is the
// canonical navigation and export order.
type Presentation struct {
	Title     string  `json:"title"`
	Slides    []Slide `json:"slides"`
	MainTheme string  `json:"mainTheme,omitempty"`
}

func (p Presentation) Clone() Presentation {
	out := p
	out.Slides = make([]Slide, len(p.Slides))
	for i, s := range p.Slides {
		out.Slides[i] = s.Clone()
	}
	return out
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// ExportBaseName derives the download file name stem from the presentation
// title: whitespace runs become single underscores.
func (p Presentation) ExportBaseName() string {
	name := whitespaceRun.ReplaceAllString(strings.TrimSpace(p.Title), "_")
	if name == "" {
		name = "presentation"
	}
	return name
}
