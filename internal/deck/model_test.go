package deck

import "testing"

func TestExportBaseName(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Q3 Sales Review", "Q3_Sales_Review"},
		{"  Annual   Report\t2025 ", "Annual_Report_2025"},
		{"Roadmap", "Roadmap"},
		{"", "presentation"},
		{"   ", "presentation"},
	}
	for _, tc := range cases {
		got := Presentation{Title: tc.title}.ExportBaseName()
		if got != tc.want {
			t.Fatalf("ExportBaseName(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}

func TestSlideCloneIsolatesContent(t *testing.T) {
	orig := Slide{ID: "a", Title: "One", Content: []string{"x", "y"}}
	cp := orig.Clone()
	cp.Content[0] = "changed"

	if orig.Content[0] != "x" {
		t.Fatalf("clone shares content backing array with original")
	}
}

func TestPresentationCloneIsolatesSlides(t *testing.T) {
	p := Presentation{
		Title:  "Deck",
		Slides: []Slide{{ID: "a", Content: []string{"x"}}},
	}
	cp := p.Clone()
	cp.Slides[0].Content[0] = "changed"
	cp.Slides[0].Title = "renamed"

	if p.Slides[0].Content[0] != "x" || p.Slides[0].Title != "" {
		t.Fatalf("clone mutated the original: %+v", p.Slides[0])
	}
}

func TestPrimaryKeyword(t *testing.T) {
	cases := []struct {
		keyword string
		want    string
	}{
		{"business, meeting, office", "business"},
		{"single", "single"},
		{"  spaced , terms", "spaced"},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range cases {
		got := Slide{ImageKeyword: tc.keyword}.PrimaryKeyword()
		if got != tc.want {
			t.Fatalf("PrimaryKeyword(%q) = %q, want %q", tc.keyword, got, tc.want)
		}
	}
}

func TestLayoutValid(t *testing.T) {
	for _, l := range []Layout{LayoutStandard, LayoutTitle, LayoutTwoColumn, LayoutBulletList, LayoutImageText} {
		if !l.Valid() {
			t.Fatalf("layout %q should be valid", l)
		}
	}
	if Layout("grid").Valid() {
		t.Fatalf("unknown layout accepted")
	}
}
