package generate

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/taqdimot/slide-generation-service/internal/deck"
)

// Report records what the post-generation validation pass did. The slide and
// bullet bounds are an instruction to the model, not something it is
// guaranteed to honor; upper-bound violations are repaired, lower-bound
// violations flagged so the caller can decide whether to surface them.
type Report struct {
	SlideCount       int      `json:"slideCount"`
	DroppedSlides    int      `json:"droppedSlides,omitempty"`
	ClampedBullets   int      `json:"clampedBullets,omitempty"`
	ReassignedIDs    int      `json:"reassignedIds,omitempty"`
	BoundsViolations []string `json:"boundsViolations,omitempty"`
}

func validateRepair(p *deck.Presentation) Report {
	var r Report

	if len(p.Slides) > maxSlides {
		r.DroppedSlides = len(p.Slides) - maxSlides
		r.BoundsViolations = append(r.BoundsViolations,
			fmt.Sprintf("model returned %d slides, dropped %d past the limit of %d", len(p.Slides), r.DroppedSlides, maxSlides))
		p.Slides = p.Slides[:maxSlides]
	}
	if len(p.Slides) < minSlides {
		r.BoundsViolations = append(r.BoundsViolations,
			fmt.Sprintf("model returned %d slides, below the requested minimum of %d", len(p.Slides), minSlides))
	}

	seen := make(map[string]bool, len(p.Slides))
	for i := range p.Slides {
		s := &p.Slides[i]

		if len(s.Content) > maxBullets {
			r.ClampedBullets += len(s.Content) - maxBullets
			r.BoundsViolations = append(r.BoundsViolations,
				fmt.Sprintf("slide %d: %d bullets clamped to %d", i+1, len(s.Content), maxBullets))
			s.Content = s.Content[:maxBullets]
		}
		if len(s.Content) < minBullets {
			r.BoundsViolations = append(r.BoundsViolations,
				fmt.Sprintf("slide %d: %d bullets, below the requested minimum of %d", i+1, len(s.Content), minBullets))
		}

		// IDs are assigned here once and never reassigned afterwards. Blank
		// or colliding ids would break edit targeting downstream.
		id := strings.TrimSpace(s.ID)
		if id == "" || seen[id] {
			id = uuid.NewString()
			s.ID = id
			r.ReassignedIDs++
		}
		seen[id] = true

		if !s.Layout.Valid() {
			s.Layout = deck.LayoutBulletList
		}
		if s.Theme != "" && !s.Theme.Valid() {
			s.Theme = ""
		}
	}

	r.SlideCount = len(p.Slides)
	return r
}
