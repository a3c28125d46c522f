package deck

import "fmt"

// Edit is an immutable description of one in-place change to a slide. The
// renderer (or the HTTP surface standing in for it) emits edits; the session
// owner applies them transactionally as "slide replaced at index i" events.
// Apply never mutates its input.
type Edit interface {
	Apply(s Slide) (Slide, error)
}

type SetTitle struct {
	Title string
}

func (e SetTitle) Apply(s Slide) (Slide, error) {
	out := s.Clone()
	out.Title = e.Title
	return out, nil
}

type SetBullet struct {
	Line int
	Text string
}

func (e SetBullet) Apply(s Slide) (Slide, error) {
	if e.Line < 0 || e.Line >= len(s.Content) {
		return s, fmt.Errorf("bullet %d out of range (slide has %d)", e.Line, len(s.Content))
	}
	out := s.Clone()
	out.Content[e.Line] = e.Text
	return out, nil
}

type RemoveBullet struct {
	Line int
}

func (e RemoveBullet) Apply(s Slide) (Slide, error) {
	if e.Line < 0 || e.Line >= len(s.Content) {
		return s, fmt.Errorf("bullet %d out of range (slide has %d)", e.Line, len(s.Content))
	}
	out := s.Clone()
	out.Content = append(out.Content[:e.Line], out.Content[e.Line+1:]...)
	return out, nil
}

// AddBullet appends an empty line the user can then type into.
type AddBullet struct{}

func (e AddBullet) Apply(s Slide) (Slide, error) {
	out := s.Clone()
	out.Content = append(out.Content, "")
	return out, nil
}

type SetImageKeyword struct {
	Keyword string
}

func (e SetImageKeyword) Apply(s Slide) (Slide, error) {
	out := s.Clone()
	out.ImageKeyword = e.Keyword
	return out, nil
}
