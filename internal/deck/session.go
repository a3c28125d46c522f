package deck

import (
	"errors"
	"image"
	"sync"
)

var ErrNoPresentation = errors.New("no presentation loaded")

// Session is the single-owner, single-writer application state: the current
// presentation, the active slide index, and the rendered snapshots the PDF
// export consumes. All mutation goes through the named transitions below so
// the state machine stays enumerable. A new upload invalidates any in-flight
// result by overwriting, never merging: CompleteGeneration only lands if its
// epoch is still current.
type Session struct {
	mu sync.RWMutex

	epoch        uint64
	presentation *Presentation
	activeSlide  int
	sourceFile   string
	snapshots    map[int]image.Image
}

func NewSession() *Session {
	return &Session{snapshots: map[int]image.Image{}}
}

// BeginUpload marks a new upload attempt and clears the deck. The returned
// epoch must be handed back to CompleteGeneration.
func (s *Session) BeginUpload() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.presentation = nil
	s.activeSlide = 0
	s.sourceFile = ""
	s.snapshots = map[int]image.Image{}
	return s.epoch
}

// CompleteGeneration installs a freshly generated presentation. It is a no-op
// when a newer upload has started since epoch was issued.
func (s *Session) CompleteGeneration(epoch uint64, p Presentation, sourceFile string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return false
	}
	owned := p.Clone()
	s.presentation = &owned
	s.activeSlide = 0
	s.sourceFile = sourceFile
	s.snapshots = map[int]image.Image{}
	return true
}

// Load installs a presentation reloaded from history.
func (s *Session) Load(p Presentation, sourceFile string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	owned := p.Clone()
	s.presentation = &owned
	s.activeSlide = 0
	s.sourceFile = sourceFile
	s.snapshots = map[int]image.Image{}
}

// Presentation returns a copy of the current deck, or false when none is
// loaded.
func (s *Session) Presentation() (Presentation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.presentation == nil {
		return Presentation{}, false
	}
	return s.presentation.Clone(), true
}

func (s *Session) SourceFile() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sourceFile
}

func (s *Session) ActiveSlide() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeSlide
}

// Navigate moves the active slide to index. Out-of-range requests are no-ops;
// the active index stays clamped to [0, len-1].
func (s *Session) Navigate(index int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.presentation == nil {
		return 0
	}
	if index >= 0 && index < len(s.presentation.Slides) {
		s.activeSlide = index
	}
	return s.activeSlide
}

// ApplyEdit replaces the slide at index with the result of the edit. The
// replacement is transactional: on error nothing changes. The slide's cached
// snapshot is dropped since it no longer reflects the content.
func (s *Session) ApplyEdit(index int, e Edit) (Slide, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.presentation == nil {
		return Slide{}, ErrNoPresentation
	}
	if index < 0 || index >= len(s.presentation.Slides) {
		return Slide{}, errors.New("slide index out of range")
	}
	updated, err := e.Apply(s.presentation.Slides[index])
	if err != nil {
		return Slide{}, err
	}
	s.presentation.Slides[index] = updated
	delete(s.snapshots, index)
	return updated.Clone(), nil
}

// SetSnapshot caches the rendered raster for one slide.
func (s *Session) SetSnapshot(index int, img image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[index] = img
}

// Snapshots returns the rendered rasters in slide order. ok is false when any
// slide is missing; the PDF export treats that as a precondition violation.
func (s *Session) Snapshots() (imgs []image.Image, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.presentation == nil {
		return nil, false
	}
	imgs = make([]image.Image, len(s.presentation.Slides))
	for i := range s.presentation.Slides {
		img, found := s.snapshots[i]
		if !found {
			return nil, false
		}
		imgs[i] = img
	}
	return imgs, true
}
