package server

import (
	"sync"

	"github.com/ironsheep/rawtone-mcp/internal/imaging"
	"github.com/ironsheep/rawtone-mcp/internal/render"
)

// session is the single editing context: the open image, its adjustments and
// the latest published renders. Handlers and the worker sink share it.
type session struct {
	mu sync.Mutex

	// gen increments whenever the source changes; results rendered for an
	// older generation are discarded.
	gen uint64

	id     int64 // library id, 0 when not in the library
	path   string
	source *imaging.ColorBuffer
	params imaging.Parameter

	preview  *render.Result
	original *render.Result
}

// snapshot is a consistent copy of the session for one request.
type snapshot struct {
	gen    uint64
	id     int64
	path   string
	source *imaging.ColorBuffer
	params imaging.Parameter
}

func newSession() *session {
	return &session{source: imaging.EmptyBuffer()}
}

func (s *session) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *session) snapshotLocked() snapshot {
	return snapshot{gen: s.gen, id: s.id, path: s.path, source: s.source, params: s.params}
}

// hasImage reports whether a source file is open.
func (s snapshot) hasImage() bool {
	return s.path != ""
}

// open replaces the source and drops previews of the previous one.
func (s *session) open(id int64, path string, src *imaging.ColorBuffer, p imaging.Parameter) snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.id, s.path, s.source, s.params = id, path, src, p
	s.preview, s.original = nil, nil
	return s.snapshotLocked()
}

// close falls back to the empty placeholder.
func (s *session) close() snapshot {
	return s.open(0, "", imaging.EmptyBuffer(), imaging.Parameter{})
}

// update applies fn to the parameters and returns the new state.
func (s *session) update(fn func(p *imaging.Parameter)) snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.params)
	s.params = s.params.Clamp()
	return s.snapshotLocked()
}

// store records a published result if it belongs to the current source.
func (s *session) store(gen uint64, r render.Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false
	}
	if r.IsOriginal {
		s.original = &r
	} else {
		s.preview = &r
	}
	return true
}

// latest returns the newest published result of the requested kind.
func (s *session) latest(original bool) *render.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if original {
		return s.original
	}
	return s.preview
}
