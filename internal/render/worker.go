package render

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/ironsheep/rawtone-mcp/internal/imaging"
	"github.com/ironsheep/rawtone-mcp/internal/logging"
)

// ErrClosed is returned by Request after Close.
var ErrClosed = errors.New("render worker closed")

// State is the worker's position in its render cycle.
type State int

const (
	// StateIdle means no render is running and no request is stored.
	StateIdle State = iota

	// StateRendering means a render is running and nothing newer is waiting.
	StateRendering

	// StateRenderingWithPendingUpdate means a render is running and a newer
	// request will start as soon as it finishes.
	StateRenderingWithPendingUpdate
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRendering:
		return "rendering"
	case StateRenderingWithPendingUpdate:
		return "rendering_with_pending_update"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Result is handed to a Sink after a render has been published.
type Result struct {
	// Seq increases by one for every published result.
	Seq uint64

	// Encoded holds the bytes written to Path.
	Encoded []byte

	// Path is the artifact the result was written to.
	Path string

	// IsOriginal marks the neutral-parameter render used for comparison.
	IsOriginal bool

	// Image is the rendered linear buffer.
	Image *imaging.ColorBuffer

	// Params are the adjustments the result was rendered with.
	Params imaging.Parameter
}

// Sink receives published results. It is called on the worker goroutine and
// must hand any UI or protocol work to its own synchronisation.
type Sink func(Result)

// Request asks for Source to be rendered with Params.
type Request struct {
	// Source is shared, never modified by the worker.
	Source *imaging.ColorBuffer

	// Params is a snapshot of the adjustments.
	Params imaging.Parameter

	// WantOriginal additionally publishes a neutral render after the
	// primary one, for before/after comparison.
	WantOriginal bool

	// Sink is invoked once per published result of this request.
	Sink Sink
}

// RenderFunc renders a source with a parameter set.
type RenderFunc func(src *imaging.ColorBuffer, p imaging.Parameter) (*imaging.ColorBuffer, error)

// Publisher turns a rendered buffer into a persisted artifact.
type Publisher interface {
	Publish(img *imaging.ColorBuffer, original bool) (path string, encoded []byte, err error)
}

// Option configures a Worker.
type Option func(*Worker)

// WithRenderFunc replaces imaging.Render as the pipeline.
func WithRenderFunc(fn RenderFunc) Option {
	return func(w *Worker) {
		w.render = fn
	}
}

// Worker renders requests on a single background goroutine.
//
// Requests are coalesced: the worker holds at most one waiting request, and a
// new one replaces it. While a render runs, any number of requests collapse
// into a single follow-up render of the newest. A render that finishes after
// a newer request has arrived is stale and is not published. Exactly one
// render runs at a time because artifact paths are shared.
//
// Request never waits for pixel work. Sinks are called from the worker
// goroutine.
type Worker struct {
	render    RenderFunc
	publisher Publisher

	mu      sync.Mutex
	cond    *sync.Cond
	pending *Request
	state   State
	closed  bool
	seq     uint64

	done chan struct{}
}

// NewWorker starts a worker that publishes through p.
// Call Close to stop it.
func NewWorker(p Publisher, opts ...Option) *Worker {
	w := &Worker{
		render:    imaging.Render,
		publisher: p,
		done:      make(chan struct{}),
	}
	w.cond = sync.NewCond(&w.mu)
	for _, opt := range opts {
		opt(w)
	}
	go w.run()
	return w
}

// Request stores req as the newest request and returns immediately.
func (w *Worker) Request(req Request) error {
	if req.Source == nil {
		return fmt.Errorf("render request: %w", imaging.ErrInvalidDimensions)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if prev := w.pending; prev != nil && prev.WantOriginal && prev.Source == req.Source {
		req.WantOriginal = true
	}
	w.pending = &req

	switch w.state {
	case StateIdle:
		w.state = StateRendering
	case StateRendering:
		w.state = StateRenderingWithPendingUpdate
	}
	w.cond.Signal()
	return nil
}

// State returns the current state.
func (w *Worker) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Close stops accepting requests, lets a stored request finish, and waits for
// the worker goroutine to exit.
func (w *Worker) Close() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		w.cond.Signal()
	}
	w.mu.Unlock()
	<-w.done
}

func (w *Worker) run() {
	defer close(w.done)

	w.mu.Lock()
	for {
		for w.pending == nil && !w.closed {
			w.state = StateIdle
			w.cond.Wait()
		}
		if w.pending == nil {
			w.state = StateIdle
			w.mu.Unlock()
			return
		}

		req := *w.pending
		w.pending = nil
		w.state = StateRendering
		w.mu.Unlock()

		w.process(req)

		w.mu.Lock()
	}
}

// process renders one request. The primary and the original render recover
// their own panics, so a bad primary frame never costs the comparison render.
func (w *Worker) process(req Request) {
	w.renderPrimary(req)
	if req.WantOriginal {
		w.renderOriginal(req)
	}
}

func recoverRender(kind string) {
	if r := recover(); r != nil {
		logging.Logger().Error("render panicked; frame dropped",
			"render", kind, "panic", r, "stack", string(debug.Stack()))
	}
}

func (w *Worker) renderPrimary(req Request) {
	defer recoverRender("primary")

	log := logging.Logger()
	start := time.Now()

	img, err := w.render(req.Source, req.Params)
	switch {
	case err != nil:
		log.Warn("render failed; frame dropped", "error", err)
	case w.superseded():
		log.Debug("render superseded; frame dropped", "elapsed", time.Since(start))
	default:
		w.publish(req, img, req.Params, false)
		log.Debug("render published", "elapsed", time.Since(start),
			"width", img.Width, "height", img.Height)
	}
}

func (w *Worker) renderOriginal(req Request) {
	defer recoverRender("original")

	var neutral imaging.Parameter
	orig, err := w.render(req.Source, neutral)
	if err != nil {
		logging.Logger().Warn("original render failed", "error", err)
		return
	}
	w.publish(req, orig, neutral, true)
}

func (w *Worker) superseded() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending != nil
}

func (w *Worker) publish(req Request, img *imaging.ColorBuffer, p imaging.Parameter, original bool) {
	path, encoded, err := w.publisher.Publish(img, original)
	if err != nil {
		logging.Logger().Warn("publish failed; no new preview", "original", original, "error", err)
		return
	}

	w.mu.Lock()
	w.seq++
	seq := w.seq
	w.mu.Unlock()

	if req.Sink != nil {
		req.Sink(Result{
			Seq:        seq,
			Encoded:    encoded,
			Path:       path,
			IsOriginal: original,
			Image:      img,
			Params:     p,
		})
	}
}
