package emotion

import (
	"context"
	"image"
	"image/color"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

func solidFrame(w, h int, c color.RGBA) *Frame {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return NewFrame(1, img, nil)
}

type fakeDetector struct {
	locate func(*GrayFrame) ([]FaceRect, error)
	calls  atomic.Int32
}

func (d *fakeDetector) Locate(g *GrayFrame) ([]FaceRect, error) {
	d.calls.Add(1)
	return d.locate(g)
}

func (d *fakeDetector) Close() error { return nil }

func detectorReturning(rects ...FaceRect) *fakeDetector {
	return &fakeDetector{locate: func(*GrayFrame) ([]FaceRect, error) { return rects, nil }}
}

type fakeEngine struct {
	shape  []int
	outLen int
	infer  func(context.Context, *Tensor) (ScoreVector, error)
	calls  atomic.Int32
}

func engineReturning(scores ScoreVector) *fakeEngine {
	return &fakeEngine{
		shape:  TensorShape,
		outLen: len(scores),
		infer: func(context.Context, *Tensor) (ScoreVector, error) {
			return append(ScoreVector(nil), scores...), nil
		},
	}
}

func (e *fakeEngine) InputShape() []int { return e.shape }
func (e *fakeEngine) OutputLen() int    { return e.outLen }
func (e *fakeEngine) Close() error      { return nil }

func (e *fakeEngine) Infer(ctx context.Context, t *Tensor) (ScoreVector, error) {
	e.calls.Add(1)
	if len(t.Data) != TensorLen {
		return nil, errors.New("bad tensor")
	}
	return e.infer(ctx, t)
}

type fakeSource struct {
	mu       sync.Mutex
	frame    func() (*Frame, error)
	startErr error
	starts   int
	stops    int
	released atomic.Int32
}

func sourceOf(w, h int) *fakeSource {
	s := &fakeSource{}
	s.frame = func() (*Frame, error) {
		f := solidFrame(w, h, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		f.release = func() { s.released.Add(1) }
		return f, nil
	}
	return s
}

func (s *fakeSource) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.starts++
	return s.startErr
}

func (s *fakeSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops++
	return nil
}

func (s *fakeSource) CurrentFrame() (*Frame, error) { return s.frame() }

// manualScheduler stands in for the display clock: callbacks run only on Step.
type manualScheduler struct {
	mu      sync.Mutex
	pending []*scheduled
}

type scheduled struct {
	fn        func()
	cancelled atomic.Bool
}

func (s *manualScheduler) Schedule(fn func()) func() {
	task := &scheduled{fn: fn}
	s.mu.Lock()
	s.pending = append(s.pending, task)
	s.mu.Unlock()
	return func() { task.cancelled.Store(true) }
}

// Step fires the oldest pending callback and reports whether one ran.
func (s *manualScheduler) Step() bool {
	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.mu.Unlock()
			return false
		}
		task := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()
		if task.cancelled.Load() {
			continue
		}
		task.fn()
		return true
	}
}

// Pending counts callbacks that are scheduled and not cancelled.
func (s *manualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, task := range s.pending {
		if !task.cancelled.Load() {
			n++
		}
	}
	return n
}

type recorder struct {
	mu      sync.Mutex
	results []TickResult
}

func (r *recorder) Publish(res TickResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res.Frame = nil
	r.results = append(r.results, res)
}

func (r *recorder) all() []TickResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]TickResult(nil), r.results...)
}
