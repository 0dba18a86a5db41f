package emotion

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// FrameSource supplies the most recent camera frame.
type FrameSource interface {
	Start() error
	// CurrentFrame returns ErrFrameNotAvailable while the stream warms up.
	CurrentFrame() (*Frame, error)
	Stop() error
}

// Publisher receives one TickResult per completed tick.
// Publish must not call FrameLoop.Stop.
type Publisher interface {
	Publish(TickResult)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(TickResult)

// Publish implements Publisher.
func (f PublisherFunc) Publish(r TickResult) { f(r) }

// Publishers fans a result out to several publishers in order.
type Publishers []Publisher

// Publish implements Publisher.
func (ps Publishers) Publish(r TickResult) {
	for _, p := range ps {
		p.Publish(r)
	}
}

// State of the frame loop
type State int

const (
	StateIdle State = iota
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "idle"
}

// Stats Tick counters since the loop was created
type Stats struct {
	Ticks     uint64 `json:"ticks"`
	Decisions uint64 `json:"decisions"`
	NoFace    uint64 `json:"no_face"`
	Errors    uint64 `json:"errors"`
	Skipped   uint64 `json:"skipped"`
}

// FrameLoop drives the pipeline once per scheduler callback with at most one
// tick in flight. The next tick is scheduled only after the previous one ends.
type FrameLoop struct {
	source FrameSource
	sched  Scheduler
	pub    Publisher
	log    logrus.FieldLogger

	mu         sync.Mutex
	pipeline   *Pipeline
	status     string
	cancelTick func()
	cancelCtx  context.CancelFunc

	running atomic.Bool
	session atomic.Uint64

	// pubMu orders publication against Stop.
	pubMu sync.Mutex

	ticks, decisions, noFace, errs, skipped atomic.Uint64
}

// NewFrameLoop builds an idle loop. The pipeline is attached later with SetPipeline.
func NewFrameLoop(source FrameSource, sched Scheduler, pub Publisher, log logrus.FieldLogger) *FrameLoop {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &FrameLoop{
		source: source,
		sched:  sched,
		pub:    pub,
		log:    log,
		status: "loading",
	}
}

// SetPipeline marks the loop ready once every asset is loaded.
func (l *FrameLoop) SetPipeline(p *Pipeline) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pipeline = p
	if !l.running.Load() {
		l.status = "ready"
	}
}

// SetStatus records a human readable status, e.g. asset loading progress or failure.
func (l *FrameLoop) SetStatus(status string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.status = status
}

// Status returns the status string shown to the user.
func (l *FrameLoop) Status() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// State returns Idle or Running.
func (l *FrameLoop) State() State {
	if l.running.Load() {
		return StateRunning
	}
	return StateIdle
}

// Stats returns a snapshot of tick counters.
func (l *FrameLoop) Stats() Stats {
	return Stats{
		Ticks:     l.ticks.Load(),
		Decisions: l.decisions.Load(),
		NoFace:    l.noFace.Load(),
		Errors:    l.errs.Load(),
		Skipped:   l.skipped.Load(),
	}
}

// Start moves Idle -> Running. It is refused with ErrNotReady until a pipeline is set.
func (l *FrameLoop) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running.Load() {
		return ErrAlreadyRunning
	}
	if l.pipeline == nil {
		return errors.Wrap(ErrNotReady, l.status)
	}
	if err := l.source.Start(); err != nil {
		l.status = fmt.Sprintf("cannot open frame source: %s", err)
		return errors.Wrap(err, "start frame source")
	}

	ctx, cancel := context.WithCancel(context.Background())
	session := l.session.Add(1)
	p := l.pipeline
	l.cancelCtx = cancel
	l.running.Store(true)
	l.status = "running"
	l.cancelTick = l.sched.Schedule(func() { l.tick(ctx, session, p) })

	l.log.WithField("session", session).Info("frame loop started")
	return nil
}

// Stop moves Running -> Idle. A tick already in flight may finish its pipeline
// calls but publishes nothing and schedules no successor once Stop returns.
func (l *FrameLoop) Stop() error {
	l.mu.Lock()
	if !l.running.Load() {
		l.mu.Unlock()
		return nil
	}
	l.running.Store(false)
	l.cancelTick()
	l.cancelCtx()
	l.cancelTick, l.cancelCtx = nil, nil
	l.status = "stopped"
	l.mu.Unlock()

	// Wait out a publication that passed its check before the flag flipped.
	l.pubMu.Lock()
	l.pubMu.Unlock()

	l.log.WithField("session", l.session.Load()).Info("frame loop stopped")
	return errors.Wrap(l.source.Stop(), "stop frame source")
}

func (l *FrameLoop) active(session uint64) bool {
	return l.running.Load() && l.session.Load() == session
}

func (l *FrameLoop) tick(ctx context.Context, session uint64, p *Pipeline) {
	if !l.active(session) {
		return
	}
	l.runTick(ctx, session, p)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active(session) {
		l.cancelTick = l.sched.Schedule(func() { l.tick(ctx, session, p) })
	}
}

func (l *FrameLoop) runTick(ctx context.Context, session uint64, p *Pipeline) {
	frame, err := l.source.CurrentFrame()
	if IsFrameNotAvailable(err) || (err == nil && frame.Empty()) {
		frame.Release()
		l.skipped.Add(1)
		return
	}

	seq := l.ticks.Add(1)
	log := l.log.WithField("seq", seq)
	result := TickResult{Seq: seq, At: time.Now(), Kind: ResultError}
	if err != nil {
		result.Err = errors.Wrap(err, "read frame")
		l.finish(session, result, log)
		return
	}

	sc := &tickScratch{frame: frame}
	defer sc.Close()
	result.Frame = frame

	decision, found, err := l.process(ctx, session, p, sc)
	switch {
	case err != nil:
		result.Err = err
	case found:
		result.Kind = ResultDecision
		result.Decision = decision
	default:
		result.Kind = ResultNoFace
	}
	l.finish(session, result, log)
}

// process converts a panic from a native adapter into a tick error.
func (l *FrameLoop) process(ctx context.Context, session uint64, p *Pipeline, sc *tickScratch) (d Decision, found bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			d, found, err = Decision{}, false, errors.Errorf("tick panicked: %v", r)
		}
	}()
	return p.process(ctx, sc, func() bool { return l.active(session) })
}

func (l *FrameLoop) finish(session uint64, result TickResult, log logrus.FieldLogger) {
	switch result.Kind {
	case ResultDecision:
		l.decisions.Add(1)
		log.WithFields(logrus.Fields{
			"label":      result.Decision.Label,
			"confidence": result.Decision.Confidence,
		}).Debug("face classified")
	case ResultNoFace:
		l.noFace.Add(1)
	case ResultError:
		l.errs.Add(1)
		if !l.active(session) {
			log.WithError(result.Err).Debug("tick abandoned after stop")
			return
		}
		log.WithError(result.Err).Warn("tick failed")
	}
	l.publish(session, result)
}

func (l *FrameLoop) publish(session uint64, result TickResult) {
	l.pubMu.Lock()
	defer l.pubMu.Unlock()
	if !l.active(session) || l.pub == nil {
		return
	}
	l.pub.Publish(result)
}
