package emotion

import (
	"context"
	"reflect"

	"github.com/pkg/errors"
)

// FaceDetector proposes face rectangles in a grayscale frame.
type FaceDetector interface {
	// Locate returns candidates inside the frame bounds, in no particular order.
	// It fails with ErrNotReady while the cascade is not loaded.
	Locate(gray *GrayFrame) ([]FaceRect, error)
	Close() error
}

// InferenceEngine runs the classifier forward pass.
type InferenceEngine interface {
	// InputShape is the declared model input, expected to be TensorShape.
	InputShape() []int
	// OutputLen is the number of logits produced per inference.
	OutputLen() int
	// Infer returns raw logits in label order.
	Infer(ctx context.Context, t *Tensor) (ScoreVector, error)
	Close() error
}

// Pipeline Owns the loaded model handles. Immutable after NewPipeline.
type Pipeline struct {
	detector   FaceDetector
	engine     InferenceEngine
	labels     LabelSet
	normalizer *RegionNormalizer
	decider    DecisionEngine
}

// NewPipeline validates the assets against each other. Missing assets yield
// ErrNotReady, mismatching ones a ConfigurationError.
func NewPipeline(detector FaceDetector, engine InferenceEngine, labels LabelSet, decider DecisionEngine) (*Pipeline, error) {
	if detector == nil {
		return nil, errors.Wrap(ErrNotReady, "face detector not loaded")
	}
	if engine == nil {
		return nil, errors.Wrap(ErrNotReady, "classifier model not loaded")
	}
	if len(labels) == 0 {
		return nil, errors.Wrap(ErrNotReady, "label set not loaded")
	}
	if shape := engine.InputShape(); !reflect.DeepEqual(shape, TensorShape) {
		return nil, configErrorf("model input shape %v, expected %v", shape, TensorShape)
	}
	if n := engine.OutputLen(); n != len(labels) {
		return nil, configErrorf("model produces %d scores but %d labels are configured", n, len(labels))
	}
	return &Pipeline{
		detector:   detector,
		engine:     engine,
		labels:     labels,
		normalizer: NewRegionNormalizer(),
		decider:    decider,
	}, nil
}

// Labels returns the label set shared by every decision.
func (p *Pipeline) Labels() LabelSet {
	return p.labels
}

// stage is called between pipeline steps; returning false abandons the tick.
type stage func() bool

// process runs detect -> select -> normalize -> infer -> decide on one frame.
// found is false when no face was detected. Buffers are parked on sc.
func (p *Pipeline) process(ctx context.Context, sc *tickScratch, proceed stage) (decision Decision, found bool, err error) {
	sc.gray = ToGray(sc.frame)
	sc.faces, err = p.detector.Locate(sc.gray)
	if err != nil {
		return Decision{}, false, errors.Wrap(err, "face detection failed")
	}
	selected, ok := SelectLargest(sc.faces)
	if !ok {
		return Decision{}, false, nil
	}
	if !proceed() {
		return Decision{}, false, context.Canceled
	}
	sc.tensor, err = p.normalizer.Normalize(sc.frame, selected)
	if err != nil {
		return Decision{}, false, errors.Wrap(err, "normalize face")
	}
	scores, err := p.engine.Infer(ctx, sc.tensor)
	if err != nil {
		return Decision{}, false, errors.Wrap(err, "inference failed")
	}
	decision, err = p.decider.Decide(scores, p.labels, selected)
	if err != nil {
		return Decision{}, false, errors.Wrap(err, "decide")
	}
	return decision, true, nil
}

// Classify runs the full pipeline on a single frame outside of a loop.
// The frame is released before returning.
func (p *Pipeline) Classify(ctx context.Context, frame *Frame) (Decision, bool, error) {
	sc := &tickScratch{frame: frame}
	defer sc.Close()
	if frame.Empty() {
		return Decision{}, false, ErrFrameNotAvailable
	}
	return p.process(ctx, sc, func() bool { return ctx.Err() == nil })
}

// Close releases the detector and model handles.
func (p *Pipeline) Close() error {
	errDet := p.detector.Close()
	errEng := p.engine.Close()
	if errDet != nil {
		return errors.Wrap(errDet, "close detector")
	}
	return errors.Wrap(errEng, "close engine")
}
