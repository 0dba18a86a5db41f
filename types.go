package emotion

import (
	"fmt"
	"image"
	"time"
)

// Tensor geometry expected by the classifier.
const (
	TensorBatch    = 1
	TensorChannels = 3
	TensorSize     = 64
	TensorLen      = TensorBatch * TensorChannels * TensorSize * TensorSize
)

// TensorShape is the NCHW input shape every InferenceEngine must declare.
var TensorShape = []int{TensorBatch, TensorChannels, TensorSize, TensorSize}

// Frame Captured color image. Owned by the loop for one tick only.
type Frame struct {
	Seq        uint64
	CapturedAt time.Time
	Image      *image.RGBA

	release func()
}

// NewFrame wraps img. release, when not nil, runs once on Release.
func NewFrame(seq uint64, img *image.RGBA, release func()) *Frame {
	return &Frame{Seq: seq, CapturedAt: time.Now(), Image: img, release: release}
}

// Width of the frame in pixels
func (f *Frame) Width() int { return f.Image.Rect.Dx() }

// Height of the frame in pixels
func (f *Frame) Height() int { return f.Image.Rect.Dy() }

// Empty reports whether the frame carries no pixels yet (stream warming up).
func (f *Frame) Empty() bool {
	return f == nil || f.Image == nil || f.Width() == 0 || f.Height() == 0
}

// Release hands the underlying buffer back to its owner. Safe to call twice.
func (f *Frame) Release() {
	if f == nil || f.release == nil {
		return
	}
	f.release()
	f.release = nil
}

// GrayFrame Single-channel copy of a Frame with the same extent
type GrayFrame struct {
	Image *image.Gray
}

// FaceRect Face candidate in frame pixel coordinates
type FaceRect struct {
	X, Y, Width, Height int
}

// RectFromImage converts an image.Rectangle into a FaceRect.
func RectFromImage(r image.Rectangle) FaceRect {
	return FaceRect{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Area returns width*height
func (r FaceRect) Area() int {
	return r.Width * r.Height
}

// Empty reports a degenerate rectangle.
func (r FaceRect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Image returns the rectangle as an image.Rectangle.
func (r FaceRect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

func (r FaceRect) String() string {
	return fmt.Sprintf("FaceRect{x: %d, y: %d, w: %d, h: %d}", r.X, r.Y, r.Width, r.Height)
}

// Tensor Planar NCHW float32 input for the classifier, values in [0, 1]
type Tensor struct {
	Data []float32
}

// ScoreVector Raw logits, one per label
type ScoreVector []float32

// Posterior Softmax of a ScoreVector
type Posterior []float64

// LabelSet Ordered label names; index i names score i
type LabelSet []string

// Decision Per-frame classification result
type Decision struct {
	Label      string    `json:"label"`
	Confidence float64   `json:"confidence"`
	Rect       FaceRect  `json:"rect"`
	Posterior  Posterior `json:"posterior,omitempty"`
	// Uncertain is set when Confidence is below the configured threshold.
	Uncertain bool `json:"uncertain,omitempty"`
}

// String returns a short human readable form of the decision.
func (d Decision) String() string {
	return fmt.Sprintf("Decision{label: %s, conf: %.5f, rect: %s}", d.Label, d.Confidence, d.Rect)
}

// ResultKind tells the presentation layer what a tick produced.
type ResultKind int

const (
	// ResultDecision a face was classified
	ResultDecision ResultKind = iota
	// ResultNoFace no face this tick; previous overlay is stale
	ResultNoFace
	// ResultError the tick failed; the session continues
	ResultError
)

func (k ResultKind) String() string {
	switch k {
	case ResultDecision:
		return "decision"
	case ResultNoFace:
		return "no_face"
	case ResultError:
		return "error"
	}
	return "unknown"
}

// TickResult is published exactly once per completed tick.
type TickResult struct {
	Seq      uint64
	At       time.Time
	Kind     ResultKind
	Decision Decision
	Err      error

	// Frame is only valid for the duration of Publish.
	Frame *Frame
}
