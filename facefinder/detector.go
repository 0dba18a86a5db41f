// Package facefinder is a pure Go face detector built on pigo, for builds
// without OpenCV.
package facefinder

import (
	"image"
	"os"
	"sync"

	pigo "github.com/esimov/pigo/core"
	"github.com/genert/emotion"
	"github.com/pkg/errors"
)

// Params tune the pigo cascade scan.
type Params struct {
	MinSize      int
	MaxSize      int // 0 means the shorter frame side
	ShiftFactor  float64
	ScaleFactor  float64
	IoUThreshold float64
	MinQuality   float32
}

// Detector pigo face finder
type Detector struct {
	mu         sync.Mutex
	classifier *pigo.Pigo
	params     Params
}

// Load unpacks a pigo cascade file (e.g. "facefinder").
func Load(cascadeFile string, params Params) (*Detector, error) {
	content, err := os.ReadFile(cascadeFile)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read cascade file")
	}
	return New(content, params)
}

// New unpacks a cascade held in memory.
func New(cascade []byte, params Params) (*Detector, error) {
	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, errors.Wrap(err, "Can't unpack cascade")
	}
	return &Detector{classifier: classifier, params: params}, nil
}

// Locate implements emotion.FaceDetector.
func (d *Detector) Locate(gray *emotion.GrayFrame) ([]emotion.FaceRect, error) {
	d.mu.Lock()
	classifier := d.classifier
	d.mu.Unlock()
	if classifier == nil {
		return nil, emotion.ErrNotReady
	}

	img := gray.Image
	cols, rows := img.Rect.Dx(), img.Rect.Dy()
	maxSize := d.params.MaxSize
	if maxSize <= 0 {
		maxSize = cols
		if rows < maxSize {
			maxSize = rows
		}
	}

	dets := classifier.RunCascade(pigo.CascadeParams{
		MinSize:     d.params.MinSize,
		MaxSize:     maxSize,
		ShiftFactor: d.params.ShiftFactor,
		ScaleFactor: d.params.ScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: img.Pix,
			Rows:   rows,
			Cols:   cols,
			Dim:    img.Stride,
		},
	}, 0.0)
	dets = classifier.ClusterDetections(dets, d.params.IoUThreshold)
	return toRects(dets, d.params.MinQuality, cols, rows), nil
}

// toRects converts centre/scale detections to clamped rectangles.
func toRects(dets []pigo.Detection, minQuality float32, cols, rows int) []emotion.FaceRect {
	rects := make([]image.Rectangle, 0, len(dets))
	for _, det := range dets {
		if det.Q < minQuality {
			continue
		}
		half := det.Scale / 2
		rects = append(rects, image.Rect(det.Col-half, det.Row-half, det.Col+half, det.Row+half))
	}
	return emotion.ClampRects(rects, cols, rows)
}

// Close drops the classifier.
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.classifier = nil
	return nil
}
