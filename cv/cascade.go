package cv

import (
	"image"
	"sync"

	"github.com/genert/emotion"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// CascadeDetector Haar cascade face detector
type CascadeDetector struct {
	mu           sync.Mutex
	classifier   gocv.CascadeClassifier
	loaded       bool
	scaleFactor  float64
	minNeighbors int
}

// NewCascadeDetector loads a cascade XML such as haarcascade_frontalface_default.xml.
// Detection runs with no min/max face size.
func NewCascadeDetector(cascadeFile string, scaleFactor float64, minNeighbors int) (*CascadeDetector, error) {
	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(cascadeFile) {
		classifier.Close()
		return nil, errors.Errorf("Can't load cascade classifier %s", cascadeFile)
	}
	return &CascadeDetector{
		classifier:   classifier,
		loaded:       true,
		scaleFactor:  scaleFactor,
		minNeighbors: minNeighbors,
	}, nil
}

// Locate implements emotion.FaceDetector.
func (d *CascadeDetector) Locate(gray *emotion.GrayFrame) ([]emotion.FaceRect, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.loaded {
		return nil, emotion.ErrNotReady
	}

	mat, err := gocv.ImageGrayToMatGray(gray.Image)
	if err != nil {
		return nil, errors.Wrap(err, "Can't convert gray frame")
	}
	defer mat.Close()

	rects := d.classifier.DetectMultiScaleWithParams(mat, d.scaleFactor, d.minNeighbors, 0, image.Point{}, image.Point{})
	return emotion.ClampRects(rects, mat.Cols(), mat.Rows()), nil
}

// Close Free memory of the classifier
func (d *CascadeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.loaded {
		return nil
	}
	d.loaded = false
	return d.classifier.Close()
}
