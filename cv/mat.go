// Package cv backs the pipeline with OpenCV through gocv: cascade face detection,
// dnn inference, capture devices and the MJPEG overlay preview.
package cv

import (
	"image"

	"github.com/genert/emotion"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// matToRGBA copies a BGR Mat into a Go image so the Mat can be closed right away.
func matToRGBA(bgr gocv.Mat) (*image.RGBA, error) {
	if bgr.Empty() {
		return nil, errors.New("empty mat")
	}
	rgba := gocv.NewMat()
	defer rgba.Close()
	gocv.CvtColor(bgr, &rgba, gocv.ColorBGRToRGBA)

	img := image.NewRGBA(image.Rect(0, 0, rgba.Cols(), rgba.Rows()))
	if n := copy(img.Pix, rgba.ToBytes()); n != len(img.Pix) {
		return nil, errors.Errorf("copied %d of %d bytes", n, len(img.Pix))
	}
	return img, nil
}

// ReadImage loads a still image as a frame, for one-shot classification.
func ReadImage(path string) (*emotion.Frame, error) {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	defer mat.Close()
	if mat.Empty() {
		return nil, errors.Errorf("Can't read image %s", path)
	}
	img, err := matToRGBA(mat)
	if err != nil {
		return nil, err
	}
	return emotion.NewFrame(0, img, nil), nil
}
