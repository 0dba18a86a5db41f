package facefinder

import (
	"image"
	"testing"

	pigo "github.com/esimov/pigo/core"
	"github.com/genert/emotion"
	"github.com/stretchr/testify/assert"
)

func TestToRects(t *testing.T) {
	dets := []pigo.Detection{
		{Row: 50, Col: 50, Scale: 40, Q: 9},
		{Row: 10, Col: 10, Scale: 40, Q: 7},   // clipped at the top left corner
		{Row: 60, Col: 60, Scale: 20, Q: 1},   // below quality threshold
		{Row: 500, Col: 500, Scale: 20, Q: 9}, // outside the frame
	}

	rects := toRects(dets, 5, 100, 100)
	assert.Equal(t, []emotion.FaceRect{
		{X: 30, Y: 30, Width: 40, Height: 40},
		{X: 0, Y: 0, Width: 30, Height: 30},
	}, rects)
}

func TestLocateAfterCloseIsNotReady(t *testing.T) {
	d := &Detector{}
	_, err := d.Locate(&emotion.GrayFrame{Image: image.NewGray(image.Rect(0, 0, 8, 8))})
	assert.ErrorIs(t, err, emotion.ErrNotReady)
}
