package emotion

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectLargest(t *testing.T) {
	small := FaceRect{X: 0, Y: 0, Width: 10, Height: 10}
	big := FaceRect{X: 50, Y: 50, Width: 40, Height: 30}
	sameArea := FaceRect{X: 5, Y: 5, Width: 30, Height: 40}

	tests := []struct {
		name       string
		candidates []FaceRect
		want       FaceRect
		wantOK     bool
	}{
		{name: "empty", candidates: nil, wantOK: false},
		{name: "single", candidates: []FaceRect{small}, want: small, wantOK: true},
		{name: "larger first", candidates: []FaceRect{big, small}, want: big, wantOK: true},
		{name: "larger last", candidates: []FaceRect{small, big}, want: big, wantOK: true},
		{name: "tie keeps first", candidates: []FaceRect{big, sameArea}, want: big, wantOK: true},
		{name: "tie keeps first reversed", candidates: []FaceRect{sameArea, big}, want: sameArea, wantOK: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := SelectLargest(tc.candidates)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClampRects(t *testing.T) {
	rects := []image.Rectangle{
		image.Rect(-5, -5, 20, 20),
		image.Rect(90, 90, 120, 130),
		image.Rect(200, 200, 220, 220),
		image.Rect(10, 10, 30, 40),
	}
	assert.Equal(t, []FaceRect{
		{X: 0, Y: 0, Width: 20, Height: 20},
		{X: 90, Y: 90, Width: 10, Height: 10},
		{X: 10, Y: 10, Width: 20, Height: 30},
	}, ClampRects(rects, 100, 100))
}
