package emotion

import (
	"image"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

const maxChannel = 255.0

var tensorPool = sync.Pool{
	New: func() interface{} { return &Tensor{Data: make([]float32, TensorLen)} },
}

// releaseTensor returns t to the pool. t must not be used afterwards.
func releaseTensor(t *Tensor) {
	if t == nil || len(t.Data) != TensorLen {
		return
	}
	tensorPool.Put(t)
}

// RegionNormalizer crops a face out of a frame and turns it into a classifier tensor.
type RegionNormalizer struct {
	// Interpolator used for resampling. Defaults to bilinear.
	Interpolator draw.Interpolator
	size         int
}

// NewRegionNormalizer builds a normalizer producing TensorSize x TensorSize inputs.
func NewRegionNormalizer() *RegionNormalizer {
	return &RegionNormalizer{Interpolator: draw.BiLinear, size: TensorSize}
}

// Normalize crops rect, resamples it to 64x64 regardless of aspect ratio and writes
// R, G and B planes (in that order) scaled to [0, 1].
func (n *RegionNormalizer) Normalize(frame *Frame, rect FaceRect) (*Tensor, error) {
	if frame.Empty() {
		return nil, ErrFrameNotAvailable
	}
	src := rect.Image().Add(frame.Image.Rect.Min)
	if rect.Empty() || !src.In(frame.Image.Rect) {
		return nil, errors.Errorf("face %s outside of %dx%d frame", rect, frame.Width(), frame.Height())
	}

	size := n.size
	resized := image.NewRGBA(image.Rect(0, 0, size, size))
	n.Interpolator.Scale(resized, resized.Rect, frame.Image, src, draw.Src, nil)

	t := tensorPool.Get().(*Tensor)
	plane := size * size
	r, g, b := t.Data[:plane], t.Data[plane:2*plane], t.Data[2*plane:3*plane]
	for i := 0; i < plane; i++ {
		px := resized.Pix[i*4 : i*4+3 : i*4+3]
		r[i] = float32(px[0]) / maxChannel
		g[i] = float32(px[1]) / maxChannel
		b[i] = float32(px[2]) / maxChannel
	}
	return t, nil
}

var grayPool sync.Pool

// ToGray derives the single-channel frame used by the face detector.
func ToGray(frame *Frame) *GrayFrame {
	bounds := image.Rect(0, 0, frame.Width(), frame.Height())
	gray, _ := grayPool.Get().(*image.Gray)
	if gray == nil || cap(gray.Pix) < bounds.Dx()*bounds.Dy() {
		gray = image.NewGray(bounds)
	} else {
		gray.Pix = gray.Pix[:bounds.Dx()*bounds.Dy()]
		gray.Stride = bounds.Dx()
		gray.Rect = bounds
	}
	draw.Draw(gray, bounds, frame.Image, frame.Image.Rect.Min, draw.Src)
	return &GrayFrame{Image: gray}
}

func releaseGray(g *GrayFrame) {
	if g == nil || g.Image == nil {
		return
	}
	grayPool.Put(g.Image)
	g.Image = nil
}
