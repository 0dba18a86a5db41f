package cv

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/genert/emotion"
	"github.com/hybridgroup/mjpeg"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

var white = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// OverlayPublisher draws the decision onto the frame and pushes it to an MJPEG stream.
type OverlayPublisher struct {
	stream  *mjpeg.Stream
	colors  map[string]color.RGBA
	quality int
	log     logrus.FieldLogger
}

// NewOverlayPublisher builds a preview publisher for stream.
func NewOverlayPublisher(stream *mjpeg.Stream, colors map[string]color.RGBA, quality int, log logrus.FieldLogger) *OverlayPublisher {
	return &OverlayPublisher{stream: stream, colors: colors, quality: quality, log: log}
}

// Publish implements emotion.Publisher.
func (o *OverlayPublisher) Publish(r emotion.TickResult) {
	if r.Frame.Empty() {
		return
	}
	rgba, err := gocv.ImageToMatRGBA(r.Frame.Image)
	if err != nil {
		o.log.WithError(err).Warn("Can't convert frame for preview")
		return
	}
	defer rgba.Close()
	img := gocv.NewMat()
	defer img.Close()
	gocv.CvtColor(rgba, &img, gocv.ColorRGBAToBGR)

	if r.Kind == emotion.ResultDecision {
		o.draw(&img, r.Decision)
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, img, []int{gocv.IMWriteJpegQuality, o.quality})
	if err != nil {
		o.log.WithError(err).Warn("Error while encoding to JPG (mjpeg)")
		return
	}
	defer buf.Close()
	o.stream.UpdateJPEG(buf.GetBytes())
}

func (o *OverlayPublisher) draw(img *gocv.Mat, d emotion.Decision) {
	c, ok := o.colors[d.Label]
	if !ok {
		c = white
	}
	rect := d.Rect.Image()
	gocv.Rectangle(img, rect, c, 4)

	text := fmt.Sprintf("%s %.1f%%", strings.ToUpper(d.Label), d.Confidence*100)
	top := rect.Min.Y - 35
	if top < 0 {
		top = rect.Max.Y
	}
	gocv.Rectangle(img, image.Rect(rect.Min.X, top, rect.Min.X+160, top+35), c, -1)
	gocv.PutText(img, text, image.Pt(rect.Min.X+10, top+25), gocv.FontHersheySimplex, 0.6, white, 2)
}
