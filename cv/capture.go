package cv

import (
	"sync"

	"github.com/genert/emotion"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// CaptureSource Frame source backed by a webcam or a video file
type CaptureSource struct {
	open func() (*gocv.VideoCapture, error)
	loop bool

	mu      sync.Mutex
	capture *gocv.VideoCapture
	img     gocv.Mat
	seq     uint64
}

// NewWebcamSource captures from a local video device.
func NewWebcamSource(deviceID int) *CaptureSource {
	return &CaptureSource{open: func() (*gocv.VideoCapture, error) {
		return gocv.VideoCaptureDevice(deviceID)
	}}
}

// NewVideoSource reads frames from a file. With loop set it rewinds at the end.
func NewVideoSource(path string, loop bool) *CaptureSource {
	return &CaptureSource{loop: loop, open: func() (*gocv.VideoCapture, error) {
		return gocv.OpenVideoCapture(path)
	}}
}

// Start implements emotion.FrameSource.
func (s *CaptureSource) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.capture != nil {
		return nil
	}
	capture, err := s.open()
	if err != nil {
		return errors.Wrap(err, "Can't open video capture")
	}
	s.capture = capture
	s.img = gocv.NewMat()
	return nil
}

// CurrentFrame implements emotion.FrameSource.
func (s *CaptureSource) CurrentFrame() (*emotion.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.capture == nil {
		return nil, emotion.ErrFrameNotAvailable
	}

	if ok := s.capture.Read(&s.img); !ok || s.img.Empty() {
		if s.loop {
			s.capture.Set(gocv.VideoCapturePosFrames, 0)
		}
		return nil, emotion.ErrFrameNotAvailable
	}

	rgba, err := matToRGBA(s.img)
	if err != nil {
		return nil, errors.Wrap(err, "Can't convert frame")
	}
	s.seq++
	return emotion.NewFrame(s.seq, rgba, nil), nil
}

// Stop implements emotion.FrameSource.
func (s *CaptureSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.capture == nil {
		return nil
	}
	err := s.capture.Close()
	s.img.Close()
	s.capture = nil
	return err
}
