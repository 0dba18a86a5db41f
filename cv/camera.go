package cv

import (
	"fmt"
	"image"
	"net"
	"sync"

	"github.com/genert/emotion"
	"github.com/mike1808/h264decoder/decoder"
	"github.com/pkg/errors"
	"github.com/projecthunt/reuseable"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

const (
	// maxPacketSize ethernet frame carrying one H264 slice
	maxPacketSize = 1514
	// packetHeaderSize camera specific header before the H264 payload
	packetHeaderSize = 72
)

// CameraSource Receives an H264 stream pushed over UDP by a network camera
// and keeps the latest decoded picture.
type CameraSource struct {
	addr string
	log  logrus.FieldLogger

	mu      sync.Mutex
	pc      net.PacketConn
	decoder *decoder.H264Decoder
	latest  *image.RGBA
	seq     uint64
	done    chan struct{}
}

// NewCameraSource listens on address:port once started.
func NewCameraSource(address string, port int, log logrus.FieldLogger) *CameraSource {
	return &CameraSource{addr: fmt.Sprintf("%s:%d", address, port), log: log}
}

// Start implements emotion.FrameSource.
func (c *CameraSource) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pc != nil {
		return nil
	}

	d, err := decoder.New(decoder.PixelFormatBGR)
	if err != nil {
		return errors.Wrap(err, "failed to create H264 decoder")
	}
	pc, err := reuseable.ListenPacket("udp4", c.addr)
	if err != nil {
		d.Close()
		return errors.Wrapf(err, "Can't listen on %s", c.addr)
	}

	c.pc, c.decoder, c.latest = pc, d, nil
	c.done = make(chan struct{})
	go c.receive(pc, d, c.done)
	c.log.WithField("addr", c.addr).Info("listening for camera packets")
	return nil
}

func (c *CameraSource) receive(pc net.PacketConn, d *decoder.H264Decoder, done chan struct{}) {
	defer close(done)
	buf := make([]byte, maxPacketSize)
	for {
		n, _, err := pc.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			c.log.WithError(err).Warn("failed to read camera packet")
			continue
		}
		if n < packetHeaderSize {
			continue
		}

		frames, err := d.Decode(buf[packetHeaderSize:n])
		if err != nil {
			c.log.WithError(err).Debug("failed to decode H264 packet")
			continue
		}
		for _, f := range frames {
			if f.Width == 0 || f.Height == 0 {
				continue
			}
			img, err := bgrToRGBA(f.Data, f.Width, f.Height)
			if err != nil {
				c.log.WithError(err).Warn("failed to convert decoded frame")
				continue
			}
			c.mu.Lock()
			c.latest = img
			c.seq++
			c.mu.Unlock()
		}
	}
}

func bgrToRGBA(data []byte, width, height int) (*image.RGBA, error) {
	mat, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, data)
	if err != nil {
		return nil, err
	}
	defer mat.Close()
	return matToRGBA(mat)
}

// CurrentFrame implements emotion.FrameSource. Decoded pictures are never
// mutated after publication, so the latest one is handed out without a copy.
func (c *CameraSource) CurrentFrame() (*emotion.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.latest == nil {
		return nil, emotion.ErrFrameNotAvailable
	}
	return emotion.NewFrame(c.seq, c.latest, nil), nil
}

// Stop implements emotion.FrameSource.
func (c *CameraSource) Stop() error {
	c.mu.Lock()
	pc, d, done := c.pc, c.decoder, c.done
	c.pc, c.decoder = nil, nil
	c.mu.Unlock()
	if pc == nil {
		return nil
	}

	err := pc.Close()
	<-done
	d.Close()
	return err
}
