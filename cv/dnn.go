package cv

import (
	"context"
	"sync"

	"github.com/genert/emotion"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// DNNEngine Runs an ONNX classifier through OpenCV's dnn module
type DNNEngine struct {
	mu        sync.Mutex
	net       *gocv.Net
	outputLen int
}

// NewDNNEngine loads the model and validates it with a forward pass on a
// zero tensor. OpenCV does not expose declared input shapes, so a model that
// does not accept [1,3,64,64] fails here rather than on the first frame.
func NewDNNEngine(modelFile, backend, target string) (*DNNEngine, error) {
	net := gocv.ReadNetFromONNX(modelFile)
	if net.Empty() {
		return nil, errors.Errorf("Can't load model %s", modelFile)
	}
	if err := net.SetPreferableBackend(gocv.ParseNetBackend(backend)); err != nil {
		net.Close()
		return nil, errors.Wrapf(err, "Can't set backend %s", backend)
	}
	if err := net.SetPreferableTarget(gocv.ParseNetTarget(target)); err != nil {
		net.Close()
		return nil, errors.Wrapf(err, "Can't set target %s", target)
	}

	e := &DNNEngine{net: &net}
	scores, err := e.forward(&emotion.Tensor{Data: make([]float32, emotion.TensorLen)})
	if err != nil {
		net.Close()
		return nil, errors.Wrap(err, "model probe failed")
	}
	e.outputLen = len(scores)
	return e, nil
}

// InputShape implements emotion.InferenceEngine.
func (e *DNNEngine) InputShape() []int {
	return append([]int(nil), emotion.TensorShape...)
}

// OutputLen implements emotion.InferenceEngine.
func (e *DNNEngine) OutputLen() int {
	return e.outputLen
}

// Infer implements emotion.InferenceEngine.
func (e *DNNEngine) Infer(ctx context.Context, t *emotion.Tensor) (emotion.ScoreVector, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.forward(t)
}

func (e *DNNEngine) forward(t *emotion.Tensor) (emotion.ScoreVector, error) {
	if len(t.Data) != emotion.TensorLen {
		return nil, errors.Errorf("tensor has %d values, expected %d", len(t.Data), emotion.TensorLen)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.net == nil {
		return nil, emotion.ErrNotReady
	}

	blob := gocv.NewMatWithSizes(emotion.TensorShape, gocv.MatTypeCV32F)
	defer blob.Close()
	in, err := blob.DataPtrFloat32()
	if err != nil {
		return nil, errors.Wrap(err, "Can't access input blob")
	}
	copy(in, t.Data)

	e.net.SetInput(blob, "")
	out := e.net.Forward("")
	defer out.Close()

	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, errors.Wrap(err, "Can't extract data")
	}
	scores := make(emotion.ScoreVector, len(data))
	copy(scores, data)
	return scores, nil
}

// Close Free memory for underlying network
func (e *DNNEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.net == nil {
		return nil
	}
	err := e.net.Close()
	e.net = nil
	return err
}
