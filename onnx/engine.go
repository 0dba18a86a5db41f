// Package onnx runs the classifier with ONNX Runtime.
package onnx

import (
	"context"
	"sync"

	"github.com/genert/emotion"
	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

var (
	envOnce sync.Once
	envErr  error
)

// InitializeEnvironment loads the onnxruntime shared library once per process.
func InitializeEnvironment(sharedLibrary string) error {
	envOnce.Do(func() {
		if sharedLibrary != "" {
			ort.SetSharedLibraryPath(sharedLibrary)
		}
		envErr = errors.Wrap(ort.InitializeEnvironment(), "initialize onnxruntime")
	})
	return envErr
}

// Engine ONNX Runtime session with preallocated input and output tensors
type Engine struct {
	mu         sync.Mutex
	session    *ort.AdvancedSession
	input      *ort.Tensor[float32]
	output     *ort.Tensor[float32]
	inputShape []int
	outputLen  int
}

// NewEngine reads the model's declared shapes and creates a session bound to
// its first input and output.
func NewEngine(modelFile string) (*Engine, error) {
	inputs, outputs, err := ort.GetInputOutputInfo(modelFile)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't read model info from %s", modelFile)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, errors.Errorf("model %s declares no inputs or outputs", modelFile)
	}

	inputShape := declaredShape(inputs[0].Dimensions)
	outputShape := declaredShape(outputs[0].Dimensions)
	if len(outputShape) == 0 {
		return nil, errors.Errorf("model %s has a scalar output", modelFile)
	}
	outputLen := 1
	for _, d := range outputShape[1:] {
		outputLen *= d
	}

	e := &Engine{inputShape: inputShape, outputLen: outputLen}
	if !equalShape(inputShape, emotion.TensorShape) {
		// Leave the session unset; pipeline validation reports the mismatch.
		return e, nil
	}

	e.input, err = ort.NewEmptyTensor[float32](ort.NewShape(toInt64(emotion.TensorShape)...))
	if err != nil {
		return nil, errors.Wrap(err, "create input tensor")
	}
	e.output, err = ort.NewEmptyTensor[float32](ort.NewShape(1, int64(outputLen)))
	if err != nil {
		e.Close()
		return nil, errors.Wrap(err, "create output tensor")
	}
	e.session, err = ort.NewAdvancedSession(modelFile,
		[]string{inputs[0].Name},
		[]string{outputs[0].Name},
		[]ort.Value{e.input},
		[]ort.Value{e.output},
		nil,
	)
	if err != nil {
		e.Close()
		return nil, errors.Wrap(err, "create session")
	}
	return e, nil
}

// declaredShape maps a dynamic batch dimension to 1.
func declaredShape(dims ort.Shape) []int {
	shape := make([]int, len(dims))
	for i, d := range dims {
		shape[i] = int(d)
	}
	if len(shape) > 0 && shape[0] < 0 {
		shape[0] = 1
	}
	if len(shape) == 1 {
		shape = append([]int{1}, shape...)
	}
	return shape
}

func equalShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func toInt64(s []int) []int64 {
	out := make([]int64, len(s))
	for i, v := range s {
		out[i] = int64(v)
	}
	return out
}

// InputShape implements emotion.InferenceEngine.
func (e *Engine) InputShape() []int {
	return e.inputShape
}

// OutputLen implements emotion.InferenceEngine.
func (e *Engine) OutputLen() int {
	return e.outputLen
}

// Infer implements emotion.InferenceEngine.
func (e *Engine) Infer(ctx context.Context, t *emotion.Tensor) (emotion.ScoreVector, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil, emotion.ErrNotReady
	}

	in := e.input.GetData()
	if len(t.Data) != len(in) {
		return nil, errors.Errorf("tensor has %d values, model expects %d", len(t.Data), len(in))
	}
	copy(in, t.Data)

	if err := e.session.Run(); err != nil {
		return nil, errors.Wrap(err, "run session")
	}
	scores := make(emotion.ScoreVector, e.outputLen)
	copy(scores, e.output.GetData())
	return scores, nil
}

// Close destroys the session and tensors.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	var err error
	if e.session != nil {
		err = e.session.Destroy()
		e.session = nil
	}
	if e.input != nil {
		e.input.Destroy()
		e.input = nil
	}
	if e.output != nil {
		e.output.Destroy()
		e.output = nil
	}
	return err
}
