package onnx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	ort "github.com/yalue/onnxruntime_go"
)

func TestDeclaredShape(t *testing.T) {
	tests := []struct {
		name string
		dims ort.Shape
		want []int
	}{
		{name: "static", dims: ort.NewShape(1, 3, 64, 64), want: []int{1, 3, 64, 64}},
		{name: "dynamic batch", dims: ort.NewShape(-1, 3, 64, 64), want: []int{1, 3, 64, 64}},
		{name: "flat output", dims: ort.NewShape(7), want: []int{1, 7}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, declaredShape(tc.dims))
		})
	}
}

func TestEqualShape(t *testing.T) {
	assert.True(t, equalShape([]int{1, 3, 64, 64}, []int{1, 3, 64, 64}))
	assert.False(t, equalShape([]int{1, 3, 64}, []int{1, 3, 64, 64}))
	assert.False(t, equalShape([]int{1, 1, 64, 64}, []int{1, 3, 64, 64}))
}
