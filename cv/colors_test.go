package cv

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{name: "with hash", in: "#FF4B4B", want: color.RGBA{R: 255, G: 75, B: 75, A: 255}},
		{name: "without hash", in: "10b981", want: color.RGBA{R: 16, G: 185, B: 129, A: 255}},
		{name: "too short", in: "#fff", wantErr: true},
		{name: "not hex", in: "#GGGGGG", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseHexColor(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLabelColors(t *testing.T) {
	colors, err := LabelColors(
		[]string{"angry", "happy", "bored"},
		map[string]string{"happy": "#000001"},
	)
	require.NoError(t, err)

	assert.Equal(t, color.RGBA{R: 255, G: 75, B: 75, A: 255}, colors["angry"])
	assert.Equal(t, color.RGBA{B: 1, A: 255}, colors["happy"])
	assert.Equal(t, palette[2], colors["bored"])

	_, err = LabelColors([]string{"sad"}, map[string]string{"sad": "purple"})
	assert.Error(t, err)
}
