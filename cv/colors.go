package cv

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DefaultLabelColors overlay colours of the reference emotion label set
var DefaultLabelColors = map[string]string{
	"angry":    "#FF4B4B",
	"disgust":  "#FFD700",
	"fear":     "#9CA3AF",
	"happy":    "#FFC0CB",
	"neutral":  "#10B981",
	"sad":      "#8B5CF6",
	"surprise": "#F59E0B",
}

// palette for labels without a configured colour
var palette = []color.RGBA{
	{R: 255, G: 255, B: 0, A: 255},
	{R: 0, G: 255, B: 0, A: 255},
	{R: 0, G: 255, B: 255, A: 255},
	{R: 255, G: 0, B: 0, A: 255},
}

// ParseHexColor parses "#RRGGBB" or "RRGGBB".
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return color.RGBA{}, errors.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, errors.Wrapf(err, "invalid colour %q", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// LabelColors resolves a colour for every label: configured, then default, then palette.
func LabelColors(labels []string, configured map[string]string) (map[string]color.RGBA, error) {
	out := make(map[string]color.RGBA, len(labels))
	for i, label := range labels {
		hex, ok := configured[label]
		if !ok {
			hex, ok = DefaultLabelColors[label]
		}
		if !ok {
			out[label] = palette[i%len(palette)]
			continue
		}
		c, err := ParseHexColor(hex)
		if err != nil {
			return nil, errors.Wrapf(err, "label %s", label)
		}
		out[label] = c
	}
	return out, nil
}
