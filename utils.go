package emotion

import "image"

// ClampRect Corrects rectangle's bounds for provided max-width and max-height.
// Detectors may report boxes slightly outside the frame; cropping them would panic.
func ClampRect(r image.Rectangle, maxCols, maxRows int) image.Rectangle {
	return r.Canon().Intersect(image.Rect(0, 0, maxCols, maxRows))
}

// ClampRects clamps every rectangle to the frame and drops the empty ones.
func ClampRects(rects []image.Rectangle, maxCols, maxRows int) []FaceRect {
	out := make([]FaceRect, 0, len(rects))
	for _, r := range rects {
		fr := RectFromImage(ClampRect(r, maxCols, maxRows))
		if fr.Empty() {
			continue
		}
		out = append(out, fr)
	}
	return out
}
