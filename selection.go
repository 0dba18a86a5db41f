package emotion

// SelectLargest returns the candidate with the largest area.
// The first one wins on ties; ok is false for an empty slice.
func SelectLargest(candidates []FaceRect) (best FaceRect, ok bool) {
	maxArea := -1
	for _, c := range candidates {
		if area := c.Area(); area > maxArea {
			maxArea = area
			best = c
			ok = true
		}
	}
	return best, ok
}
