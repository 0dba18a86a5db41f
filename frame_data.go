package emotion

// tickScratch Holds every per-tick buffer so one deferred Close frees them all,
// whichever stage of the tick failed.
type tickScratch struct {
	frame  *Frame
	gray   *GrayFrame
	faces  []FaceRect
	tensor *Tensor
}

// Close Simplify memory management for each buffer of the tick
func (s *tickScratch) Close() {
	releaseTensor(s.tensor)
	releaseGray(s.gray)
	s.frame.Release()
	s.tensor, s.gray, s.frame, s.faces = nil, nil, nil, nil
}
