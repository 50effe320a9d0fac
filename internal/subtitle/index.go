package subtitle

// position of the first segment with start <= t <= end, or -1.
//
// Sequence order decides overlaps: the earlier segment wins regardless of
// duration or start proximity. Input does not need to be sorted.
func ActiveIndex(segments []Segment, t float64) int {
	for i, seg := range segments {
		if t >= seg.Start && t <= seg.End {
			return i
		}
	}
	return -1
}

// segment shown at time t (seconds)
func Active(segments []Segment, t float64) (Segment, bool) {
	i := ActiveIndex(segments, t)
	if i < 0 {
		return Segment{}, false
	}
	return segments[i], true
}

// segment shown at a video frame
func AtFrame(segments []Segment, frame int, fps float64) (Segment, bool) {
	if fps <= 0 {
		return Segment{}, false
	}
	return Active(segments, float64(frame)/fps)
}
