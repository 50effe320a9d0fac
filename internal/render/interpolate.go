package render

// piecewise-linear map of x from input points to output points, clamped at
// both ends; input points must be non-decreasing
func interpolate(x float64, in, out []float64) float64 {
	if len(in) == 0 || len(in) != len(out) {
		return 0
	}

	last := len(in) - 1
	if x <= in[0] {
		return out[0]
	}
	if x >= in[last] {
		return out[last]
	}

	for i := 1; i <= last; i++ {
		if x > in[i] {
			continue
		}
		span := in[i] - in[i-1]
		if span <= 0 {
			return out[i]
		}
		return out[i-1] + (out[i]-out[i-1])*(x-in[i-1])/span
	}
	return out[last]
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
