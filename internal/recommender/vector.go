package recommender

import "math"

// NormalizeL2 normalizes v to unit L2 norm in place and returns it.
// A zero vector stays a zero vector; there is no division by zero.
func NormalizeL2(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	n := math.Sqrt(sum)
	if n == 0 {
		return v
	}
	inv := float32(1.0 / n)
	for i := range v {
		v[i] *= inv
	}
	return v
}

// validate reports whether every component of v is finite.
func validate(v []float32) bool {
	for _, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// sqDist returns the squared Euclidean distance between a and the slice of
// the flat vector array starting at off. Lengths must already agree.
func sqDist(a []float32, flat []float32, off int) float64 {
	var d float64
	for i, x := range a {
		diff := float64(x) - float64(flat[off+i])
		d += diff * diff
	}
	return d
}
