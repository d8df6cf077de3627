package render

import "math"

// Ease is the shared in-out timing curve applied to reveal animations:
// accelerates for the first half, decelerates for the second.
func Ease(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return 1 - math.Pow(-2*t+2, 2)/2
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// TypewriterCount is the number of characters visible at progress p
// for a typewriter reveal over text of length n. Monotonic in p and
// reaches n before the scene ends.
func TypewriterCount(p float64, n int) int {
	ch := int(math.Floor(Ease(clamp01(p*1.3)) * float64(n)))
	if ch > n {
		ch = n
	}
	return ch
}
