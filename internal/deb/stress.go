package deb

// Stress maps a dissolved-oxygen concentration to a stress level:
// 1 at or below lo, 0 at or above hi, linear in between. A window
// that is empty or inverted disables stress entirely.
func Stress(c, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	switch {
	case c <= lo:
		return 1
	case c >= hi:
		return 0
	default:
		return (hi - c) / (hi - lo)
	}
}
