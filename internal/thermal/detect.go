package thermal

import "math"

// Pixel is one cell flagged as deviating from the learned background.
type Pixel struct {
	Row         int
	Col         int
	Temperature float64
}

// Adjacent reports whether q touches p under 8-connectivity: both the row
// and column deltas are at most one. Adjacency is symmetric, and a pixel is
// adjacent to itself.
func (p Pixel) Adjacent(q Pixel) bool {
	return abs(p.Row-q.Row) <= 1 && abs(p.Col-q.Col) <= 1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// DetectActive returns the cells of frame whose absolute deviation from the
// per-cell mean exceeds sensitivity standard deviations. A cell with zero
// deviation history is flagged on any difference from its mean. Output
// order is unspecified; callers must not depend on it.
func DetectActive(frame, mean, std Frame, sensitivity float64) []Pixel {
	var active []Pixel
	for r := range frame {
		for c := range frame[r] {
			if math.Abs(mean[r][c]-frame[r][c]) > sensitivity*std[r][c] {
				active = append(active, Pixel{Row: r, Col: c, Temperature: frame[r][c]})
			}
		}
	}
	return active
}
