package thermal

import (
	"errors"
	"fmt"
)

// ErrFrameShape is returned when an incoming frame does not match the
// configured grid shape. Frames are never truncated or padded.
var ErrFrameShape = errors.New("frame shape mismatch")

// Frame is one rectangular grid of temperature readings in degrees C,
// indexed [row][col]. A Frame is owned by the pipeline for exactly one
// iteration and must not be mutated after construction.
type Frame [][]float64

// NewFrame validates the given rows against the expected shape and wraps
// them as a Frame. The backing slices are not copied.
func NewFrame(rows [][]float64, wantRows, wantCols int) (Frame, error) {
	if len(rows) != wantRows {
		return nil, fmt.Errorf("%w: got %d rows, want %d", ErrFrameShape, len(rows), wantRows)
	}
	for r, row := range rows {
		if len(row) != wantCols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrFrameShape, r, len(row), wantCols)
		}
	}
	return Frame(rows), nil
}

// FrameFromRows decodes the sensor's row-map payload ("row0".."rowN", each
// an ordered list of readings) into a Frame. When flip is set each row is
// reversed to undo the sensor's horizontal mirroring.
func FrameFromRows(rowMap map[string][]float64, wantRows, wantCols int, flip bool) (Frame, error) {
	rows := make([][]float64, wantRows)
	for r := 0; r < wantRows; r++ {
		key := fmt.Sprintf("row%d", r)
		vals, ok := rowMap[key]
		if !ok {
			return nil, fmt.Errorf("%w: missing %q", ErrFrameShape, key)
		}
		if len(vals) != wantCols {
			return nil, fmt.Errorf("%w: %q has %d columns, want %d", ErrFrameShape, key, len(vals), wantCols)
		}
		row := make([]float64, wantCols)
		if flip {
			for c, v := range vals {
				row[wantCols-1-c] = v
			}
		} else {
			copy(row, vals)
		}
		rows[r] = row
	}
	return Frame(rows), nil
}

// UniformFrame returns a rows x cols frame with every cell set to v.
func UniformFrame(rows, cols int, v float64) Frame {
	f := make(Frame, rows)
	for r := range f {
		f[r] = make([]float64, cols)
		for c := range f[r] {
			f[r][c] = v
		}
	}
	return f
}

// Rows returns the number of rows in the frame.
func (f Frame) Rows() int { return len(f) }

// Cols returns the number of columns in the frame, or 0 for an empty frame.
func (f Frame) Cols() int {
	if len(f) == 0 {
		return 0
	}
	return len(f[0])
}

// Clone returns a deep copy of the frame.
func (f Frame) Clone() Frame {
	out := make(Frame, len(f))
	for r, row := range f {
		out[r] = make([]float64, len(row))
		copy(out[r], row)
	}
	return out
}

// matchesShape reports whether the frame is exactly rows x cols.
func (f Frame) matchesShape(rows, cols int) bool {
	if len(f) != rows {
		return false
	}
	for _, row := range f {
		if len(row) != cols {
			return false
		}
	}
	return true
}
