package thermal

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// BackgroundModel maintains per-cell running statistics over a strict
// sliding window of the most recent WindowSize frames. Statistics are
// population statistics (divisor = current window length), so a window of
// one frame yields that frame as the mean with an all-zero deviation.
//
// BackgroundModel is not safe for concurrent use; the pipeline owns it for
// the duration of each frame.
type BackgroundModel struct {
	rows, cols int
	windowSize int

	window []Frame // FIFO, oldest first
	mean   Frame
	std    Frame

	scratch []float64 // reused per-cell sample buffer
}

// NewBackgroundModel creates an empty background model for a rows x cols
// grid with the given window capacity.
func NewBackgroundModel(rows, cols, windowSize int) *BackgroundModel {
	return &BackgroundModel{
		rows:       rows,
		cols:       cols,
		windowSize: windowSize,
		window:     make([]Frame, 0, windowSize),
		mean:       UniformFrame(rows, cols, 0),
		std:        UniformFrame(rows, cols, 0),
		scratch:    make([]float64, 0, windowSize),
	}
}

// Observe adds a frame to the window, evicting the oldest frame once the
// window is full, and recomputes the per-cell mean and standard deviation
// from the current window contents.
func (b *BackgroundModel) Observe(f Frame) error {
	if !f.matchesShape(b.rows, b.cols) {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrFrameShape, f.Rows(), f.Cols(), b.rows, b.cols)
	}

	if len(b.window) >= b.windowSize {
		// Strict FIFO eviction; shift rather than ring-buffer since the
		// window is at most a few hundred frames.
		copy(b.window, b.window[1:])
		b.window = b.window[:len(b.window)-1]
	}
	b.window = append(b.window, f.Clone())

	b.recompute()
	return nil
}

// recompute refreshes the mean and std grids from the window contents.
func (b *BackgroundModel) recompute() {
	for r := 0; r < b.rows; r++ {
		for c := 0; c < b.cols; c++ {
			b.scratch = b.scratch[:0]
			for _, f := range b.window {
				b.scratch = append(b.scratch, f[r][c])
			}
			mean, std := stat.PopMeanStdDev(b.scratch, nil)
			b.mean[r][c] = mean
			b.std[r][c] = std
		}
	}
}

// Mean returns a read-only snapshot of the per-cell mean grid.
func (b *BackgroundModel) Mean() Frame { return b.mean.Clone() }

// Std returns a read-only snapshot of the per-cell standard deviation grid.
func (b *BackgroundModel) Std() Frame { return b.std.Clone() }

// WindowLen returns the number of frames currently in the window.
func (b *BackgroundModel) WindowLen() int { return len(b.window) }

// WarmedUp reports whether the window has reached capacity. Detection is
// meaningless before the statistics have settled over a full window.
func (b *BackgroundModel) WarmedUp() bool { return len(b.window) >= b.windowSize }
