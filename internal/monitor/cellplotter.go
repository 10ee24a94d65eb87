package monitor

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/gridtherm/passage.report/internal/thermal"
)

// CellPlotter records per-cell temperature and background-mean series over
// a run and writes PNG time-series plots. It is tuning tooling: run a
// capture through the pipeline with the plotter sampling each frame, then
// inspect which cells fire and how fast the background follows.
type CellPlotter struct {
	mu        sync.Mutex
	enabled   bool
	outputDir string

	frameIdx int
	// samples holds per-cell series keyed "row_col".
	samples map[string][]cellSample
}

type cellSample struct {
	FrameIdx int
	Value    float64
	BgMean   float64
	BgStd    float64
}

// NewCellPlotter creates an idle plotter; call Start to begin recording.
func NewCellPlotter() *CellPlotter {
	return &CellPlotter{samples: make(map[string][]cellSample)}
}

// Start resets the plotter and begins recording into outputDir.
func (cp *CellPlotter) Start(outputDir string) error {
	cp.mu.Lock()
	defer cp.mu.Unlock()

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	cp.outputDir = outputDir
	cp.enabled = true
	cp.frameIdx = 0
	cp.samples = make(map[string][]cellSample)
	return nil
}

// Stop disables sampling. Call WritePlots to produce output files.
func (cp *CellPlotter) Stop() {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	cp.enabled = false
}

// Sample captures one frame against the current background statistics.
// Call once per processed frame.
func (cp *CellPlotter) Sample(frame, mean, std thermal.Frame) {
	cp.mu.Lock()
	defer cp.mu.Unlock()

	if !cp.enabled {
		return
	}
	cp.frameIdx++

	for r := range frame {
		for c := range frame[r] {
			key := fmt.Sprintf("%d_%d", r, c)
			cp.samples[key] = append(cp.samples[key], cellSample{
				FrameIdx: cp.frameIdx,
				Value:    frame[r][c],
				BgMean:   mean[r][c],
				BgStd:    std[r][c],
			})
		}
	}
}

// WritePlots writes one PNG per recorded cell: observed temperature and
// background mean against frame index.
func (cp *CellPlotter) WritePlots() error {
	cp.mu.Lock()
	defer cp.mu.Unlock()

	keys := make([]string, 0, len(cp.samples))
	for k := range cp.samples {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		samples := cp.samples[key]

		obs := make(plotter.XYs, 0, len(samples))
		bg := make(plotter.XYs, 0, len(samples))
		for _, s := range samples {
			obs = append(obs, plotter.XY{X: float64(s.FrameIdx), Y: s.Value})
			bg = append(bg, plotter.XY{X: float64(s.FrameIdx), Y: s.BgMean})
		}

		p := plot.New()
		p.Title.Text = fmt.Sprintf("cell %s", key)
		p.X.Label.Text = "frame"
		p.Y.Label.Text = "temperature (C)"

		obsLine, err := plotter.NewLine(obs)
		if err != nil {
			return fmt.Errorf("failed to build observation line for %s: %w", key, err)
		}
		obsLine.Width = vg.Points(1)
		p.Add(obsLine)
		p.Legend.Add("observed", obsLine)

		bgLine, err := plotter.NewLine(bg)
		if err != nil {
			return fmt.Errorf("failed to build background line for %s: %w", key, err)
		}
		bgLine.Width = vg.Points(1)
		bgLine.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(bgLine)
		p.Legend.Add("background mean", bgLine)

		file := filepath.Join(cp.outputDir, fmt.Sprintf("cell_%s.png", key))
		if err := p.Save(10*vg.Inch, 4*vg.Inch, file); err != nil {
			return fmt.Errorf("failed to save plot for %s: %w", key, err)
		}
	}
	return nil
}
