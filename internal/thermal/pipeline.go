package thermal

import (
	"fmt"
	"sync"
	"time"

	"github.com/gridtherm/passage.report/internal/monitoring"
)

// PipelineState is the orchestrator's per-frame mode.
type PipelineState string

const (
	// StateWarmingUp means every frame feeds only the background model.
	StateWarmingUp PipelineState = "warming_up"
	// StateSteady means frames run full detection, extraction and tracking.
	StateSteady PipelineState = "steady"
)

// Result is what the pipeline emits for one processed frame.
type Result struct {
	FrameIndex int64
	State      PipelineState
	BlobCount  int
	Tracks     []*TrackedBlob
	Counts     PassCounts
	Net        int64
}

// Pipeline is the per-frame control loop: it owns the background model, the
// tracker, and the pass counters for one sensor. All mutable state lives
// here; construct a fresh Pipeline per sensor or per test.
type Pipeline struct {
	mu sync.Mutex

	params     Params
	background *BackgroundModel
	tracker    *Tracker
	frameIndex int64
	warmed     bool
}

// NewPipeline creates a pipeline with the given tuning. sink receives pass
// events as tracks retire and may be nil.
func NewPipeline(params Params, sink PassSink) (*Pipeline, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	return &Pipeline{
		params:     params,
		background: NewBackgroundModel(params.Rows, params.Cols, params.WindowSize),
		tracker:    NewTracker(params, sink),
	}, nil
}

// ProcessFrame runs one frame through the pipeline.
//
// While the background model has not warmed up, the frame only feeds the
// model. In steady state the frame runs detection, blob extraction,
// small-blob filtering and tracking; the background model is updated only
// when no blob survived filtering, so a lingering object is not absorbed
// into the background.
func (p *Pipeline) ProcessFrame(f Frame, now time.Time) (Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !f.matchesShape(p.params.Rows, p.params.Cols) {
		return Result{}, fmt.Errorf("%w: got %dx%d, want %dx%d",
			ErrFrameShape, f.Rows(), f.Cols(), p.params.Rows, p.params.Cols)
	}

	p.frameIndex++

	if !p.background.WarmedUp() {
		if err := p.background.Observe(f); err != nil {
			return Result{}, err
		}
		if p.background.WarmedUp() && !p.warmed {
			p.warmed = true
			monitoring.Logf("background warmed up after %d frames", p.frameIndex)
		}
		return p.result(StateWarmingUp, 0), nil
	}

	active := DetectActive(f, p.background.Mean(), p.background.Std(), p.params.Sensitivity)
	blobs := FilterBlobs(ExtractBlobs(active), p.params.MinBlobSize)
	p.tracker.Track(blobs, now)

	// Resume background learning only on blob-free frames.
	if len(blobs) == 0 {
		if err := p.background.Observe(f); err != nil {
			return Result{}, err
		}
	}

	return p.result(StateSteady, len(blobs)), nil
}

// result builds a Result snapshot; callers must hold p.mu.
func (p *Pipeline) result(state PipelineState, blobCount int) Result {
	counts := p.tracker.Counts()
	return Result{
		FrameIndex: p.frameIndex,
		State:      state,
		BlobCount:  blobCount,
		Tracks:     p.tracker.ActiveTracks(),
		Counts:     counts,
		Net:        counts.Net(p.params.LeftwardPositive),
	}
}

// Counts returns the latest pass-counter snapshot.
func (p *Pipeline) Counts() PassCounts {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tracker.Counts()
}

// Net returns the signed net count under the configured sign convention.
func (p *Pipeline) Net() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tracker.Counts().Net(p.params.LeftwardPositive)
}

// ActiveTracks returns the tracks carried from the last processed frame.
func (p *Pipeline) ActiveTracks() []*TrackedBlob {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tracker.ActiveTracks()
}

// Params returns the pipeline's tuning.
func (p *Pipeline) Params() Params {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.params
}

// ApplyTuning adjusts the runtime-tunable parameters. Grid shape and window
// size are fixed at construction and cannot change here.
func (p *Pipeline) ApplyTuning(sensitivity *float64, minBlobSize *int, matchThreshold, travelThreshold *float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if sensitivity != nil {
		p.params.Sensitivity = *sensitivity
	}
	if minBlobSize != nil {
		p.params.MinBlobSize = *minBlobSize
	}
	if matchThreshold != nil {
		p.params.MatchThreshold = *matchThreshold
	}
	if travelThreshold != nil {
		p.params.TravelThreshold = *travelThreshold
	}
	p.tracker.params = p.params
}
