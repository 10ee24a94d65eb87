package thermal

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/gridtherm/passage.report/internal/monitoring"
)

// Direction labels the outcome of a track retirement.
type Direction string

const (
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
	// DirectionNone marks a track that retired without crossing the travel
	// threshold. It contributes nothing to the counters but is still
	// reported to the sink so short-lived tracks remain observable.
	DirectionNone Direction = "none"
)

// PassEvent describes one retired track.
type PassEvent struct {
	TrackID        string
	Direction      Direction
	TravelRows     float64
	TravelCols     float64
	Area           int
	AvgTemperature float64
	FramesObserved int
	FirstSeen      time.Time
	LastSeen       time.Time
}

// PassSink receives pass events as tracks retire. Implementations must not
// block for long; the pipeline calls them inline.
type PassSink interface {
	RecordPass(PassEvent) error
}

// PassCounts is a snapshot of the monotonic directional counters.
type PassCounts struct {
	Left  int64
	Right int64
}

// Net returns the signed net count under the given sign convention.
func (c PassCounts) Net(leftwardPositive bool) int64 {
	if leftwardPositive {
		return c.Left - c.Right
	}
	return c.Right - c.Left
}

// TrackedBlob carries a blob's identity and motion state across frames.
type TrackedBlob struct {
	ID   string
	Blob *Blob

	// HasPrediction is false until the first successful update; the
	// predicted centroid is meaningless before then.
	HasPrediction bool
	PredictedRow  float64
	PredictedCol  float64

	// Travel is the vector sum of all centroid deltas since creation.
	TravelRows float64
	TravelCols float64

	FramesObserved int
	FirstSeen      time.Time
	LastSeen       time.Time
}

// NewTrackedBlob wraps a freshly detected blob as an unmatched new track.
func NewTrackedBlob(b *Blob, now time.Time) *TrackedBlob {
	return &TrackedBlob{
		ID:             uuid.NewString(),
		Blob:           b,
		FramesObserved: 1,
		FirstSeen:      now,
		LastSeen:       now,
	}
}

// DifferenceFactor scores the dissimilarity between the track's last blob
// and a candidate. Lower is more similar. Position is compared against the
// predicted centroid once a prediction exists, at double weight.
func (t *TrackedBlob) DifferenceFactor(b *Blob, p Params) float64 {
	var position float64
	if t.HasPrediction {
		position = p.PredictedPositionWeight *
			(math.Abs(t.PredictedRow-b.CentroidRow) + math.Abs(t.PredictedCol-b.CentroidCol))
	} else {
		position = p.PositionWeight *
			(math.Abs(t.Blob.CentroidRow-b.CentroidRow) + math.Abs(t.Blob.CentroidCol-b.CentroidCol))
	}

	area := p.AreaWeight * math.Abs(float64(t.Blob.Area-b.Area))
	aspect := p.AspectWeight * math.Abs(t.Blob.Aspect()-b.Aspect())
	temperature := p.TemperatureWeight * math.Abs(t.Blob.AvgTemperature-b.AvgTemperature)

	return position + area + aspect + temperature
}

// Update replaces the track's blob with a matched successor, extrapolates
// the next centroid (constant velocity), and accumulates travel.
func (t *TrackedBlob) Update(b *Blob, now time.Time) {
	dRow := b.CentroidRow - t.Blob.CentroidRow
	dCol := b.CentroidCol - t.Blob.CentroidCol

	t.PredictedRow = b.CentroidRow + dRow
	t.PredictedCol = b.CentroidCol + dCol
	t.HasPrediction = true

	t.TravelRows += dRow
	t.TravelCols += dCol

	t.Blob = b
	t.FramesObserved++
	t.LastSeen = now
}

// travelAlong returns the travel component compared at retirement.
func (t *TrackedBlob) travelAlong(axis Axis) float64 {
	if axis == AxisRows {
		return t.TravelRows
	}
	return t.TravelCols
}

// Tracker matches current-frame blobs against carried tracks and converts
// retired tracks into directional pass counts. It is not safe for
// concurrent use; the pipeline serialises access.
type Tracker struct {
	params Params
	tracks []*TrackedBlob
	counts PassCounts
	sink   PassSink
}

// NewTracker creates a tracker with the given tuning. sink may be nil.
func NewTracker(params Params, sink PassSink) *Tracker {
	return &Tracker{params: params, sink: sink}
}

// Track matches blobs from the current frame against the carried track set.
//
// The matcher is greedy nearest-first, deliberately not optimal assignment:
// blobs are taken in detector order, each consumes the unclaimed track with
// the lowest difference factor below the match threshold. Ties resolve to
// the earliest track in slice order, which keeps behavior deterministic for
// a fixed input order. Tracks left unclaimed after all blobs are processed
// retire into the pass counters.
func (tr *Tracker) Track(blobs []*Blob, now time.Time) {
	prev := tr.tracks
	claimed := make([]bool, len(prev))
	next := make([]*TrackedBlob, 0, len(blobs))

	for _, blob := range blobs {
		bestIdx := -1
		bestScore := math.Inf(1)
		for i, track := range prev {
			if claimed[i] {
				continue
			}
			score := track.DifferenceFactor(blob, tr.params)
			if score < bestScore {
				bestScore = score
				bestIdx = i
			}
		}

		if bestIdx >= 0 && bestScore < tr.params.MatchThreshold {
			claimed[bestIdx] = true
			prev[bestIdx].Update(blob, now)
			next = append(next, prev[bestIdx])
		} else {
			next = append(next, NewTrackedBlob(blob, now))
		}
	}

	for i, track := range prev {
		if !claimed[i] {
			tr.retire(track, now)
		}
	}

	tr.tracks = next
}

// retire counts a directional pass when the track's travel along the
// configured axis exceeds the threshold, then reports it to the sink.
// Travel inside [-threshold, +threshold] counts nothing; the track simply
// vanishes.
func (tr *Tracker) retire(t *TrackedBlob, now time.Time) {
	travel := t.travelAlong(tr.params.PassAxis)

	direction := DirectionNone
	switch {
	case travel > tr.params.TravelThreshold:
		direction = DirectionRight
		tr.counts.Right++
	case travel < -tr.params.TravelThreshold:
		direction = DirectionLeft
		tr.counts.Left++
	}

	if tr.sink != nil {
		event := PassEvent{
			TrackID:        t.ID,
			Direction:      direction,
			TravelRows:     t.TravelRows,
			TravelCols:     t.TravelCols,
			Area:           t.Blob.Area,
			AvgTemperature: t.Blob.AvgTemperature,
			FramesObserved: t.FramesObserved,
			FirstSeen:      t.FirstSeen,
			LastSeen:       t.LastSeen,
		}
		if err := tr.sink.RecordPass(event); err != nil {
			monitoring.Logf("failed to record pass event for track %s: %v", t.ID, err)
		}
	}
}

// ActiveTracks returns the carried track set. The returned slice is a copy;
// the tracks themselves are shared and must be treated as read-only.
func (tr *Tracker) ActiveTracks() []*TrackedBlob {
	out := make([]*TrackedBlob, len(tr.tracks))
	copy(out, tr.tracks)
	return out
}

// Counts returns the current pass-counter snapshot.
func (tr *Tracker) Counts() PassCounts { return tr.counts }
