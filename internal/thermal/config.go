package thermal

import "fmt"

// Axis selects which component of a track's travel vector is compared
// against the pass threshold at retirement.
type Axis int

const (
	// AxisCols counts passes along the column axis (the long, 16-cell axis
	// on the stock 4x16 sensor — the direction people walk through a door).
	AxisCols Axis = iota
	// AxisRows counts passes along the row axis.
	AxisRows
)

// Default tuning values for the stock 4x16 thermopile array.
const (
	// DefaultWindowSize is the number of frames kept for background statistics.
	DefaultWindowSize = 100
	// DefaultSensitivity is the deviation multiplier for active-cell detection.
	DefaultSensitivity = 3.0
	// DefaultMatchThreshold is the maximum difference factor for a track match.
	DefaultMatchThreshold = 40.0
	// DefaultTravelThreshold is the travel (in cells) a retiring track must
	// have accumulated for a directional pass to be counted.
	DefaultTravelThreshold = 8.0
)

// Params holds the tuning parameters for one pipeline instance.
type Params struct {
	Rows int // grid rows, e.g. 4
	Cols int // grid columns, e.g. 16

	// FlipHorizontal reverses each row during frame decoding. The sensor
	// transmits rows mirrored relative to its mounting orientation.
	FlipHorizontal bool

	WindowSize  int     // background sliding-window length (frames)
	MinBlobSize int     // blobs with Area <= MinBlobSize are discarded; 0 keeps all
	Sensitivity float64 // active when |mean-v| > Sensitivity*std

	MatchThreshold  float64 // maximum difference factor to accept a match
	TravelThreshold float64 // minimum |travel| along PassAxis to count a pass
	PassAxis        Axis    // travel component compared at retirement

	// LeftwardPositive selects the sign convention of the net count:
	// left-right when true, right-left when false.
	LeftwardPositive bool

	// Difference-factor weights.
	PositionWeight          float64 // per-cell centroid distance, no prediction yet
	PredictedPositionWeight float64 // per-cell distance from predicted centroid
	AreaWeight              float64
	AspectWeight            float64
	TemperatureWeight       float64
}

// DefaultParams returns tuning for the stock 4x16 sensor.
func DefaultParams() Params {
	return Params{
		Rows:                    4,
		Cols:                    16,
		FlipHorizontal:          true,
		WindowSize:              DefaultWindowSize,
		MinBlobSize:             0,
		Sensitivity:             DefaultSensitivity,
		MatchThreshold:          DefaultMatchThreshold,
		TravelThreshold:         DefaultTravelThreshold,
		PassAxis:                AxisCols,
		LeftwardPositive:        true,
		PositionWeight:          1,
		PredictedPositionWeight: 2,
		AreaWeight:              1,
		AspectWeight:            10,
		TemperatureWeight:       10,
	}
}

// Validate reports the first invalid parameter, if any.
func (p Params) Validate() error {
	if p.Rows <= 0 || p.Cols <= 0 {
		return fmt.Errorf("grid shape %dx%d is invalid", p.Rows, p.Cols)
	}
	if p.WindowSize <= 0 {
		return fmt.Errorf("window size %d is invalid", p.WindowSize)
	}
	if p.Sensitivity < 0 {
		return fmt.Errorf("sensitivity %v is invalid", p.Sensitivity)
	}
	if p.MatchThreshold <= 0 {
		return fmt.Errorf("match threshold %v is invalid", p.MatchThreshold)
	}
	if p.TravelThreshold < 0 {
		return fmt.Errorf("travel threshold %v is invalid", p.TravelThreshold)
	}
	return nil
}
