// Package config loads optional JSON tuning files. The schema matches the
// /api/params endpoint so the same JSON works for startup configuration and
// runtime updates.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gridtherm/passage.report/internal/thermal"
)

// TuningConfig overrides a subset of thermal.Params. Pointer fields
// distinguish "not set" from zero values.
type TuningConfig struct {
	Rows           *int  `json:"rows,omitempty"`
	Cols           *int  `json:"cols,omitempty"`
	FlipHorizontal *bool `json:"flip_horizontal,omitempty"`

	WindowSize  *int     `json:"window_size,omitempty"`
	MinBlobSize *int     `json:"min_blob_size,omitempty"`
	Sensitivity *float64 `json:"sensitivity,omitempty"`

	MatchThreshold   *float64 `json:"match_threshold,omitempty"`
	TravelThreshold  *float64 `json:"travel_threshold,omitempty"`
	PassAxis         *string  `json:"pass_axis,omitempty"` // "rows" or "cols"
	LeftwardPositive *bool    `json:"leftward_positive,omitempty"`
}

// LoadTuningConfig reads a tuning file. A missing file is not an error; it
// returns an empty config so defaults apply.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &TuningConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read tuning config %s: %w", path, err)
	}

	var cfg TuningConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse tuning config %s: %w", path, err)
	}
	return &cfg, nil
}

// Apply overlays the set fields onto params and returns the result.
func (c *TuningConfig) Apply(params thermal.Params) (thermal.Params, error) {
	if c.Rows != nil {
		params.Rows = *c.Rows
	}
	if c.Cols != nil {
		params.Cols = *c.Cols
	}
	if c.FlipHorizontal != nil {
		params.FlipHorizontal = *c.FlipHorizontal
	}
	if c.WindowSize != nil {
		params.WindowSize = *c.WindowSize
	}
	if c.MinBlobSize != nil {
		params.MinBlobSize = *c.MinBlobSize
	}
	if c.Sensitivity != nil {
		params.Sensitivity = *c.Sensitivity
	}
	if c.MatchThreshold != nil {
		params.MatchThreshold = *c.MatchThreshold
	}
	if c.TravelThreshold != nil {
		params.TravelThreshold = *c.TravelThreshold
	}
	if c.PassAxis != nil {
		switch *c.PassAxis {
		case "rows":
			params.PassAxis = thermal.AxisRows
		case "cols":
			params.PassAxis = thermal.AxisCols
		default:
			return params, fmt.Errorf("invalid pass_axis %q (want \"rows\" or \"cols\")", *c.PassAxis)
		}
	}
	if c.LeftwardPositive != nil {
		params.LeftwardPositive = *c.LeftwardPositive
	}
	return params, nil
}
