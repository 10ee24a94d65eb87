package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridtherm/passage.report/internal/thermal"
)

func writeTuningFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTuningConfigMissingFile(t *testing.T) {
	t.Parallel()

	cfg, err := LoadTuningConfig(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)

	// An empty config leaves the defaults untouched.
	params, err := cfg.Apply(thermal.DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, thermal.DefaultParams(), params)
}

func TestLoadTuningConfigInvalidJSON(t *testing.T) {
	t.Parallel()

	_, err := LoadTuningConfig(writeTuningFile(t, "{not json"))
	assert.Error(t, err)
}

func TestApplyOverrides(t *testing.T) {
	t.Parallel()

	cfg, err := LoadTuningConfig(writeTuningFile(t, `{
		"window_size": 50,
		"min_blob_size": 2,
		"sensitivity": 2.5,
		"travel_threshold": 6,
		"pass_axis": "rows",
		"leftward_positive": false,
		"flip_horizontal": false
	}`))
	require.NoError(t, err)

	params, err := cfg.Apply(thermal.DefaultParams())
	require.NoError(t, err)

	assert.Equal(t, 50, params.WindowSize)
	assert.Equal(t, 2, params.MinBlobSize)
	assert.Equal(t, 2.5, params.Sensitivity)
	assert.Equal(t, 6.0, params.TravelThreshold)
	assert.Equal(t, thermal.AxisRows, params.PassAxis)
	assert.False(t, params.LeftwardPositive)
	assert.False(t, params.FlipHorizontal)

	// Fields absent from the file keep their defaults.
	assert.Equal(t, thermal.DefaultParams().Rows, params.Rows)
	assert.Equal(t, thermal.DefaultParams().MatchThreshold, params.MatchThreshold)
}

func TestApplyZeroValueOverride(t *testing.T) {
	t.Parallel()

	// An explicit zero is an override, not "unset".
	cfg, err := LoadTuningConfig(writeTuningFile(t, `{"min_blob_size": 0}`))
	require.NoError(t, err)

	base := thermal.DefaultParams()
	base.MinBlobSize = 3
	params, err := cfg.Apply(base)
	require.NoError(t, err)
	assert.Equal(t, 0, params.MinBlobSize)
}

func TestApplyInvalidPassAxis(t *testing.T) {
	t.Parallel()

	cfg, err := LoadTuningConfig(writeTuningFile(t, `{"pass_axis": "diagonal"}`))
	require.NoError(t, err)

	_, err = cfg.Apply(thermal.DefaultParams())
	assert.Error(t, err)
}
