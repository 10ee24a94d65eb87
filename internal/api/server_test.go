package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridtherm/passage.report/internal/db"
	"github.com/gridtherm/passage.report/internal/thermal"
)

func testPipeline(t *testing.T, sink thermal.PassSink) *thermal.Pipeline {
	t.Helper()

	params := thermal.DefaultParams()
	params.WindowSize = 1
	params.MinBlobSize = 1
	pipeline, err := thermal.NewPipeline(params, sink)
	require.NoError(t, err)

	// One uniform frame warms the single-frame background window.
	_, err = pipeline.ProcessFrame(thermal.UniformFrame(params.Rows, params.Cols, 20), time.Now())
	require.NoError(t, err)
	return pipeline
}

// hotFrame returns a uniform frame with a 2x2 warm square at the given column.
func hotFrame(col int) thermal.Frame {
	f := thermal.UniformFrame(4, 16, 20)
	for r := 1; r <= 2; r++ {
		for c := col; c <= col+1; c++ {
			f[r][c] = 30
		}
	}
	return f
}

// runPass walks a warm square across the full column range and retires it,
// producing one rightward pass.
func runPass(t *testing.T, pipeline *thermal.Pipeline) {
	t.Helper()
	for c := 0; c <= 13; c++ {
		_, err := pipeline.ProcessFrame(hotFrame(c), time.Now())
		require.NoError(t, err)
	}
	_, err := pipeline.ProcessFrame(thermal.UniformFrame(4, 16, 20), time.Now())
	require.NoError(t, err)
}

func openTestDB(t *testing.T) *db.DB {
	t.Helper()

	database, err := db.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, database.MigrateUp("../../migrations"))
	return database
}

func get(t *testing.T, mux *http.ServeMux, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	t.Parallel()

	mux := NewServer(testPipeline(t, nil), nil).ServeMux()
	rec := get(t, mux, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCountsAfterPass(t *testing.T) {
	t.Parallel()

	pipeline := testPipeline(t, nil)
	runPass(t, pipeline)

	rec := get(t, NewServer(pipeline, nil).ServeMux(), "/api/counts")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Left  int64 `json:"left"`
		Right int64 `json:"right"`
		Net   int64 `json:"net"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(0), body.Left)
	assert.Equal(t, int64(1), body.Right)
	assert.Equal(t, int64(-1), body.Net, "leftward-positive sign convention")
}

func TestCountsRejectsPost(t *testing.T) {
	t.Parallel()

	mux := NewServer(testPipeline(t, nil), nil).ServeMux()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/counts", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestTracks(t *testing.T) {
	t.Parallel()

	pipeline := testPipeline(t, nil)
	_, err := pipeline.ProcessFrame(hotFrame(6), time.Now())
	require.NoError(t, err)

	rec := get(t, NewServer(pipeline, nil).ServeMux(), "/api/tracks")
	require.Equal(t, http.StatusOK, rec.Code)

	var tracks []trackResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tracks))
	require.Len(t, tracks, 1)
	assert.Equal(t, 4, tracks[0].Area)
	assert.InDelta(t, 6.5, tracks[0].CentroidCol, 1e-9)
	assert.InDelta(t, 30.0, tracks[0].AvgTemperature, 1e-9)
	assert.NotEmpty(t, tracks[0].ID)
}

func TestTracksEmptyIsJSONArray(t *testing.T) {
	t.Parallel()

	rec := get(t, NewServer(testPipeline(t, nil), nil).ServeMux(), "/api/tracks")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestEventsWithoutPersistence(t *testing.T) {
	t.Parallel()

	rec := get(t, NewServer(testPipeline(t, nil), nil).ServeMux(), "/api/events")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEvents(t *testing.T) {
	t.Parallel()

	database := openTestDB(t)
	pipeline := testPipeline(t, database)
	runPass(t, pipeline)

	mux := NewServer(pipeline, database).ServeMux()

	rec := get(t, mux, "/api/events")
	require.Equal(t, http.StatusOK, rec.Code)

	var events []db.PassEventRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, "right", events[0].Direction)
	assert.Equal(t, 4, events[0].Area)

	rec = get(t, mux, "/api/events?limit=bogus")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, mux, "/api/events?limit=-1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEventsEmptyIsJSONArray(t *testing.T) {
	t.Parallel()

	database := openTestDB(t)
	rec := get(t, NewServer(testPipeline(t, nil), database).ServeMux(), "/api/events")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestParamsGetAndUpdate(t *testing.T) {
	t.Parallel()

	pipeline := testPipeline(t, nil)
	mux := NewServer(pipeline, nil).ServeMux()

	rec := get(t, mux, "/api/params")
	require.Equal(t, http.StatusOK, rec.Code)

	var params thermal.Params
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &params))
	assert.Equal(t, thermal.DefaultSensitivity, params.Sensitivity)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/params",
		strings.NewReader(`{"sensitivity": 5, "min_blob_size": 2}`))
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &params))
	assert.Equal(t, 5.0, params.Sensitivity)
	assert.Equal(t, 2, params.MinBlobSize)

	got := pipeline.Params()
	assert.Equal(t, 5.0, got.Sensitivity)
	assert.Equal(t, 2, got.MinBlobSize)
}

func TestParamsRejectsBadPayload(t *testing.T) {
	t.Parallel()

	mux := NewServer(testPipeline(t, nil), nil).ServeMux()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/params", strings.NewReader("{"))
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
