// Package api exposes the pipeline's counters, tracks, and persisted pass
// events over a JSON HTTP API.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gridtherm/passage.report/internal/db"
	"github.com/gridtherm/passage.report/internal/thermal"
)

// DefaultEventLimit bounds /api/events responses when no limit is given.
const DefaultEventLimit = 100

// Server serves pipeline state and persisted history.
type Server struct {
	pipeline *thermal.Pipeline
	db       *db.DB
}

// NewServer creates a server for the given pipeline. db may be nil when
// running without persistence; history endpoints then return 404.
func NewServer(pipeline *thermal.Pipeline, db *db.DB) *Server {
	return &Server{pipeline: pipeline, db: db}
}

// ServeMux returns the routing table for the API.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/counts", s.handleCounts)
	mux.HandleFunc("/api/tracks", s.handleTracks)
	mux.HandleFunc("/api/events", s.handleEvents)
	mux.HandleFunc("/api/params", s.handleParams)
	return mux
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

// countsResponse is the /api/counts payload.
type countsResponse struct {
	Left  int64     `json:"left"`
	Right int64     `json:"right"`
	Net   int64     `json:"net"`
	Taken time.Time `json:"taken"`
}

func (s *Server) handleCounts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	counts := s.pipeline.Counts()
	s.writeJSON(w, countsResponse{
		Left:  counts.Left,
		Right: counts.Right,
		Net:   s.pipeline.Net(),
		Taken: time.Now(),
	})
}

// trackResponse is one active track in the /api/tracks payload.
type trackResponse struct {
	ID             string  `json:"id"`
	CentroidRow    float64 `json:"centroid_row"`
	CentroidCol    float64 `json:"centroid_col"`
	Area           int     `json:"area"`
	AvgTemperature float64 `json:"avg_temperature"`
	TravelRows     float64 `json:"travel_rows"`
	TravelCols     float64 `json:"travel_cols"`
	FramesObserved int     `json:"frames_observed"`
}

func (s *Server) handleTracks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tracks := s.pipeline.ActiveTracks()
	out := make([]trackResponse, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, trackResponse{
			ID:             t.ID,
			CentroidRow:    t.Blob.CentroidRow,
			CentroidCol:    t.Blob.CentroidCol,
			Area:           t.Blob.Area,
			AvgTemperature: t.Blob.AvgTemperature,
			TravelRows:     t.TravelRows,
			TravelCols:     t.TravelCols,
			FramesObserved: t.FramesObserved,
		})
	}
	s.writeJSON(w, out)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.db == nil {
		http.Error(w, "persistence disabled", http.StatusNotFound)
		return
	}

	limit := DefaultEventLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	events, err := s.db.RecentPassEvents(limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to retrieve events: %v", err), http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []db.PassEventRow{}
	}
	s.writeJSON(w, events)
}

// paramsUpdate carries the runtime-tunable subset of thermal.Params.
// Pointer fields distinguish "not provided" from zero values.
type paramsUpdate struct {
	Sensitivity     *float64 `json:"sensitivity,omitempty"`
	MinBlobSize     *int     `json:"min_blob_size,omitempty"`
	MatchThreshold  *float64 `json:"match_threshold,omitempty"`
	TravelThreshold *float64 `json:"travel_threshold,omitempty"`
}

func (s *Server) handleParams(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, s.pipeline.Params())
	case http.MethodPost:
		var update paramsUpdate
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			http.Error(w, fmt.Sprintf("invalid params payload: %v", err), http.StatusBadRequest)
			return
		}
		s.pipeline.ApplyTuning(update.Sensitivity, update.MinBlobSize, update.MatchThreshold, update.TravelThreshold)
		s.writeJSON(w, s.pipeline.Params())
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
