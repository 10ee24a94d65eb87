// Package monitor provides debugging visualizations: go-echarts HTML charts
// of the pass counters and a gonum/plot time-series plotter for individual
// grid cells.
package monitor

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/gridtherm/passage.report/internal/db"
)

// DefaultChartWindow is how far back the counts chart reaches when no
// window is given.
const DefaultChartWindow = 24 * time.Hour

// ChartServer renders count history charts from persisted snapshots.
type ChartServer struct {
	db *db.DB
}

// NewChartServer creates a chart server backed by the given database.
func NewChartServer(db *db.DB) *ChartServer {
	return &ChartServer{db: db}
}

// AttachRoutes registers the chart endpoints on mux.
func (cs *ChartServer) AttachRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/charts/counts", cs.handleCounts)
	mux.HandleFunc("/charts/events", cs.handleEvents)
}

// handleCounts renders cumulative left/right/net counts over time.
func (cs *ChartServer) handleCounts(w http.ResponseWriter, r *http.Request) {
	window := DefaultChartWindow
	if v := r.URL.Query().Get("window"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			http.Error(w, "invalid window", http.StatusBadRequest)
			return
		}
		window = d
	}

	snaps, err := cs.db.CountSnapshotsSince(time.Now().Add(-window))
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to load snapshots: %v", err), http.StatusInternalServerError)
		return
	}

	times := make([]string, 0, len(snaps))
	left := make([]opts.LineData, 0, len(snaps))
	right := make([]opts.LineData, 0, len(snaps))
	net := make([]opts.LineData, 0, len(snaps))
	for _, s := range snaps {
		times = append(times, s.Taken.Format("15:04:05"))
		left = append(left, opts.LineData{Value: s.Left})
		right = append(right, opts.LineData{Value: s.Right})
		net = append(net, opts.LineData{Value: s.Net})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Passage Counts", Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Passage Counts", Subtitle: fmt.Sprintf("window=%s snapshots=%d", window, len(snaps))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	line.SetXAxis(times).
		AddSeries("left", left).
		AddSeries("right", right).
		AddSeries("net", net)

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		http.Error(w, fmt.Sprintf("failed to render chart: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// handleEvents renders recent pass events bucketed by direction.
func (cs *ChartServer) handleEvents(w http.ResponseWriter, r *http.Request) {
	events, err := cs.db.RecentPassEvents(500)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to load events: %v", err), http.StatusInternalServerError)
		return
	}

	counts := map[string]int{}
	for _, ev := range events {
		counts[ev.Direction]++
	}

	directions := []string{"left", "right", "none"}
	data := make([]opts.BarData, 0, len(directions))
	for _, d := range directions {
		data = append(data, opts.BarData{Value: counts[d]})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Pass Events", Width: "720px", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Recent Pass Events", Subtitle: fmt.Sprintf("last %d retirements", len(events))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(directions).
		AddSeries("events", data,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))

	var buf bytes.Buffer
	if err := bar.Render(&buf); err != nil {
		http.Error(w, fmt.Sprintf("failed to render chart: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
