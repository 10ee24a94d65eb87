// Command passage.report runs the thermal-array passage counter: it reads
// frames from a serial port, a TCP socket, or a replay file, runs the
// detection and tracking pipeline, and serves counts over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gridtherm/passage.report/internal/api"
	"github.com/gridtherm/passage.report/internal/config"
	"github.com/gridtherm/passage.report/internal/db"
	"github.com/gridtherm/passage.report/internal/monitor"
	"github.com/gridtherm/passage.report/internal/sensor"
	"github.com/gridtherm/passage.report/internal/thermal"
)

var (
	sourceKind    = flag.String("source", "serial", "Frame source: serial, socket, or replay")
	serialPort    = flag.String("port", "/dev/ttyUSB0", "Serial port device")
	sensorListen  = flag.String("sensor-listen", ":8888", "Listen address for socket frame source")
	replayFile    = flag.String("replay", "", "Replay capture file (required with -source replay)")
	replayDelay   = flag.Duration("replay-delay", 0, "Delay between replayed frames")
	listen        = flag.String("listen", ":8080", "HTTP listen address")
	dbFile        = flag.String("db", "passage_data.db", "Path to the sqlite database")
	migrationsDir = flag.String("migrations", "migrations", "Path to schema migrations")
	configFile    = flag.String("config", "tuning.json", "Optional JSON tuning file")
	flip          = flag.Bool("flip", true, "Undo the sensor's horizontal row mirroring")
	snapshotEvery = flag.Duration("snapshot-interval", time.Minute, "Count snapshot persistence interval")
)

func main() {
	flag.Parse()

	params := thermal.DefaultParams()
	params.FlipHorizontal = *flip

	tuning, err := config.LoadTuningConfig(*configFile)
	if err != nil {
		log.Fatalf("failed to load tuning config: %v", err)
	}
	params, err = tuning.Apply(params)
	if err != nil {
		log.Fatalf("failed to apply tuning config: %v", err)
	}

	database, err := db.NewDB(*dbFile)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if err := database.MigrateUp(*migrationsDir); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	pipeline, err := thermal.NewPipeline(params, database)
	if err != nil {
		log.Fatalf("failed to create pipeline: %v", err)
	}

	source, err := newSource(params)
	if err != nil {
		log.Fatalf("failed to create frame source: %v", err)
	}
	defer source.Close()

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Transport monitor: frames the byte stream and feeds the frame channel.
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := source.Monitor(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("frame source failed: %v", err)
		}
		log.Print("frame source terminated")
	}()

	// Pipeline loop: one frame at a time, processed to completion.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for frame := range source.Frames() {
			if _, err := pipeline.ProcessFrame(frame, time.Now()); err != nil {
				log.Printf("dropped frame: %v", err)
			}
		}
		counts := pipeline.Counts()
		log.Printf("pipeline terminated: left=%d right=%d net=%d", counts.Left, counts.Right, pipeline.Net())
		stop()
	}()

	// Periodic counter snapshots for the history charts.
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(*snapshotEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				counts := pipeline.Counts()
				if err := database.RecordCountSnapshot(counts, pipeline.Net(), now); err != nil {
					log.Printf("failed to record count snapshot: %v", err)
				}
			}
		}
	}()

	// HTTP server: API plus history charts.
	mux := http.NewServeMux()
	apiMux := api.NewServer(pipeline, database).ServeMux()
	mux.Handle("/", apiMux)
	monitor.NewChartServer(database).AttachRoutes(mux)

	server := &http.Server{Addr: *listen, Handler: mux}
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("listening on %s", *listen)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown failed: %v", err)
	}
	source.Close()
	wg.Wait()
}

// newSource builds the configured frame source.
func newSource(params thermal.Params) (sensor.Source, error) {
	dec := sensor.FrameDecoder{Rows: params.Rows, Cols: params.Cols, Flip: params.FlipHorizontal}

	switch *sourceKind {
	case "serial":
		return sensor.NewSerialSource(*serialPort, dec)
	case "socket":
		return sensor.NewSocketSource(*sensorListen, dec)
	case "replay":
		if *replayFile == "" {
			return nil, errors.New("-replay is required with -source replay")
		}
		f, err := os.Open(*replayFile)
		if err != nil {
			return nil, err
		}
		return sensor.NewReplaySource(f, dec, *replayDelay), nil
	default:
		return nil, errors.New("unknown source kind " + *sourceKind)
	}
}
