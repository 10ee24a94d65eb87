// Command gen-frames generates synthetic sensor capture files for replay
// testing: a noisy ambient background with a configurable number of warm
// blobs walking across the array.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
)

var (
	output    = flag.String("o", "capture.txt", "output path")
	rows      = flag.Int("rows", 4, "grid rows")
	cols      = flag.Int("cols", 16, "grid columns")
	warmup    = flag.Int("warmup", 120, "background-only frames before the first walk")
	walks     = flag.Int("walks", 3, "number of walk-through events")
	ambient   = flag.Float64("ambient", 22.0, "ambient temperature (C)")
	noise     = flag.Float64("noise", 0.05, "ambient noise amplitude (C)")
	body      = flag.Float64("body", 30.0, "blob temperature (C)")
	seedParam = flag.Int64("seed", 1, "random seed")
)

func main() {
	flag.Parse()

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("failed to create %s: %v", *output, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	defer w.Flush()

	rng := rand.New(rand.NewSource(*seedParam))
	total := 0

	for i := 0; i < *warmup; i++ {
		writeFrame(w, backgroundFrame(rng))
		total++
	}

	for walk := 0; walk < *walks; walk++ {
		// Alternate direction every other walk.
		leftToRight := walk%2 == 0
		for step := 0; step < *cols; step++ {
			frame := backgroundFrame(rng)
			col := step
			if !leftToRight {
				col = *cols - 1 - step
			}
			stampBlob(frame, col)
			writeFrame(w, frame)
			total++
		}
		// A few empty frames so the tracker retires the walk.
		for i := 0; i < 5; i++ {
			writeFrame(w, backgroundFrame(rng))
			total++
		}
	}

	log.Printf("wrote %d frames to %s", total, *output)
}

// backgroundFrame returns an ambient frame with uniform noise.
func backgroundFrame(rng *rand.Rand) [][]float64 {
	frame := make([][]float64, *rows)
	for r := range frame {
		frame[r] = make([]float64, *cols)
		for c := range frame[r] {
			frame[r][c] = *ambient + (rng.Float64()*2-1)**noise
		}
	}
	return frame
}

// stampBlob overlays a 2x2 warm blob centered on the given column.
func stampBlob(frame [][]float64, col int) {
	for r := 1; r <= 2 && r < *rows; r++ {
		for c := col; c <= col+1 && c < *cols; c++ {
			frame[r][c] = *body
		}
	}
}

// writeFrame emits one delimiter-framed JSON row-map packet.
func writeFrame(w *bufio.Writer, frame [][]float64) {
	payload := make(map[string][]float64, len(frame))
	for r, row := range frame {
		payload[fmt.Sprintf("row%d", r)] = row
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Fatalf("failed to marshal frame: %v", err)
	}
	w.WriteByte('!')
	w.Write(data)
	w.WriteByte('\n')
}
