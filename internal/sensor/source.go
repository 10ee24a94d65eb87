// Package sensor provides frame sources for the thermal-array pipeline:
// serial port, TCP socket, and file replay. Each source frames the raw byte
// stream into packets, decodes the JSON row-map payload, and delivers
// validated frames on a channel. The pipeline core never sees transport
// errors or malformed payloads.
package sensor

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/gridtherm/passage.report/internal/thermal"
)

// Default packet delimiters used by the sensor firmware.
const (
	DefaultStartDelimiter = '!'
	DefaultStopDelimiter  = '\n'
)

// Source delivers parsed frames from a transport. Monitor blocks until the
// context is cancelled or the transport fails; Close releases the
// underlying transport and may be called from another goroutine.
type Source interface {
	Frames() <-chan thermal.Frame
	Monitor(ctx context.Context) error
	Close() error
}

// FrameDecoder turns packet payloads into validated frames.
type FrameDecoder struct {
	Rows int
	Cols int
	// Flip reverses each row to undo the sensor's horizontal mirroring.
	Flip bool
}

// Decode parses a JSON row-map payload ({"row0": [...], ...}) into a Frame.
func (d FrameDecoder) Decode(payload []byte) (thermal.Frame, error) {
	var rows map[string][]float64
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal frame payload: %w", err)
	}
	return thermal.FrameFromRows(rows, d.Rows, d.Cols, d.Flip)
}

// scanPackets returns a bufio.SplitFunc that extracts payloads between a
// start and stop delimiter, discarding any noise outside packets. A zero
// start delimiter disables start framing and tokens become stop-delimited
// lines.
func scanPackets(start, stop byte) bufio.SplitFunc {
	return func(data []byte, atEOF bool) (advance int, token []byte, err error) {
		begin := 0
		if start != 0 {
			i := bytes.IndexByte(data, start)
			if i < 0 {
				if atEOF {
					return len(data), nil, nil
				}
				// Discard everything seen so far; no packet start yet.
				return len(data), nil, nil
			}
			begin = i + 1
		}

		if j := bytes.IndexByte(data[begin:], stop); j >= 0 {
			return begin + j + 1, data[begin : begin+j], nil
		}
		if atEOF {
			if begin < len(data) {
				return len(data), data[begin:], nil
			}
			return len(data), nil, nil
		}
		// Request more data without consuming the partial packet.
		return 0, nil, nil
	}
}
