package sensor

import (
	"bufio"
	"context"
	"io"
	"time"

	"github.com/gridtherm/passage.report/internal/monitoring"
	"github.com/gridtherm/passage.report/internal/thermal"
)

// ReplaySource replays recorded frame packets from a reader, typically a
// capture file written by cmd/gen-frames. It satisfies Source so the
// pipeline can run identically against live and recorded data.
type ReplaySource struct {
	Data io.Reader
	// Delay is the pause between frames; zero replays as fast as the
	// pipeline consumes.
	Delay time.Duration

	dec    FrameDecoder
	frames chan thermal.Frame
}

// NewReplaySource wraps a packet stream as a frame source.
func NewReplaySource(data io.Reader, dec FrameDecoder, delay time.Duration) *ReplaySource {
	return &ReplaySource{
		Data:   data,
		Delay:  delay,
		dec:    dec,
		frames: make(chan thermal.Frame),
	}
}

// Frames returns the channel of decoded frames.
func (s *ReplaySource) Frames() <-chan thermal.Frame { return s.frames }

// Monitor streams frames from the reader until EOF or cancellation.
func (s *ReplaySource) Monitor(ctx context.Context) error {
	defer close(s.frames)

	scan := bufio.NewScanner(s.Data)
	scan.Split(scanPackets(DefaultStartDelimiter, DefaultStopDelimiter))

	for scan.Scan() {
		payload := scan.Bytes()
		if len(payload) == 0 {
			continue
		}

		frame, err := s.dec.Decode(payload)
		if err != nil {
			monitoring.Logf("skipping malformed replay packet: %v", err)
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case s.frames <- frame:
		}

		if s.Delay > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(s.Delay):
			}
		}
	}
	return scan.Err()
}

// Close is a no-op; the caller owns the underlying reader.
func (s *ReplaySource) Close() error { return nil }
