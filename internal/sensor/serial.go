package sensor

import (
	"bufio"
	"context"
	"fmt"

	"go.bug.st/serial"

	"github.com/gridtherm/passage.report/internal/monitoring"
	"github.com/gridtherm/passage.report/internal/thermal"
)

// SerialSource reads delimiter-framed frame packets from a serial port.
type SerialSource struct {
	port   serial.Port
	dec    FrameDecoder
	frames chan thermal.Frame

	start byte
	stop  byte
}

// NewSerialSource opens the named port at 115200 8N1 — the sensor
// firmware's fixed line settings.
func NewSerialSource(portName string, dec FrameDecoder) (*SerialSource, error) {
	mode := &serial.Mode{
		BaudRate: 115200,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}

	return &SerialSource{
		port:   port,
		dec:    dec,
		frames: make(chan thermal.Frame),
		start:  DefaultStartDelimiter,
		stop:   DefaultStopDelimiter,
	}, nil
}

// Frames returns the channel of decoded frames.
func (s *SerialSource) Frames() <-chan thermal.Frame { return s.frames }

// Monitor reads packets from the serial port and sends decoded frames to
// the frames channel until the context is cancelled or the port fails.
// Malformed payloads are logged and skipped; the sensor re-syncs on the
// next start delimiter.
func (s *SerialSource) Monitor(ctx context.Context) error {
	defer close(s.frames)

	scan := bufio.NewScanner(s.port)
	scan.Split(scanPackets(s.start, s.stop))

	for scan.Scan() {
		payload := scan.Bytes()
		if len(payload) == 0 {
			continue
		}

		frame, err := s.dec.Decode(payload)
		if err != nil {
			monitoring.Logf("skipping malformed serial packet: %v", err)
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case s.frames <- frame:
		}
	}

	if err := scan.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("serial read failed: %w", err)
	}
	return nil
}

// Close closes the serial port, unblocking a pending Monitor read.
func (s *SerialSource) Close() error {
	return s.port.Close()
}
