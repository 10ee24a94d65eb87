package sensor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/gridtherm/passage.report/internal/monitoring"
	"github.com/gridtherm/passage.report/internal/thermal"
)

// SocketSource accepts TCP connections from a sensor node and reads
// delimiter-framed frame packets. One connection is served at a time; a
// dropped connection returns to accepting, so a rebooting sensor node can
// reconnect without restarting the pipeline.
type SocketSource struct {
	listener net.Listener
	dec      FrameDecoder
	frames   chan thermal.Frame

	start byte
	stop  byte
}

// NewSocketSource listens on addr (e.g. ":8888") for sensor connections.
func NewSocketSource(addr string, dec FrameDecoder) (*SocketSource, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	return &SocketSource{
		listener: ln,
		dec:      dec,
		frames:   make(chan thermal.Frame),
		start:    DefaultStartDelimiter,
		stop:     DefaultStopDelimiter,
	}, nil
}

// Addr returns the listener's address, useful when listening on ":0".
func (s *SocketSource) Addr() net.Addr { return s.listener.Addr() }

// Frames returns the channel of decoded frames.
func (s *SocketSource) Frames() <-chan thermal.Frame { return s.frames }

// Monitor accepts sensor connections and streams decoded frames until the
// context is cancelled or the listener is closed.
func (s *SocketSource) Monitor(ctx context.Context) error {
	defer close(s.frames)

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept failed: %w", err)
		}

		monitoring.Logf("sensor connected from %s", conn.RemoteAddr())
		if err := s.serve(ctx, conn); err != nil {
			monitoring.Logf("sensor connection dropped: %v", err)
		}
		conn.Close()

		if ctx.Err() != nil {
			return nil
		}
	}
}

// serve reads packets from a single connection until it drops or the
// context is cancelled.
func (s *SocketSource) serve(ctx context.Context, conn net.Conn) error {
	scan := bufio.NewScanner(conn)
	scan.Split(scanPackets(s.start, s.stop))

	for scan.Scan() {
		payload := scan.Bytes()
		if len(payload) == 0 {
			continue
		}

		frame, err := s.dec.Decode(payload)
		if err != nil {
			monitoring.Logf("skipping malformed socket packet: %v", err)
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case s.frames <- frame:
		}
	}
	return scan.Err()
}

// Close closes the listener, unblocking a pending Accept.
func (s *SocketSource) Close() error {
	return s.listener.Close()
}
