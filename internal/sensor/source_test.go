package sensor

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridtherm/passage.report/internal/thermal"
)

const (
	framePayload = `{"row0":[1,2,3],"row1":[4,5,6]}`
	framePacket  = "!" + framePayload + "\n"
)

func testDecoder() FrameDecoder {
	return FrameDecoder{Rows: 2, Cols: 3}
}

func TestFrameDecoderDecode(t *testing.T) {
	t.Parallel()

	frame, err := testDecoder().Decode([]byte(framePayload))
	require.NoError(t, err)

	want := thermal.Frame{{1, 2, 3}, {4, 5, 6}}
	if diff := cmp.Diff(want, frame); diff != "" {
		t.Errorf("decoded frame mismatch (-want +got):\n%s", diff)
	}
}

func TestFrameDecoderFlip(t *testing.T) {
	t.Parallel()

	dec := testDecoder()
	dec.Flip = true
	frame, err := dec.Decode([]byte(framePayload))
	require.NoError(t, err)

	want := thermal.Frame{{3, 2, 1}, {6, 5, 4}}
	if diff := cmp.Diff(want, frame); diff != "" {
		t.Errorf("flipped frame mismatch (-want +got):\n%s", diff)
	}
}

func TestFrameDecoderErrors(t *testing.T) {
	t.Parallel()

	_, err := testDecoder().Decode([]byte("not json"))
	assert.Error(t, err)

	_, err = testDecoder().Decode([]byte(`{"row0":[1,2,3]}`))
	assert.Error(t, err, "missing row1 must be rejected")
}

// collectFrames drains a source until its channel closes.
func collectFrames(t *testing.T, src Source) []thermal.Frame {
	t.Helper()

	done := make(chan error, 1)
	go func() { done <- src.Monitor(context.Background()) }()

	var frames []thermal.Frame
	for f := range src.Frames() {
		frames = append(frames, f)
	}
	require.NoError(t, <-done)
	return frames
}

func TestReplaySourceStream(t *testing.T) {
	t.Parallel()

	// Line noise before the start delimiter and a malformed payload in the
	// middle must both be skipped without dropping the stream.
	stream := "boot noise" + framePacket + "!{broken\n" + framePacket
	src := NewReplaySource(strings.NewReader(stream), testDecoder(), 0)

	frames := collectFrames(t, src)
	require.Len(t, frames, 2)
	assert.Equal(t, 2, frames[0].Rows())
	assert.Equal(t, 3, frames[0].Cols())
	assert.Equal(t, 6.0, frames[1][1][2])
}

func TestReplaySourceTruncatedTail(t *testing.T) {
	t.Parallel()

	// A packet cut off mid-payload at EOF is discarded as malformed.
	stream := framePacket + "!" + framePayload[:10]
	src := NewReplaySource(strings.NewReader(stream), testDecoder(), 0)

	frames := collectFrames(t, src)
	assert.Len(t, frames, 1)
}

func TestReplaySourceCancelled(t *testing.T) {
	t.Parallel()

	src := NewReplaySource(strings.NewReader(framePacket+framePacket), testDecoder(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- src.Monitor(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Monitor did not return after cancellation")
	}
}
