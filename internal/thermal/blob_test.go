package thermal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPixelAdjacent(t *testing.T) {
	t.Parallel()

	p := Pixel{Row: 1, Col: 1}

	assert.True(t, p.Adjacent(Pixel{Row: 2, Col: 1}), "row neighbor")
	assert.True(t, p.Adjacent(Pixel{Row: 1, Col: 0}), "column neighbor")
	assert.True(t, p.Adjacent(Pixel{Row: 2, Col: 2}), "diagonal neighbor")
	assert.False(t, p.Adjacent(Pixel{Row: 3, Col: 1}), "two rows away")

	// Adjacency is symmetric.
	q := Pixel{Row: 1, Col: 0}
	far := Pixel{Row: 3, Col: 1}
	assert.Equal(t, q.Adjacent(far), far.Adjacent(q))
}

// TestBlobCentroidSequence adds (1,3),(3,3),(1,1),(3,1) in order and checks
// the centroid after every addition.
func TestBlobCentroidSequence(t *testing.T) {
	t.Parallel()

	blob := &Blob{}
	steps := []struct {
		pixel   Pixel
		wantRow float64
		wantCol float64
	}{
		{Pixel{Row: 1, Col: 3}, 1, 3},
		{Pixel{Row: 3, Col: 3}, 2, 3},
		{Pixel{Row: 1, Col: 1}, 5.0 / 3.0, 7.0 / 3.0},
		{Pixel{Row: 3, Col: 1}, 2, 2},
	}

	for i, step := range steps {
		blob.AddPixel(step.pixel)
		assert.InDelta(t, step.wantRow, blob.CentroidRow, 1e-9, "centroid row after pixel %d", i)
		assert.InDelta(t, step.wantCol, blob.CentroidCol, 1e-9, "centroid col after pixel %d", i)
	}
	assert.Equal(t, 4, blob.Area)
}

func TestBlobDescriptors(t *testing.T) {
	t.Parallel()

	blob := &Blob{}
	blob.AddPixel(Pixel{Row: 1, Col: 4, Temperature: 30})
	blob.AddPixel(Pixel{Row: 1, Col: 5, Temperature: 32})
	blob.AddPixel(Pixel{Row: 2, Col: 4, Temperature: 28})

	assert.Equal(t, 3, blob.Area)
	assert.Equal(t, 2, blob.Width())
	assert.Equal(t, 2, blob.Height())
	assert.InDelta(t, 1.0, blob.Aspect(), 1e-9)
	assert.InDelta(t, 30.0, blob.AvgTemperature, 1e-9)
	assert.Equal(t, 1, blob.MinRow)
	assert.Equal(t, 2, blob.MaxRow)
	assert.Equal(t, 4, blob.MinCol)
	assert.Equal(t, 5, blob.MaxCol)
}

// TestExtractBlobsDiagonalTouch checks that two L-shapes touching only
// diagonally merge into a single blob.
func TestExtractBlobsDiagonalTouch(t *testing.T) {
	t.Parallel()

	// First L: (0,0),(1,0),(1,1). Second L: (2,2),(2,3),(3,3).
	// (1,1) and (2,2) touch diagonally.
	active := []Pixel{
		{Row: 0, Col: 0}, {Row: 1, Col: 0}, {Row: 1, Col: 1},
		{Row: 2, Col: 2}, {Row: 2, Col: 3}, {Row: 3, Col: 3},
	}

	blobs := ExtractBlobs(active)
	require.Len(t, blobs, 1)
	assert.Equal(t, 6, blobs[0].Area)
}

func TestExtractBlobsSeparateClusters(t *testing.T) {
	t.Parallel()

	// Two clusters separated by at least 2 cells in both axes.
	active := []Pixel{
		{Row: 0, Col: 0}, {Row: 0, Col: 1},
		{Row: 3, Col: 5}, {Row: 3, Col: 6},
	}

	blobs := ExtractBlobs(active)
	require.Len(t, blobs, 2)
	assert.Equal(t, 2, blobs[0].Area)
	assert.Equal(t, 2, blobs[1].Area)
}

// TestExtractBlobsMembershipDeterministic verifies component membership is
// independent of input order.
func TestExtractBlobsMembershipDeterministic(t *testing.T) {
	t.Parallel()

	active := []Pixel{
		{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 1, Col: 1},
		{Row: 3, Col: 8}, {Row: 3, Col: 9},
	}
	reversed := make([]Pixel, len(active))
	for i, p := range active {
		reversed[len(active)-1-i] = p
	}

	sizes := func(blobs []*Blob) map[int]int {
		out := map[int]int{}
		for _, b := range blobs {
			out[b.Area]++
		}
		return out
	}

	assert.Equal(t, sizes(ExtractBlobs(active)), sizes(ExtractBlobs(reversed)))
}

func TestExtractBlobsEmpty(t *testing.T) {
	t.Parallel()
	assert.Empty(t, ExtractBlobs(nil))
}

func TestFilterBlobs(t *testing.T) {
	t.Parallel()

	small := &Blob{}
	small.AddPixel(Pixel{Row: 0, Col: 0})

	big := &Blob{}
	for c := 0; c < 5; c++ {
		big.AddPixel(Pixel{Row: 0, Col: c})
	}

	kept := FilterBlobs([]*Blob{small, big}, 4)
	require.Len(t, kept, 1)
	assert.Equal(t, 5, kept[0].Area)

	// minArea 0 keeps everything, including single pixels.
	all := FilterBlobs([]*Blob{small, big}, 0)
	assert.Len(t, all, 2)
}
