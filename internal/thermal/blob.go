package thermal

// Blob is an 8-connected cluster of active pixels from a single frame.
// Descriptors are recomputed incrementally as pixels are added; a Blob that
// exists always has Area >= 1.
type Blob struct {
	Pixels []Pixel

	MinRow, MaxRow int
	MinCol, MaxCol int

	Area           int
	CentroidRow    float64
	CentroidCol    float64
	AvgTemperature float64

	sumRow, sumCol, sumTemp float64
}

// AddPixel appends a pixel and refreshes the blob's descriptors.
func (b *Blob) AddPixel(p Pixel) {
	if b.Area == 0 {
		b.MinRow, b.MaxRow = p.Row, p.Row
		b.MinCol, b.MaxCol = p.Col, p.Col
	} else {
		if p.Row < b.MinRow {
			b.MinRow = p.Row
		}
		if p.Row > b.MaxRow {
			b.MaxRow = p.Row
		}
		if p.Col < b.MinCol {
			b.MinCol = p.Col
		}
		if p.Col > b.MaxCol {
			b.MaxCol = p.Col
		}
	}

	b.Pixels = append(b.Pixels, p)
	b.Area = len(b.Pixels)

	b.sumRow += float64(p.Row)
	b.sumCol += float64(p.Col)
	b.sumTemp += p.Temperature

	n := float64(b.Area)
	b.CentroidRow = b.sumRow / n
	b.CentroidCol = b.sumCol / n
	b.AvgTemperature = b.sumTemp / n
}

// Width returns the bounding-box width in cells (column extent).
func (b *Blob) Width() int { return b.MaxCol - b.MinCol + 1 }

// Height returns the bounding-box height in cells (row extent).
func (b *Blob) Height() int { return b.MaxRow - b.MinRow + 1 }

// Aspect returns the bounding-box aspect ratio, width over height.
func (b *Blob) Aspect() float64 { return float64(b.Width()) / float64(b.Height()) }

// ExtractBlobs groups active pixels into connected components. A seed pixel
// is pulled from the unassigned pool, then a worklist expansion moves every
// pool pixel adjacent to a confirmed member into the blob until no adjacent
// pixel remains. The pool strictly shrinks, so termination is guaranteed,
// and component membership is unique regardless of traversal order. Output
// order of blobs is unspecified.
func ExtractBlobs(active []Pixel) []*Blob {
	pool := make([]Pixel, len(active))
	copy(pool, active)

	var blobs []*Blob
	for len(pool) > 0 {
		// Seed a new blob from the end of the pool.
		queue := []Pixel{pool[len(pool)-1]}
		pool = pool[:len(pool)-1]
		blob := &Blob{}

		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]

			// Pull adjacent pool pixels into the worklist; the rest stay
			// unassigned for later blobs.
			remaining := pool[:0]
			for _, p := range pool {
				if cur.Adjacent(p) {
					queue = append(queue, p)
				} else {
					remaining = append(remaining, p)
				}
			}
			pool = remaining

			blob.AddPixel(cur)
		}

		blobs = append(blobs, blob)
	}
	return blobs
}

// FilterBlobs drops blobs with Area <= minArea. A minArea of zero keeps
// every blob.
func FilterBlobs(blobs []*Blob, minArea int) []*Blob {
	if minArea <= 0 {
		return blobs
	}
	kept := blobs[:0]
	for _, b := range blobs {
		if b.Area > minArea {
			kept = append(kept, b)
		}
	}
	return kept
}
