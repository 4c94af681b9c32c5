package aura

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Grid is the default aura backend: a uniform bucket grid, cells addressed
// by hashing their (cellX, cellY) coordinate with xxhash. Grounded on
// server/world's chunk-bucketing scheme (world state partitioned
// into fixed-size chunks keyed by a hash of chunk coordinates), generalised
// from block storage to a rebuilt-per-tick point index.
type Grid struct {
	cellSizeCM int32
	buckets    map[uint64][]Positioned
}

// NewGrid returns a Grid backend with the given square cell size.
func NewGrid(cellSizeCM int32) *Grid {
	if cellSizeCM <= 0 {
		cellSizeCM = 5000
	}
	return &Grid{cellSizeCM: cellSizeCM}
}

func (g *Grid) cellKey(x, y int32) uint64 {
	cx, cy := x/g.cellSizeCM, y/g.cellSizeCM
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(cx))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(cy))
	return xxhash.Sum64(buf[:])
}

// Build replaces the grid's contents with points, bucketed by cell.
func (g *Grid) Build(points []Positioned) {
	buckets := make(map[uint64][]Positioned, len(points)/4+1)
	for _, p := range points {
		key := g.cellKey(p.X, p.Y)
		buckets[key] = append(buckets[key], p)
	}
	g.buckets = buckets
}

// RangeQuery visits every cell overlapping the rectangle and filters to the
// exact bounds.
func (g *Grid) RangeQuery(x1, y1, x2, y2 int32) []Positioned {
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	var out []Positioned
	for cx := x1 / g.cellSizeCM; cx <= x2/g.cellSizeCM; cx++ {
		for cy := y1 / g.cellSizeCM; cy <= y2/g.cellSizeCM; cy++ {
			var buf [8]byte
			binary.LittleEndian.PutUint32(buf[0:4], uint32(cx))
			binary.LittleEndian.PutUint32(buf[4:8], uint32(cy))
			for _, p := range g.buckets[xxhash.Sum64(buf[:])] {
				if p.X >= x1 && p.X <= x2 && p.Y >= y1 && p.Y <= y2 {
					out = append(out, p)
				}
			}
		}
	}
	return out
}

// Nearest performs a bounded range query of radiusCM around (x,y), sorts by
// squared distance, and truncates to limit. Good enough for the grid
// backend's intended use: small, bounded-radius neighbor queries.
func (g *Grid) Nearest(x, y int32, radiusCM int32, limit int) []Positioned {
	candidates := g.RangeQuery(x-radiusCM, y-radiusCM, x+radiusCM, y+radiusCM)
	type scored struct {
		p    Positioned
		dist int64
	}
	scoredList := make([]scored, 0, len(candidates))
	r2 := int64(radiusCM) * int64(radiusCM)
	for _, p := range candidates {
		dx, dy := int64(p.X-x), int64(p.Y-y)
		d2 := dx*dx + dy*dy
		if d2 <= r2 {
			scoredList = append(scoredList, scored{p, d2})
		}
	}
	for i := 1; i < len(scoredList); i++ {
		for j := i; j > 0 && scoredList[j].dist < scoredList[j-1].dist; j-- {
			scoredList[j], scoredList[j-1] = scoredList[j-1], scoredList[j]
		}
	}
	if limit > 0 && limit < len(scoredList) {
		scoredList = scoredList[:limit]
	}
	out := make([]Positioned, len(scoredList))
	for i, s := range scoredList {
		out[i] = s.p
	}
	return out
}
