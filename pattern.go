// Copyright 2026 The trigsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package trigsim

import (
	"github.com/snemo/trigsim/lut"
)

// A PatternEngine derives the pattern words of sliding zones and zones from a
// HitMatrix by looking up the trigger memories. It only reads its tables and
// is safe for concurrent use.
//
type PatternEngine struct {
	geo    *Geometry
	part   *Partitioner
	tables lut.Set
}

// NewPatternEngine returns a PatternEngine reading the given tables. The
// tables must have passed lut.Set.Check.
//
func NewPatternEngine(g *Geometry, tables lut.Set) *PatternEngine {
	return &PatternEngine{
		geo:    g,
		part:   NewPartitioner(g),
		tables: tables,
	}
}

// SlidingZone computes sliding zone i of a matrix side.
//
func (e *PatternEngine) SlidingZone(m *HitMatrix, side, i int) SlidingZone {
	w := e.part.SliceSliding(m, side, i)
	sz := SlidingZone{
		Side:            side,
		Index:           i,
		Start:           w.FirstRow,
		Stop:            w.FirstRow + w.Width - 1,
		LayerProjection: w.LayerProjection(),
		RowProjection:   w.RowProjection(rowOffset(i, w.Width)),
	}
	sz.IO = e.tables[lut.Mem1].Fetch(sz.LayerProjection)
	sz.LR = e.tables[lut.Mem2].Fetch(sz.RowProjection)
	return sz
}

// InOutAddress concatenates the in/out words of the four sliding zones of a
// zone. Sliding zone k lands at bits 2k..2k+1.
//
func InOutAddress(sz []SlidingZone) uint32 {
	var a uint32
	for k := 0; k < SlidingPerZone; k++ {
		a |= (sz[k].IO & 3) << (2 * uint(k))
	}
	return a
}

// LMRAddress concatenates the left/right words of the four sliding zones of a
// zone into a 9 bit word with sliding zone k at bits 2k+1..2k+2, then drops
// bit 8 to fit the 8 bit mem4 address. The left bit of the outermost sliding
// zone is lost.
//
func LMRAddress(sz []SlidingZone) uint32 {
	var a uint32
	for k := 0; k < SlidingPerZone; k++ {
		a |= (sz[k].LR & 3) << (2*uint(k) + 1)
	}
	return a & 0xff
}

// NearSource computes the near source bits of window w. Only the first k
// layers count. A hit at local row r of a window of width n is left when
// r < (n+1)/2 and right when r >= n/2: the middle row of an odd width window
// is both.
//
func NearSource(w *Window, k int) uint32 {
	var d uint32
	for l := 0; l < k && l < w.Layers; l++ {
		for r := 0; r < w.Width; r++ {
			if !w.At(l, r) {
				continue
			}
			if r < (w.Width+1)/2 {
				d |= NSZLeft
			}
			if r >= w.Width/2 {
				d |= NSZRight
			}
		}
	}
	return d
}

// Zone computes zone z of a matrix side. sz holds the sliding zones of that
// side, as returned by SlidingZone, indexed by sliding zone index.
//
func (e *PatternEngine) Zone(m *HitMatrix, side, z int, sz []SlidingZone) Zone {
	w := e.part.Slice(m, side, z)
	first := ZoneSlidingZones(z)
	zsz := sz[first : first+SlidingPerZone]
	io := InOutAddress(zsz)
	zn := Zone{
		Side:       side,
		Index:      z,
		Start:      w.FirstRow,
		Stop:       w.FirstRow + w.Width - 1,
		InOut:      e.tables[lut.Mem3].Fetch(io),
		NearSource: NearSource(&w, e.geo.NearSourceLayers),
	}
	if a := LMRAddress(zsz); a != 0 {
		zn.LMR = e.tables[lut.Mem4].Fetch(a)
	} else {
		zn.LMR = e.tables[lut.Mem5].Fetch(io)
	}
	return zn
}

// Side computes all sliding zones and zones of a matrix side.
//
func (e *PatternEngine) Side(m *HitMatrix, side int) ([NumSlidingZones]SlidingZone, [NumZones]Zone) {
	var sz [NumSlidingZones]SlidingZone
	var zn [NumZones]Zone
	for i := range sz {
		sz[i] = e.SlidingZone(m, side, i)
	}
	for z := range zn {
		zn[z] = e.Zone(m, side, z, sz[:])
	}
	return sz, zn
}

// Zones computes the sliding zones and zones of both sides of m.
//
func (e *PatternEngine) Zones(m *HitMatrix) (sz [NumSides][NumSlidingZones]SlidingZone, zones [NumSides][NumZones]Zone) {
	for side := range zones {
		sz[side], zones[side] = e.Side(m, side)
	}
	return sz, zones
}
