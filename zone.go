// Copyright 2026 The trigsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package trigsim

import (
	"fmt"

	"github.com/snemo/trigsim/internal/bits"
)

// A Window is a copy of the cells of a row range of one matrix side, over all
// layers. Rows are local to the window: row 0 is the window's first row.
//
type Window struct {
	Side     int
	FirstRow int
	Layers   int
	Width    int
	cells    []bool
}

// At returns the state of the cell at layer and local row.
//
func (w *Window) At(layer, row int) bool {
	return w.cells[layer*w.Width+row]
}

// IsEmpty returns true if no cell of w is hit.
//
func (w *Window) IsEmpty() bool {
	for _, c := range w.cells {
		if c {
			return false
		}
	}
	return true
}

// LayerProjection returns the layer projection of w: bit l is set if any row
// of layer l is hit.
//
func (w *Window) LayerProjection() uint32 {
	hit := make([]bool, w.Layers)
	for l := range hit {
		for r := 0; r < w.Width; r++ {
			if w.At(l, r) {
				hit[l] = true
				break
			}
		}
	}
	return bits.Pack(hit)
}

// RowProjection returns the row projection of w: bit r+off is set if any
// layer of row r is hit.
//
func (w *Window) RowProjection(off uint) uint32 {
	hit := make([]bool, w.Width)
	for r := range hit {
		for l := 0; l < w.Layers; l++ {
			if w.At(l, r) {
				hit[r] = true
				break
			}
		}
	}
	return bits.Pack(hit) << off
}

// A Partitioner cuts a HitMatrix into zones and sliding zones.
//
type Partitioner struct {
	geo *Geometry
	sz  [NumSlidingZones][2]int
}

// NewPartitioner returns a Partitioner for geometry g.
//
func NewPartitioner(g *Geometry) *Partitioner {
	p := &Partitioner{geo: g}
	for i := range p.sz {
		p.sz[i][0], p.sz[i][1] = g.SlidingZoneRows(i)
	}
	return p
}

// ZoneRows returns the first and last row of zone z.
//
func (p *Partitioner) ZoneRows(z int) (start, stop int) {
	if z < 0 || z >= NumZones {
		panic(fmt.Sprintf("zone %d out of range", z))
	}
	return p.geo.ZoneRows(z)
}

// SlidingZoneRows returns the first and last row of sliding zone i.
//
func (p *Partitioner) SlidingZoneRows(i int) (start, stop int) {
	if i < 0 || i >= NumSlidingZones {
		panic(fmt.Sprintf("sliding zone %d out of range", i))
	}
	return p.sz[i][0], p.sz[i][1]
}

// Slice copies zone z of a matrix side.
//
func (p *Partitioner) Slice(m *HitMatrix, side, z int) Window {
	start, stop := p.ZoneRows(z)
	return slice(m, side, start, stop)
}

// SliceSliding copies sliding zone i of a matrix side.
//
func (p *Partitioner) SliceSliding(m *HitMatrix, side, i int) Window {
	start, stop := p.SlidingZoneRows(i)
	return slice(m, side, start, stop)
}

func slice(m *HitMatrix, side, start, stop int) Window {
	w := Window{
		Side:     side,
		FirstRow: start,
		Layers:   m.layers,
		Width:    stop - start + 1,
	}
	w.cells = make([]bool, w.Layers*w.Width)
	for l := 0; l < w.Layers; l++ {
		for r := 0; r < w.Width; r++ {
			w.cells[l*w.Width+r] = m.At(side, l, start+r)
		}
	}
	return w
}

// A SlidingZone holds the projections of a sliding zone and the words read
// from the sliding zone memories.
//
type SlidingZone struct {
	Side            int
	Index           int
	Start           int
	Stop            int
	LayerProjection uint32 // mem1 address
	RowProjection   uint32 // mem2 address
	IO              uint32 // mem1 data: lut.Inner, lut.Outer
	LR              uint32 // mem2 data: lut.NarrowRight, lut.NarrowLeft
}

// rowOffset aligns the row projection of the narrow sliding zones at the low
// edge of the module on the high bits of the mem2 address.
//
func rowOffset(i, width int) uint {
	if i < 2 && width < SlidingZoneWidth {
		return uint(SlidingZoneWidth - width)
	}
	return 0
}

// A Zone holds the pattern words of a zone.
//
type Zone struct {
	Side       int
	Index      int
	Start      int
	Stop       int
	InOut      uint32 // mem3 data
	LMR        uint32 // mem4 or mem5 data: lut.Right, lut.Middle, lut.Left
	NearSource uint32 // NSZRight, NSZLeft
}

// Near source bits of a zone.
//
const (
	NSZRight = 1 << 0
	NSZLeft  = 1 << 1
)
