// Copyright 2026 The trigsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package trigsim

import (
	"github.com/pkg/errors"
)

// Fixed dimensions of the trigger board.
//
const (
	NumSides         = 2
	NumZones         = 10
	NumSlidingZones  = 31
	SlidingZoneWidth = 8 // rows, also the mem2 address width
	SlidingPerZone   = 4 // sliding zones 3z .. 3z+3 make zone z
	slidingStride    = 3
)

// Geometry describes the tracker cell matrix of one module. A single
// Geometry value is shared by all components of a Sequencer.
//
type Geometry struct {
	Layers           int
	Rows             int
	NearSourceLayers int
	ZoneStart        [NumZones]int
	ZoneStop         [NumZones]int
}

// Reference returns the geometry of the SuperNEMO demonstrator module.
//
func Reference() Geometry {
	return Geometry{
		Layers:           9,
		Rows:             113,
		NearSourceLayers: 4,
		ZoneStart:        [NumZones]int{0, 9, 21, 33, 45, 57, 68, 80, 92, 104},
		ZoneStop:         [NumZones]int{8, 20, 32, 44, 56, 67, 79, 91, 103, 112},
	}
}

// Validate checks that g can drive the trigger memories.
//
func (g *Geometry) Validate() error {
	if g.Layers != 9 {
		return errors.Errorf("geometry: %d layers, the layer memory needs 9", g.Layers)
	}
	if g.Rows < SlidingZoneWidth || g.Rows > 4*(NumSlidingZones-1) {
		return errors.Errorf("geometry: %d rows out of sliding zone range", g.Rows)
	}
	if g.NearSourceLayers < 0 || g.NearSourceLayers > g.Layers {
		return errors.Errorf("geometry: near source layers %d out of range [0, %d]", g.NearSourceLayers, g.Layers)
	}
	next := 0
	for z := 0; z < NumZones; z++ {
		if g.ZoneStart[z] != next || g.ZoneStop[z] < g.ZoneStart[z] {
			return errors.Errorf("geometry: zone %d rows [%d, %d] not contiguous", z, g.ZoneStart[z], g.ZoneStop[z])
		}
		next = g.ZoneStop[z] + 1
	}
	if next != g.Rows {
		return errors.Errorf("geometry: zones cover %d rows out of %d", next, g.Rows)
	}
	return nil
}

// ZoneRows returns the first and last row of zone z.
//
func (g *Geometry) ZoneRows(z int) (start, stop int) {
	return g.ZoneStart[z], g.ZoneStop[z]
}

// SlidingZoneRows returns the first and last row of sliding zone i.
//
func (g *Geometry) SlidingZoneRows(i int) (start, stop int) {
	switch {
	case i <= 16:
		stop = 4 * i
	default:
		stop = 4*i - 1
	}
	if stop > g.Rows-1 {
		stop = g.Rows - 1
	}
	w := SlidingZoneWidth
	switch i {
	case 0, NumSlidingZones - 1:
		w = 1
	case 1, NumSlidingZones - 2:
		w = 5
	}
	return stop - w + 1, stop
}

// ZoneSlidingZones returns the first sliding zone of zone z. Zone z spans
// SlidingPerZone consecutive sliding zones.
//
func ZoneSlidingZones(z int) int {
	return slidingStride * z
}
