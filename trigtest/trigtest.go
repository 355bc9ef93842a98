// Copyright 2026 The trigsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

// Package trigtest provides utility functions for testing the trigger
// emulation.
//
package trigtest

import (
	"math"
	"math/rand"
	"testing"

	"github.com/snemo/trigsim"
	"github.com/snemo/trigsim/lut"
	"github.com/snemo/trigsim/mapping"
)

// Frames encodes cell hits into the CTW frames of a tick, one frame per
// crate.
//
func Frames(enc trigsim.Encoder, tick int32, hits ...trigsim.GeomAddress) ([]trigsim.Frame, error) {
	return trigsim.EncodeFrames(enc, tick, hits...)
}

// Cells converts matrix cells of module 0 to geometric addresses.
//
func Cells(cells ...trigsim.Cell) []trigsim.GeomAddress {
	out := make([]trigsim.GeomAddress, len(cells))
	for i, c := range cells {
		out[i] = trigsim.GeomAddress{Side: c.Side, Layer: c.Layer, Row: c.Row}
	}
	return out
}

// CompareRecords fails t if got and want differ.
//
func CompareRecords(t *testing.T, got, want []trigsim.TrackerRecord) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d records, expected %d", len(got), len(want))
	}
	for i := range got {
		g, w := &got[i], &want[i]
		if *g == *w {
			continue
		}
		if g.Tick != w.Tick {
			t.Errorf("record %d: tick %d, expected %d", i, g.Tick, w.Tick)
			continue
		}
		for side := range g.Finale {
			for z := range g.Finale[side] {
				if g.Finale[side][z] != w.Finale[side][z] {
					t.Errorf("tick %d side %d zone %d: finale %s, expected %s", g.Tick, side, z, g.Finale[side][z], w.Finale[side][z])
				}
			}
		}
		if g.Decision != w.Decision || g.SingleSideCoinc != w.SingleSideCoinc {
			t.Errorf("tick %d: decision %v/%v, expected %v/%v", g.Tick, g.Decision, g.SingleSideCoinc, w.Decision, w.SingleSideCoinc)
		}
	}
}

// Run runs frames through a new sequencer using the reference geometry and
// mapping. It fails t on any error.
//
func Run(t *testing.T, tables lut.Set, workers int, frames []trigsim.Frame) *trigsim.Sequencer {
	t.Helper()
	s, err := trigsim.NewSequencer(trigsim.Workers(workers))
	if err != nil {
		t.Fatal(err)
	}
	g := s.Geometry()
	if err = s.Initialize(mapping.New(&g, 0), tables); err != nil {
		t.Fatal(err)
	}
	if err = s.Run(frames); err != nil {
		t.Fatal(err)
	}
	return s
}

func poisson(rng *rand.Rand, mean float64) int {
	l := math.Exp(-mean)
	k, p := 0, rng.Float64()
	for p > l {
		k++
		p *= rng.Float64()
	}
	return k
}

// RandomTrack walks a straight track from a random cell of a random side
// in a random direction and returns the cells it crosses. The track length
// in cells is 1 plus a Poisson draw of mean 3.
//
func RandomTrack(rng *rand.Rand, g *trigsim.Geometry) []trigsim.Cell {
	const step = 0.15
	side := rng.Intn(trigsim.NumSides)
	x := float64(rng.Intn(g.Rows)) - 0.5 + rng.Float64()
	y := float64(rng.Intn(g.Layers)) - 0.5 + rng.Float64()
	length := float64(1 + poisson(rng, 3))
	angle := rng.Float64() * 2 * math.Pi
	dx, dy := step*math.Cos(angle), step*math.Sin(angle)

	seen := make(map[trigsim.Cell]bool)
	var cells []trigsim.Cell
	for l := 0.0; l <= length; l += step {
		row, layer := int(math.Floor(x+0.5)), int(math.Floor(y+0.5))
		if row < 0 || row >= g.Rows || layer < 0 || layer >= g.Layers {
			break
		}
		c := trigsim.Cell{Side: side, Layer: layer, Row: row}
		if !seen[c] {
			seen[c] = true
			cells = append(cells, c)
		}
		x += dx
		y += dy
	}
	return cells
}
