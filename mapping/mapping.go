// Copyright 2026 The trigsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

// Package mapping provides a reference electronics to geometry mapping for
// the tracker of one module.
//
// The Geiger rack holds three crates of 20 front-end boards. Board id 10 is
// the crate control board and carries no channel. Every front-end board reads
// two adjacent rows of cells: channels 0..17 read side 0 and channels 18..35
// read side 1, two channels per layer.
//
package mapping

import (
	"github.com/pkg/errors"

	"github.com/snemo/trigsim"
)

// Layout of the reference mapping.
//
const (
	GeigerRack      = 3
	NumCrates       = 3
	BoardsPerCrate  = 20
	RowsPerBoard    = 2
	ChannelsPerSide = 18
	NumChannels     = 2 * ChannelsPerSide
)

// ErrUnmapped is returned by Translate for channels that are not wired to a
// cell.
//
var ErrUnmapped = errors.New("unmapped electronic address")

// Linear is the reference mapping.
//
type Linear struct {
	geo    *trigsim.Geometry
	module int
}

// New returns the reference mapping of module number module.
//
func New(g *trigsim.Geometry, module int) *Linear {
	return &Linear{geo: g, module: module}
}

// Translate implements trigsim.Translator.
//
func (l *Linear) Translate(a trigsim.ElectronicAddress) (trigsim.GeomAddress, error) {
	if a.Rack != GeigerRack {
		return trigsim.GeomAddress{}, errors.Wrapf(ErrUnmapped, "rack %d", a.Rack)
	}
	if a.Crate < 0 || a.Crate >= NumCrates {
		return trigsim.GeomAddress{}, errors.Wrapf(ErrUnmapped, "crate %d", a.Crate)
	}
	slot, ok := trigsim.Slot(a.Board)
	if !ok {
		return trigsim.GeomAddress{}, errors.Wrapf(ErrUnmapped, "board %d", a.Board)
	}
	if a.Channel < 0 || a.Channel >= NumChannels {
		return trigsim.GeomAddress{}, errors.Wrapf(ErrUnmapped, "channel %d", a.Channel)
	}
	return trigsim.GeomAddress{
		Module: l.module,
		Side:   a.Channel / ChannelsPerSide,
		Layer:  a.Channel % ChannelsPerSide / RowsPerBoard,
		Row:    RowsPerBoard*(a.Crate*BoardsPerCrate+slot) + a.Channel%RowsPerBoard,
	}, nil
}

// IsInModule implements trigsim.Translator.
//
func (l *Linear) IsInModule(g trigsim.GeomAddress) bool {
	return g.Module == l.module &&
		g.Side >= 0 && g.Side < trigsim.NumSides &&
		g.Layer >= 0 && g.Layer < l.geo.Layers &&
		g.Row >= 0 && g.Row < l.geo.Rows
}

// Electronic returns the channel wired to cell g.
//
func (l *Linear) Electronic(g trigsim.GeomAddress) (trigsim.ElectronicAddress, error) {
	if !l.IsInModule(g) || g.Layer >= ChannelsPerSide/RowsPerBoard {
		return trigsim.ElectronicAddress{}, errors.Wrapf(ErrUnmapped, "cell %v", g)
	}
	slot := g.Row / RowsPerBoard
	crate, slot := slot/BoardsPerCrate, slot%BoardsPerCrate
	board := slot
	if board >= trigsim.ControlBoardID {
		board++
	}
	return trigsim.ElectronicAddress{
		Rack:    GeigerRack,
		Crate:   crate,
		Board:   board,
		Channel: g.Side*ChannelsPerSide + g.Layer*RowsPerBoard + g.Row%RowsPerBoard,
	}, nil
}
