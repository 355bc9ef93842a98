// Copyright 2026 The trigsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package trigsim

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"github.com/snemo/trigsim/internal/bits"
)

// Layout of a 100 bit CTW block.
//
const (
	BlocksPerFrame    = 20
	BlockBits         = 100
	ChannelBits       = 55 // channel flags at bits 0..54
	ThreeWireChannels = 54 // valid channels in three wire mode
	HWStatusOffset    = 55
	HWStatusBits      = 2
	BoardIDOffset     = 57
	BoardIDBits       = 5
	CrateIDOffset     = 62
	CrateIDBits       = 2

	// ControlBoardID is the board id reserved for the crate control board.
	// No block ever carries it.
	ControlBoardID = 10
)

// A Frame is a Geiger CTW (calorimeter tracker word): the per-crate data sent
// to the trigger board on a given 800 ns clock tick. Each of its blocks
// carries the channel flags of one front-end board.
//
type Frame struct {
	Rack   int32
	Crate  int32
	Tick   int32
	Blocks [BlocksPerFrame]bits.Word
}

func checkSlot(slot int) {
	if slot < 0 || slot >= BlocksPerFrame {
		panic(fmt.Sprintf("block slot %d out of range", slot))
	}
}

// BoardID returns the board id carried by block slot.
//
func (f *Frame) BoardID(slot int) int {
	checkSlot(slot)
	return int(f.Blocks[slot].Field(BoardIDOffset, BoardIDBits))
}

// SetBoardIDs stamps every block with its board id and the frame's crate id.
// Slots past the control board get the next board id.
//
func (f *Frame) SetBoardIDs() {
	for slot := range f.Blocks {
		id := slot
		if id >= ControlBoardID {
			id++
		}
		f.Blocks[slot].SetField(BoardIDOffset, BoardIDBits, uint64(id))
		f.Blocks[slot].SetField(CrateIDOffset, CrateIDBits, uint64(f.Crate))
	}
}

// Slot returns the block slot of board id.
//
func Slot(board int) (int, bool) {
	switch {
	case board < 0 || board == ControlBoardID || board > BlocksPerFrame:
		return 0, false
	case board > ControlBoardID:
		return board - 1, true
	}
	return board, true
}

// CrateID returns the crate id carried by block slot.
//
func (f *Frame) CrateID(slot int) int {
	checkSlot(slot)
	return int(f.Blocks[slot].Field(CrateIDOffset, CrateIDBits))
}

// HWStatus returns the hardware status bits of block slot.
//
func (f *Frame) HWStatus(slot int) int {
	checkSlot(slot)
	return int(f.Blocks[slot].Field(HWStatusOffset, HWStatusBits))
}

// Channel returns the flag of channel ch in block slot.
//
func (f *Frame) Channel(slot, ch int) bool {
	checkSlot(slot)
	if ch < 0 || ch >= ChannelBits {
		return false
	}
	return f.Blocks[slot].Test(uint(ch))
}

// SetChannel sets the flag of channel ch in block slot.
//
func (f *Frame) SetChannel(slot, ch int, v bool) {
	checkSlot(slot)
	if ch < 0 || ch >= ChannelBits {
		panic(fmt.Sprintf("channel %d out of range", ch))
	}
	f.Blocks[slot].Set(uint(ch), v)
}

// BlockString returns block slot as a bit string, msb first.
//
func (f *Frame) BlockString(slot int) string {
	checkSlot(slot)
	return f.Blocks[slot].Format(BlockBits)
}

// SetBlockString sets block slot from a bit string of at most BlockBits bits.
//
func (f *Frame) SetBlockString(slot int, s string) error {
	checkSlot(slot)
	if len(s) > BlockBits {
		return errors.Errorf("block string is %d bits long", len(s))
	}
	w, err := bits.Parse(s)
	if err != nil {
		return err
	}
	f.Blocks[slot] = w
	return nil
}

// An ElectronicAddress identifies a front-end channel.
//
type ElectronicAddress struct {
	Rack    int
	Crate   int
	Board   int
	Channel int
}

func (a ElectronicAddress) String() string {
	return fmt.Sprintf("[rack %d, crate %d, board %d, channel %d]", a.Rack, a.Crate, a.Board, a.Channel)
}

// A GeomAddress identifies a tracker cell.
//
type GeomAddress struct {
	Module int
	Side   int
	Layer  int
	Row    int
}

func (a GeomAddress) String() string {
	return fmt.Sprintf("[module %d, side %d, layer %d, row %d]", a.Module, a.Side, a.Layer, a.Row)
}

// A Translator maps front-end channels to tracker cells.
//
type Translator interface {
	// Translate returns the cell wired to channel a.
	Translate(a ElectronicAddress) (GeomAddress, error)
	// IsInModule returns true if cell g belongs to the emulated module.
	IsInModule(g GeomAddress) bool
}

// An Encoder maps tracker cells back to front-end channels.
//
type Encoder interface {
	Electronic(g GeomAddress) (ElectronicAddress, error)
}

// EncodeFrames encodes cell hits into the CTW frames of a tick, one frame per
// crate holding at least one hit. Frames are sorted by rack and crate.
//
func EncodeFrames(enc Encoder, tick int32, hits ...GeomAddress) ([]Frame, error) {
	type key struct{ rack, crate int }
	byCrate := make(map[key]*Frame)
	for _, h := range hits {
		ea, err := enc.Electronic(h)
		if err != nil {
			return nil, errors.Wrapf(err, "encode %v", h)
		}
		slot, ok := Slot(ea.Board)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidAddress, "encode %v: no slot for board %d", h, ea.Board)
		}
		if ea.Channel < 0 || ea.Channel >= ThreeWireChannels {
			return nil, errors.Wrapf(ErrInvalidAddress, "encode %v: channel %d", h, ea.Channel)
		}
		k := key{ea.Rack, ea.Crate}
		f := byCrate[k]
		if f == nil {
			f = &Frame{Rack: int32(ea.Rack), Crate: int32(ea.Crate), Tick: tick}
			f.SetBoardIDs()
			byCrate[k] = f
		}
		f.SetChannel(slot, ea.Channel, true)
	}
	frames := make([]Frame, 0, len(byCrate))
	for _, f := range byCrate {
		frames = append(frames, *f)
	}
	sort.Slice(frames, func(i, j int) bool {
		if frames[i].Rack != frames[j].Rack {
			return frames[i].Rack < frames[j].Rack
		}
		return frames[i].Crate < frames[j].Crate
	})
	return frames, nil
}
