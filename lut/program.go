// Copyright 2026 The trigsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package lut

import (
	"math/bits"
	"strings"

	"github.com/pkg/errors"
)

// A MemoryID identifies one of the five trigger memories.
//
type MemoryID int

// Trigger memories.
//
const (
	Mem1 MemoryID = iota // sliding zone layer projection -> in/out
	Mem2                 // sliding zone row projection -> left/right
	Mem3                 // zone in/out
	Mem4                 // zone left/mid/right from left/right words
	Mem5                 // zone left/mid/right fallback from in/out words
	NumMemories
)

var memNames = [...]string{"mem1", "mem2", "mem3", "mem4", "mem5"}

func (id MemoryID) String() string {
	if id < 0 || id >= NumMemories {
		return "mem?"
	}
	return memNames[id]
}

// Shape returns the address and data widths of the memory.
//
func (id MemoryID) Shape() (addrBits, dataBits uint) {
	switch id {
	case Mem1:
		return 9, 2
	case Mem2, Mem3:
		return 8, 2
	default:
		return 8, 3
	}
}

// A Set holds the five trigger memories, indexed by MemoryID.
//
type Set [NumMemories]*Table

// Check returns an error naming the first missing or misshaped table.
//
func (s *Set) Check() error {
	for id := Mem1; id < NumMemories; id++ {
		t := s[id]
		if t == nil {
			return errors.Errorf("%s: no table", id)
		}
		if err := t.CheckShape(id.Shape()); err != nil {
			return errors.Wrap(err, id.String())
		}
	}
	return nil
}

// Data words of the sliding zone memories.
//
const (
	Inner = 1 << 0
	Outer = 1 << 1

	NarrowRight = 1 << 0
	NarrowLeft  = 1 << 1
	Wide        = NarrowRight | NarrowLeft
)

// Data words of the zone left/mid/right memories.
//
const (
	Right  = 1 << 0
	Middle = 1 << 1
	Left   = 1 << 2
)

// Mem1Mode selects how mem1 classifies layer projections.
//
type Mem1Mode string

// Mem1 modes.
//
const (
	Mem1MinMultiplicity Mem1Mode = "min_multiplicity"
	Mem1MaxGap          Mem1Mode = "max_gap"
)

// MaxGapLimit is the largest accepted mem1 max_gap.
//
const MaxGapLimit = 5

// Mem1Params configures the mem1 program. Inner layers are 0..4, outer layers
// 4..8; layer 4 counts for both.
//
// In min_multiplicity mode a layer group is active with at least MinInner
// (resp. MinOuter) hits. In max_gap mode it is active when two of its hit
// layers are separated by at most MaxGap empty layers.
//
type Mem1Params struct {
	Mode     Mem1Mode `yaml:"mode"`
	MinInner int      `yaml:"min_inner"`
	MinOuter int      `yaml:"min_outer"`
	MaxGap   int      `yaml:"max_gap"`
}

// Mem2Mode selects how mem2 classifies row projections.
//
type Mem2Mode string

// Mem2 modes.
//
const (
	Mem2Multiplicity Mem2Mode = "multiplicity"
	Mem2Pattern      Mem2Mode = "pattern"
)

// A Window is a row range with accepted hit multiplicities, bounds included.
//
type Window struct {
	FirstRow int `yaml:"first_row"`
	LastRow  int `yaml:"last_row"`
	MinMult  int `yaml:"min_mult"`
	MaxMult  int `yaml:"max_mult"`
}

func (w Window) match(addr uint32) bool {
	n := 0
	for r := w.FirstRow; r <= w.LastRow; r++ {
		if addr&(1<<uint(r)) != 0 {
			n++
		}
	}
	return n >= w.MinMult && n <= w.MaxMult
}

func (w Window) valid() bool {
	return w.FirstRow >= 0 && w.FirstRow <= w.LastRow && w.LastRow < 8 && w.MinMult <= w.MaxMult
}

// Mem2Params configures the mem2 program.
//
type Mem2Params struct {
	Mode        Mem2Mode `yaml:"mode"`
	Wide        Window   `yaml:"wide"`
	NarrowLeft  Window   `yaml:"narrow_left"`
	NarrowRight Window   `yaml:"narrow_right"`
}

// Programs holds the parameters of all memory programs.
//
type Programs struct {
	Mem1 Mem1Params `yaml:"mem1"`
	Mem2 Mem2Params `yaml:"mem2"`
}

// DefaultPrograms returns the reference programming parameters.
//
func DefaultPrograms() Programs {
	return Programs{
		Mem1: Mem1Params{Mode: Mem1MinMultiplicity, MinInner: 1, MinOuter: 1},
		Mem2: Mem2Params{
			Mode:        Mem2Multiplicity,
			Wide:        Window{0, 7, 6, 8},
			NarrowLeft:  Window{0, 4, 3, 5},
			NarrowRight: Window{3, 7, 3, 5},
		},
	}
}

// Validate checks the program parameters.
//
func (p *Programs) Validate() error {
	switch p.Mem1.Mode {
	case Mem1MinMultiplicity:
		if p.Mem1.MinInner < 1 || p.Mem1.MinInner > 5 {
			return errors.Errorf("mem1: min_inner %d out of range [1, 5]", p.Mem1.MinInner)
		}
		if p.Mem1.MinOuter < 1 || p.Mem1.MinOuter > 5 {
			return errors.Errorf("mem1: min_outer %d out of range [1, 5]", p.Mem1.MinOuter)
		}
	case Mem1MaxGap:
		if p.Mem1.MaxGap < 0 || p.Mem1.MaxGap > MaxGapLimit {
			return errors.Errorf("mem1: max_gap %d out of range [0, %d]", p.Mem1.MaxGap, MaxGapLimit)
		}
	default:
		return errors.Errorf("mem1: invalid mode %q", p.Mem1.Mode)
	}
	switch p.Mem2.Mode {
	case Mem2Pattern:
	case Mem2Multiplicity:
		for _, w := range []Window{p.Mem2.Wide, p.Mem2.NarrowLeft, p.Mem2.NarrowRight} {
			if !w.valid() {
				return errors.Errorf("mem2: invalid window %+v", w)
			}
		}
	default:
		return errors.Errorf("mem2: invalid mode %q", p.Mem2.Mode)
	}
	return nil
}

// Program returns the programming function of memory id.
//
func (p *Programs) Program(id MemoryID) func(uint32) uint32 {
	switch id {
	case Mem1:
		if p.Mem1.Mode == Mem1MaxGap {
			return p.mem1Gap
		}
		return p.mem1
	case Mem2:
		if p.Mem2.Mode == Mem2Pattern {
			return mem2Pattern
		}
		return p.mem2Mult
	case Mem3:
		return mem3
	case Mem4:
		return mem4
	case Mem5:
		return mem5
	}
	panic("invalid memory id")
}

// Build programs memory id.
//
func (p *Programs) Build(id MemoryID) (*Table, error) {
	a, d := id.Shape()
	return Build(id.String()+" "+memDesc[id], a, d, 0, p.Program(id))
}

var memDesc = [...]string{
	"sliding zone vertical memory",
	"sliding zone horizontal memory",
	"zone vertical memory",
	"zone horizontal memory",
	"zone vertical for horizontal memory",
}

// Tables programs all five memories.
//
func (p *Programs) Tables() (Set, error) {
	var s Set
	if err := p.Validate(); err != nil {
		return s, err
	}
	for id := Mem1; id < NumMemories; id++ {
		t, err := p.Build(id)
		if err != nil {
			return s, err
		}
		s[id] = t
	}
	return s, nil
}

// DefaultTables returns the five memories programmed with DefaultPrograms.
//
func DefaultTables() (Set, error) {
	p := DefaultPrograms()
	return p.Tables()
}

func (p *Programs) mem1(addr uint32) uint32 {
	var d uint32
	if bits.OnesCount32(addr&0x1f) >= p.Mem1.MinInner {
		d |= Inner
	}
	if bits.OnesCount32(addr&0x1f0) >= p.Mem1.MinOuter {
		d |= Outer
	}
	return d
}

func (p *Programs) mem1Gap(addr uint32) uint32 {
	var d uint32
	if minGap(addr&0x1f) <= p.Mem1.MaxGap {
		d |= Inner
	}
	if minGap(addr>>4&0x1f) <= p.Mem1.MaxGap {
		d |= Outer
	}
	return d
}

// minGap returns the smallest number of clear bits between two consecutive
// set bits of v, or 32 if fewer than two bits are set.
//
func minGap(v uint32) int {
	g := 32
	for v != 0 {
		v >>= uint(bits.TrailingZeros32(v)) + 1
		if v == 0 {
			break
		}
		if n := bits.TrailingZeros32(v); n < g {
			g = n
		}
	}
	return g
}

func (p *Programs) mem2Mult(addr uint32) uint32 {
	switch {
	case p.Mem2.Wide.match(addr):
		return Wide
	case p.Mem2.NarrowLeft.match(addr):
		return NarrowLeft
	case p.Mem2.NarrowRight.match(addr):
		return NarrowRight
	}
	return 0
}

// mem2Pattern searches short runs of hit rows anchored at either end of the
// sliding zone. Low rows are left.
//
func mem2Pattern(addr uint32) uint32 {
	var b [8]byte
	for r := range b {
		b[r] = '0' + byte(addr>>uint(r)&1)
	}
	fromLeft := string(b[:])
	for i, j := 0, 7; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	fromRight := string(b[:])

	left := anchored(fromLeft, 2, 2, 2, 2)
	right := anchored(fromRight, 1, 2, 1, 1)
	n := bits.OnesCount32(addr & 0xff)

	var c uint32
	switch {
	case n >= 6, left && right:
		c = Wide
	case left:
		c = NarrowLeft
	case right:
		c = NarrowRight
	}
	if n < 6 && c == Wide {
		le, re := fromLeft[:2] == "00", fromRight[:2] == "00"
		switch {
		case re:
			c = NarrowLeft
		case le:
			c = NarrowRight
		}
	}
	return c
}

var patterns = [...]string{"1111", "111", "1101", "1011"}

// anchored reports whether one of the patterns first occurs in s at or before
// the matching position limit.
//
func anchored(s string, limits ...int) bool {
	for i, p := range patterns {
		if pos := strings.Index(s, p); pos >= 0 && pos <= limits[i] {
			return true
		}
	}
	return false
}

// pairs splits an 8 bit address into four 2 bit words, k=0 lsb.
//
func pairs(addr uint32) (p [4]uint32) {
	for k := range p {
		p[k] = addr >> (2 * uint(k)) & 3
	}
	return
}

// mem3 needs activity in an interior sliding zone, then merges in/out bits.
//
func mem3(addr uint32) uint32 {
	p := pairs(addr)
	if p[1]|p[2] == 0 {
		return 0
	}
	return p[0] | p[1] | p[2] | p[3]
}

// mem4 addresses carry left/right pair k at bits 2k+1..2k+2, with bit 0 zero
// and the left bit of pair 3 dropped.
//
func mem4(addr uint32) uint32 {
	var p [4]uint32
	for k := range p {
		p[k] = addr >> (2*uint(k) + 1) & 3
	}
	p[3] &= NarrowRight
	return lmr(p, true)
}

// mem5 applies the same geometry on in/out activity.
//
func mem5(addr uint32) uint32 {
	return lmr(pairs(addr), false)
}

func lmr(p [4]uint32, wide bool) uint32 {
	if p[1]|p[2] == 0 {
		return 0
	}
	var d uint32
	if p[0]|p[1] != 0 {
		d |= Left
	}
	if p[2]|p[3] != 0 {
		d |= Right
	}
	if d == Left|Right || wide && (p[1] == Wide || p[2] == Wide) {
		d |= Middle
	}
	return d
}
