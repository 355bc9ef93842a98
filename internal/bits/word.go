// Copyright 2026 The trigsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

// Package bits provides the fixed-size bit words used by CTW blocks and
// lookup table addresses.
//
package bits

import (
	"math/bits"
	"strings"

	"github.com/pkg/errors"
)

// WordSize is the number of bits in a Word.
//
const WordSize = 128

// A Word is a 128 bit word. Bit 0 is the lsb of w[0].
//
type Word [2]uint64

// Test returns the state of bit i. Bits outside the word read as false.
//
func (w *Word) Test(i uint) bool {
	if x := int(i >> 6); x < 2 {
		return w[x&1]&(1<<(i&63)) != 0
	}
	return false
}

// Set sets bit i to v. It panics if i is out of range.
//
func (w *Word) Set(i uint, v bool) {
	if i >= WordSize {
		panic("bit index out of range")
	}
	if v {
		w[i>>6] |= 1 << (i & 63)
	} else {
		w[i>>6] &^= 1 << (i & 63)
	}
}

// Field returns the n bits starting at bit off as an uint64. Bit off is lsb.
//
func (w *Word) Field(off, n uint) uint64 {
	var out uint64
	for bit := uint(0); bit < n; bit++ {
		if w.Test(off + bit) {
			out |= 1 << bit
		}
	}
	return out
}

// SetField sets the n bits starting at bit off to the n low bits of v.
//
func (w *Word) SetField(off, n uint, v uint64) {
	for bit := uint(0); bit < n; bit++ {
		w.Set(off+bit, v&(1<<bit) != 0)
	}
}

// IsZero returns true if no bit is set.
//
func (w *Word) IsZero() bool {
	return w[0]|w[1] == 0
}

// Count returns the number of bits set.
//
func (w *Word) Count() int {
	return bits.OnesCount64(w[0]) + bits.OnesCount64(w[1])
}

// Format returns the n low bits of w as a string of '0' and '1', msb first.
//
func (w *Word) Format(n uint) string {
	var b strings.Builder
	b.Grow(int(n))
	for i := n; i > 0; i-- {
		if w.Test(i - 1) {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// Parse parses a string of '0' and '1', msb first, into a Word.
//
func Parse(s string) (Word, error) {
	var w Word
	if len(s) > WordSize {
		return w, errors.Errorf("bit string too long: %d bits", len(s))
	}
	for i := 0; i < len(s); i++ {
		bit := uint(len(s) - 1 - i)
		switch s[i] {
		case '1':
			w.Set(bit, true)
		case '0':
		default:
			return w, errors.Errorf("in %q at pos %d: invalid bit %q", s, i+1, s[i])
		}
	}
	return w, nil
}

// Uint parses a string of '0' and '1', msb first, of at most 32 bits.
//
func Uint(s string) (uint32, error) {
	if s == "" {
		return 0, errors.New("empty bit string")
	}
	if len(s) > 32 {
		return 0, errors.Errorf("bit string %q wider than 32 bits", s)
	}
	w, err := Parse(s)
	if err != nil {
		return 0, err
	}
	return uint32(w[0]), nil
}

// FormatUint returns the n low bits of v as a string, msb first.
//
func FormatUint(v uint32, n uint) string {
	w := Word{uint64(v)}
	return w.Format(n)
}

// Pack packs bools into an uint32. Element 0 is lsb.
//
func Pack(in []bool) uint32 {
	var out uint32
	for bit := range in {
		if in[bit] {
			out |= 1 << uint(bit)
		}
	}
	return out
}
