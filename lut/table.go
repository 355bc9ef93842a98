// Copyright 2026 The trigsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

// Package lut implements the programmable memories (lookup tables) of the
// tracker trigger board.
//
// A Table maps a fixed width address to a fixed width data word. Addresses
// that were never programmed read as the table's default data word, which is
// zero unless the table source says otherwise. Tables are immutable once
// built or loaded.
//
package lut

import (
	"sort"

	"github.com/pkg/errors"
)

// MaxBits is the maximum address or data width of a Table.
//
const MaxBits = 16

// A Table is an immutable address to data mapping.
//
type Table struct {
	desc     string
	addrBits uint
	dataBits uint
	def      uint32
	m        map[uint32]uint32
}

func newTable(addrBits, dataBits uint, def uint32) (*Table, error) {
	if addrBits == 0 || addrBits > MaxBits {
		return nil, errors.Wrapf(ErrMalformed, "invalid address size %d", addrBits)
	}
	if dataBits == 0 || dataBits > MaxBits {
		return nil, errors.Wrapf(ErrMalformed, "invalid data size %d", dataBits)
	}
	if def>>dataBits != 0 {
		return nil, errors.Wrapf(ErrMalformed, "default data %#x wider than %d bits", def, dataBits)
	}
	return &Table{
		addrBits: addrBits,
		dataBits: dataBits,
		def:      def,
		m:        make(map[uint32]uint32),
	}, nil
}

func (t *Table) push(addr, data uint32) error {
	if addr>>t.addrBits != 0 {
		return errors.Wrapf(ErrMalformed, "address %#x wider than %d bits", addr, t.addrBits)
	}
	if data>>t.dataBits != 0 {
		return errors.Wrapf(ErrMalformed, "data %#x wider than %d bits", data, t.dataBits)
	}
	t.m[addr] = data
	return nil
}

// Build programs a new table over its whole address space. fn is called once
// per address and returns the data word for that address. Addresses for
// which fn returns the default data are not stored.
//
func Build(desc string, addrBits, dataBits uint, def uint32, fn func(addr uint32) uint32) (*Table, error) {
	t, err := newTable(addrBits, dataBits, def)
	if err != nil {
		return nil, err
	}
	t.desc = desc
	for addr := uint32(0); addr < 1<<addrBits; addr++ {
		d := fn(addr)
		if d == def {
			continue
		}
		if err = t.push(addr, d); err != nil {
			return nil, errors.Wrap(err, desc)
		}
	}
	return t, nil
}

// Fetch returns the data stored at addr or the table default if addr was
// never programmed. Address bits above the table address width are ignored.
//
func (t *Table) Fetch(addr uint32) uint32 {
	d, _ := t.Lookup(addr)
	return d
}

// Lookup is like Fetch but also reports whether addr was programmed.
//
func (t *Table) Lookup(addr uint32) (uint32, bool) {
	d, ok := t.m[addr&(1<<t.addrBits-1)]
	if !ok {
		return t.def, false
	}
	return d, true
}

// AddressBits returns the address width.
//
func (t *Table) AddressBits() uint { return t.addrBits }

// DataBits returns the data width.
//
func (t *Table) DataBits() uint { return t.dataBits }

// Default returns the data word returned on a miss.
//
func (t *Table) Default() uint32 { return t.def }

// Description returns the table description, if any.
//
func (t *Table) Description() string { return t.desc }

// Len returns the number of programmed addresses.
//
func (t *Table) Len() int { return len(t.m) }

// Addresses returns the programmed addresses in increasing order.
//
func (t *Table) Addresses() []uint32 {
	out := make([]uint32, 0, len(t.m))
	for a := range t.m {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CheckShape returns an error if t does not have the given widths.
//
func (t *Table) CheckShape(addrBits, dataBits uint) error {
	if t.addrBits != addrBits || t.dataBits != dataBits {
		return errors.Errorf("table %q is A%dD%d, expected A%dD%d", t.desc, t.addrBits, t.dataBits, addrBits, dataBits)
	}
	return nil
}
