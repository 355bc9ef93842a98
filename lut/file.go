// Copyright 2026 The trigsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package lut

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/mod/semver"

	"github.com/snemo/trigsim/internal/bits"
)

// FormatVersion is the version written in the header of stored tables.
//
const FormatVersion = "v1.0.0"

// Errors returned by the table loader.
//
var (
	ErrMalformed = errors.New("malformed table")
	ErrVersion   = errors.New("unsupported table format version")
)

// header keys
const (
	keyDescription = "#@description"
	keyVersion     = "#@format_version"
	keyAddrSize    = "#@address_size"
	keyDataSize    = "#@data_size"
	keyRegistered  = "#@registered_value"
	keyDefault     = "#@default_data"
)

type header struct {
	desc       string
	addrBits   uint
	dataBits   uint
	def        string
	registered map[string]string
}

func (h *header) set(line string, lnum int) error {
	kv := strings.SplitN(line, "=", 2)
	if len(kv) != 2 {
		return malformed(lnum, "key = value format error")
	}
	key, val := strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1])
	switch key {
	case keyDescription:
		h.desc = val
	case keyVersion:
		if !semver.IsValid(val) {
			return errors.Wrapf(ErrVersion, "line %d: invalid version %q", lnum, val)
		}
		if semver.Major(val) != semver.Major(FormatVersion) {
			return errors.Wrapf(ErrVersion, "line %d: version %s, expected %s.x", lnum, val, semver.Major(FormatVersion))
		}
	case keyAddrSize, keyDataSize:
		n, err := strconv.ParseUint(val, 10, 8)
		if err != nil {
			return malformed(lnum, "invalid size "+strconv.Quote(val))
		}
		if key == keyAddrSize {
			h.addrBits = uint(n)
		} else {
			h.dataBits = uint(n)
		}
	case keyRegistered:
		lv := strings.SplitN(val, ":", 2)
		if len(lv) != 2 {
			return malformed(lnum, "label : value format error")
		}
		h.registered[strings.TrimSpace(lv[0])] = strings.TrimSpace(lv[1])
	case keyDefault:
		h.def = val
	default:
		return malformed(lnum, "unsupported meta data "+strconv.Quote(key))
	}
	return nil
}

// data resolves a registered label or parses a bit string.
//
func (h *header) data(s string, lnum int) (uint32, error) {
	if v, ok := h.registered[s]; ok {
		s = v
	}
	v, err := bits.Uint(s)
	if err != nil {
		return 0, errors.Wrapf(ErrMalformed, "line %d: %v", lnum, err)
	}
	return v, nil
}

func malformed(lnum int, msg string) error {
	return errors.Wrapf(ErrMalformed, "line %d: %s", lnum, msg)
}

// Load reads a table definition from r.
//
// The format is line based. Header lines start with "#@" and must all
// appear before the first data line:
//
//	#@description = <free text>
//	#@format_version = v1.0.0
//	#@address_size = 9
//	#@data_size = 2
//	#@registered_value = INNER : 01
//	#@default_data = 00
//
// Data lines hold an address and a data word, both as bit strings (msb
// first). The data word may also be a registered label. Lines starting with
// a single '#' are comments.
//
func Load(r io.Reader) (*Table, error) {
	h := header{registered: make(map[string]string)}
	var t *Table
	s := bufio.NewScanner(r)
	lnum := 0
	for s.Scan() {
		lnum++
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#@") {
			if t != nil {
				return nil, malformed(lnum, "metadata outside header")
			}
			if err := h.set(line, lnum); err != nil {
				return nil, err
			}
			continue
		}
		if line[0] == '#' {
			continue
		}
		if t == nil {
			var err error
			if t, err = h.table(lnum); err != nil {
				return nil, err
			}
		}
		f := strings.Fields(line)
		if len(f) != 2 {
			return nil, malformed(lnum, "expected <address> <data>")
		}
		if uint(len(f[0])) != t.addrBits {
			return nil, malformed(lnum, fmt.Sprintf("address %q is not %d bits wide", f[0], t.addrBits))
		}
		addr, err := bits.Uint(f[0])
		if err != nil {
			return nil, errors.Wrapf(ErrMalformed, "line %d: %v", lnum, err)
		}
		data, err := h.data(f[1], lnum)
		if err != nil {
			return nil, err
		}
		if err = t.push(addr, data); err != nil {
			return nil, errors.Wrapf(err, "line %d", lnum)
		}
	}
	if err := s.Err(); err != nil {
		return nil, errors.Wrap(err, "read table")
	}
	if t == nil {
		// header only table
		return h.table(lnum)
	}
	return t, nil
}

func (h *header) table(lnum int) (*Table, error) {
	if h.addrBits == 0 || h.dataBits == 0 {
		return nil, malformed(lnum, "missing address or data size")
	}
	var def uint32
	if h.def != "" {
		var err error
		if def, err = h.data(h.def, lnum); err != nil {
			return nil, err
		}
	}
	t, err := newTable(h.addrBits, h.dataBits, def)
	if err != nil {
		return nil, err
	}
	t.desc = h.desc
	return t, nil
}

// LoadFile loads a table from the named file.
//
func LoadFile(name string) (*Table, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "load table")
	}
	defer f.Close()
	t, err := Load(f)
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	return t, nil
}

// WriteTo writes t to w in the format read by Load. Entries equal to the
// default data are omitted.
//
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	p := func(format string, args ...interface{}) {
		c, _ := fmt.Fprintf(bw, format, args...)
		n += int64(c)
	}
	if t.desc != "" {
		p("%s = %s\n", keyDescription, t.desc)
	}
	p("%s = %s\n", keyVersion, FormatVersion)
	p("%s = %d\n", keyAddrSize, t.addrBits)
	p("%s = %d\n", keyDataSize, t.dataBits)
	p("%s = %s\n", keyDefault, bits.FormatUint(t.def, t.dataBits))
	for _, a := range t.Addresses() {
		d := t.m[a]
		if d == t.def {
			continue
		}
		p("%s %s\n", bits.FormatUint(a, t.addrBits), bits.FormatUint(d, t.dataBits))
	}
	return n, bw.Flush()
}

// StoreFile writes t to the named file.
//
func (t *Table) StoreFile(name string) error {
	f, err := os.Create(name)
	if err != nil {
		return errors.Wrap(err, "store table")
	}
	if _, err = t.WriteTo(f); err != nil {
		f.Close()
		return errors.Wrap(err, name)
	}
	return f.Close()
}
