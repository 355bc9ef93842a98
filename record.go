// Copyright 2026 The trigsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package trigsim

import (
	"encoding/json"
	"strings"

	"github.com/snemo/trigsim/internal/bits"
)

// A FinaleWord is the 7 bit trigger word of a zone.
//
type FinaleWord uint8

// FinaleWord bits.
//
const (
	FinaleInner FinaleWord = 1 << iota
	FinaleOuter
	FinaleRight
	FinaleMiddle
	FinaleLeft
	FinaleNSZRight
	FinaleNSZLeft

	FinaleBits = 7
)

// NewFinaleWord packs the pattern words of a zone.
//
func NewFinaleWord(z *Zone) FinaleWord {
	return FinaleWord(z.InOut&3 | (z.LMR&7)<<2 | (z.NearSource&3)<<5)
}

// Has returns true if all bits of b are set in w.
//
func (w FinaleWord) Has(b FinaleWord) bool { return w&b == b }

// Pattern returns true if any of the right, middle or left bits is set.
//
func (w FinaleWord) Pattern() bool { return w&(FinaleRight|FinaleMiddle|FinaleLeft) != 0 }

// NearSource returns true if any of the near source bits is set.
//
func (w FinaleWord) NearSource() bool { return w&(FinaleNSZRight|FinaleNSZLeft) != 0 }

// String returns w as a bit string, msb first.
//
func (w FinaleWord) String() string { return bits.FormatUint(uint32(w), FinaleBits) }

// A ZoningWord has bit z set when zone z matched.
//
type ZoningWord uint16

func (w ZoningWord) String() string { return bits.FormatUint(uint32(w), NumZones) }

// A TrackerRecord is the tracker trigger output for one sampled tick.
//
type TrackerRecord struct {
	Tick            int32
	Finale          [NumSides][NumZones]FinaleWord
	PatternZoning   [NumSides]ZoningWord
	NearSrcZoning   [NumSides]ZoningWord
	SingleSideCoinc bool
	Decision        bool
}

// Tick1600 returns the record tick in units of the 1600 ns trigger clock.
//
func (r *TrackerRecord) Tick1600() int32 { return r.Tick / 2 }

// IsZero returns true if no finale word bit is set.
//
func (r *TrackerRecord) IsZero() bool {
	for side := range r.Finale {
		for _, w := range r.Finale[side] {
			if w != 0 {
				return false
			}
		}
	}
	return true
}

// String returns a one line summary of r.
//
func (r *TrackerRecord) String() string {
	var b strings.Builder
	for side := range r.Finale {
		if side > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(r.PatternZoning[side].String())
		b.WriteByte(' ')
		b.WriteString(r.NearSrcZoning[side].String())
	}
	if r.Decision {
		b.WriteString(" L1")
	}
	return b.String()
}

type recordJSON struct {
	Tick            int32              `json:"tick"`
	Tick1600        int32              `json:"tick_1600"`
	Finale          [NumSides][]string `json:"finale"`
	PatternZoning   [NumSides]string   `json:"pattern_zoning"`
	NearSrcZoning   [NumSides]string   `json:"near_source_zoning"`
	SingleSideCoinc bool               `json:"single_side_coinc"`
	Decision        bool               `json:"decision"`
}

// MarshalJSON implements json.Marshaler. Words are written as bit strings.
//
func (r TrackerRecord) MarshalJSON() ([]byte, error) {
	out := recordJSON{
		Tick:            r.Tick,
		Tick1600:        r.Tick1600(),
		SingleSideCoinc: r.SingleSideCoinc,
		Decision:        r.Decision,
	}
	for side := range r.Finale {
		out.Finale[side] = make([]string, NumZones)
		for z, w := range r.Finale[side] {
			out.Finale[side][z] = w.String()
		}
		out.PatternZoning[side] = r.PatternZoning[side].String()
		out.NearSrcZoning[side] = r.NearSrcZoning[side].String()
	}
	return json.Marshal(&out)
}

// An Aggregator folds zone words into TrackerRecords and keeps the running
// decision.
//
type Aggregator struct {
	decision bool
}

// Record builds the record of a tick from the zones of both sides.
//
func Record(tick int32, zones *[NumSides][NumZones]Zone) TrackerRecord {
	r := TrackerRecord{Tick: tick}
	for side := range zones {
		for z := range zones[side] {
			w := NewFinaleWord(&zones[side][z])
			r.Finale[side][z] = w
			if w.Pattern() {
				r.PatternZoning[side] |= 1 << uint(z)
			}
			if w.NearSource() {
				r.NearSrcZoning[side] |= 1 << uint(z)
			}
			if w != 0 {
				r.Decision = true
			}
		}
		if r.PatternZoning[side] != 0 && r.NearSrcZoning[side] != 0 {
			r.SingleSideCoinc = true
		}
	}
	return r
}

// Add records the decision of r.
//
func (a *Aggregator) Add(r *TrackerRecord) {
	a.decision = a.decision || r.Decision
}

// Decision returns true if any added record decided true.
//
func (a *Aggregator) Decision() bool { return a.decision }

// Reset clears the running decision.
//
func (a *Aggregator) Reset() { a.decision = false }
