package trigsim_test

import (
	"testing"

	"github.com/snemo/trigsim"
	"github.com/snemo/trigsim/lut"
)

func defaultTables(t *testing.T) lut.Set {
	t.Helper()
	tables, err := lut.DefaultTables()
	if err != nil {
		t.Fatal(err)
	}
	return tables
}

func TestAddresses(t *testing.T) {
	sz := []trigsim.SlidingZone{
		{IO: lut.Inner, LR: lut.NarrowLeft},
		{IO: lut.Outer, LR: lut.Wide},
		{IO: 0, LR: lut.NarrowRight},
		{IO: lut.Inner | lut.Outer, LR: lut.Wide},
	}
	if a := trigsim.InOutAddress(sz); a != 0xc9 {
		t.Errorf("in/out address %08b", a)
	}
	// 9 bit word 1_1011_1100 (bit 0 zero), top bit dropped.
	if a := trigsim.LMRAddress(sz); a != 0xbc {
		t.Errorf("left/mid/right address %08b", a)
	}
}

func TestPatternEngine_emptyMatrix(t *testing.T) {
	g := trigsim.Reference()
	e := trigsim.NewPatternEngine(&g, defaultTables(t))
	_, zones := e.Zones(trigsim.NewHitMatrix(&g))
	r := trigsim.Record(0, &zones)
	if !r.IsZero() || r.Decision || r.SingleSideCoinc {
		t.Fatalf("non zero record for empty matrix: %v", &r)
	}
}

// A memory returning a constant on every address shows which of mem4 and mem5
// a zone reads.
func TestPatternEngine_mem5Fallback(t *testing.T) {
	g := trigsim.Reference()
	tables := defaultTables(t)
	var err error
	tables[lut.Mem4], err = lut.Build("mem4", 8, 3, 0, func(uint32) uint32 { return lut.Left })
	if err != nil {
		t.Fatal(err)
	}
	tables[lut.Mem5], err = lut.Build("mem5", 8, 3, 0, func(uint32) uint32 { return lut.Right })
	if err != nil {
		t.Fatal(err)
	}
	e := trigsim.NewPatternEngine(&g, tables)

	// one hit: no left/right word, mem5 is read
	m := trigsim.NewHitMatrix(&g)
	m.Set(0, 0, 30)
	_, zones := e.Zones(m)
	if lmr := zones[0][2].LMR; lmr != lut.Right {
		t.Errorf("single hit: LMR %03b, expected mem5 data", lmr)
	}

	// three hits in a row in one sliding zone: mem4 is read
	m.Set(0, 1, 31)
	m.Set(0, 2, 32)
	sz, zones := e.Zones(m)
	if lmr := zones[0][2].LMR; lmr != lut.Left {
		t.Errorf("track: LMR %03b, expected mem4 data", lmr)
	}
	// sliding zone 8 covers rows 25-32
	if z := sz[0][8]; z.RowProjection != 0xe0 || z.LR != lut.NarrowRight || z.LayerProjection != 0x07 {
		t.Errorf("sliding zone 8: rows %08b layers %09b lr %02b", z.RowProjection, z.LayerProjection, z.LR)
	}
}

func TestRecord(t *testing.T) {
	var zones [trigsim.NumSides][trigsim.NumZones]trigsim.Zone
	zones[1][3] = trigsim.Zone{InOut: lut.Outer, LMR: lut.Middle}
	zones[1][7] = trigsim.Zone{NearSource: trigsim.NSZLeft}
	zones[0][0] = trigsim.Zone{InOut: lut.Inner}
	r := trigsim.Record(42, &zones)

	if w := r.Finale[1][3]; w != trigsim.FinaleOuter|trigsim.FinaleMiddle || w.String() != "0001010" {
		t.Errorf("finale word %s", w)
	}
	if w := r.Finale[1][7]; !w.Has(trigsim.FinaleNSZLeft) || w.Pattern() {
		t.Errorf("finale word %s", w)
	}
	if r.PatternZoning[1] != 1<<3 || r.NearSrcZoning[1] != 1<<7 {
		t.Errorf("zoning words %s %s", r.PatternZoning[1], r.NearSrcZoning[1])
	}
	if r.PatternZoning[0] != 0 || r.NearSrcZoning[0] != 0 {
		t.Errorf("side 0 zoning words %s %s", r.PatternZoning[0], r.NearSrcZoning[0])
	}
	if !r.Decision || !r.SingleSideCoinc || r.Tick1600() != 21 {
		t.Errorf("unexpected record %v", &r)
	}

	var agg trigsim.Aggregator
	empty := trigsim.TrackerRecord{Tick: 44}
	agg.Add(&empty)
	if agg.Decision() {
		t.Fatal("decision without trigger")
	}
	agg.Add(&r)
	agg.Add(&empty)
	if !agg.Decision() {
		t.Fatal("running decision lost")
	}
	agg.Reset()
	if agg.Decision() {
		t.Fatal("decision not reset")
	}
}

func TestRecord_noCoincidence(t *testing.T) {
	var zones [trigsim.NumSides][trigsim.NumZones]trigsim.Zone
	zones[0][3] = trigsim.Zone{LMR: lut.Right}
	zones[1][7] = trigsim.Zone{NearSource: trigsim.NSZRight}
	r := trigsim.Record(0, &zones)
	if !r.Decision || r.SingleSideCoinc {
		t.Fatalf("unexpected record %v", &r)
	}
}
