package trigsim_test

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/snemo/trigsim"
	"github.com/snemo/trigsim/lut"
	"github.com/snemo/trigsim/mapping"
	"github.com/snemo/trigsim/trigtest"
)

func frames(t *testing.T, tick int32, cells ...trigsim.Cell) []trigsim.Frame {
	t.Helper()
	g := trigsim.Reference()
	f, err := trigtest.Frames(mapping.New(&g, 0), tick, trigtest.Cells(cells...)...)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestSequencer_states(t *testing.T) {
	tables := defaultTables(t)
	s, err := trigsim.NewSequencer()
	if err != nil {
		t.Fatal(err)
	}
	if s.State() != trigsim.Idle {
		t.Fatalf("state %v", s.State())
	}
	if err = s.Run(nil); err != trigsim.ErrNotInitialized {
		t.Fatalf("Run before Initialize: %v", err)
	}
	if err = s.Reset(); err != trigsim.ErrNotInitialized {
		t.Fatalf("Reset before Initialize: %v", err)
	}
	if err = s.Initialize(nil, tables); err != trigsim.ErrNoTranslator {
		t.Fatalf("nil translator: %v", err)
	}
	geo := s.Geometry()
	tr := mapping.New(&geo, 0)
	cp := s.Geometry()
	cp.Rows = trigsim.SlidingZoneWidth
	if s.Geometry().Rows != trigsim.Reference().Rows {
		t.Fatal("sequencer geometry changed through a copy")
	}
	missing := tables
	missing[lut.Mem3] = nil
	if err = s.Initialize(tr, missing); errors.Cause(err) != trigsim.ErrMissingTable {
		t.Fatalf("missing table: %v", err)
	}
	if err = s.Initialize(tr, tables); err != nil {
		t.Fatal(err)
	}
	if s.State() != trigsim.Initialized {
		t.Fatalf("state %v", s.State())
	}
	if err = s.Initialize(tr, tables); err != trigsim.ErrAlreadyInitialized {
		t.Fatalf("second Initialize: %v", err)
	}
	if err = s.Run(nil); err != nil {
		t.Fatal(err)
	}
	if s.State() != trigsim.Done {
		t.Fatalf("state %v", s.State())
	}
	if err = s.Run(nil); err != trigsim.ErrAlreadyRun {
		t.Fatalf("second Run: %v", err)
	}
	if err = s.Reset(); err != nil {
		t.Fatal(err)
	}
	if s.State() != trigsim.Initialized {
		t.Fatalf("state %v", s.State())
	}
	if err = s.Run(nil); err != nil {
		t.Fatal(err)
	}
}

func TestSequencer_empty(t *testing.T) {
	s := trigtest.Run(t, defaultTables(t), 0, nil)
	if len(s.Records()) != 0 || len(s.Matrices()) != 0 || s.Decision() {
		t.Fatal("records from empty input")
	}
}

// A single near source hit at the edge of zone 4.
func TestSequencer_singleHit(t *testing.T) {
	s := trigtest.Run(t, defaultTables(t), 0, frames(t, 100, trigsim.Cell{Side: 0, Layer: 0, Row: 56}))
	recs := s.Records()
	if len(recs) != 1 || len(s.Matrices()) != 1 {
		t.Fatalf("got %d records", len(recs))
	}
	var want trigsim.TrackerRecord
	want.Tick = 100
	want.Finale[0][4] = trigsim.FinaleInner | trigsim.FinaleRight | trigsim.FinaleNSZRight
	want.PatternZoning[0] = 1 << 4
	want.NearSrcZoning[0] = 1 << 4
	want.SingleSideCoinc = true
	want.Decision = true
	trigtest.CompareRecords(t, recs, []trigsim.TrackerRecord{want})

	if !s.Decision() {
		t.Fatal("no decision")
	}
	snap := s.Matrices()[0]
	if snap.Tick != 100 || snap.Matrix.Count() != 1 || !snap.Matrix.At(0, 0, 56) {
		t.Fatal("bad matrix snapshot")
	}
}

func TestSequencer_slidingZoneLog(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	s, err := trigsim.NewSequencer(trigsim.Logger(log))
	if err != nil {
		t.Fatal(err)
	}
	g := s.Geometry()
	if err = s.Initialize(mapping.New(&g, 0), defaultTables(t)); err != nil {
		t.Fatal(err)
	}
	if err = s.Run(frames(t, 100, trigsim.Cell{Side: 0, Layer: 0, Row: 56})); err != nil {
		t.Fatal(err)
	}
	// row 56 is in sliding zones 14 (rows 49-56) and 15 (rows 53-60)
	seen := map[int]logrus.Fields{}
	for _, e := range hook.AllEntries() {
		if e.Message == "sliding zone" {
			seen[e.Data["sliding"].(int)] = e.Data
		}
	}
	if len(seen) != 2 || seen[14] == nil || seen[15] == nil {
		t.Fatalf("sliding zone entries: %v", seen)
	}
	if f := seen[14]; f["layers"] != "000000001" || f["rows"] != "10000000" || f["io"] != "01" {
		t.Errorf("sliding zone 14: %v", f)
	}
}

func TestSequencer_oddTicks(t *testing.T) {
	in := append(frames(t, 7, trigsim.Cell{Side: 1, Layer: 4, Row: 10}),
		frames(t, 8, trigsim.Cell{Side: 1, Layer: 5, Row: 11})...)
	in = append(in, frames(t, 9, trigsim.Cell{Side: 0, Layer: 0, Row: 0})...)
	in = append(in, frames(t, 12, trigsim.Cell{Side: 0, Layer: 0, Row: 1})...)
	s := trigtest.Run(t, defaultTables(t), 1, in)
	recs := s.Records()
	if len(recs) != 2 {
		t.Fatalf("got %d records, expected 2", len(recs))
	}
	if recs[0].Tick != 8 || recs[1].Tick != 12 {
		t.Fatalf("unexpected ticks %d, %d", recs[0].Tick, recs[1].Tick)
	}
	m := s.Matrices()[0].Matrix
	if m.Count() != 1 || !m.At(1, 5, 11) {
		t.Fatalf("frames of odd ticks sampled: %v", m.Hits())
	}
}

func TestSequencer_idempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	g := trigsim.Reference()
	var in []trigsim.Frame
	for tick := int32(0); tick < 40; tick += 2 {
		cells := trigtest.RandomTrack(rng, &g)
		in = append(in, frames(t, tick, cells...)...)
	}
	tables := defaultTables(t)
	s1 := trigtest.Run(t, tables, 1, in)
	s2 := trigtest.Run(t, tables, 8, in)
	trigtest.CompareRecords(t, s2.Records(), s1.Records())
	if s1.Decision() != s2.Decision() {
		t.Fatal("decision mismatch")
	}
	for i, m := range s1.Matrices() {
		if !m.Matrix.Equal(s2.Matrices()[i].Matrix) {
			t.Fatalf("matrix %d mismatch", i)
		}
	}

	// run again after reset
	r1 := append([]trigsim.TrackerRecord(nil), s1.Records()...)
	if err := s1.Reset(); err != nil {
		t.Fatal(err)
	}
	if err := s1.Run(in); err != nil {
		t.Fatal(err)
	}
	trigtest.CompareRecords(t, s1.Records(), r1)
}

type badTranslator struct {
	*mapping.Linear
	row int
}

func (b badTranslator) Translate(a trigsim.ElectronicAddress) (trigsim.GeomAddress, error) {
	g, err := b.Linear.Translate(a)
	g.Row = b.row
	return g, err
}

func (b badTranslator) IsInModule(g trigsim.GeomAddress) bool { return true }

func TestSequencer_errors(t *testing.T) {
	g := trigsim.Reference()
	in := frames(t, 2, trigsim.Cell{Side: 0, Layer: 0, Row: 0})

	s, err := trigsim.NewSequencer()
	if err != nil {
		t.Fatal(err)
	}
	if err = s.Initialize(badTranslator{mapping.New(&g, 0), 200}, defaultTables(t)); err != nil {
		t.Fatal(err)
	}
	if err = s.Run(in); errors.Cause(err) != trigsim.ErrInvalidAddress {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}

	// unmapped channel
	in[0].SetChannel(0, 40, true)
	s, _ = trigsim.NewSequencer()
	if err = s.Initialize(mapping.New(&g, 0), defaultTables(t)); err != nil {
		t.Fatal(err)
	}
	if err = s.Run(in); errors.Cause(err) != mapping.ErrUnmapped {
		t.Fatalf("expected ErrUnmapped, got %v", err)
	}
	if s.State() != trigsim.Initialized {
		t.Fatalf("state after failed run: %v", s.State())
	}
	failed := s.RunID()
	if failed == (uuid.UUID{}) {
		t.Fatal("failed run has no id")
	}
	if s.Records() != nil || s.Matrices() != nil || s.Decision() {
		t.Fatal("failed run left outputs")
	}

	// same sequencer, valid input
	in[0].SetChannel(0, 40, false)
	if err = s.Run(in); err != nil {
		t.Fatal(err)
	}
	if s.State() != trigsim.Done || s.RunID() == failed {
		t.Fatalf("rerun: state %v, run id %v", s.State(), s.RunID())
	}
	if len(s.Records()) != 1 || s.Records()[0].Tick != 2 {
		t.Fatalf("rerun: %d records", len(s.Records()))
	}
}

// Hits mapped outside the module are skipped.
func TestSequencer_outOfModule(t *testing.T) {
	g := trigsim.Reference()
	f := trigsim.Frame{Rack: mapping.GeigerRack, Crate: 2, Tick: 4}
	f.SetBoardIDs()
	f.SetChannel(19, 0, true) // row 118
	s, err := trigsim.NewSequencer()
	if err != nil {
		t.Fatal(err)
	}
	if err = s.Initialize(mapping.New(&g, 0), defaultTables(t)); err != nil {
		t.Fatal(err)
	}
	if err = s.Run([]trigsim.Frame{f}); err != nil {
		t.Fatal(err)
	}
	if len(s.Records()) != 1 || !s.Matrices()[0].Matrix.IsEmpty() || s.Decision() {
		t.Fatal("out of module hit not skipped")
	}
}
