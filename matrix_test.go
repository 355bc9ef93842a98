package trigsim_test

import (
	"testing"
	"testing/quick"

	"github.com/snemo/trigsim"
)

func TestHitMatrix(t *testing.T) {
	g := trigsim.Reference()
	f := func(side, layer, row uint8) bool {
		c := trigsim.Cell{
			Side:  int(side) % trigsim.NumSides,
			Layer: int(layer) % g.Layers,
			Row:   int(row) % g.Rows,
		}
		m := trigsim.NewHitMatrix(&g)
		if !m.IsEmpty() {
			return false
		}
		m.Set(c.Side, c.Layer, c.Row)
		m.Set(c.Side, c.Layer, c.Row)
		if !m.At(c.Side, c.Layer, c.Row) || m.Count() != 1 || m.IsEmpty() {
			return false
		}
		hits := m.Hits()
		if len(hits) != 1 || hits[0] != c {
			return false
		}
		o := trigsim.NewHitMatrix(&g)
		o.Set(c.Side, c.Layer, c.Row)
		if !o.Equal(m) {
			return false
		}
		o.Set((c.Side+1)%trigsim.NumSides, c.Layer, c.Row)
		return !o.Equal(m) && m.Count() == 1
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
}

func TestHitMatrix_bounds(t *testing.T) {
	g := trigsim.Reference()
	m := trigsim.NewHitMatrix(&g)
	for _, c := range []trigsim.Cell{{-1, 0, 0}, {2, 0, 0}, {0, 9, 0}, {0, 0, 113}, {0, 0, -1}} {
		if m.Contains(c.Side, c.Layer, c.Row) {
			t.Errorf("%+v should be out of bounds", c)
		}
	}
	defer func() {
		if recover() == nil {
			t.Fatal("Set out of bounds did not panic")
		}
	}()
	m.Set(0, 0, 113)
}
