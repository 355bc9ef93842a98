package trigsim_test

import (
	"strings"
	"testing"

	"github.com/snemo/trigsim"
)

func TestFrame_SetBoardIDs(t *testing.T) {
	f := trigsim.Frame{Crate: 2}
	f.SetBoardIDs()
	for slot := 0; slot < trigsim.BlocksPerFrame; slot++ {
		id := f.BoardID(slot)
		if id == trigsim.ControlBoardID {
			t.Fatalf("slot %d carries the control board id", slot)
		}
		if s, ok := trigsim.Slot(id); !ok || s != slot {
			t.Fatalf("Slot(%d) = %d, %v. Expected %d", id, s, ok, slot)
		}
		if c := f.CrateID(slot); c != 2 {
			t.Fatalf("slot %d: crate id %d", slot, c)
		}
		if f.HWStatus(slot) != 0 {
			t.Fatalf("slot %d: unexpected hardware status", slot)
		}
	}
	if f.BoardID(9) != 9 || f.BoardID(10) != 11 || f.BoardID(19) != 20 {
		t.Fatal("unexpected board ids")
	}
	if _, ok := trigsim.Slot(trigsim.ControlBoardID); ok {
		t.Fatal("control board has a slot")
	}
}

func TestFrame_blockString(t *testing.T) {
	var f trigsim.Frame
	f.SetBoardIDs()
	f.SetChannel(3, 0, true)
	f.SetChannel(3, 53, true)
	s := f.BlockString(3)
	if len(s) != trigsim.BlockBits {
		t.Fatalf("block string length %d", len(s))
	}
	if !strings.HasSuffix(s, "1") || s[trigsim.BlockBits-54] != '1' {
		t.Fatalf("unexpected block string %s", s)
	}
	var g trigsim.Frame
	if err := g.SetBlockString(3, s); err != nil {
		t.Fatal(err)
	}
	if g.Blocks[3] != f.Blocks[3] || g.BoardID(3) != 3 || !g.Channel(3, 53) || g.Channel(3, 52) {
		t.Fatal("block string round trip failed")
	}
	if err := g.SetBlockString(0, strings.Repeat("0", 101)); err == nil {
		t.Fatal("expected error on long block string")
	}
}
