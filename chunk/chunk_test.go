package chunk

import (
	"testing"

	"github.com/circuitworks/logicsim/tiles"
)

func TestNewChunkIsEmpty(t *testing.T) {
	c := New(Coord{X: 1, Y: 2})
	if !c.Empty() {
		t.Fatal("new chunk should be Empty")
	}
	if c.Unsaved() {
		t.Fatal("new chunk should not be Unsaved")
	}
}

func TestIndexCoordsRoundTrip(t *testing.T) {
	for y := 0; y < Width; y++ {
		for x := 0; x < Width; x++ {
			idx := Index(x, y)
			gotX, gotY := Coords(idx)
			if gotX != x || gotY != y {
				t.Fatalf("Coords(Index(%d,%d)) = (%d,%d)", x, y, gotX, gotY)
			}
		}
	}
}

func TestSetTileClearsEmptyAndSetsUnsaved(t *testing.T) {
	c := New(Coord{})
	c.SetTile(Index(3, 4), tiles.TileData{Kind: tiles.WireStraight})
	if c.Empty() {
		t.Fatal("chunk with a wire should not be Empty")
	}
	if !c.Unsaved() {
		t.Fatal("chunk should be Unsaved after SetTile")
	}
	if got := c.TileAt(Index(3, 4)).Kind; got != tiles.WireStraight {
		t.Fatalf("TileAt = %v, want WireStraight", got)
	}
}

func TestSetTileBackToBlankRecomputesEmpty(t *testing.T) {
	c := New(Coord{})
	idx := Index(0, 0)
	c.SetTile(idx, tiles.TileData{Kind: tiles.WireStraight})
	c.SetTile(idx, tiles.TileData{Kind: tiles.Blank})
	if !c.Empty() {
		t.Fatal("chunk should be Empty again after clearing its only tile")
	}
}

func TestMarkSavedClearsUnsaved(t *testing.T) {
	c := New(Coord{})
	c.SetTile(Index(0, 0), tiles.TileData{Kind: tiles.WireStraight})
	c.MarkSaved()
	if c.Unsaved() {
		t.Fatal("MarkSaved should clear Unsaved")
	}
}

func TestPendingTracking(t *testing.T) {
	c := New(Coord{})
	c.MarkPending(CategoryGate, 5)
	c.MarkPending(CategoryGate, 9)
	if c.PendingCount(CategoryGate) != 2 {
		t.Fatalf("PendingCount = %d, want 2", c.PendingCount(CategoryGate))
	}
	c.ClearPending(CategoryGate, 5)
	if c.PendingCount(CategoryGate) != 1 {
		t.Fatalf("PendingCount after clear = %d, want 1", c.PendingCount(CategoryGate))
	}
	indices := c.PendingIndices(CategoryGate)
	if len(indices) != 1 || indices[0] != 9 {
		t.Fatalf("PendingIndices = %v, want [9]", indices)
	}
	if c.PendingCount(CategoryWire) != 0 {
		t.Fatal("unrelated category should be unaffected")
	}
}
