package board

import (
	"testing"

	"github.com/circuitworks/logicsim/chunk"
	"github.com/circuitworks/logicsim/tiles"
)

func TestChunkCoordOfHandlesNegativeCoordinates(t *testing.T) {
	cases := []struct {
		x, y       int32
		wantX, wantY int32
	}{
		{0, 0, 0, 0},
		{31, 31, 0, 0},
		{32, 0, 1, 0},
		{-1, -1, -1, -1},
		{-32, -1, -1, -1},
		{-33, 0, -2, 0},
	}
	for _, c := range cases {
		got := ChunkCoordOf(c.x, c.y)
		if got.X != c.wantX || got.Y != c.wantY {
			t.Errorf("ChunkCoordOf(%d,%d) = %+v, want {%d %d}", c.x, c.y, got, c.wantX, c.wantY)
		}
	}
}

func TestLocalIndexOfWrapsWithinChunk(t *testing.T) {
	idx := LocalIndexOf(-1, -1)
	gotX, gotY := chunk.Coords(idx)
	if gotX != 31 || gotY != 31 {
		t.Errorf("LocalIndexOf(-1,-1) -> (%d,%d), want (31,31)", gotX, gotY)
	}
}

func TestPackChunkKeyIsStableAndDistinct(t *testing.T) {
	a := PackChunkKey(1, 2)
	b := PackChunkKey(2, 1)
	if a == b {
		t.Fatal("distinct coordinates must pack to distinct keys")
	}
	if PackChunkKey(1, 2) != a {
		t.Fatal("packing is not deterministic")
	}
}

func TestSetTileThenTileAtRoundTrips(t *testing.T) {
	b := New()
	td := tiles.TileData{Kind: tiles.WireStraight, Direction: tiles.East}
	if err := b.SetTile(100, -200, td); err != nil {
		t.Fatalf("SetTile: %v", err)
	}
	got, err := b.TileAt(100, -200)
	if err != nil {
		t.Fatalf("TileAt: %v", err)
	}
	if got.Kind != tiles.WireStraight || got.Direction != tiles.East {
		t.Fatalf("TileAt = %+v, want Kind=WireStraight Direction=East", got)
	}
}

func TestOutOfBoundsRejected(t *testing.T) {
	b := New()
	b.MaxSize = 10
	if _, err := b.TileAt(100, 0); err == nil {
		t.Fatal("expected an out-of-bounds error")
	}
}

func TestChunkFaultingAllocatesBlankWithoutSource(t *testing.T) {
	b := New()
	c, err := b.ChunkAt(5, 5)
	if err != nil {
		t.Fatalf("ChunkAt: %v", err)
	}
	if !c.Empty() {
		t.Fatal("a freshly faulted chunk with no backing store should be empty")
	}
}

type fakeSource struct {
	known  []chunk.Coord
	loaded map[chunk.Coord]*chunk.Chunk
}

func (f *fakeSource) LoadChunk(cc chunk.Coord) (*chunk.Chunk, error) {
	if c, ok := f.loaded[cc]; ok {
		return c, nil
	}
	return chunk.New(cc), nil
}

func (f *fakeSource) KnownChunks() ([]chunk.Coord, error) {
	return f.known, nil
}

func TestForceLoadAllChunksPullsEveryKnownChunk(t *testing.T) {
	src := &fakeSource{known: []chunk.Coord{{X: 0, Y: 0}, {X: 5, Y: -5}}}
	b := New()
	b.SetSource(src)
	if err := b.ForceLoadAllChunks(); err != nil {
		t.Fatalf("ForceLoadAllChunks: %v", err)
	}
	if len(b.ResidentChunks()) != 2 {
		t.Fatalf("resident chunks = %d, want 2", len(b.ResidentChunks()))
	}
}

func TestHighlightRoundTrip(t *testing.T) {
	b := New()
	if err := b.SetHighlight(1, 1, true); err != nil {
		t.Fatalf("SetHighlight: %v", err)
	}
	td, _ := b.TileAt(1, 1)
	if !td.Highlight {
		t.Fatal("tile should be highlighted")
	}
	b.ClearAllHighlights()
	td, _ = b.TileAt(1, 1)
	if td.Highlight {
		t.Fatal("ClearAllHighlights should have cleared the flag")
	}
}
