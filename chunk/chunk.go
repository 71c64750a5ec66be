// Package chunk implements the fixed-size tile array that backs one
// square of the simulated board, along with the per-tick pending-update
// bookkeeping the traversal engine consumes.
package chunk

import "github.com/circuitworks/logicsim/tiles"

// Width is the number of tiles along one edge of a chunk.
const Width = 32

// WidthLog2 is log2(Width), used to derive chunk/local coordinates with
// shifts instead of division.
const WidthLog2 = 5

const tileCount = Width * Width

// Category buckets a tile index by what kind of per-tick work it needs,
// so the traversal engine can iterate only the tiles relevant to a given
// phase instead of scanning every slot in the chunk.
type Category int

const (
	CategoryWire Category = iota
	CategoryGate
	CategoryInput
	CategoryLED
	categoryCount
)

// Coord addresses a chunk by its chunk-grid position (tile position right
// shifted by WidthLog2), not by tile position.
type Coord struct {
	X, Y int32
}

// Chunk holds Width*Width tiles plus the bookkeeping needed to avoid
// rescanning the whole array every tick: each Category tracks the set of
// local indices that currently need attention from that phase.
type Chunk struct {
	Coord   Coord
	tiles   [tileCount]tiles.TileData
	pending [categoryCount]map[int]struct{}

	empty   bool // true iff every tile is Kind Blank
	unsaved bool // true iff modified since load/last save
}

// New returns an all-Blank chunk at coord, already marked empty and saved.
func New(coord Coord) *Chunk {
	c := &Chunk{Coord: coord, empty: true}
	for i := range c.pending {
		c.pending[i] = make(map[int]struct{})
	}
	return c
}

// Index converts a local (x, y) tile position, each in [0, Width), to the
// flat array index.
func Index(localX, localY int) int {
	return localY*Width + localX
}

// Coords is the inverse of Index.
func Coords(idx int) (localX, localY int) {
	return idx % Width, idx / Width
}

// TileAt returns the tile stored at local index idx.
func (c *Chunk) TileAt(idx int) tiles.TileData {
	return c.tiles[idx]
}

// SetTile overwrites the tile at local index idx, maintains the Empty
// flag and sets the Unsaved flag. It does not touch pending-update sets —
// the caller (typically the engine or the board's edit path) decides which
// categories the new tile belongs in.
func (c *Chunk) SetTile(idx int, td tiles.TileData) {
	c.tiles[idx] = td
	c.unsaved = true
	if td.Kind != tiles.Blank {
		c.empty = false
	} else {
		c.recomputeEmpty()
	}
}

func (c *Chunk) recomputeEmpty() {
	for i := range c.tiles {
		if c.tiles[i].Kind != tiles.Blank {
			c.empty = false
			return
		}
	}
	c.empty = true
}

// Empty reports whether every tile in the chunk is Blank.
func (c *Chunk) Empty() bool { return c.empty }

// Unsaved reports whether the chunk has been modified since it was last
// loaded or saved.
func (c *Chunk) Unsaved() bool { return c.unsaved }

// MarkSaved clears the Unsaved flag, called after a successful write to
// the region store.
func (c *Chunk) MarkSaved() { c.unsaved = false }

// MarkPending adds idx to the set of tiles needing attention in the given
// category on the next tick that processes it.
func (c *Chunk) MarkPending(cat Category, idx int) {
	c.pending[cat][idx] = struct{}{}
}

// ClearPending removes idx from a category's pending set.
func (c *Chunk) ClearPending(cat Category, idx int) {
	delete(c.pending[cat], idx)
}

// PendingIndices returns the local indices currently pending in cat, in
// no particular order. The traversal engine tolerates any iteration order
// here: each phase's written values depend only on topology and the
// previous tick's state, never on visitation order.
func (c *Chunk) PendingIndices(cat Category) []int {
	out := make([]int, 0, len(c.pending[cat]))
	for idx := range c.pending[cat] {
		out = append(out, idx)
	}
	return out
}

// PendingCount returns the number of tiles pending in cat, for inspection
// tooling that just needs a count and not the index list.
func (c *Chunk) PendingCount(cat Category) int {
	return len(c.pending[cat])
}
