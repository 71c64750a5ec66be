// Package board implements the sparse, chunk-backed tile grid that the
// rest of the simulation operates on: coordinate/chunk math, on-demand
// chunk faulting through an optional backing store, editor highlighting
// and the free-text notes field.
package board

import (
	"github.com/pkg/errors"

	"github.com/circuitworks/logicsim/chunk"
	"github.com/circuitworks/logicsim/tiles"
)

// ErrInvalidCoordinate is returned whenever a tile coordinate falls
// outside a Board's configured MaxSize (0 means unbounded).
var ErrInvalidCoordinate = errors.New("coordinate outside board bounds")

// ChunkSource is implemented by a backing store (the region package's
// RegionStore) that can fault a chunk in from persistent storage on
// first touch, and enumerate every chunk it already knows about.
type ChunkSource interface {
	LoadChunk(coord chunk.Coord) (*chunk.Chunk, error)
	KnownChunks() ([]chunk.Coord, error)
}

// PackChunkKey combines a chunk coordinate into the single map key a
// Board indexes its chunk table by: x occupies the low 32 bits, y the
// high 32 bits.
func PackChunkKey(x, y int32) uint64 {
	return uint64(uint32(x)) | uint64(uint32(y))<<32
}

// ChunkCoordOf converts a tile position to the coordinate of the chunk
// containing it.
func ChunkCoordOf(x, y int32) chunk.Coord {
	return chunk.Coord{X: x >> chunk.WidthLog2, Y: y >> chunk.WidthLog2}
}

// LocalIndexOf converts a tile position to its index within its chunk.
func LocalIndexOf(x, y int32) int {
	lx := int(x) & (chunk.Width - 1)
	ly := int(y) & (chunk.Width - 1)
	return chunk.Index(lx, ly)
}

// Board is the simulated grid: a sparse map of chunks, faulted in from an
// optional ChunkSource on first access, plus session state that isn't
// part of the persisted tile data (editor highlighting, notes text).
type Board struct {
	chunks map[uint64]*chunk.Chunk
	source ChunkSource

	// MaxSize bounds tile coordinates to [-MaxSize, MaxSize) on both
	// axes. Zero means unbounded.
	MaxSize int32

	// ExtraLogicStates enables Middle-state propagation across the
	// whole board; see tiles.EvaluateGate.
	ExtraLogicStates bool

	NotesText string

	highlighted map[uint64]struct{}
}

// New returns an empty, unbounded Board with no backing store.
func New() *Board {
	return &Board{
		chunks:      make(map[uint64]*chunk.Chunk),
		highlighted: make(map[uint64]struct{}),
	}
}

// SetSource attaches a backing store used to fault in chunks that aren't
// already resident in memory.
func (b *Board) SetSource(src ChunkSource) {
	b.source = src
}

func (b *Board) inBounds(x, y int32) bool {
	if b.MaxSize == 0 {
		return true
	}
	return x >= -b.MaxSize && x < b.MaxSize && y >= -b.MaxSize && y < b.MaxSize
}

// ChunkAt returns the chunk containing tile (x, y), faulting it in from
// the backing store (or allocating a fresh blank chunk, if there is no
// store or the store doesn't have it) on first access.
func (b *Board) ChunkAt(x, y int32) (*chunk.Chunk, error) {
	if !b.inBounds(x, y) {
		return nil, errors.Wrapf(ErrInvalidCoordinate, "(%d, %d)", x, y)
	}
	cc := ChunkCoordOf(x, y)
	key := PackChunkKey(cc.X, cc.Y)
	if c, ok := b.chunks[key]; ok {
		return c, nil
	}

	var c *chunk.Chunk
	if b.source != nil {
		loaded, err := b.source.LoadChunk(cc)
		if err != nil {
			return nil, errors.Wrapf(err, "loading chunk (%d, %d)", cc.X, cc.Y)
		}
		c = loaded
	} else {
		c = chunk.New(cc)
	}
	b.chunks[key] = c
	return c, nil
}

// TileAt returns the tile at (x, y).
func (b *Board) TileAt(x, y int32) (tiles.TileData, error) {
	c, err := b.ChunkAt(x, y)
	if err != nil {
		return tiles.TileData{}, err
	}
	return c.TileAt(LocalIndexOf(x, y)), nil
}

// SetTile overwrites the tile at (x, y).
func (b *Board) SetTile(x, y int32, td tiles.TileData) error {
	c, err := b.ChunkAt(x, y)
	if err != nil {
		return err
	}
	c.SetTile(LocalIndexOf(x, y), td)
	return nil
}

// ResidentChunks returns the coordinates of every chunk currently held in
// memory (loaded, not necessarily dirty).
func (b *Board) ResidentChunks() []chunk.Coord {
	out := make([]chunk.Coord, 0, len(b.chunks))
	for _, c := range b.chunks {
		out = append(out, c.Coord)
	}
	return out
}

// ForceLoadAllChunks faults in every chunk the backing store knows about,
// not just the ones a viewport has touched so far — used by save/export
// operations and the -inspect tooling that need the whole board resident.
func (b *Board) ForceLoadAllChunks() error {
	if b.source == nil {
		return nil
	}
	coords, err := b.source.KnownChunks()
	if err != nil {
		return errors.Wrap(err, "enumerating known chunks")
	}
	for _, cc := range coords {
		key := PackChunkKey(cc.X, cc.Y)
		if _, ok := b.chunks[key]; ok {
			continue
		}
		c, err := b.source.LoadChunk(cc)
		if err != nil {
			return errors.Wrapf(err, "loading chunk (%d, %d)", cc.X, cc.Y)
		}
		b.chunks[key] = c
	}
	return nil
}

// SetHighlight marks or clears the editor highlight flag on tile (x, y).
func (b *Board) SetHighlight(x, y int32, on bool) error {
	c, err := b.ChunkAt(x, y)
	if err != nil {
		return err
	}
	idx := LocalIndexOf(x, y)
	td := c.TileAt(idx)
	td.Highlight = on
	c.SetTile(idx, td)

	cc := ChunkCoordOf(x, y)
	key := PackChunkKey(cc.X, cc.Y)
	if on {
		b.highlighted[key] = struct{}{}
	}
	return nil
}

// ClearAllHighlights removes the highlight flag from every tile that
// currently carries one, without touching any other chunk.
func (b *Board) ClearAllHighlights() {
	for key := range b.highlighted {
		c, ok := b.chunks[key]
		if !ok {
			continue
		}
		for idx := 0; idx < chunk.Width*chunk.Width; idx++ {
			td := c.TileAt(idx)
			if td.Highlight {
				td.Highlight = false
				c.SetTile(idx, td)
			}
		}
	}
	b.highlighted = make(map[uint64]struct{})
}
