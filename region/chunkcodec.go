package region

import (
	"github.com/pkg/errors"

	"github.com/circuitworks/logicsim/chunk"
	"github.com/circuitworks/logicsim/tiles"
)

const bytesPerTile = 3
const chunkPayloadSize = chunk.Width * chunk.Width * bytesPerTile

// EncodeChunk packs every tile in c into a fixed-size byte slice: Kind,
// then a bitfield of Direction/State1/State2/Highlight, then Meta.
func EncodeChunk(c *chunk.Chunk) []byte {
	buf := make([]byte, chunkPayloadSize)
	for idx := 0; idx < chunk.Width*chunk.Width; idx++ {
		td := c.TileAt(idx)
		off := idx * bytesPerTile
		buf[off] = byte(td.Kind)
		var bits byte
		bits |= byte(td.Direction) & 0x3
		bits |= (byte(td.State1) & 0x3) << 2
		bits |= (byte(td.State2) & 0x3) << 4
		if td.Highlight {
			bits |= 1 << 6
		}
		buf[off+1] = bits
		buf[off+2] = td.Meta
	}
	return buf
}

// DecodeChunk reconstructs a Chunk at coord from bytes written by
// EncodeChunk.
func DecodeChunk(coord chunk.Coord, data []byte) (*chunk.Chunk, error) {
	if len(data) != chunkPayloadSize {
		return nil, errors.Errorf("chunk payload is %d bytes, want %d", len(data), chunkPayloadSize)
	}
	c := chunk.New(coord)
	for idx := 0; idx < chunk.Width*chunk.Width; idx++ {
		off := idx * bytesPerTile
		bits := data[off+1]
		td := tiles.TileData{
			Kind:      tiles.Kind(data[off]),
			Direction: tiles.Direction(bits & 0x3),
			State1:    tiles.State((bits >> 2) & 0x3),
			State2:    tiles.State((bits >> 4) & 0x3),
			Highlight: bits&(1<<6) != 0,
			Meta:      data[off+2],
		}
		if td != (tiles.TileData{}) {
			c.SetTile(idx, td)
		}
	}
	c.MarkSaved()
	return c, nil
}
