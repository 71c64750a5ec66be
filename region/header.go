package region

import (
	"io"

	"github.com/pkg/errors"
)

// RegionWidth is the number of chunks along one edge of a region; a
// region file covers RegionWidth*RegionWidth chunks.
const RegionWidth = 32

// SectorSize is the granularity region files are allocated in. The header
// occupies exactly one sector.
const SectorSize = 4096

const headerEntryCount = RegionWidth * RegionWidth
const HeaderSize = headerEntryCount * 4

// HeaderEntry locates one chunk's payload within a region file: a 24-bit
// sector offset and an 8-bit sector count, packed big-endian into 4 bytes
// exactly as they sit in the file.
type HeaderEntry struct {
	SectorOffset uint32 // low 24 bits significant
	SectorCount  uint8
}

func (e HeaderEntry) occupied() bool {
	return e.SectorCount > 0
}

func (e HeaderEntry) encode() [4]byte {
	var b [4]byte
	b[0] = byte(e.SectorOffset >> 16)
	b[1] = byte(e.SectorOffset >> 8)
	b[2] = byte(e.SectorOffset)
	b[3] = e.SectorCount
	return b
}

func decodeHeaderEntry(b [4]byte) HeaderEntry {
	offset := uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
	return HeaderEntry{SectorOffset: offset, SectorCount: b[3]}
}

// ReadHeader reads the fixed RegionWidth*RegionWidth entry header from
// the start of a region file.
func ReadHeader(r io.Reader) ([]HeaderEntry, error) {
	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errors.Wrap(err, "reading region header")
	}
	entries := make([]HeaderEntry, headerEntryCount)
	for i := range entries {
		var b [4]byte
		copy(b[:], buf[i*4:i*4+4])
		entries[i] = decodeHeaderEntry(b)
	}
	return entries, nil
}

// WriteHeader writes entries (must have exactly headerEntryCount items)
// to w as the fixed-size region header.
func WriteHeader(w io.Writer, entries []HeaderEntry) error {
	if len(entries) != headerEntryCount {
		return errors.Errorf("region header needs %d entries, got %d", headerEntryCount, len(entries))
	}
	buf := make([]byte, HeaderSize)
	for i, e := range entries {
		b := e.encode()
		copy(buf[i*4:i*4+4], b[:])
	}
	_, err := w.Write(buf)
	return errors.Wrap(err, "writing region header")
}

// entryIndex returns a chunk's slot in a region's header, from its
// position within the region (each coordinate in [0, RegionWidth)).
func entryIndex(localX, localY int32) int {
	return int(localY)*RegionWidth + int(localX)
}

// ErrChunkTooLarge is returned when an encoded chunk payload would need
// more sectors than a HeaderEntry's single-byte SectorCount can hold.
var ErrChunkTooLarge = errors.New("chunk payload needs more than 255 sectors")

// sectorCountFor returns how many SectorSize sectors are needed to hold
// payloadLen bytes, rounding up, or ErrChunkTooLarge if that exceeds what
// SectorCount can represent.
func sectorCountFor(payloadLen int) (uint8, error) {
	n := (payloadLen + SectorSize - 1) / SectorSize
	if n > 255 {
		return 0, ErrChunkTooLarge
	}
	return uint8(n), nil
}
