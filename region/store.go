// Package region implements the on-disk region file format: fixed-size
// sectors, a per-region chunk header and a first-fit free-sector pool,
// grounded on the same sector-offset bookkeeping a qcow2-style image
// format uses, adapted here to chunk storage instead of disk blocks.
package region

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/circuitworks/logicsim/chunk"
)

// Store persists chunks into region files under a base directory, one
// file per RegionWidth*RegionWidth block of chunks, and implements
// board.ChunkSource so a Board can fault chunks in directly from it.
type Store struct {
	baseDir string
	logger  *log.Logger
}

// NewStore returns a Store rooted at baseDir, which is created if it
// doesn't already exist.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating region directory %q", baseDir)
	}
	return &Store{
		baseDir: baseDir,
		logger:  log.New(os.Stderr, "region: ", log.LstdFlags),
	}, nil
}

func regionCoordOf(cc chunk.Coord) (rx, ry, localX, localY int32) {
	rx = floorDiv(cc.X, RegionWidth)
	ry = floorDiv(cc.Y, RegionWidth)
	localX = cc.X - rx*RegionWidth
	localY = cc.Y - ry*RegionWidth
	return
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func (s *Store) regionPath(rx, ry int32) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("r.%d.%d.region", rx, ry))
}

// LoadChunk reads the chunk at coord from its region file, returning a
// fresh blank chunk if the region file or the chunk's slot doesn't exist
// yet.
func (s *Store) LoadChunk(coord chunk.Coord) (*chunk.Chunk, error) {
	rx, ry, lx, ly := regionCoordOf(coord)
	f, err := os.Open(s.regionPath(rx, ry))
	if os.IsNotExist(err) {
		return chunk.New(coord), nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "opening region (%d, %d)", rx, ry)
	}
	defer f.Close()

	entries, err := ReadHeader(f)
	if err != nil {
		return nil, err
	}
	entry := entries[entryIndex(lx, ly)]
	if !entry.occupied() {
		return chunk.New(coord), nil
	}

	if _, err := f.Seek(int64(entry.SectorOffset)*SectorSize, io.SeekStart); err != nil {
		return nil, errors.Wrapf(err, "seeking to chunk (%d, %d) payload", coord.X, coord.Y)
	}
	var lenBuf [4]byte
	if _, err := io.ReadFull(f, lenBuf[:]); err != nil {
		return nil, errors.Wrapf(err, "reading chunk (%d, %d) length prefix", coord.X, coord.Y)
	}
	payloadLen := binary.BigEndian.Uint32(lenBuf[:])
	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(f, payload); err != nil {
		return nil, errors.Wrapf(err, "reading chunk (%d, %d) payload", coord.X, coord.Y)
	}
	return DecodeChunk(coord, payload)
}

// SaveChunk writes c's current contents to its region file, allocating
// fresh sectors (after freeing any it previously held) when the payload
// no longer fits in its old slot.
func (s *Store) SaveChunk(coord chunk.Coord, c *chunk.Chunk) error {
	rx, ry, lx, ly := regionCoordOf(coord)
	path := s.regionPath(rx, ry)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return errors.Wrapf(err, "opening region (%d, %d) for write", rx, ry)
	}
	defer f.Close()

	entries, err := readOrInitHeader(f)
	if err != nil {
		return err
	}
	pool := RebuildFreeSectorPool(entries)

	idx := entryIndex(lx, ly)
	old := entries[idx]
	if old.occupied() {
		pool.Free(old.SectorOffset, uint32(old.SectorCount))
	}

	payload := EncodeChunk(c)
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	full := append(lenBuf[:], payload...)
	needed, err := sectorCountFor(len(full))
	if err != nil {
		return errors.Wrapf(err, "chunk (%d, %d)", coord.X, coord.Y)
	}

	offset := old.SectorOffset
	if !old.occupied() || old.SectorCount != needed {
		if old.occupied() {
			pool.Free(old.SectorOffset, uint32(old.SectorCount))
		}
		offset, err = pool.Allocate(uint32(needed))
		if err != nil {
			return errors.Wrapf(err, "allocating sectors for chunk (%d, %d)", coord.X, coord.Y)
		}
	}
	entries[idx] = HeaderEntry{SectorOffset: offset, SectorCount: needed}

	padded := make([]byte, int(needed)*SectorSize)
	copy(padded, full)
	if _, err := f.WriteAt(padded, int64(offset)*SectorSize); err != nil {
		return errors.Wrapf(err, "writing chunk (%d, %d) payload", coord.X, coord.Y)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return errors.Wrap(err, "seeking to region header")
	}
	if err := WriteHeader(f, entries); err != nil {
		return err
	}
	c.MarkSaved()
	return nil
}

func readOrInitHeader(f *os.File) ([]HeaderEntry, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "stat region file")
	}
	if info.Size() == 0 {
		entries := make([]HeaderEntry, headerEntryCount)
		if err := WriteHeader(f, entries); err != nil {
			return nil, err
		}
		return entries, nil
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "seeking to region header")
	}
	return ReadHeader(f)
}

// KnownChunks enumerates every chunk coordinate occupied in any region
// file under the store's base directory.
func (s *Store) KnownChunks() ([]chunk.Coord, error) {
	matches, err := filepath.Glob(filepath.Join(s.baseDir, "r.*.*.region"))
	if err != nil {
		return nil, errors.Wrap(err, "globbing region files")
	}
	var out []chunk.Coord
	for _, path := range matches {
		var rx, ry int32
		if _, err := fmt.Sscanf(filepath.Base(path), "r.%d.%d.region", &rx, &ry); err != nil {
			continue
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "opening region %q", path)
		}
		entries, err := ReadHeader(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		for i, e := range entries {
			if !e.occupied() {
				continue
			}
			localX := int32(i % RegionWidth)
			localY := int32(i / RegionWidth)
			out = append(out, chunk.Coord{X: rx*RegionWidth + localX, Y: ry*RegionWidth + localY})
		}
	}
	return out, nil
}
