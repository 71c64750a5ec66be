package region

import (
	"sort"

	"github.com/pkg/errors"
)

// maxSectorOffset is the largest offset a 24-bit header entry can encode.
const maxSectorOffset = 1<<24 - 1

// ErrSectorPoolExhausted is returned when an allocation would need an
// offset past the 24-bit range a header entry can store.
var ErrSectorPoolExhausted = errors.New("sector pool exhausted")

// run is a contiguous span of free sectors. Length 0 is a sentinel
// meaning "open-ended" — the free span starts at Offset and has no known
// end, which is always true of the span following the last occupied
// sector in a region file.
type run struct {
	Offset uint32
	Length uint32
}

func (r run) end() uint32 {
	return r.Offset + r.Length
}

func (r run) contains(offset, length uint32) bool {
	if r.Length == 0 {
		return offset >= r.Offset
	}
	return offset >= r.Offset && offset+length <= r.end()
}

// FreeSectorPool tracks which sectors of a region file are free, rebuilt
// from a region's header on open and maintained incrementally by
// Allocate/Free afterward. Sector 0 always holds the header and is never
// free.
type FreeSectorPool struct {
	runs []run // sorted by Offset, non-overlapping
}

// NewFreeSectorPool returns a pool for a freshly created region file:
// sector 0 reserved for the header, everything after it free.
func NewFreeSectorPool() *FreeSectorPool {
	return &FreeSectorPool{runs: []run{{Offset: 1, Length: 0}}}
}

// RebuildFreeSectorPool reconstructs a pool from a region's occupied
// header entries, by starting from an all-free pool and punching out
// each entry's span in turn.
func RebuildFreeSectorPool(entries []HeaderEntry) *FreeSectorPool {
	p := NewFreeSectorPool()
	for _, e := range entries {
		if e.SectorCount == 0 {
			continue
		}
		p.markOccupied(e.SectorOffset, uint32(e.SectorCount))
	}
	return p
}

// runIndexCovering finds the index of the free run whose span contains
// [offset, offset+length), or -1 if none does. This is the Go equivalent
// of an upper_bound lookup into a sorted offset->length map.
func (p *FreeSectorPool) runIndexCovering(offset, length uint32) int {
	i := sort.Search(len(p.runs), func(i int) bool { return p.runs[i].Offset > offset })
	i--
	if i < 0 || i >= len(p.runs) {
		return -1
	}
	if p.runs[i].contains(offset, length) {
		return i
	}
	return -1
}

// markOccupied removes [offset, offset+count) from the free space,
// splitting the covering run into its leading and trailing remainders.
func (p *FreeSectorPool) markOccupied(offset, count uint32) {
	i := p.runIndexCovering(offset, count)
	if i < 0 {
		return // already occupied or out of any tracked free run
	}
	r := p.runs[i]
	var replacement []run
	if offset > r.Offset {
		replacement = append(replacement, run{Offset: r.Offset, Length: offset - r.Offset})
	}
	end := offset + count
	switch {
	case r.Length == 0:
		replacement = append(replacement, run{Offset: end, Length: 0})
	case end < r.end():
		replacement = append(replacement, run{Offset: end, Length: r.end() - end})
	}
	p.runs = append(p.runs[:i], append(replacement, p.runs[i+1:]...)...)
}

// Allocate reserves the first free run of at least count sectors
// (first-fit) and returns its starting offset.
func (p *FreeSectorPool) Allocate(count uint32) (uint32, error) {
	for i, r := range p.runs {
		if r.Length != 0 && r.Length < count {
			continue
		}
		offset := r.Offset
		if offset > maxSectorOffset {
			return 0, errors.Wrapf(ErrSectorPoolExhausted, "offset %d exceeds 24-bit range", offset)
		}
		switch {
		case r.Length == 0:
			p.runs[i].Offset += count
		case r.Length == count:
			p.runs = append(p.runs[:i], p.runs[i+1:]...)
		default:
			p.runs[i].Offset += count
			p.runs[i].Length -= count
		}
		return offset, nil
	}
	return 0, errors.Wrap(ErrSectorPoolExhausted, "no free run satisfies the request")
}

// Free returns [offset, offset+count) to the pool, merging with an
// adjacent free run on either side when one is found.
func (p *FreeSectorPool) Free(offset, count uint32) {
	end := offset + count
	i := sort.Search(len(p.runs), func(i int) bool { return p.runs[i].Offset >= offset })

	mergeLeft := i > 0 && p.runs[i-1].Length != 0 && p.runs[i-1].end() == offset
	mergeRight := i < len(p.runs) && p.runs[i].Offset == end

	switch {
	case mergeLeft && mergeRight:
		p.runs[i-1].Length = p.runs[i].end() - p.runs[i-1].Offset
		if p.runs[i].Length == 0 {
			p.runs[i-1].Length = 0
		}
		p.runs = append(p.runs[:i], p.runs[i+1:]...)
	case mergeLeft:
		if p.runs[i-1].Length != 0 {
			p.runs[i-1].Length += count
		}
	case mergeRight:
		p.runs[i].Offset = offset
		if p.runs[i].Length != 0 {
			p.runs[i].Length += count
		}
	default:
		newRun := run{Offset: offset, Length: count}
		p.runs = append(p.runs, run{})
		copy(p.runs[i+1:], p.runs[i:])
		p.runs[i] = newRun
	}
}

// FreeRuns returns a snapshot of the pool's free spans, sorted by offset,
// for inspection tooling. A zero Length in the result means open-ended.
func (p *FreeSectorPool) FreeRuns() []struct{ Offset, Length uint32 } {
	out := make([]struct{ Offset, Length uint32 }, len(p.runs))
	for i, r := range p.runs {
		out[i] = struct{ Offset, Length uint32 }{r.Offset, r.Length}
	}
	return out
}
