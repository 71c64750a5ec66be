package region

import (
	"bytes"
	"testing"
)

func TestHeaderEntryEncodeDecodeRoundTrip(t *testing.T) {
	e := HeaderEntry{SectorOffset: 0xABCDEF, SectorCount: 7}
	got := decodeHeaderEntry(e.encode())
	if got != e {
		t.Fatalf("round trip = %+v, want %+v", got, e)
	}
}

func TestWriteReadHeaderRoundTrip(t *testing.T) {
	entries := make([]HeaderEntry, headerEntryCount)
	entries[0] = HeaderEntry{SectorOffset: 1, SectorCount: 1}
	entries[1023] = HeaderEntry{SectorOffset: 99, SectorCount: 3}

	var buf bytes.Buffer
	if err := WriteHeader(&buf, entries); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	if buf.Len() != HeaderSize {
		t.Fatalf("header size = %d, want %d", buf.Len(), HeaderSize)
	}
	got, err := ReadHeader(&buf)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	for i, e := range entries {
		if got[i] != e {
			t.Fatalf("entry %d = %+v, want %+v", i, got[i], e)
		}
	}
}

func TestSectorCountForRoundsUp(t *testing.T) {
	n, err := sectorCountFor(1)
	if err != nil || n != 1 {
		t.Fatalf("sectorCountFor(1) = (%d, %v), want (1, nil)", n, err)
	}
	n, err = sectorCountFor(SectorSize)
	if err != nil || n != 1 {
		t.Fatalf("sectorCountFor(SectorSize) = (%d, %v), want (1, nil)", n, err)
	}
	n, err = sectorCountFor(SectorSize + 1)
	if err != nil || n != 2 {
		t.Fatalf("sectorCountFor(SectorSize+1) = (%d, %v), want (2, nil)", n, err)
	}
}

func TestSectorCountForRejectsOversizedPayload(t *testing.T) {
	_, err := sectorCountFor(256 * SectorSize)
	if err != ErrChunkTooLarge {
		t.Fatalf("sectorCountFor(256 sectors) err = %v, want ErrChunkTooLarge", err)
	}
}
