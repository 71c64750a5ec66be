// Package legacy reads and writes the original ASCII board format
// (format version "1.0"): a plain-text grid of two-character tile
// symbols with no persisted electrical state, superseded by the region
// file format but still accepted on load for older save files.
package legacy

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/circuitworks/logicsim/board"
	"github.com/circuitworks/logicsim/tiles"
)

const header = "CircuitSim2 Board File v1.0"

// ErrBadFormat is returned for any structural problem with a legacy
// board file: a missing/mismatched header, a malformed dimension line,
// or a symbol with no entry in the table.
var ErrBadFormat = errors.New("malformed legacy board file")

// symbol is a two-character tile code: the first character identifies
// the tile kind (case distinguishes a gate from its alternate form,
// e.g. 'A'/'a' for And/Nand), the second the direction ('.' where
// direction is meaningless, as for Blank or Junction).
type symbol [2]byte

var kindLetter = map[tiles.Kind]byte{
	tiles.Blank:         '.',
	tiles.WireStraight:  'W',
	tiles.WireCorner:    'C',
	tiles.WireTee:       'T',
	tiles.WireJunction:  'J',
	tiles.WireCrossover: 'X',
	tiles.InSwitch:      'S',
	tiles.InButton:      'B',
	tiles.OutLed:        'L',
	tiles.GateDiode:     'D',
	tiles.GateBuffer:    'G',
	tiles.GateNot:       'N',
	tiles.GateAnd:       'A',
	tiles.GateNand:      'a',
	tiles.GateOr:        'O',
	tiles.GateNor:       'o',
	tiles.GateXor:       'Y',
	tiles.GateXnor:      'y',
	tiles.Label:         '#',
}

var letterKind map[byte]tiles.Kind

var dirLetter = map[tiles.Direction]byte{
	tiles.North: 'N',
	tiles.East:  'E',
	tiles.South: 'S',
	tiles.West:  'W',
}

var letterDir map[byte]tiles.Direction

func init() {
	letterKind = make(map[byte]tiles.Kind, len(kindLetter))
	for k, l := range kindLetter {
		letterKind[l] = k
	}
	letterDir = make(map[byte]tiles.Direction, len(dirLetter))
	for d, l := range dirLetter {
		letterDir[l] = d
	}
}

func symbolFor(td tiles.TileData) symbol {
	kl, ok := kindLetter[td.Kind]
	if !ok {
		kl = '.'
	}
	if td.Kind == tiles.Blank || td.Kind == tiles.WireJunction || td.Kind == tiles.WireCrossover || td.Kind == tiles.OutLed {
		return symbol{kl, '.'}
	}
	return symbol{kl, dirLetter[td.Direction]}
}

func tileForSymbol(s symbol) (tiles.TileData, error) {
	k, ok := letterKind[s[0]]
	if !ok {
		return tiles.TileData{}, errors.Wrapf(ErrBadFormat, "unknown symbol kind %q", s[0])
	}
	if s[1] == '.' {
		return tiles.TileData{Kind: k}, nil
	}
	d, ok := letterDir[s[1]]
	if !ok {
		return tiles.TileData{}, errors.Wrapf(ErrBadFormat, "unknown symbol direction %q", s[1])
	}
	return tiles.TileData{Kind: k, Direction: d}, nil
}

// Write serializes the rectangle [minX, minX+width) x [minY, minY+height)
// of b to w in the legacy text format. Electrical state is never
// persisted in this format; only kind and direction survive.
func Write(w io.Writer, b *board.Board, minX, minY, width, height int32) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, header)
	fmt.Fprintf(bw, "%d %d\n", width, height)
	for y := minY; y < minY+height; y++ {
		for x := minX; x < minX+width; x++ {
			td, err := b.TileAt(x, y)
			if err != nil {
				return err
			}
			s := symbolFor(td)
			bw.Write(s[:])
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Read parses a legacy-format board file from r, placing tiles into dst
// starting at (originX, originY).
func Read(r io.Reader, dst *board.Board, originX, originY int32) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	if !scanner.Scan() {
		return errors.Wrap(ErrBadFormat, "empty file")
	}
	if strings.TrimSpace(scanner.Text()) != header {
		return errors.Wrapf(ErrBadFormat, "unexpected header %q", scanner.Text())
	}

	if !scanner.Scan() {
		return errors.Wrap(ErrBadFormat, "missing dimension line")
	}
	var width, height int32
	if _, err := fmt.Sscanf(scanner.Text(), "%d %d", &width, &height); err != nil {
		return errors.Wrap(ErrBadFormat, "malformed dimension line")
	}

	for row := int32(0); row < height; row++ {
		if !scanner.Scan() {
			return errors.Wrapf(ErrBadFormat, "missing row %d", row)
		}
		line := scanner.Text()
		if int32(len(line)) < width*2 {
			return errors.Wrapf(ErrBadFormat, "row %d too short", row)
		}
		for col := int32(0); col < width; col++ {
			s := symbol{line[col*2], line[col*2+1]}
			td, err := tileForSymbol(s)
			if err != nil {
				return errors.Wrapf(err, "row %d col %d", row, col)
			}
			if td.Kind == tiles.Blank {
				continue
			}
			if err := dst.SetTile(originX+col, originY+row, td); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "scanning legacy board file")
	}
	return nil
}
