// seehuhn.de/go/sfnt - a library for reading and writing font files
// Copyright (C) 2022  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package markarray

import (
	"testing"

	"seehuhn.de/go/otfea/opentype/anchor"
	"seehuhn.de/go/otfea/sourcemap"
)

func readU16(buf []byte, off int) uint16 {
	return uint16(buf[off])<<8 | uint16(buf[off+1])
}

func readI16(buf []byte, off int) int16 {
	return int16(readU16(buf, off))
}

func TestAppendGoldenBytesTwoRecords(t *testing.T) {
	xSpan := sourcemap.Span{Start: 1, End: 4}
	table := Table{
		{Class: 0, Anchor: anchor.Table{X: 100, Y: 200}},
		{Class: 1, Anchor: anchor.Table{X: -50, Y: 0, XSpan: xSpan}},
	}

	m := sourcemap.New()
	rec := sourcemap.NewRecorder(m, 0)
	buf := table.Append(nil, rec)

	if len(buf) != table.EncodeLen() {
		t.Fatalf("Append wrote %d bytes, EncodeLen said %d", len(buf), table.EncodeLen())
	}
	if got := readU16(buf, 0); got != 2 {
		t.Fatalf("markCount = %d, want 2", got)
	}

	if got := readU16(buf, 2); got != 0 {
		t.Errorf("record[0].class = %d, want 0", got)
	}
	anchor0Off := int(readU16(buf, 4))
	if got := readU16(buf, anchor0Off); got != 1 { // format 1
		t.Errorf("record[0] anchor format = %d, want 1", got)
	}
	if got := readI16(buf, anchor0Off+2); got != 100 {
		t.Errorf("record[0] anchor.x = %d, want 100", got)
	}

	if got := readU16(buf, 6); got != 1 {
		t.Errorf("record[1].class = %d, want 1", got)
	}
	anchor1Off := int(readU16(buf, 8))
	if got := readI16(buf, anchor1Off+2); got != -50 {
		t.Errorf("record[1] anchor.x = %d, want -50", got)
	}

	entries, ok := m.Lookup(xSpan)
	if !ok || len(entries) != 1 {
		t.Fatalf("Lookup(xSpan) = %v, %v", entries, ok)
	}
	if got := readI16(buf, entries[0].Offset); got != -50 {
		t.Errorf("byte at recorded span offset decodes to %d, want -50", got)
	}
}

func TestAppendWithNilRecorderStillEncodes(t *testing.T) {
	table := Table{{Class: 0, Anchor: anchor.Table{X: 1, Y: 2}}}
	buf := table.Append(nil, nil) // must not panic despite nil recorder
	if len(buf) != table.EncodeLen() {
		t.Fatalf("Append wrote %d bytes, EncodeLen said %d", len(buf), table.EncodeLen())
	}
}

func TestAppendOntoExistingBufferOffsetsRelativeToTableStart(t *testing.T) {
	prefix := []byte{0xAA, 0xAA, 0xAA, 0xAA}
	table := Table{{Class: 0, Anchor: anchor.Table{X: 9, Y: 9}}}
	buf := table.Append(prefix, sourcemap.NewRecorder(sourcemap.New(), 0))

	anchorOff := int(readU16(buf, len(prefix)+2))
	if anchorOff != 2+4*len(table) {
		t.Errorf("anchor offset = %d, want %d (relative to table start, not buffer start)", anchorOff, 2+4*len(table))
	}
}
