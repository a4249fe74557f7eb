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

package anchor

import (
	"testing"

	"seehuhn.de/go/otfea/sourcemap"
)

func readU16(buf []byte, off int) uint16 {
	return uint16(buf[off])<<8 | uint16(buf[off+1])
}

func readI16(buf []byte, off int) int16 {
	return int16(readU16(buf, off))
}

func TestFormat1GoldenBytes(t *testing.T) {
	a := Table{X: 250, Y: 700}
	if got := a.format(); got != 1 {
		t.Fatalf("format() = %d, want 1", got)
	}
	if got := a.EncodeLen(); got != 6 {
		t.Fatalf("EncodeLen() = %d, want 6", got)
	}

	buf := a.Append(nil)
	if len(buf) != 6 {
		t.Fatalf("Append wrote %d bytes, want 6", len(buf))
	}
	if got := readU16(buf, 0); got != 1 {
		t.Errorf("format field = %d, want 1", got)
	}
	if got := readI16(buf, 2); got != 250 {
		t.Errorf("x = %d, want 250", got)
	}
	if got := readI16(buf, 4); got != 700 {
		t.Errorf("y = %d, want 700", got)
	}
}

func TestFormat2GoldenBytes(t *testing.T) {
	a := Table{X: 10, Y: 20, HasContour: true, ContourIdx: 3}
	if got := a.format(); got != 2 {
		t.Fatalf("format() = %d, want 2", got)
	}
	buf := a.Append(nil)
	if len(buf) != a.EncodeLen() {
		t.Fatalf("Append wrote %d bytes, EncodeLen said %d", len(buf), a.EncodeLen())
	}
	if got := readU16(buf, 6); got != 3 {
		t.Errorf("contourIdx = %d, want 3", got)
	}
}

func TestIsEmpty(t *testing.T) {
	if !(Table{}).IsEmpty() {
		t.Error("zero-value Table is not reported empty")
	}
	if (Table{X: 1}).IsEmpty() {
		t.Error("anchor with non-zero X reported empty")
	}
}

func TestRecordSpansUsesFormat1Layout(t *testing.T) {
	xSpan := sourcemap.Span{Start: 1, End: 4}
	ySpan := sourcemap.Span{Start: 5, End: 8}
	a := Table{X: 300, Y: 500, XSpan: xSpan, YSpan: ySpan}

	m := sourcemap.New()
	rec := sourcemap.NewRecorder(m, 0)
	const at = 40
	a.RecordSpans(rec, at)

	buf := make([]byte, at)
	buf = a.Append(buf)

	entries, ok := m.Lookup(xSpan)
	if !ok || len(entries) != 1 {
		t.Fatalf("Lookup(xSpan) = %v, %v", entries, ok)
	}
	if got := readI16(buf, entries[0].Offset); got != 300 {
		t.Errorf("byte at recorded x offset decodes to %d, want 300", got)
	}

	entries, ok = m.Lookup(ySpan)
	if !ok || len(entries) != 1 {
		t.Fatalf("Lookup(ySpan) = %v, %v", entries, ok)
	}
	if got := readI16(buf, entries[0].Offset); got != 500 {
		t.Errorf("byte at recorded y offset decodes to %d, want 500", got)
	}
}

func TestRecordSpansOnNilRecorderIsNoop(t *testing.T) {
	a := Table{X: 1, Y: 2, XSpan: sourcemap.Span{Start: 1, End: 2}}
	a.RecordSpans(nil, 0) // must not panic
}
