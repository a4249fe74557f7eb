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

package sourcemap

import "testing"

func TestMapRecordAndLookup(t *testing.T) {
	m := New()
	span := Span{Start: 5, End: 8, Line: 1, Col: 6}
	m.Record(span, I16, 42)

	entries, ok := m.Lookup(span)
	if !ok || len(entries) != 1 || entries[0] != (Entry{Kind: I16, Offset: 42}) {
		t.Fatalf("Lookup(span) = %v, %v; want [{I16 42}], true", entries, ok)
	}

	if _, ok := m.Lookup(Span{Start: 100, End: 103}); ok {
		t.Error("Lookup found an entry for a span that was never recorded")
	}
}

func TestMapRecordZeroSpanIsNoop(t *testing.T) {
	m := New()
	m.Record(Span{}, I16, 7)
	if _, ok := m.Lookup(Span{}); ok {
		t.Error("Record registered an entry for the zero Span")
	}
}

func TestMapRecordAccumulatesMultipleEntriesPerSpan(t *testing.T) {
	m := New()
	span := Span{Start: 1, End: 4}
	m.Record(span, I16, 10)
	m.Record(span, I16, 12)

	entries, ok := m.Lookup(span)
	if !ok || len(entries) != 2 {
		t.Fatalf("Lookup(span) = %v, %v; want 2 entries", entries, ok)
	}
}

func TestRecorderShiftsOffsetsByBase(t *testing.T) {
	m := New()
	rec := NewRecorder(m, 100)
	span := Span{Start: 1, End: 2}
	rec.Record(span, I16, 4)

	entries, ok := m.Lookup(span)
	if !ok || len(entries) != 1 || entries[0].Offset != 104 {
		t.Fatalf("Lookup(span) = %v, %v; want offset 104", entries, ok)
	}
}

func TestRecorderAtNestsBases(t *testing.T) {
	m := New()
	outer := NewRecorder(m, 100)
	inner := outer.At(20) // a subtable starting 20 bytes into outer's buffer
	span := Span{Start: 1, End: 2}
	inner.Record(span, I16, 6)

	entries, ok := m.Lookup(span)
	if !ok || len(entries) != 1 || entries[0].Offset != 126 {
		t.Fatalf("Lookup(span) = %v, %v; want offset 126 (100+20+6)", entries, ok)
	}
}

func TestNilRecorderRecordsNothing(t *testing.T) {
	var rec *Recorder
	rec.Record(Span{Start: 1, End: 2}, I16, 0) // must not panic

	if got := rec.At(5); got != nil {
		t.Errorf("(*Recorder)(nil).At(5) = %v, want nil", got)
	}
}

func TestRecorderWithNilMapRecordsNothing(t *testing.T) {
	rec := NewRecorder(nil, 0)
	span := Span{Start: 1, End: 2}
	rec.Record(span, I16, 3) // must not panic despite the nil map
}

func TestMapMergeOffsetsEntries(t *testing.T) {
	src := New()
	span := Span{Start: 1, End: 2}
	src.Record(span, I16, 10)

	dst := New()
	dst.Merge(src, 1000)

	entries, ok := dst.Lookup(span)
	if !ok || len(entries) != 1 || entries[0].Offset != 1010 {
		t.Fatalf("Lookup(span) after Merge = %v, %v; want offset 1010", entries, ok)
	}
}

func TestMapMergeNilIsNoop(t *testing.T) {
	dst := New()
	dst.Merge(nil, 5) // must not panic
}

func TestPatchI16RoundTrips(t *testing.T) {
	buf := []byte{0x00, 0x00, 0xFF, 0xCE, 0x00, 0x00} // -50 at offset 2
	entry := Entry{Kind: I16, Offset: 2}

	if err := PatchI16(buf, entry, 10); err != nil {
		t.Fatalf("PatchI16: %v", err)
	}
	got := int16(uint16(buf[2])<<8 | uint16(buf[3]))
	if got != -40 {
		t.Errorf("after patching -50 by +10, got %d, want -40", got)
	}
}

func TestPatchI16SaturatesAtBounds(t *testing.T) {
	buf := []byte{0x7F, 0xFF} // 32767
	if err := PatchI16(buf, Entry{Kind: I16, Offset: 0}, 100); err != nil {
		t.Fatalf("PatchI16: %v", err)
	}
	got := int16(uint16(buf[0])<<8 | uint16(buf[1]))
	if got != 32767 {
		t.Errorf("PatchI16 overflowed instead of saturating: got %d", got)
	}
}

func TestPatchI16RejectsWrongKind(t *testing.T) {
	buf := []byte{0, 0}
	if err := PatchI16(buf, Entry{Kind: Kind(99), Offset: 0}, 1); err == nil {
		t.Error("PatchI16 accepted a non-I16 entry")
	}
}

func TestPatchI16RejectsOutOfRangeOffset(t *testing.T) {
	buf := []byte{0, 0}
	if err := PatchI16(buf, Entry{Kind: I16, Offset: 5}, 1); err == nil {
		t.Error("PatchI16 accepted an out-of-range offset")
	}
}
