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

package gtab

import (
	"testing"

	"seehuhn.de/go/otfea/glyph"
	"seehuhn.de/go/otfea/opentype/valuerecord"
	"seehuhn.de/go/otfea/sourcemap"
)

func readU16(buf []byte, off int) int {
	return int(buf[off])<<8 | int(buf[off+1])
}

// bigPairGlyphs builds a Gpos2_1 with n distinct first glyphs, each paired
// with one shared second glyph, large enough that its own encoding exceeds
// maxSubtableSize and must be split by expandOverflowing.
func bigPairGlyphs(n int) Gpos2_1 {
	pg := Gpos2_1{}
	for i := 0; i < n; i++ {
		left := glyph.ID(2 + i) // leave room below for a shared second glyph
		pg[glyph.Pair{Left: left, Right: 1}] = &PairAdjust{
			First: &valuerecord.Table{XAdvance: -50},
		}
	}
	return pg
}

func TestExpandOverflowingSplitsOversizedPairGlyphs(t *testing.T) {
	const n = 8500
	pg := bigPairGlyphs(n)
	if pg.encodeLen() <= maxSubtableSize {
		t.Fatalf("fixture subtable is %d bytes, want > %d to exercise splitting", pg.encodeLen(), maxSubtableSize)
	}

	ll := LookupList{{
		Meta:      &LookupMetaInfo{LookupType: 2},
		Subtables: []Subtable{&pg},
	}}

	expanded := expandOverflowing(ll)
	if len(expanded) != 1 {
		t.Fatalf("expandOverflowing changed the number of lookups: got %d, want 1", len(expanded))
	}
	parts := expanded[0].Subtables
	if len(parts) < 2 {
		t.Fatalf("expandOverflowing produced %d subtable(s), want at least 2", len(parts))
	}

	total := 0
	for i, st := range parts {
		part, ok := st.(*Gpos2_1)
		if !ok {
			t.Fatalf("part %d has type %T, want *Gpos2_1", i, st)
		}
		if got := part.encodeLen(); got > maxSubtableSize {
			t.Errorf("part %d encodes to %d bytes, want <= %d", i, got, maxSubtableSize)
		}
		total += len(*part)
	}
	if total != n {
		t.Errorf("split subtables cover %d pairs in total, want %d", total, n)
	}
}

func TestLookupListEncodeLaysOutSplitSubtablesWithinOffsetRange(t *testing.T) {
	const n = 8500
	pg := bigPairGlyphs(n)
	ll := LookupList{{
		Meta:      &LookupMetaInfo{LookupType: 2},
		Subtables: []Subtable{&pg},
	}}

	rec := sourcemap.NewRecorder(sourcemap.New(), 0)
	buf := ll.encode(rec)

	lookupCount := readU16(buf, 0)
	if lookupCount != 1 {
		t.Fatalf("lookupCount = %d, want 1", lookupCount)
	}
	lookupOffset := readU16(buf, 2)
	subTableCount := readU16(buf, lookupOffset+4)
	if subTableCount < 2 {
		t.Fatalf("subTableCount = %d, want at least 2 (oversized PairGlyphs must be split)", subTableCount)
	}
	for i := 0; i < subTableCount; i++ {
		rel := readU16(buf, lookupOffset+6+2*i)
		if rel >= 1<<16 {
			t.Errorf("subtable %d offset %d does not fit in 16 bits", i, rel)
		}
	}
}

func TestLookupListEncodeNilIsNoop(t *testing.T) {
	var ll LookupList
	if got := ll.encode(sourcemap.NewRecorder(sourcemap.New(), 0)); got != nil {
		t.Errorf("nil LookupList.encode() = %v, want nil", got)
	}
}

func TestExpandOverflowingLeavesSmallSubtablesUntouched(t *testing.T) {
	pg := Gpos2_1{
		glyph.Pair{Left: 2, Right: 1}: &PairAdjust{First: &valuerecord.Table{XAdvance: -50}},
	}
	ll := LookupList{{
		Meta:      &LookupMetaInfo{LookupType: 2},
		Subtables: []Subtable{&pg},
	}}

	expanded := expandOverflowing(ll)
	if len(expanded[0].Subtables) != 1 {
		t.Fatalf("expandOverflowing split a subtable well under the size limit: got %d parts", len(expanded[0].Subtables))
	}
	if expanded[0] != ll[0] {
		t.Error("expandOverflowing reallocated a lookup it did not need to change")
	}
}
