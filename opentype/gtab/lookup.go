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

import "seehuhn.de/go/otfea/sourcemap"

// LookupIndex enumerates lookups. It is used as an index into a
// [LookupList].
type LookupIndex uint16

// LookupList contains the information from an OpenType "Lookup List Table".
//
// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#lookup-list-table
type LookupList []*LookupTable

// LookupTable represents a lookup table inside a "GSUB" or "GPOS" table of a
// font.
//
// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#lookup-table
type LookupTable struct {
	Meta *LookupMetaInfo

	// Subtables holds the subtables emitted for this lookup, in order. All
	// subtables of a lookup share the same variant.
	Subtables []Subtable
}

// LookupMetaInfo contains information associated with a [LookupTable] that
// is not specific to any one subtable.
type LookupMetaInfo struct {
	// LookupType identifies the kind of lookups inside a lookup table.
	// Different numbering schemes are used for GSUB and GPOS tables.
	LookupType uint16

	// LookupFlags modifies how the lookup applies to a glyph string.
	LookupFlags LookupFlags

	// MarkFilteringSet indexes the MarkGlyphSets slice of the corresponding
	// GDEF table; only used when UseMarkFilteringSet is set.
	MarkFilteringSet uint16
}

// LookupFlags contains bits which modify application of a lookup to a glyph
// string.
//
// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#lookupFlags
type LookupFlags uint16

// Bit values for LookupFlags.
const (
	RightToLeft         LookupFlags = 0x0001
	IgnoreBaseGlyphs    LookupFlags = 0x0002
	IgnoreLigatures     LookupFlags = 0x0004
	IgnoreMarks         LookupFlags = 0x0008
	UseMarkFilteringSet LookupFlags = 0x0010
	MarkAttachTypeMask  LookupFlags = 0xFF00
)

// Subtable represents a subtable of a GSUB or GPOS lookup table. The core
// is encode-only: subtables never need to run a shaping pass, only to
// produce their own byte-exact wire encoding. encode receives a recorder
// already based at this subtable's own start, so implementations record
// scalar spans at the local offset they write them at.
type Subtable interface {
	encodeLen() int
	encode(rec *sourcemap.Recorder) []byte
}

// lookupHeaderLen returns the byte length of a LookupTable's fixed header
// (lookupType, lookupFlag, subTableCount, one offset per subtable, and the
// optional markFilteringSet field) — every layout computation below derives
// a lookup's total size from this plus its subtables' encodeLen.
func lookupHeaderLen(l *LookupTable) int {
	n := 6 + 2*len(l.Subtables)
	if l.Meta.LookupFlags&UseMarkFilteringSet != 0 {
		n += 2
	}
	return n
}

// expandOverflowing replaces any PairGlyphs subtable whose own encoding
// would exceed the 16-bit subtable-offset ceiling with the multiple
// physical subtables SplitPairGlyphs produces for it. The compiler's only
// overflow-prone subtable shape is PairGlyphs (format-1 pair adjustment,
// one PairSet per first glyph); every other variant here is bounded by the
// glyph order rather than by arbitrary rule counts, so no other case needs
// splitting.
func expandOverflowing(ll LookupList) LookupList {
	out := make(LookupList, len(ll))
	for i, l := range ll {
		var subtables []Subtable
		changed := false
		for _, st := range l.Subtables {
			pg, ok := st.(*Gpos2_1)
			if ok && pg.encodeLen() > maxSubtableSize {
				changed = true
				for _, part := range SplitPairGlyphs(*pg) {
					subtables = append(subtables, part)
				}
				continue
			}
			subtables = append(subtables, st)
		}
		if !changed {
			out[i] = l
			continue
		}
		out[i] = &LookupTable{Meta: l.Meta, Subtables: subtables}
	}
	return out
}

// encode lays out the lookup list: a lookup-count header with one offset
// per lookup, followed by each lookup's own header and subtable-offset
// table, followed by the subtables themselves. Sizes are computed up front
// in a first pass so every offset is known before any bytes are written —
// there is no reordering or extension-lookup promotion, since this
// compiler never emits a lookup large enough to need it (the one subtable
// shape that can grow without bound, PairGlyphs, is pre-split by
// expandOverflowing before this runs).
func (ll LookupList) encode(rec *sourcemap.Recorder) []byte {
	if ll == nil {
		return nil
	}
	ll = expandOverflowing(ll)

	lookupCount := len(ll)
	if lookupCount >= 1<<16 {
		panic("too many lookup tables")
	}

	headerLen := 2 + 2*lookupCount
	lookupOffset := make([]int, lookupCount)
	pos := headerLen
	for i, l := range ll {
		lookupOffset[i] = pos
		pos += lookupHeaderLen(l)
		for _, st := range l.Subtables {
			pos += st.encodeLen()
		}
	}
	total := pos

	buf := make([]byte, 0, total)
	buf = append(buf, byte(lookupCount>>8), byte(lookupCount))
	for _, off := range lookupOffset {
		buf = append(buf, byte(off>>8), byte(off))
	}

	for i, l := range ll {
		if len(buf) != lookupOffset[i] {
			panic("lookup list layout drifted from its size computation")
		}
		subTableCount := len(l.Subtables)
		if subTableCount >= 1<<16 {
			panic("too many subtables")
		}
		buf = append(buf,
			byte(l.Meta.LookupType>>8), byte(l.Meta.LookupType),
			byte(l.Meta.LookupFlags>>8), byte(l.Meta.LookupFlags),
			byte(subTableCount>>8), byte(subTableCount),
		)

		lookupBase := lookupOffset[i]
		subtableRelPos := lookupHeaderLen(l)
		subtableRel := make([]int, subTableCount)
		for j, st := range l.Subtables {
			subtableRel[j] = subtableRelPos
			subtableRelPos += st.encodeLen()
		}
		for _, rel := range subtableRel {
			if rel >= 1<<16 {
				panic("subtable offset exceeds 16 bits")
			}
			buf = append(buf, byte(rel>>8), byte(rel))
		}
		if l.Meta.LookupFlags&UseMarkFilteringSet != 0 {
			buf = append(buf,
				byte(l.Meta.MarkFilteringSet>>8), byte(l.Meta.MarkFilteringSet),
			)
		}

		lookupRec := rec.At(lookupBase)
		for j, st := range l.Subtables {
			buf = append(buf, st.encode(lookupRec.At(subtableRel[j]))...)
		}
	}
	return buf
}
