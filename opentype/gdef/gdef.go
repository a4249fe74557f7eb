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

// Package gdef implements the OpenType GDEF (glyph definition) table: glyph
// classes, mark-attachment classes, and mark glyph sets, assembled from a
// `table GDEF { ... }` block.
package gdef

import (
	"sort"

	"seehuhn.de/go/otfea/glyph"
	"seehuhn.de/go/otfea/opentype/classdef"
	"seehuhn.de/go/otfea/opentype/coverage"
)

// Standard glyph classes for GlyphClassDef, per the OpenType spec.
const (
	ClassBase      uint16 = 1
	ClassLigature  uint16 = 2
	ClassMark      uint16 = 3
	ClassComponent uint16 = 4
)

// Table holds the subset of GDEF this module emits: GlyphClassDef,
// MarkAttachClassDef, and MarkGlyphSetsDef. AttachList and LigCaretList are
// not produced (no `table GDEF` construct in the feature-file grammar maps
// to them).
type Table struct {
	GlyphClassDef     classdef.Table
	MarkAttachClassDef classdef.Table
	MarkGlyphSets      []coverage.Table // indexed by mark glyph set index
}

// IsEmpty reports whether the table has nothing to emit.
func (t *Table) IsEmpty() bool {
	return len(t.GlyphClassDef) == 0 && len(t.MarkAttachClassDef) == 0 && len(t.MarkGlyphSets) == 0
}

// Encode returns the binary GDEF table. Version 1.2 is used whenever mark
// glyph sets are present (it adds the MarkGlyphSetsDef offset field);
// version 1.0 otherwise.
func (t *Table) Encode() []byte {
	glyphClassDef := encodeOrNil(t.GlyphClassDef)
	markAttachClassDef := encodeOrNil(t.MarkAttachClassDef)

	hasMarkGlyphSets := len(t.MarkGlyphSets) > 0
	headerLen := 12
	minor := uint16(0)
	if hasMarkGlyphSets {
		headerLen = 14
		minor = 2
	}

	total := headerLen
	var glyphClassDefOffset, attachListOffset, ligCaretListOffset, markAttachClassDefOffset, markGlyphSetsOffset int
	if glyphClassDef != nil {
		glyphClassDefOffset = total
		total += len(glyphClassDef)
	}
	// attachListOffset, ligCaretListOffset stay 0: not emitted.
	if markAttachClassDef != nil {
		markAttachClassDefOffset = total
		total += len(markAttachClassDef)
	}
	var markGlyphSetsDef []byte
	if hasMarkGlyphSets {
		markGlyphSetsDef = encodeMarkGlyphSets(t.MarkGlyphSets, total)
		markGlyphSetsOffset = total
		total += len(markGlyphSetsDef)
	}

	buf := make([]byte, headerLen, total)
	buf[0] = 0
	buf[1] = 1
	buf[2] = 0
	buf[3] = minor
	buf[4] = byte(glyphClassDefOffset >> 8)
	buf[5] = byte(glyphClassDefOffset)
	buf[6] = byte(attachListOffset >> 8)
	buf[7] = byte(attachListOffset)
	buf[8] = byte(ligCaretListOffset >> 8)
	buf[9] = byte(ligCaretListOffset)
	buf[10] = byte(markAttachClassDefOffset >> 8)
	buf[11] = byte(markAttachClassDefOffset)
	if hasMarkGlyphSets {
		buf[12] = byte(markGlyphSetsOffset >> 8)
		buf[13] = byte(markGlyphSetsOffset)
	}

	buf = append(buf, glyphClassDef...)
	buf = append(buf, markAttachClassDef...)
	buf = append(buf, markGlyphSetsDef...)
	return buf
}

func encodeOrNil(t classdef.Table) []byte {
	if len(t) == 0 {
		return nil
	}
	return t.Encode()
}

// encodeMarkGlyphSets writes a MarkGlyphSetsDef table (format 1): a format
// field, a count, and a coverage-offset array measured from the start of
// the MarkGlyphSetsDef table itself, followed by the coverage tables
// themselves.
func encodeMarkGlyphSets(sets []coverage.Table, base int) []byte {
	headerLen := 4 + 4*len(sets)
	buf := make([]byte, headerLen)
	buf[0] = 0
	buf[1] = 1
	buf[2] = byte(len(sets) >> 8)
	buf[3] = byte(len(sets))

	pos := headerLen
	for i, set := range sets {
		offset := pos
		p := 4 + 4*i
		buf[p] = byte(offset >> 24)
		buf[p+1] = byte(offset >> 16)
		buf[p+2] = byte(offset >> 8)
		buf[p+3] = byte(offset)
		enc := set.Encode()
		buf = append(buf, enc...)
		pos += len(enc)
	}
	return buf
}

// GlyphClassesFromSets builds a classdef.Table assigning each glyph in
// each named glyph-class set to the given OpenType standard class (Base,
// Ligature, Mark, Component), for use with the `table GDEF { GlyphClassDef
// ...; }` construct: one coverage-ordered glyph list per class.
func GlyphClassesFromSets(sets map[uint16][]glyph.ID) classdef.Table {
	out := make(classdef.Table)
	var classes []uint16
	for class := range sets {
		classes = append(classes, class)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })
	for _, class := range classes {
		for _, gid := range sets[class] {
			out[gid] = class
		}
	}
	return out
}
