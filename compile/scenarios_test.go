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

package compile

import (
	"fmt"
	"testing"

	"seehuhn.de/go/otfea/ast"
	"seehuhn.de/go/otfea/font"
	"seehuhn.de/go/otfea/internal/debug"
	"seehuhn.de/go/otfea/opentype/classdef"
	"seehuhn.de/go/otfea/opentype/coverage"
	"seehuhn.de/go/otfea/sourcemap"
	"seehuhn.de/go/otfea/tag"
)

// This file exercises the end-to-end scenarios documented for the compiler:
// a PairGlyphs rule's exact wire bytes and its source-map patchability
// (S2/S6), overflow splitting of an oversized PairGlyphs subtable (S3), a
// class-based pair rule (S4), and a mark-to-base rule (S5).

func readU16(buf []byte, off int) int {
	return int(buf[off])<<8 | int(buf[off+1])
}

func readI16(buf []byte, off int) int16 {
	return int16(readU16(buf, off))
}

// gposLookup returns the absolute start offset of the lookupIdx'th lookup in
// a GPOS table's bytes, the absolute start offsets of each of its
// subtables, and the end of the last subtable. It assumes the table has no
// lookup after lookupIdx with a lower file offset (true for every lookup
// produced by a single feature block in these tests), so "end of buf" is a
// valid bound for the final subtable.
func gposLookup(t *testing.T, buf []byte, lookupIdx int) (lookupStart int, subtableStarts []int, end int) {
	t.Helper()
	lookupListOffset := readU16(buf, 8)
	if lookupListOffset == 0 {
		t.Fatal("GPOS table has no lookup list")
	}
	lookupCount := readU16(buf, lookupListOffset)
	if lookupIdx >= lookupCount {
		t.Fatalf("lookup index %d out of range (lookupCount %d)", lookupIdx, lookupCount)
	}
	lookupOffset := readU16(buf, lookupListOffset+2+2*lookupIdx)
	lookupStart = lookupListOffset + lookupOffset
	subTableCount := readU16(buf, lookupStart+4)
	subtableStarts = make([]int, subTableCount)
	for i := 0; i < subTableCount; i++ {
		rel := readU16(buf, lookupStart+6+2*i)
		subtableStarts[i] = lookupStart + rel
	}
	return lookupStart, subtableStarts, len(buf)
}

// S2 + S6: `pos A B -50;` compiles to a PairGlyphs subtable with
// coverage={A}, valueFormat1=0x0004, xAdvance=-50, valueFormat2=0x0000 —
// and the -50 literal's source span resolves to the actual byte offset of
// that xAdvance field, so patching it by +10 turns it into -40.
func TestCompilePairPosGoldenBytesAndSourceMapPatch(t *testing.T) {
	order := debug.SimpleGlyphOrder()
	xAdvanceSpan := sourcemap.Span{Start: 8, End: 11, Line: 1, Col: 9} // the "-50" in `pos A B -50;`
	statements := []ast.Statement{
		&ast.FeatureBlock{
			Tag: tag.Make("kern"),
			Statements: []ast.Statement{
				&ast.PairPos{
					First:        font.GlyphClass{Items: []font.ClassItem{{Glyph: "A"}}},
					Second:       font.GlyphClass{Items: []font.ClassItem{{Glyph: "B"}}},
					ValueRecord1: ast.ValueRecord{XAdvance: -50, XAdvanceSpan: xAdvanceSpan},
				},
			},
		},
	}

	result, err := Compile(order, statements)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	table, ok := result.Tables[tag.Make("GPOS")]
	if !ok {
		t.Fatal("Compile produced no GPOS table")
	}
	buf := table.Bytes

	_, starts, end := gposLookup(t, buf, 0)
	if len(starts) != 1 {
		t.Fatalf("want 1 subtable, got %d", len(starts))
	}
	sub := starts[0]

	if format := readU16(buf, sub); format != 1 {
		t.Errorf("PairPos subtable format = %d, want 1", format)
	}
	if vf1 := readU16(buf, sub+4); vf1 != 0x0004 {
		t.Errorf("valueFormat1 = %#04x, want 0x0004", vf1)
	}
	if vf2 := readU16(buf, sub+6); vf2 != 0x0000 {
		t.Errorf("valueFormat2 = %#04x, want 0x0000", vf2)
	}

	coverageOffset := readU16(buf, sub+2)
	cov, _, err := coverage.Decode(buf[sub+coverageOffset : end])
	if err != nil {
		t.Fatalf("decoding coverage: %v", err)
	}
	gidA := debug.MustGID(order, "A")
	if idx, ok := cov[gidA]; !ok || idx != 0 {
		t.Errorf("coverage[A] = (%d, %v), want (0, true)", idx, ok)
	}
	if len(cov) != 1 {
		t.Errorf("coverage has %d entries, want 1", len(cov))
	}

	entries, ok := table.SourceMap.Lookup(xAdvanceSpan)
	if !ok || len(entries) != 1 {
		t.Fatalf("SourceMap.Lookup(-50 span) = %v, %v; want exactly one entry", entries, ok)
	}
	entry := entries[0]
	if entry.Kind != sourcemap.I16 {
		t.Fatalf("entry kind = %v, want I16", entry.Kind)
	}
	if got := readI16(buf, entry.Offset); got != -50 {
		t.Fatalf("byte at recorded offset %d decodes to %d, want -50", entry.Offset, got)
	}

	if err := sourcemap.PatchI16(buf, entry, 10); err != nil {
		t.Fatalf("PatchI16: %v", err)
	}
	if got := readI16(buf, entry.Offset); got != -40 {
		t.Errorf("after patching by +10, xAdvance = %d, want -40", got)
	}
}

// S3: a PairGlyphs lookup whose rules would encode to a single subtable
// larger than the 16-bit offset ceiling is split into multiple physical
// subtables, none of which exceeds the limit, and together still cover
// every rule.
func TestCompilePairPosOverflowSplitsSubtable(t *testing.T) {
	const n = 8500
	names := make([]string, 0, n+2)
	names = append(names, ".notdef", "second")
	for i := 0; i < n; i++ {
		names = append(names, fmt.Sprintf("g%d", i))
	}
	order, err := font.NewGlyphOrder(names)
	if err != nil {
		t.Fatalf("NewGlyphOrder: %v", err)
	}

	ruleStatements := make([]ast.Statement, 0, n)
	for i := 0; i < n; i++ {
		ruleStatements = append(ruleStatements, &ast.PairPos{
			First:        font.GlyphClass{Items: []font.ClassItem{{Glyph: fmt.Sprintf("g%d", i)}}},
			Second:       font.GlyphClass{Items: []font.ClassItem{{Glyph: "second"}}},
			ValueRecord1: ast.ValueRecord{XAdvance: int16(10 + i%50)},
		})
	}
	statements := []ast.Statement{
		&ast.FeatureBlock{Tag: tag.Make("kern"), Statements: ruleStatements},
	}

	result, err := Compile(order, statements)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	table, ok := result.Tables[tag.Make("GPOS")]
	if !ok {
		t.Fatal("Compile produced no GPOS table")
	}
	buf := table.Bytes

	_, starts, end := gposLookup(t, buf, 0)
	if len(starts) < 2 {
		t.Fatalf("want the oversized PairGlyphs subtable split into >=2 subtables, got %d", len(starts))
	}

	totalPairs := 0
	for i, start := range starts {
		stEnd := end
		if i+1 < len(starts) {
			stEnd = starts[i+1]
		}
		if size := stEnd - start; size > 65535 {
			t.Errorf("subtable %d is %d bytes, exceeds the 16-bit offset limit", i, size)
		}
		pairSetCount := readU16(buf, start+8)
		for j := 0; j < pairSetCount; j++ {
			pairSetRel := readU16(buf, start+10+2*j)
			totalPairs += readU16(buf, start+pairSetRel)
		}
	}
	if totalPairs != n {
		t.Errorf("split subtables cover %d pairs total, want %d", totalPairs, n)
	}
}

// S4: `pos [A B] [D E] <xAdvance -30>;` selects the class-based (PairClass)
// subtable variant, with a 2x2 class grid (the implicit class 0 plus the
// one explicit group on each side) and the adjustment only in cell (1,1).
func TestCompileClassPairGoldenBytes(t *testing.T) {
	order := debug.SimpleGlyphOrder()
	statements := []ast.Statement{
		&ast.FeatureBlock{
			Tag: tag.Make("kern"),
			Statements: []ast.Statement{
				&ast.PairPos{
					First:        font.GlyphClass{Items: []font.ClassItem{{Glyph: "A"}, {Glyph: "B"}}},
					Second:       font.GlyphClass{Items: []font.ClassItem{{Glyph: "D"}, {Glyph: "E"}}},
					ValueRecord1: ast.ValueRecord{XAdvance: -30},
				},
			},
		},
	}

	result, err := Compile(order, statements)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	table, ok := result.Tables[tag.Make("GPOS")]
	if !ok {
		t.Fatal("Compile produced no GPOS table")
	}
	buf := table.Bytes

	_, starts, end := gposLookup(t, buf, 0)
	if len(starts) != 1 {
		t.Fatalf("want 1 subtable, got %d", len(starts))
	}
	sub := starts[0]

	if format := readU16(buf, sub); format != 2 {
		t.Fatalf("PairPos subtable format = %d, want 2 (class pair)", format)
	}
	if vf1 := readU16(buf, sub+4); vf1 != 0x0004 {
		t.Errorf("valueFormat1 = %#04x, want 0x0004", vf1)
	}
	if vf2 := readU16(buf, sub+6); vf2 != 0x0000 {
		t.Errorf("valueFormat2 = %#04x, want 0x0000", vf2)
	}
	class1Count := readU16(buf, sub+12)
	class2Count := readU16(buf, sub+14)
	if class1Count != 2 || class2Count != 2 {
		t.Fatalf("class counts = (%d, %d), want (2, 2)", class1Count, class2Count)
	}

	coverageOffset := readU16(buf, sub+2)
	classDef1Offset := readU16(buf, sub+8)
	classDef2Offset := readU16(buf, sub+10)

	cov, _, err := coverage.Decode(buf[sub+coverageOffset : end])
	if err != nil {
		t.Fatalf("decoding coverage: %v", err)
	}
	gidA, gidB := debug.MustGID(order, "A"), debug.MustGID(order, "B")
	if idx, ok := cov[gidA]; !ok || idx != 0 {
		t.Errorf("coverage[A] = (%d, %v), want (0, true)", idx, ok)
	}
	if idx, ok := cov[gidB]; !ok || idx != 1 {
		t.Errorf("coverage[B] = (%d, %v), want (1, true)", idx, ok)
	}

	class1, _, err := classdef.Decode(buf[sub+classDef1Offset:])
	if err != nil {
		t.Fatalf("decoding ClassDef1: %v", err)
	}
	if class1[gidA] != 1 || class1[gidB] != 1 {
		t.Errorf("ClassDef1 = %v, want A and B both in class 1", class1)
	}
	gidD, gidE := debug.MustGID(order, "D"), debug.MustGID(order, "E")
	class2, _, err := classdef.Decode(buf[sub+classDef2Offset:])
	if err != nil {
		t.Fatalf("decoding ClassDef2: %v", err)
	}
	if class2[gidD] != 1 || class2[gidE] != 1 {
		t.Errorf("ClassDef2 = %v, want D and E both in class 1", class2)
	}

	// cell layout is row-major over [class1Count][class2Count], each cell
	// First.EncodeLen(fmt1)+Second.EncodeLen(fmt2) = 2+0 bytes wide.
	const cellsOffset = 16
	const cellLen = 2
	cell11 := sub + cellsOffset + (1*class2Count+1)*cellLen
	if got := readI16(buf, cell11); got != -30 {
		t.Errorf("cell[1][1] xAdvance = %d, want -30", got)
	}
	cell00 := sub + cellsOffset + (0*class2Count+0)*cellLen
	if got := readI16(buf, cell00); got != 0 {
		t.Errorf("cell[0][0] (implicit class) xAdvance = %d, want 0", got)
	}
}

// S5: `markClass [M] <anchor 300 500> @TOPMARK; pos base [A] <anchor 250
// 700> mark @TOPMARK;` compiles to a mark-to-base subtable with a
// single-entry mark coverage, a single-entry base coverage, and the base
// anchor's X coordinate source-map-patchable in place.
func TestCompileMarkToBaseGoldenBytesAndSourceMapPatch(t *testing.T) {
	order := debug.SimpleGlyphOrder()
	baseXSpan := sourcemap.Span{Start: 20, End: 23, Line: 1, Col: 21}
	statements := []ast.Statement{
		&ast.MarkClassEntry{
			Name:   "TOPMARK",
			Glyphs: font.GlyphClass{Items: []font.ClassItem{{Glyph: "M"}}},
			Anchor: ast.Anchor{X: 300, Y: 500},
		},
		&ast.FeatureBlock{
			Tag: tag.Make("mark"),
			Statements: []ast.Statement{
				&ast.MarkBasePos{
					Base: font.GlyphClass{Items: []font.ClassItem{{Glyph: "A"}}},
					Entries: []ast.MarkBaseEntry{
						{Anchor: ast.Anchor{X: 250, Y: 700, XSpan: baseXSpan}, MarkClassName: "TOPMARK"},
					},
				},
			},
		},
	}

	result, err := Compile(order, statements)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	table, ok := result.Tables[tag.Make("GPOS")]
	if !ok {
		t.Fatal("Compile produced no GPOS table")
	}
	buf := table.Bytes

	_, starts, _ := gposLookup(t, buf, 0)
	if len(starts) != 1 {
		t.Fatalf("want 1 subtable, got %d", len(starts))
	}
	sub := starts[0]

	if format := readU16(buf, sub); format != 1 {
		t.Fatalf("MarkBasePos subtable format = %d, want 1", format)
	}
	if markClassCount := readU16(buf, sub+6); markClassCount != 1 {
		t.Errorf("markClassCount = %d, want 1", markClassCount)
	}

	markCoverageOffset := readU16(buf, sub+2)
	baseCoverageOffset := readU16(buf, sub+4)
	markCov, _, err := coverage.Decode(buf[sub+markCoverageOffset:])
	if err != nil {
		t.Fatalf("decoding mark coverage: %v", err)
	}
	gidM := debug.MustGID(order, "M")
	if idx, ok := markCov[gidM]; !ok || idx != 0 {
		t.Errorf("mark coverage[M] = (%d, %v), want (0, true)", idx, ok)
	}
	baseCov, _, err := coverage.Decode(buf[sub+baseCoverageOffset:])
	if err != nil {
		t.Fatalf("decoding base coverage: %v", err)
	}
	gidA := debug.MustGID(order, "A")
	if idx, ok := baseCov[gidA]; !ok || idx != 0 {
		t.Errorf("base coverage[A] = (%d, %v), want (0, true)", idx, ok)
	}

	entries, ok := table.SourceMap.Lookup(baseXSpan)
	if !ok || len(entries) != 1 {
		t.Fatalf("SourceMap.Lookup(base anchor span) = %v, %v; want exactly one entry", entries, ok)
	}
	entry := entries[0]
	if got := readI16(buf, entry.Offset); got != 250 {
		t.Fatalf("byte at recorded offset %d decodes to %d, want 250", entry.Offset, got)
	}

	if err := sourcemap.PatchI16(buf, entry, -50); err != nil {
		t.Fatalf("PatchI16: %v", err)
	}
	if got := readI16(buf, entry.Offset); got != 200 {
		t.Errorf("after patching by -50, base anchor X = %d, want 200", got)
	}
}
