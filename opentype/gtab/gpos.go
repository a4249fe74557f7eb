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
	"sort"

	"golang.org/x/exp/maps"
	"seehuhn.de/go/otfea/glyph"
	"seehuhn.de/go/otfea/opentype/anchor"
	"seehuhn.de/go/otfea/opentype/classdef"
	"seehuhn.de/go/otfea/opentype/coverage"
	"seehuhn.de/go/otfea/opentype/valuerecord"
	"seehuhn.de/go/otfea/sourcemap"
)

// maxSubtableSize is the overflow-split threshold: OpenType subtable
// offsets are 16 bits, so a subtable cannot exceed 65,535 bytes. Splitting
// triggers one byte early to leave room for the final entry's own growth.
const maxSubtableSize = 65534

// Gpos1_1 is a Single Adjustment Positioning subtable, format 1: one
// ValueRecord applied to every glyph in Cov.
//
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#single-adjustment-positioning-format-1-single-positioning-value
type Gpos1_1 struct {
	Cov    coverage.Table
	Adjust *valuerecord.Table
}

// encodeLen implements the [Subtable] interface.
func (l *Gpos1_1) encodeLen() int {
	format := l.Adjust.Format()
	return 6 + l.Adjust.EncodeLen(format) + l.Cov.EncodeLen()
}

// encode implements the [Subtable] interface, recording the ValueRecord's
// scalar fields in rec before appending the coverage table.
func (l *Gpos1_1) encode(rec *sourcemap.Recorder) []byte {
	format := l.Adjust.Format()
	vrLen := l.Adjust.EncodeLen(format)
	coverageOffs := 6 + vrLen
	buf := make([]byte, 0, coverageOffs+l.Cov.EncodeLen())
	buf = append(buf,
		0, 1, // format
		byte(coverageOffs>>8), byte(coverageOffs),
		byte(format>>8), byte(format),
	)
	l.Adjust.RecordSpans(format, rec, len(buf))
	buf = append(buf, l.Adjust.Encode(format)...)
	buf = append(buf, l.Cov.Encode()...)
	return buf
}

// Gpos1_2 is a Single Adjustment Positioning subtable, format 2: a
// per-coverage-index array of ValueRecords.
//
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#single-adjustment-positioning-format-2-array-of-positioning-values
type Gpos1_2 struct {
	Cov    coverage.Table
	Adjust []*valuerecord.Table // indexed by coverage index
}

func (l *Gpos1_2) sharedFormat() uint16 {
	var format uint16
	for _, adj := range l.Adjust {
		format |= adj.Format()
	}
	return format
}

// encodeLen implements the [Subtable] interface.
func (l *Gpos1_2) encodeLen() int {
	format := l.sharedFormat()
	total := 8 + len(l.Adjust)*(*valuerecord.Table)(nil).EncodeLen(format)
	total += l.Cov.EncodeLen()
	return total
}

// encode implements the [Subtable] interface.
func (l *Gpos1_2) encode(rec *sourcemap.Recorder) []byte {
	format := l.sharedFormat()
	valueCount := len(l.Adjust)
	recLen := (*valuerecord.Table)(nil).EncodeLen(format)
	total := 8 + valueCount*recLen
	coverageOffset := total
	total += l.Cov.EncodeLen()

	buf := make([]byte, 0, total)
	buf = append(buf,
		0, 2, // format
		byte(coverageOffset>>8), byte(coverageOffset),
		byte(format>>8), byte(format),
		byte(valueCount>>8), byte(valueCount),
	)
	for _, adj := range l.Adjust {
		adj.RecordSpans(format, rec, len(buf))
		buf = append(buf, adj.Encode(format)...)
	}
	buf = append(buf, l.Cov.Encode()...)
	return buf
}

// PairAdjust holds the two ValueRecords of a PairValueRecord: First is
// applied to the left glyph of the pair, Second (which may be nil) to the
// right glyph.
//
// Used by [Gpos2_1] and [Gpos2_2].
type PairAdjust struct {
	First, Second *valuerecord.Table
}

// Gpos2_1 is a Pair Adjustment Positioning subtable, format 1 ("PairGlyphs"
// in the rule-variant vocabulary): explicit per-glyph-pair adjustments.
//
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#pair-adjustment-positioning-format-1-adjustments-for-glyph-pairs
type Gpos2_1 map[glyph.Pair]*PairAdjust

// byFirstGlyph groups the pair table by left glyph, in ascending glyph-ID
// order, returning a coverage table and one adjustment map per coverage
// index. This grouping is the shape both size computation and encoding
// (and overflow splitting) actually work over.
func (l Gpos2_1) byFirstGlyph() (coverage.Table, []map[glyph.ID]*PairAdjust) {
	firsts := make(map[glyph.ID]bool)
	for pair := range l {
		firsts[pair.Left] = true
	}

	gids := maps.Keys(firsts)
	sort.Slice(gids, func(i, j int) bool { return gids[i] < gids[j] })

	cov := coverage.Table{}
	perFirst := make([]map[glyph.ID]*PairAdjust, len(gids))
	for i, gid := range gids {
		cov[gid] = i
		perFirst[i] = map[glyph.ID]*PairAdjust{}
	}
	for pair, adj := range l {
		perFirst[cov[pair.Left]][pair.Right] = adj
	}
	return cov, perFirst
}

// encodeLen implements the [Subtable] interface.
func (l Gpos2_1) encodeLen() int {
	cov, perFirst := l.byFirstGlyph()
	return pairGlyphsLen(cov, perFirst)
}

func pairValueFormats(perFirst []map[glyph.ID]*PairAdjust) (fmt1, fmt2 uint16) {
	for _, row := range perFirst {
		for _, v := range row {
			fmt1 |= v.First.Format()
			fmt2 |= v.Second.Format()
		}
	}
	return fmt1, fmt2
}

func pairGlyphsLen(cov coverage.Table, perFirst []map[glyph.ID]*PairAdjust) int {
	total := 10 + 2*len(perFirst) + cov.EncodeLen()
	fmt1, fmt2 := pairValueFormats(perFirst)
	for _, row := range perFirst {
		total += 2 + 2*len(row)
		for _, v := range row {
			total += v.First.EncodeLen(fmt1)
			total += v.Second.EncodeLen(fmt2)
		}
	}
	return total
}

// encode implements the [Subtable] interface.
func (l Gpos2_1) encode(rec *sourcemap.Recorder) []byte {
	cov, perFirst := l.byFirstGlyph()
	return encodePairGlyphs(cov, perFirst, rec)
}

func encodePairGlyphs(cov coverage.Table, perFirst []map[glyph.ID]*PairAdjust, rec *sourcemap.Recorder) []byte {
	pairSetCount := len(perFirst)
	headerLen := 10 + 2*pairSetCount
	coverageOffset := headerLen
	fmt1, fmt2 := pairValueFormats(perFirst)

	pairSetOffsets := make([]uint16, pairSetCount)
	total := coverageOffset + cov.EncodeLen()
	for i, row := range perFirst {
		pairSetOffsets[i] = uint16(total)
		total += 2 + 2*len(row)
		for _, v := range row {
			total += v.First.EncodeLen(fmt1)
			total += v.Second.EncodeLen(fmt2)
		}
	}

	buf := make([]byte, 0, total)
	buf = append(buf,
		0, 1, // format
		byte(coverageOffset>>8), byte(coverageOffset),
		byte(fmt1>>8), byte(fmt1),
		byte(fmt2>>8), byte(fmt2),
		byte(pairSetCount>>8), byte(pairSetCount),
	)
	for _, offset := range pairSetOffsets {
		buf = append(buf, byte(offset>>8), byte(offset))
	}
	buf = append(buf, cov.Encode()...)

	for _, row := range perFirst {
		pairValueCount := len(row)
		buf = append(buf, byte(pairValueCount>>8), byte(pairValueCount))

		seconds := maps.Keys(row)
		sort.Slice(seconds, func(i, j int) bool { return seconds[i] < seconds[j] })
		for _, secondGlyph := range seconds {
			buf = append(buf, byte(secondGlyph>>8), byte(secondGlyph))
			adj := row[secondGlyph]
			adj.First.RecordSpans(fmt1, rec, len(buf))
			buf = append(buf, adj.First.Encode(fmt1)...)
			adj.Second.RecordSpans(fmt2, rec, len(buf))
			buf = append(buf, adj.Second.Encode(fmt2)...)
		}
	}
	return buf
}

// SplitPairGlyphs partitions a PairGlyphs rule set into one or more
// Gpos2_1 subtables. It consumes first-glyphs in ascending order, growing a
// pending subtable and sealing it (starting a fresh one) whenever adding
// the next first-glyph's block would push the projected size over 65,534
// bytes. The pairs of one first glyph are never divided between subtables,
// so a first glyph whose own block exceeds the limit yields a single
// subtable larger than 65,534 bytes.
func SplitPairGlyphs(l Gpos2_1) []*Gpos2_1 {
	cov, perFirst := l.byFirstGlyph()
	gids := maps.Keys(cov)
	sort.Slice(gids, func(i, j int) bool { return gids[i] < gids[j] })

	var out []*Gpos2_1
	pendingCov := coverage.Table{}
	var pendingRows []map[glyph.ID]*PairAdjust

	flush := func() {
		if len(pendingCov) == 0 {
			return
		}
		table := Gpos2_1{}
		for gid, idx := range pendingCov {
			for second, adj := range pendingRows[idx] {
				table[glyph.Pair{Left: gid, Right: second}] = adj
			}
		}
		out = append(out, &table)
		pendingCov = coverage.Table{}
		pendingRows = nil
	}

	for _, gid := range gids {
		idx := cov[gid]
		candidateCov := coverage.Table{}
		for g, i := range pendingCov {
			candidateCov[g] = i
		}
		candidateCov[gid] = len(pendingRows)
		candidateRows := append(append([]map[glyph.ID]*PairAdjust{}, pendingRows...), perFirst[idx])

		if len(pendingCov) > 0 && pairGlyphsLen(candidateCov, candidateRows) > maxSubtableSize {
			flush()
			candidateCov = coverage.Table{gid: 0}
			candidateRows = []map[glyph.ID]*PairAdjust{perFirst[idx]}
		}
		pendingCov = candidateCov
		pendingRows = candidateRows
	}
	flush()
	return out
}

// Gpos2_2 is a Pair Adjustment Positioning subtable, format 2 ("PairClass"
// in the rule-variant vocabulary): a dense class1 x class2 matrix of
// adjustments.
//
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#pair-adjustment-positioning-format-2-class-pair-adjustment
type Gpos2_2 struct {
	Cov            coverage.Table
	Class1, Class2 classdef.Table
	Adjust         [][]*PairAdjust // indexed by class1 index, then class2 index
}

func (l *Gpos2_2) formats() (fmt1, fmt2 uint16) {
	for _, row := range l.Adjust {
		for _, v := range row {
			fmt1 |= v.First.Format()
			fmt2 |= v.Second.Format()
		}
	}
	return fmt1, fmt2
}

func (l *Gpos2_2) shape() (class1Count, class2Count int) {
	class1Count = len(l.Adjust)
	if class1Count > 0 {
		class2Count = len(l.Adjust[0])
	}
	return class1Count, class2Count
}

// encodeLen implements the [Subtable] interface.
func (l *Gpos2_2) encodeLen() int {
	fmt1, fmt2 := l.formats()
	var vr *valuerecord.Table
	cellLen := vr.EncodeLen(fmt1) + vr.EncodeLen(fmt2)

	c1, c2 := l.shape()
	total := 16 + c1*c2*cellLen
	total += l.Cov.EncodeLen()
	total += l.Class1.EncodeLen()
	total += l.Class2.EncodeLen()
	return total
}

// encode implements the [Subtable] interface. Class-pair cells do not
// carry source spans in this encoder: a classed pair rule targets a whole
// class-by-class cell rather than a single literal position, so there is
// no single source span to attribute a patch to.
func (l *Gpos2_2) encode(rec *sourcemap.Recorder) []byte {
	fmt1, fmt2 := l.formats()
	var vr *valuerecord.Table
	cellLen := vr.EncodeLen(fmt1) + vr.EncodeLen(fmt2)

	c1, c2 := l.shape()
	total := 16 + c1*c2*cellLen
	coverageOffset := total
	total += l.Cov.EncodeLen()
	classDef1Offset := total
	total += l.Class1.EncodeLen()
	classDef2Offset := total
	total += l.Class2.EncodeLen()

	buf := make([]byte, 0, total)
	buf = append(buf,
		0, 2, // posFormat
		byte(coverageOffset>>8), byte(coverageOffset),
		byte(fmt1>>8), byte(fmt1),
		byte(fmt2>>8), byte(fmt2),
		byte(classDef1Offset>>8), byte(classDef1Offset),
		byte(classDef2Offset>>8), byte(classDef2Offset),
		byte(c1>>8), byte(c1),
		byte(c2>>8), byte(c2),
	)
	for _, row := range l.Adjust {
		for _, adj := range row {
			buf = append(buf, adj.First.Encode(fmt1)...)
			buf = append(buf, adj.Second.Encode(fmt2)...)
		}
	}
	buf = append(buf, l.Cov.Encode()...)
	buf = append(buf, l.Class1.Encode()...)
	buf = append(buf, l.Class2.Encode()...)
	return buf
}

// Gpos3_1 is a Cursive Attachment Positioning subtable, format 1: the Exit
// anchor of a glyph is aligned with the Entry anchor of the following
// glyph.
//
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#cursive-attachment-positioning-format1-cursive-attachment
type Gpos3_1 struct {
	Cov     coverage.Table
	Records []EntryExitRecord // indexed by coverage index
}

// EntryExitRecord is an OpenType EntryExitRecord table, for use in
// [Gpos3_1] subtables.
type EntryExitRecord struct {
	Entry anchor.Table
	Exit  anchor.Table
}

// encodeLen implements the [Subtable] interface.
func (l *Gpos3_1) encodeLen() int {
	total := 6 + 4*len(l.Records)
	for _, rec := range l.Records {
		if !rec.Entry.IsEmpty() {
			total += rec.Entry.EncodeLen()
		}
		if !rec.Exit.IsEmpty() {
			total += rec.Exit.EncodeLen()
		}
	}
	total += l.Cov.EncodeLen()
	return total
}

// encode implements the [Subtable] interface.
func (l *Gpos3_1) encode(rec *sourcemap.Recorder) []byte {
	entryExitCount := len(l.Records)
	total := 6 + 4*entryExitCount
	entryOffs := make([]uint16, entryExitCount)
	exitOffs := make([]uint16, entryExitCount)
	for i, r := range l.Records {
		if !r.Entry.IsEmpty() {
			entryOffs[i] = uint16(total)
			total += r.Entry.EncodeLen()
		}
		if !r.Exit.IsEmpty() {
			exitOffs[i] = uint16(total)
			total += r.Exit.EncodeLen()
		}
	}
	coverageOffset := total
	total += l.Cov.EncodeLen()

	buf := make([]byte, 0, total)
	buf = append(buf,
		0, 1, // posFormat
		byte(coverageOffset>>8), byte(coverageOffset),
		byte(entryExitCount>>8), byte(entryExitCount),
	)
	for i := 0; i < entryExitCount; i++ {
		buf = append(buf,
			byte(entryOffs[i]>>8), byte(entryOffs[i]),
			byte(exitOffs[i]>>8), byte(exitOffs[i]),
		)
	}
	for i := 0; i < entryExitCount; i++ {
		if entryOffs[i] != 0 {
			l.Records[i].Entry.RecordSpans(rec, len(buf))
			buf = l.Records[i].Entry.Append(buf)
		}
		if exitOffs[i] != 0 {
			l.Records[i].Exit.RecordSpans(rec, len(buf))
			buf = l.Records[i].Exit.Append(buf)
		}
	}
	buf = append(buf, l.Cov.Encode()...)
	return buf
}
