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
	"bytes"

	"seehuhn.de/go/otfea/glyph"
	"seehuhn.de/go/otfea/opentype/coverage"
	"seehuhn.de/go/otfea/sourcemap"
)

// Gsub1_1 is a Single Substitution subtable, format 1: every glyph in Cov
// is replaced by GID+Delta.
//
// https://docs.microsoft.com/en-us/typography/opentype/spec/gsub#11-single-substitution-format-1
type Gsub1_1 struct {
	Cov   coverage.Table
	Delta glyph.ID
}

// encodeLen implements the [Subtable] interface.
func (l *Gsub1_1) encodeLen() int {
	return 6 + l.Cov.EncodeLen()
}

// encode implements the [Subtable] interface. GSUB subtables carry no
// ValueRecord or Anchor scalars, so they take no source-map recorder.
func (l *Gsub1_1) encode(_ *sourcemap.Recorder) []byte {
	buf := make([]byte, 6+l.Cov.EncodeLen())
	buf[1] = 1
	buf[3] = 6
	buf[4] = byte(l.Delta >> 8)
	buf[5] = byte(l.Delta)
	copy(buf[6:], l.Cov.Encode())
	return buf
}

// Gsub1_2 is a Single Substitution subtable, format 2: a per-coverage-index
// array of replacement glyphs.
//
// https://docs.microsoft.com/en-us/typography/opentype/spec/gsub#12-single-substitution-format-2
type Gsub1_2 struct {
	Cov                coverage.Table
	SubstituteGlyphIDs []glyph.ID // indexed by coverage index
}

// encodeLen implements the [Subtable] interface.
func (l *Gsub1_2) encodeLen() int {
	return 6 + 2*len(l.SubstituteGlyphIDs) + l.Cov.EncodeLen()
}

// encode implements the [Subtable] interface.
func (l *Gsub1_2) encode(_ *sourcemap.Recorder) []byte {
	n := len(l.SubstituteGlyphIDs)
	covOffs := 6 + 2*n

	buf := make([]byte, covOffs+l.Cov.EncodeLen())
	buf[1] = 2
	buf[2] = byte(covOffs >> 8)
	buf[3] = byte(covOffs)
	buf[4] = byte(n >> 8)
	buf[5] = byte(n)
	for i := 0; i < n; i++ {
		buf[6+2*i] = byte(l.SubstituteGlyphIDs[i] >> 8)
		buf[6+2*i+1] = byte(l.SubstituteGlyphIDs[i])
	}
	copy(buf[covOffs:], l.Cov.Encode())
	return buf
}

// Gsub2_1 is a Multiple Substitution subtable, format 1: each coverage
// glyph is replaced by a sequence of one or more glyphs. Identical
// replacement sequences share one Sequence-table offset.
//
// https://docs.microsoft.com/en-us/typography/opentype/spec/gsub#21-multiple-substitution-format-1
type Gsub2_1 struct {
	Cov  coverage.Table
	Repl [][]glyph.ID // indexed by coverage index
}

func encodeGIDSequence(seq []glyph.ID) []byte {
	buf := make([]byte, 2+2*len(seq))
	buf[0] = byte(len(seq) >> 8)
	buf[1] = byte(len(seq))
	for i, gid := range seq {
		buf[2+2*i] = byte(gid >> 8)
		buf[2+2*i+1] = byte(gid)
	}
	return buf
}

// pooledSequences lays out l.Repl's Sequence tables after the coverage-
// index offset array, sharing one encoding for byte-identical sequences.
func (l *Gsub2_1) pooledSequences(base int) (offsets []uint16, payload []byte) {
	offsets = make([]uint16, len(l.Repl))
	var pool [][]byte
	for i, repl := range l.Repl {
		enc := encodeGIDSequence(repl)
		idx := -1
		for j, p := range pool {
			if bytes.Equal(p, enc) {
				idx = j
				break
			}
		}
		if idx == -1 {
			idx = len(pool)
			pool = append(pool, enc)
		}
		offset := base
		for j := 0; j < idx; j++ {
			offset += len(pool[j])
		}
		offsets[i] = uint16(offset)
	}
	for _, p := range pool {
		payload = append(payload, p...)
	}
	return offsets, payload
}

// encodeLen implements the [Subtable] interface.
func (l *Gsub2_1) encodeLen() int {
	covOffs := 6 + 2*len(l.Repl)
	_, payload := l.pooledSequences(covOffs)
	return covOffs + len(payload) + l.Cov.EncodeLen()
}

// encode implements the [Subtable] interface.
func (l *Gsub2_1) encode(_ *sourcemap.Recorder) []byte {
	sequenceCount := len(l.Repl)
	covOffs := 6 + 2*sequenceCount
	offsets, payload := l.pooledSequences(covOffs)
	covOffs += len(payload)

	buf := make([]byte, covOffs+l.Cov.EncodeLen())
	buf[1] = 1
	buf[2] = byte(covOffs >> 8)
	buf[3] = byte(covOffs)
	buf[4] = byte(sequenceCount >> 8)
	buf[5] = byte(sequenceCount)
	pos := 6
	for _, offset := range offsets {
		buf[pos] = byte(offset >> 8)
		buf[pos+1] = byte(offset)
		pos += 2
	}
	copy(buf[pos:], payload)
	copy(buf[covOffs:], l.Cov.Encode())
	return buf
}

// Gsub3_1 is an Alternate Substitution subtable, format 1: each coverage
// glyph has an AlternateSet of candidate replacement glyphs.
//
// https://docs.microsoft.com/en-us/typography/opentype/spec/gsub#31-alternate-substitution-format-1
type Gsub3_1 struct {
	Cov        coverage.Table
	Alternates [][]glyph.ID
}

// encodeLen implements the [Subtable] interface.
func (l *Gsub3_1) encodeLen() int {
	total := 6 + 2*len(l.Alternates)
	for _, alt := range l.Alternates {
		total += 2 + 2*len(alt)
	}
	total += l.Cov.EncodeLen()
	return total
}

// encode implements the [Subtable] interface.
func (l *Gsub3_1) encode(_ *sourcemap.Recorder) []byte {
	alternateSetCount := len(l.Alternates)
	covOffs := 6 + 2*alternateSetCount

	alternateSetOffsets := make([]uint16, alternateSetCount)
	for i, alt := range l.Alternates {
		alternateSetOffsets[i] = uint16(covOffs)
		covOffs += 2 + 2*len(alt)
	}

	buf := make([]byte, covOffs+l.Cov.EncodeLen())
	buf[1] = 1
	buf[2] = byte(covOffs >> 8)
	buf[3] = byte(covOffs)
	buf[4] = byte(alternateSetCount >> 8)
	buf[5] = byte(alternateSetCount)
	pos := 6
	for _, offset := range alternateSetOffsets {
		buf[pos] = byte(offset >> 8)
		buf[pos+1] = byte(offset)
		pos += 2
	}
	for _, alt := range l.Alternates {
		buf[pos] = byte(len(alt) >> 8)
		buf[pos+1] = byte(len(alt))
		pos += 2
		for _, gid := range alt {
			buf[pos] = byte(gid >> 8)
			buf[pos+1] = byte(gid)
			pos += 2
		}
	}
	copy(buf[covOffs:], l.Cov.Encode())
	return buf
}
