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

// Package markarray implements the OpenType MarkArray table used by
// mark-to-base and mark-to-ligature GPOS subtables: one mark class plus
// one anchor per covered mark glyph.
package markarray

import (
	"seehuhn.de/go/otfea/opentype/anchor"
	"seehuhn.de/go/otfea/sourcemap"
)

// Record is one entry of a MarkArray, in the same order as the mark
// glyph's position in the governing Coverage table.
type Record struct {
	Class  uint16
	Anchor anchor.Table
}

// Table is a MarkArray: markCount followed by markCount MarkRecords
// (class + anchor offset), followed by the anchor tables themselves.
type Table []Record

// EncodeLen returns the number of bytes Append would write.
func (t Table) EncodeLen() int {
	total := 2 + 4*len(t)
	for _, rec := range t {
		total += rec.Anchor.EncodeLen()
	}
	return total
}

// Append appends the big-endian MarkArray encoding to buf, recording each
// mark's anchor coordinates in rec if it holds spans for them.
func (t Table) Append(buf []byte, rec *sourcemap.Recorder) []byte {
	base := len(buf)
	headerLen := 2 + 4*len(t)
	buf = append(buf, byte(len(t)>>8), byte(len(t)))
	buf = append(buf, make([]byte, 4*len(t))...)

	pos := headerLen
	for i, r := range t {
		p := base + 2 + 4*i
		buf[p] = byte(r.Class >> 8)
		buf[p+1] = byte(r.Class)
		buf[p+2] = byte(pos >> 8)
		buf[p+3] = byte(pos)
		before := len(buf)
		r.Anchor.RecordSpans(rec, len(buf)-base)
		buf = r.Anchor.Append(buf)
		pos += len(buf) - before
	}
	return buf
}
