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

// Package coverage reads and writes OpenType "Coverage Tables".
// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#coverage-table
package coverage

import (
	"sort"

	"golang.org/x/exp/maps"
	"seehuhn.de/go/otfea/glyph"
)

// Table maps each covered glyph ID to its Coverage Index. The Coverage
// Indices are sequential, from 0 to len(Table)-1, and the map from glyph ID
// to index is strictly monotonic in glyph ID.
type Table map[glyph.ID]int

// New builds a Table from glyphs in ascending, deduplicated order,
// assigning sequential coverage indices. Callers that already hold
// duplicate-free sorted IDs can build the map directly; New exists for the
// common case of a rule's raw glyph list from class expansion.
func New(glyphs []glyph.ID) Table {
	sorted := append([]glyph.ID(nil), glyphs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	table := make(Table)
	idx := 0
	for i, gid := range sorted {
		if i > 0 && sorted[i-1] == gid {
			continue
		}
		table[gid] = idx
		idx++
	}
	return table
}

// Contains reports whether gid is covered.
func (table Table) Contains(gid glyph.ID) bool {
	_, ok := table[gid]
	return ok
}

// Glyphs returns the covered glyphs in increasing order.
func (table Table) Glyphs() []glyph.ID {
	keys := maps.Keys(table)
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Prune removes every glyph whose coverage index is >= size.
func (table Table) Prune(size int) {
	var gg []glyph.ID
	for gid, idx := range table {
		if idx >= size {
			gg = append(gg, gid)
		}
	}
	for _, gid := range gg {
		delete(table, gid)
	}
}

func (table Table) encInfo() ([]glyph.ID, int, int) {
	rev := make([]glyph.ID, len(table))
	for gid, i := range table {
		rev[i] = gid
	}

	format1Length := 4 + 2*len(table)

	rangeCount := 0
	prev := 0xFFFF
	for _, gid := range rev {
		if int(gid) != prev+1 {
			rangeCount++
		}
		prev = int(gid)
	}
	format2Length := 4 + 6*rangeCount

	return rev, format1Length, format2Length
}

// EncodeLen returns the number of bytes Encode would write.
func (table Table) EncodeLen() int {
	_, format1Length, format2Length := table.encInfo()
	if format1Length <= format2Length {
		return format1Length
	}
	return format2Length
}

// Encode returns the binary Coverage Table, choosing format 1 (a plain
// glyph-ID list) or format 2 (contiguous ranges) — whichever is smaller.
func (table Table) Encode() []byte {
	rev, format1Length, format2Length := table.encInfo()

	if format1Length <= format2Length {
		buf := make([]byte, format1Length)
		buf[0] = 0
		buf[1] = 1
		buf[2] = byte(len(rev) >> 8)
		buf[3] = byte(len(rev))
		for i, gid := range rev {
			buf[4+2*i] = byte(gid >> 8)
			buf[4+2*i+1] = byte(gid)
		}
		return buf
	}

	rangeCount := (format2Length - 4) / 6

	buf := make([]byte, 4, format2Length)
	buf[0] = 0
	buf[1] = 2
	buf[2] = byte(rangeCount >> 8)
	buf[3] = byte(rangeCount)
	var startGlyphID glyph.ID
	var startCoverageIndex int
	prev := 0xFFFF
	for i, gid := range rev {
		if int(gid) != prev+1 {
			if i > 0 {
				buf = append(buf,
					byte(startGlyphID>>8), byte(startGlyphID),
					byte(prev>>8), byte(prev),
					byte(startCoverageIndex>>8), byte(startCoverageIndex))
			}
			startGlyphID = gid
			startCoverageIndex = i
		}
		prev = int(gid)
	}
	buf = append(buf,
		byte(startGlyphID>>8), byte(startGlyphID),
		byte(prev>>8), byte(prev),
		byte(startCoverageIndex>>8), byte(startCoverageIndex))
	return buf
}

// Decode reads a Coverage Table starting at buf[0] and returns the table
// plus the number of bytes consumed.
func Decode(buf []byte) (Table, int, error) {
	if len(buf) < 4 {
		return nil, 0, &DecodeError{Reason: "coverage table truncated"}
	}
	format := uint16(buf[0])<<8 | uint16(buf[1])
	table := make(Table)

	switch format {
	case 1:
		count := int(uint16(buf[2])<<8 | uint16(buf[3]))
		need := 4 + 2*count
		if len(buf) < need {
			return nil, 0, &DecodeError{Reason: "coverage table (format 1) truncated"}
		}
		prev := -1
		for i := 0; i < count; i++ {
			gid := int(buf[4+2*i])<<8 | int(buf[4+2*i+1])
			if gid <= prev {
				return nil, 0, &DecodeError{Reason: "coverage table (format 1) not strictly increasing"}
			}
			table[glyph.ID(gid)] = i
			prev = gid
		}
		return table, need, nil

	case 2:
		rangeCount := int(uint16(buf[2])<<8 | uint16(buf[3]))
		need := 4 + 6*rangeCount
		if len(buf) < need {
			return nil, 0, &DecodeError{Reason: "coverage table (format 2) truncated"}
		}
		pos := 4
		idx := 0
		prev := -1
		for i := 0; i < rangeCount; i++ {
			startGlyphID := int(buf[pos])<<8 | int(buf[pos+1])
			endGlyphID := int(buf[pos+2])<<8 | int(buf[pos+3])
			startCoverageIndex := int(buf[pos+4])<<8 | int(buf[pos+5])
			pos += 6
			if startCoverageIndex != idx || startGlyphID <= prev || endGlyphID < startGlyphID {
				return nil, 0, &DecodeError{Reason: "coverage table (format 2) malformed range"}
			}
			for gid := startGlyphID; gid <= endGlyphID; gid++ {
				table[glyph.ID(gid)] = idx
				idx++
			}
			prev = endGlyphID
		}
		return table, need, nil

	default:
		return nil, 0, &DecodeError{Reason: "unsupported coverage table format"}
	}
}

// DecodeError reports a malformed or unsupported Coverage Table.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return e.Reason
}
