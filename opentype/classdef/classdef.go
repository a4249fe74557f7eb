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

// Package classdef reads and writes OpenType "Class Definition Tables".
// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#classDefTbl
package classdef

import "seehuhn.de/go/otfea/glyph"

// Table maps glyph IDs to class values. Glyphs absent from the map belong
// to class 0, the implicit default class.
type Table map[glyph.ID]uint16

// Encode converts the class definition table to binary format, choosing
// format 1 (a dense array over [minGid, maxGid]) or format 2 (class
// ranges) — whichever is smaller.
func (info Table) Encode() []byte {
	if len(info) == 0 {
		return []byte{0, 2, 0, 0}
	}

	minGid := glyph.ID(0xFFFF)
	maxGid := glyph.ID(0)
	for key := range info {
		if key < minGid {
			minGid = key
		}
		if key > maxGid {
			maxGid = key
		}
	}

	format1Size := 6 + 2*(int(maxGid)-int(minGid)+1)

	format2Size := 4
	segCount := 0
	segStart := -1
	var segClass uint16
	for i := int(minGid); i <= int(maxGid) && format2Size < format1Size; i++ {
		class := info[glyph.ID(i)]

		if segStart >= 0 && class != segClass {
			format2Size += 6
			segCount++
			segStart = -1
		}
		if segStart == -1 {
			if class != 0 {
				segStart = i
				segClass = class
			}
		}
	}
	if segStart >= 0 {
		segCount++
		format2Size += 6
	}

	if format1Size <= format2Size {
		buf := make([]byte, format1Size)
		buf[1] = 1
		buf[2] = byte(minGid >> 8)
		buf[3] = byte(minGid)
		count := maxGid - minGid + 1
		buf[4] = byte(count >> 8)
		buf[5] = byte(count)
		for i := 0; i < int(count); i++ {
			class := info[minGid+glyph.ID(i)]
			buf[6+2*i] = byte(class >> 8)
			buf[6+2*i+1] = byte(class)
		}
		return buf
	}

	buf := make([]byte, format2Size)
	buf[1] = 2
	buf[2] = byte(segCount >> 8)
	buf[3] = byte(segCount)
	pos := 4
	segStart = -1
	for i := int(minGid); i <= int(maxGid); i++ {
		class := info[glyph.ID(i)]

		if segStart >= 0 && class != segClass {
			buf[pos] = byte(segStart >> 8)
			buf[pos+1] = byte(segStart)
			buf[pos+2] = byte((i - 1) >> 8)
			buf[pos+3] = byte(i - 1)
			buf[pos+4] = byte(segClass >> 8)
			buf[pos+5] = byte(segClass)

			pos += 6
			segStart = -1
		}
		if segStart == -1 {
			if class != 0 {
				segStart = i
				segClass = class
			}
		}
	}
	if segStart >= 0 {
		buf[pos] = byte(segStart >> 8)
		buf[pos+1] = byte(segStart)
		buf[pos+2] = byte(maxGid >> 8)
		buf[pos+3] = byte(maxGid)
		buf[pos+4] = byte(segClass >> 8)
		buf[pos+5] = byte(segClass)
	}
	return buf
}

// EncodeLen returns the number of bytes Encode would write.
func (info Table) EncodeLen() int {
	return len(info.Encode())
}

// Decode reads a Class Definition Table starting at buf[0] and returns the
// table plus the number of bytes consumed.
func Decode(buf []byte) (Table, int, error) {
	if len(buf) < 2 {
		return nil, 0, &DecodeError{Reason: "class definition table truncated"}
	}
	version := uint16(buf[0])<<8 | uint16(buf[1])
	switch version {
	case 1:
		if len(buf) < 6 {
			return nil, 0, &DecodeError{Reason: "class definition table (format 1) truncated"}
		}
		startGlyphID := glyph.ID(buf[2])<<8 | glyph.ID(buf[3])
		glyphCount := int(buf[4])<<8 | int(buf[5])
		need := 6 + 2*glyphCount
		if len(buf) < need {
			return nil, 0, &DecodeError{Reason: "class definition table (format 1) truncated"}
		}
		if int(startGlyphID)+glyphCount-1 > 0xFFFF {
			return nil, 0, &DecodeError{Reason: "glyph count too large in class definition table"}
		}
		res := make(Table, glyphCount)
		for i := 0; i < glyphCount; i++ {
			class := uint16(buf[6+2*i])<<8 | uint16(buf[6+2*i+1])
			if class != 0 {
				res[startGlyphID+glyph.ID(i)] = class
			}
		}
		return res, need, nil

	case 2:
		if len(buf) < 4 {
			return nil, 0, &DecodeError{Reason: "class definition table (format 2) truncated"}
		}
		classRangeCount := int(buf[2])<<8 | int(buf[3])
		need := 4 + 6*classRangeCount
		if len(buf) < need {
			return nil, 0, &DecodeError{Reason: "class definition table (format 2) truncated"}
		}
		res := Table{}
		var prevEnd glyph.ID
		pos := 4
		for i := 0; i < classRangeCount; i++ {
			startGlyphID := glyph.ID(buf[pos])<<8 | glyph.ID(buf[pos+1])
			endGlyphID := glyph.ID(buf[pos+2])<<8 | glyph.ID(buf[pos+3])
			classValue := uint16(buf[pos+4])<<8 | uint16(buf[pos+5])
			pos += 6

			if i > 0 && startGlyphID <= prevEnd {
				return nil, 0, &DecodeError{Reason: "overlapping ranges in class definition table"}
			}
			prevEnd = endGlyphID

			if classValue != 0 {
				for j := int(startGlyphID); j <= int(endGlyphID); j++ {
					res[glyph.ID(j)] = classValue
				}
			}
		}
		return res, need, nil

	default:
		return nil, 0, &DecodeError{Reason: "unsupported class definition table version"}
	}
}

// DecodeError reports a malformed or unsupported Class Definition Table.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return e.Reason
}
