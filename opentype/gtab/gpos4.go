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
	"seehuhn.de/go/otfea/opentype/anchor"
	"seehuhn.de/go/otfea/opentype/coverage"
	"seehuhn.de/go/otfea/opentype/markarray"
	"seehuhn.de/go/otfea/sourcemap"
)

// Gpos4_1 is a Mark-to-Base Attachment Positioning subtable, format 1: a
// mark coverage with per-mark class+anchor, and a base coverage with a
// per-base, per-class anchor matrix.
//
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#mark-to-base-attachment-positioning-format-1-mark-to-base-attachment-point
type Gpos4_1 struct {
	MarkCov   coverage.Table
	BaseCov   coverage.Table
	MarkArray markarray.Table  // indexed by mark coverage index
	BaseArray [][]anchor.Table // indexed by base coverage index, then by mark class
}

func (l *Gpos4_1) countMarkClasses() int {
	if len(l.BaseArray) > 0 {
		return len(l.BaseArray[0])
	}
	var maxClass uint16
	for _, rec := range l.MarkArray {
		if rec.Class > maxClass {
			maxClass = rec.Class
		}
	}
	return int(maxClass) + 1
}

// encodeLen implements the [Subtable] interface.
func (l *Gpos4_1) encodeLen() int {
	total := 12
	total += l.MarkCov.EncodeLen()
	total += l.BaseCov.EncodeLen()
	total += l.MarkArray.EncodeLen()

	total += 2
	for _, row := range l.BaseArray {
		for _, rec := range row {
			total += 2
			if !rec.IsEmpty() {
				total += rec.EncodeLen()
			}
		}
	}
	return total
}

// encode implements the [Subtable] interface.
func (l *Gpos4_1) encode(rec *sourcemap.Recorder) []byte {
	markClassCount := l.countMarkClasses()
	baseCount := len(l.BaseArray)

	total := 12
	markCoverageOffset := total
	total += l.MarkCov.EncodeLen()
	baseCoverageOffset := total
	total += l.BaseCov.EncodeLen()
	markArrayOffset := total
	total += l.MarkArray.EncodeLen()
	baseArrayOffset := total
	total += 2
	for _, row := range l.BaseArray {
		for _, rec := range row {
			total += 2
			if !rec.IsEmpty() {
				total += rec.EncodeLen()
			}
		}
	}

	res := make([]byte, 0, total)
	res = append(res,
		0, 1, // posFormat
		byte(markCoverageOffset>>8), byte(markCoverageOffset),
		byte(baseCoverageOffset>>8), byte(baseCoverageOffset),
		byte(markClassCount>>8), byte(markClassCount),
		byte(markArrayOffset>>8), byte(markArrayOffset),
		byte(baseArrayOffset>>8), byte(baseArrayOffset),
	)
	res = append(res, l.MarkCov.Encode()...)
	res = append(res, l.BaseCov.Encode()...)
	res = l.MarkArray.Append(res, rec.At(markArrayOffset))

	res = append(res, byte(baseCount>>8), byte(baseCount))
	offs := 2 + 2*baseCount*markClassCount
	for _, row := range l.BaseArray {
		for _, a := range row {
			if a.IsEmpty() {
				res = append(res, 0, 0)
				continue
			}
			res = append(res, byte(offs>>8), byte(offs))
			offs += a.EncodeLen()
		}
	}
	for _, row := range l.BaseArray {
		for _, a := range row {
			if a.IsEmpty() {
				continue
			}
			a.RecordSpans(rec, len(res))
			res = a.Append(res)
		}
	}
	return res
}
