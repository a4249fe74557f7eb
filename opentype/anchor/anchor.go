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

// Package anchor implements the OpenType Anchor Table (cursive and
// mark-attachment subtables point into these), formats 1-3.
package anchor

import (
	"seehuhn.de/go/otfea/opentype/device"
	"seehuhn.de/go/otfea/sourcemap"
	"seehuhn.de/go/postscript/funit"
)

// Table is an OpenType anchor point. The zero value is the null anchor
// (0, 0) with no contour point and no device adjustment.
type Table struct {
	X, Y       funit.Int16
	ContourIdx uint16 // valid only when HasContour
	HasContour bool
	XDevice    *device.Table // format 3 only
	YDevice    *device.Table

	// XSpan and YSpan identify the feature-source <anchor x y> literal
	// this table came from, for RecordSpans.
	XSpan, YSpan sourcemap.Span
}

// IsEmpty reports whether the anchor is the null anchor.
func (a Table) IsEmpty() bool {
	return a.X == 0 && a.Y == 0 && a.ContourIdx == 0 && !a.HasContour &&
		a.XDevice == nil && a.YDevice == nil
}

// format returns the AnchorFormat to use for encoding.
func (a Table) format() uint16 {
	switch {
	case a.XDevice != nil || a.YDevice != nil:
		return 3
	case a.HasContour:
		return 2
	default:
		return 1
	}
}

// EncodeLen returns the number of bytes Append would write.
func (a Table) EncodeLen() int {
	switch a.format() {
	case 2:
		return 8
	case 3:
		total := 10
		if a.XDevice != nil {
			total += a.XDevice.EncodeLen()
		}
		if a.YDevice != nil {
			total += a.YDevice.EncodeLen()
		}
		return total
	default:
		return 6
	}
}

// RecordSpans registers the source-map entries for a's X and Y coordinates,
// mirroring the layout Append writes: at must be the byte offset at which
// Append's output for a begins within rec's buffer (X sits 2 bytes into the
// anchor record, after the format field; Y follows immediately after X).
func (a Table) RecordSpans(rec *sourcemap.Recorder, at int) {
	rec.Record(a.XSpan, sourcemap.I16, at+2)
	rec.Record(a.YSpan, sourcemap.I16, at+4)
}

// Append appends the big-endian encoding of the anchor to buf and returns
// the result.
func (a Table) Append(buf []byte) []byte {
	format := a.format()
	buf = append(buf, byte(format>>8), byte(format))
	buf = append(buf, byte(a.X>>8), byte(a.X), byte(a.Y>>8), byte(a.Y))
	switch format {
	case 2:
		buf = append(buf, byte(a.ContourIdx>>8), byte(a.ContourIdx))
	case 3:
		const headerLen = 10 // format + x + y + xDeviceOffset + yDeviceOffset
		var xOff, yOff int
		next := headerLen
		if a.XDevice != nil {
			xOff = next
			next += a.XDevice.EncodeLen()
		}
		if a.YDevice != nil {
			yOff = next
		}
		buf = append(buf, byte(xOff>>8), byte(xOff), byte(yOff>>8), byte(yOff))
		if a.XDevice != nil {
			buf = a.XDevice.Append(buf)
		}
		if a.YDevice != nil {
			buf = a.YDevice.Append(buf)
		}
	}
	return buf
}
