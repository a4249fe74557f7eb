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

// Package valuerecord implements the GPOS ValueRecord, the variable-width
// positioning adjustment attached to single- and pair-positioning rules.
package valuerecord

import (
	"fmt"
	"math/bits"
	"strings"

	"seehuhn.de/go/otfea/opentype/device"
	"seehuhn.de/go/otfea/sourcemap"
	"seehuhn.de/go/postscript/funit"
)

// bit positions within a ValueFormat field, in wire order.
const (
	fmtXPlacement = 0x0001
	fmtYPlacement = 0x0002
	fmtXAdvance   = 0x0004
	fmtYAdvance   = 0x0008
	fmtXPlaDevice = 0x0010
	fmtYPlaDevice = 0x0020
	fmtXAdvDevice = 0x0040
	fmtYAdvDevice = 0x0080
)

// Table holds a GPOS ValueRecord: a positioning adjustment that may touch
// placement, advance, and per-axis device tables.  A nil *Table encodes as
// ValueFormat 0 (no fields, zero bytes on the wire).
type Table struct {
	XPlacement funit.Int16
	YPlacement funit.Int16
	XAdvance   funit.Int16
	YAdvance   funit.Int16

	XPlaDevice *device.Table
	YPlaDevice *device.Table
	XAdvDevice *device.Table
	YAdvDevice *device.Table

	// Spans identify the feature-source text each scalar field came from,
	// so RecordSpans can register them in a table's source map. A zero
	// Span (the common case, for fields that did not come from a parsed
	// literal) is simply never recorded.
	XPlacementSpan sourcemap.Span
	YPlacementSpan sourcemap.Span
	XAdvanceSpan   sourcemap.Span
	YAdvanceSpan   sourcemap.Span
}

// IsEmpty reports whether every field of vr is zero/nil, i.e. whether vr
// contributes no adjustment at all.
func (vr *Table) IsEmpty() bool {
	if vr == nil {
		return true
	}
	return vr.XPlacement == 0 && vr.YPlacement == 0 &&
		vr.XAdvance == 0 && vr.YAdvance == 0 &&
		vr.XPlaDevice == nil && vr.YPlaDevice == nil &&
		vr.XAdvDevice == nil && vr.YAdvDevice == nil
}

// Format returns the smallest ValueFormat mask that represents vr: the OR
// of the bits for every field that is non-zero (or non-nil, for devices).
func (vr *Table) Format() uint16 {
	if vr == nil {
		return 0
	}

	var format uint16
	if vr.XPlacement != 0 {
		format |= fmtXPlacement
	}
	if vr.YPlacement != 0 {
		format |= fmtYPlacement
	}
	if vr.XAdvance != 0 {
		format |= fmtXAdvance
	}
	if vr.YAdvance != 0 {
		format |= fmtYAdvance
	}
	if vr.XPlaDevice != nil {
		format |= fmtXPlaDevice
	}
	if vr.YPlaDevice != nil {
		format |= fmtYPlaDevice
	}
	if vr.XAdvDevice != nil {
		format |= fmtXAdvDevice
	}
	if vr.YAdvDevice != nil {
		format |= fmtYAdvDevice
	}
	return format
}

// EncodeLen returns the number of scalar bytes Encode writes for the given
// format (2 bytes per set bit; the device tables themselves are not
// counted). vr's fields are never consulted, so a nil *Table is fine.
func (vr *Table) EncodeLen(format uint16) int {
	return 2 * bits.OnesCount16(format)
}

// Encode writes the fixed-width scalar portion of vr for the given format:
// four possible funit.Int16 fields followed by four possible device-table
// offsets. Device offsets are always written as 0 (a null offset); no
// encoder in this module writes ValueRecord device tables or fills these
// offsets in.
func (vr *Table) Encode(format uint16) []byte {
	if format == 0 {
		return nil
	}
	buf := make([]byte, 0, vr.EncodeLen(format))
	if vr == nil {
		vr = &Table{}
	}

	if format&fmtXPlacement != 0 {
		buf = append(buf, byte(vr.XPlacement>>8), byte(vr.XPlacement))
	}
	if format&fmtYPlacement != 0 {
		buf = append(buf, byte(vr.YPlacement>>8), byte(vr.YPlacement))
	}
	if format&fmtXAdvance != 0 {
		buf = append(buf, byte(vr.XAdvance>>8), byte(vr.XAdvance))
	}
	if format&fmtYAdvance != 0 {
		buf = append(buf, byte(vr.YAdvance>>8), byte(vr.YAdvance))
	}
	// device offsets: always written as 0
	if format&fmtXPlaDevice != 0 {
		buf = append(buf, 0, 0)
	}
	if format&fmtYPlaDevice != 0 {
		buf = append(buf, 0, 0)
	}
	if format&fmtXAdvDevice != 0 {
		buf = append(buf, 0, 0)
	}
	if format&fmtYAdvDevice != 0 {
		buf = append(buf, 0, 0)
	}
	return buf
}

// RecordSpans registers the source-map entries for vr's scalar fields,
// mirroring the field order Encode writes: at must be the byte offset at
// which Encode's output for this format begins within rec's buffer. Device
// offsets carry no span (they are never written from a source literal) and
// are skipped.
func (vr *Table) RecordSpans(format uint16, rec *sourcemap.Recorder, at int) {
	if vr == nil || rec == nil {
		return
	}
	pos := at
	if format&fmtXPlacement != 0 {
		rec.Record(vr.XPlacementSpan, sourcemap.I16, pos)
		pos += 2
	}
	if format&fmtYPlacement != 0 {
		rec.Record(vr.YPlacementSpan, sourcemap.I16, pos)
		pos += 2
	}
	if format&fmtXAdvance != 0 {
		rec.Record(vr.XAdvanceSpan, sourcemap.I16, pos)
		pos += 2
	}
	if format&fmtYAdvance != 0 {
		rec.Record(vr.YAdvanceSpan, sourcemap.I16, pos)
		pos += 2
	}
}

// Devices returns the non-nil device tables referenced by vr, in wire
// order (xPla, yPla, xAdv, yAdv), together with the byte offset within
// vr's own encoding at which each one's offset field must be patched.
func (vr *Table) Devices(format uint16) []DeviceSlot {
	if vr == nil {
		return nil
	}
	var slots []DeviceSlot
	pos := 0
	add := func(bit uint16, d *device.Table) {
		if format&bit != 0 {
			if d != nil {
				slots = append(slots, DeviceSlot{OffsetPos: pos, Device: d})
			}
			pos += 2
		}
	}
	if format&fmtXPlacement != 0 {
		pos += 2
	}
	if format&fmtYPlacement != 0 {
		pos += 2
	}
	if format&fmtXAdvance != 0 {
		pos += 2
	}
	if format&fmtYAdvance != 0 {
		pos += 2
	}
	add(fmtXPlaDevice, vr.XPlaDevice)
	add(fmtYPlaDevice, vr.YPlaDevice)
	add(fmtXAdvDevice, vr.XAdvDevice)
	add(fmtYAdvDevice, vr.YAdvDevice)
	return slots
}

// DeviceSlot identifies where, within a ValueRecord's scalar encoding, a
// device table's offset must be patched once the device's final position
// is known.
type DeviceSlot struct {
	OffsetPos int
	Device    *device.Table
}

// Decode reads a ValueRecord's scalar fields from buf according to format.
// Device offsets are returned uninterpreted (the caller resolves them
// against the subtable's base, since device placement is pooled).
func Decode(buf []byte, format uint16) (vr *Table, deviceOffsets map[uint16]uint16, n int, err error) {
	if format == 0 {
		return nil, nil, 0, nil
	}
	need := (*Table)(nil).EncodeLen(format)
	if len(buf) < need {
		return nil, nil, 0, &BufferUnderflowError{Kind: "ValueRecord"}
	}
	vr = &Table{}
	deviceOffsets = make(map[uint16]uint16)
	pos := 0
	readI16 := func() funit.Int16 {
		v := funit.Int16(uint16(buf[pos])<<8 | uint16(buf[pos+1]))
		pos += 2
		return v
	}
	readU16 := func() uint16 {
		v := uint16(buf[pos])<<8 | uint16(buf[pos+1])
		pos += 2
		return v
	}
	if format&fmtXPlacement != 0 {
		vr.XPlacement = readI16()
	}
	if format&fmtYPlacement != 0 {
		vr.YPlacement = readI16()
	}
	if format&fmtXAdvance != 0 {
		vr.XAdvance = readI16()
	}
	if format&fmtYAdvance != 0 {
		vr.YAdvance = readI16()
	}
	if format&fmtXPlaDevice != 0 {
		deviceOffsets[fmtXPlaDevice] = readU16()
	}
	if format&fmtYPlaDevice != 0 {
		deviceOffsets[fmtYPlaDevice] = readU16()
	}
	if format&fmtXAdvDevice != 0 {
		deviceOffsets[fmtXAdvDevice] = readU16()
	}
	if format&fmtYAdvDevice != 0 {
		deviceOffsets[fmtYAdvDevice] = readU16()
	}
	return vr, deviceOffsets, pos, nil
}

// String renders vr in the compact "x+1,dy-2" style used by feature-file
// diagnostics and test failure messages.
func (vr *Table) String() string {
	if vr.IsEmpty() {
		return "_"
	}
	var parts []string
	if vr.XPlacement != 0 {
		parts = append(parts, fmt.Sprintf("x%+d", vr.XPlacement))
	}
	if vr.YPlacement != 0 {
		parts = append(parts, fmt.Sprintf("y%+d", vr.YPlacement))
	}
	if vr.XAdvance != 0 {
		parts = append(parts, fmt.Sprintf("dx%+d", vr.XAdvance))
	}
	if vr.YAdvance != 0 {
		parts = append(parts, fmt.Sprintf("dy%+d", vr.YAdvance))
	}
	return strings.Join(parts, ",")
}

// BufferUnderflowError reports that a ValueRecord could not be decoded
// because the buffer ended early.
type BufferUnderflowError struct {
	Kind string
}

func (e *BufferUnderflowError) Error() string {
	return "buffer underflow decoding " + e.Kind
}
