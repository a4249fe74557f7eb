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

// Package head implements the OpenType 'head' table: the table every
// `table head { ... }` block in feature source writes into, and the one
// table whose checksumAdjustment field the container writer patches last.
package head

import (
	"fmt"
	"time"

	"seehuhn.de/go/postscript/funit"
)

const tableLength = 54

// MagicNumber is the fixed 'head' magic number value.
const MagicNumber uint32 = 0x5F0F3CF5

// Info represents the information in an OpenType 'head' table. Fields left
// at their zero value take the defaults Encode applies (FontDirectionHint
// defaults to 2 "strongly left-to-right", UnitsPerEm defaults to 1000 when
// zero, per common font-tooling convention).
type Info struct {
	FontRevision Version

	HasYBaseAt0 bool
	HasXBaseAt0 bool
	IsNonlinear bool

	UnitsPerEm uint16

	Created  time.Time
	Modified time.Time

	XMin, YMin, XMax, YMax funit.Int16

	IsBold       bool
	IsItalic     bool
	HasUnderline bool
	IsOutline    bool
	HasShadow    bool
	IsCondensed  bool
	IsExtended   bool

	LowestRecPPEM uint16

	// FontDirectionHint is deprecated by the OpenType spec but still part
	// of the wire format; 2 means "strongly left-to-right".
	FontDirectionHint int16

	HasLongOffsets  bool // 'loca' uses 32-bit offsets (TrueType outlines only)
	GlyphDataFormat int16
}

// Version represents the font revision in 16.16 fixed-point format.
type Version uint32

func (v Version) String() string {
	return fmt.Sprintf("%.03f", float32(v)/65536)
}

// Encode returns the 54-byte binary 'head' table with checksumAdjustment
// set to zero; the container writer patches that field last, once the
// whole-file checksum is known (see [PatchChecksumAdjustment]).
func (info *Info) Encode() []byte {
	var flags uint16
	if info.HasYBaseAt0 {
		flags |= 1 << 0
	}
	if info.HasXBaseAt0 {
		flags |= 1 << 1
	}
	if info.IsNonlinear {
		flags |= 1 << 2
		flags |= 1 << 4
	}
	flags |= 1 << 3
	flags |= 1 << 11
	flags |= 1 << 12
	flags |= 1 << 13

	var macStyle uint16
	if info.IsBold {
		macStyle |= 1 << 0
	}
	if info.IsItalic {
		macStyle |= 1 << 1
	}
	if info.HasUnderline {
		macStyle |= 1 << 2
	}
	if info.IsOutline {
		macStyle |= 1 << 3
	}
	if info.HasShadow {
		macStyle |= 1 << 4
	}
	if info.IsCondensed {
		macStyle |= 1 << 5
	}
	if info.IsExtended {
		macStyle |= 1 << 6
	}

	unitsPerEm := info.UnitsPerEm
	if unitsPerEm == 0 {
		unitsPerEm = 1000
	}
	fontDirectionHint := info.FontDirectionHint
	if fontDirectionHint == 0 {
		fontDirectionHint = 2
	}
	var indexToLocFormat int16
	if info.HasLongOffsets {
		indexToLocFormat = 1
	}

	buf := make([]byte, tableLength)
	putU32(buf[0:], 0x00010000)
	putU32(buf[4:], uint32(info.FontRevision))
	putU32(buf[8:], 0) // checksumAdjustment, patched by the container writer
	putU32(buf[12:], MagicNumber)
	putU16(buf[16:], flags)
	putU16(buf[18:], unitsPerEm)
	putI64(buf[20:], encodeTime(info.Created))
	putI64(buf[28:], encodeTime(info.Modified))
	putI16(buf[36:], int16(info.XMin))
	putI16(buf[38:], int16(info.YMin))
	putI16(buf[40:], int16(info.XMax))
	putI16(buf[42:], int16(info.YMax))
	putU16(buf[44:], macStyle)
	putU16(buf[46:], info.LowestRecPPEM)
	putI16(buf[48:], fontDirectionHint)
	putI16(buf[50:], indexToLocFormat)
	putI16(buf[52:], info.GlyphDataFormat)
	return buf
}

// Decode reads a 54-byte 'head' table.
func Decode(buf []byte) (*Info, error) {
	if len(buf) < tableLength {
		return nil, &DecodeError{Reason: "head table truncated"}
	}
	if getU32(buf[0:]) != 0x00010000 {
		return nil, &DecodeError{Reason: "unsupported head table version"}
	}
	if getU32(buf[12:]) != MagicNumber {
		return nil, &DecodeError{Reason: "invalid head magic number"}
	}

	flags := getU16(buf[16:])
	macStyle := getU16(buf[44:])

	info := &Info{
		FontRevision:      Version(getU32(buf[4:])),
		HasYBaseAt0:       flags&(1<<0) != 0,
		HasXBaseAt0:       flags&(1<<1) != 0,
		IsNonlinear:       flags&(1<<2) != 0 || flags&(1<<4) != 0,
		UnitsPerEm:        getU16(buf[18:]),
		Created:           decodeTime(getI64(buf[20:])),
		Modified:          decodeTime(getI64(buf[28:])),
		XMin:              funit.Int16(getI16(buf[36:])),
		YMin:              funit.Int16(getI16(buf[38:])),
		XMax:              funit.Int16(getI16(buf[40:])),
		YMax:              funit.Int16(getI16(buf[42:])),
		IsBold:            macStyle&(1<<0) != 0,
		IsItalic:          macStyle&(1<<1) != 0,
		HasUnderline:      macStyle&(1<<2) != 0,
		IsOutline:         macStyle&(1<<3) != 0,
		HasShadow:         macStyle&(1<<4) != 0,
		IsCondensed:       macStyle&(1<<5) != 0,
		IsExtended:        macStyle&(1<<6) != 0,
		LowestRecPPEM:     getU16(buf[46:]),
		FontDirectionHint: getI16(buf[48:]),
		HasLongOffsets:    getI16(buf[50:]) != 0,
		GlyphDataFormat:   getI16(buf[52:]),
	}
	return info, nil
}

// PatchChecksumAdjustment writes the final checksumAdjustment field of an
// encoded 'head' table in place. checksum is whole + running as defined in
// the container writer's checksum algorithm.
func PatchChecksumAdjustment(head []byte, checksum uint32) {
	putU32(head[8:12], 0xB1B0AFBA-checksum)
}

// DecodeError reports a malformed or unsupported 'head' table.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return e.Reason
}

func putU16(b []byte, v uint16) { b[0] = byte(v >> 8); b[1] = byte(v) }
func putI16(b []byte, v int16)  { putU16(b, uint16(v)) }
func putU32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}
func putI64(b []byte, v int64) {
	u := uint64(v)
	for i := 0; i < 8; i++ {
		b[i] = byte(u >> uint(56-8*i))
	}
}
func getU16(b []byte) uint16 { return uint16(b[0])<<8 | uint16(b[1]) }
func getI16(b []byte) int16  { return int16(getU16(b)) }
func getU32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
func getI64(b []byte) int64 {
	var u uint64
	for i := 0; i < 8; i++ {
		u = u<<8 | uint64(b[i])
	}
	return int64(u)
}
