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

// Package container reads and writes the SFNT offset table that wraps every
// TrueType/OpenType font file, and merges freshly compiled tables into a
// pre-existing font image.
package container

import (
	"bytes"
	"sort"

	"seehuhn.de/go/otfea/head"
	"seehuhn.de/go/otfea/tag"
)

const (
	// ScalerTypeTrueType is the scaler type for fonts with TrueType (glyf)
	// outlines.
	ScalerTypeTrueType uint32 = 0x00010000

	// ScalerTypeCFF is the scaler type for fonts with CFF outlines.
	ScalerTypeCFF uint32 = 0x4F54544F // "OTTO"

	// ScalerTypeApple is accepted on read as an alternative spelling of
	// ScalerTypeTrueType.
	ScalerTypeApple uint32 = 0x74727565 // "true"

	headerLength = 12
	recordLength = 16
)

var headTag = tag.Make("head")

// checksumAdjustmentMagic is the constant an SFNT's head.checksumAdjustment
// is computed against.
const checksumAdjustmentMagic uint32 = 0xB1B0AFBA

// Record is the offset and length of one table within an SFNT image.
type Record struct {
	Offset uint32
	Length uint32
}

// Image is a parsed, in-memory SFNT file: the scaler type, the table
// directory, and the full file bytes every table's Record offsets index
// into. Tables returned by TableBytes are borrowed slices into Data; they
// must not be mutated or retained past Data's lifetime.
type Image struct {
	ScalerType uint32
	Toc        map[tag.Tag]Record
	Data       []byte
}

// Read parses the SFNT offset table and table directory of data, performs
// the same basic sanity checks as the teacher's header reader (table
// extents within the file, no overlaps, a recognised scaler type), and
// verifies the whole-file checksum against the 'head' table's
// checksumAdjustment field when a 'head' table is present.
func Read(data []byte) (*Image, error) {
	if len(data) < headerLength {
		return nil, &BufferUnderflowError{Kind: "offset table"}
	}
	scalerType := be32(data)
	if scalerType != ScalerTypeTrueType && scalerType != ScalerTypeCFF && scalerType != ScalerTypeApple {
		return nil, &InvalidValueError{Field: "scalerType", Where: "offset table"}
	}
	numTables := int(be16(data[4:]))
	if headerLength+numTables*recordLength > len(data) {
		return nil, &BufferUnderflowError{Kind: "table directory"}
	}

	img := &Image{
		ScalerType: scalerType,
		Toc:        make(map[tag.Tag]Record, numTables),
		Data:       data,
	}

	type span struct{ start, end uint32 }
	spans := make([]span, 0, numTables)
	for i := 0; i < numTables; i++ {
		rec := data[headerLength+i*recordLength:]
		var t tag.Tag
		copy(t[:], rec[:4])
		offset := be32(rec[8:])
		length := be32(rec[12:])
		if _, exists := img.Toc[t]; exists {
			return nil, &InvalidValueError{Field: "tag", Where: "table directory (duplicate " + t.Trimmed() + ")"}
		}
		img.Toc[t] = Record{Offset: offset, Length: length}
		spans = append(spans, span{offset, offset + length})
	}

	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end < spans[j].end
	})
	for i, sp := range spans {
		if sp.start < headerLength+uint32(numTables)*recordLength {
			return nil, &InvalidValueError{Field: "offset", Where: "table directory"}
		}
		if uint64(sp.end) > uint64(len(data)) {
			return nil, &InvalidValueError{Field: "length", Where: "table directory (extends past EOF)"}
		}
		if i > 0 && spans[i-1].end > sp.start {
			return nil, &InvalidValueError{Field: "offset", Where: "table directory (overlapping tables)"}
		}
	}

	if rec, ok := img.Toc[headTag]; ok {
		if err := verifyChecksum(data, rec); err != nil {
			return nil, err
		}
	}

	return img, nil
}

// TableBytes returns the borrowed byte slice for t, or false if the image
// has no such table.
func (img *Image) TableBytes(t tag.Tag) ([]byte, bool) {
	rec, ok := img.Toc[t]
	if !ok {
		return nil, false
	}
	if uint64(rec.Offset)+uint64(rec.Length) > uint64(len(img.Data)) {
		return nil, false
	}
	return img.Data[rec.Offset : rec.Offset+rec.Length], true
}

func verifyChecksum(data []byte, headRec Record) error {
	if headRec.Length < 12 {
		return &InvalidValueError{Field: "length", Where: "head table"}
	}
	stored := be32(data[headRec.Offset+8:])

	zeroed := make([]byte, len(data))
	copy(zeroed, data)
	zeroed[headRec.Offset+8] = 0
	zeroed[headRec.Offset+9] = 0
	zeroed[headRec.Offset+10] = 0
	zeroed[headRec.Offset+11] = 0

	whole := calcChecksum(zeroed)
	running := tableChecksumSum(zeroed, data[:headerLength])

	got := checksumAdjustmentMagic - (whole + running)
	if got != stored {
		return &BadWholeFileChecksumError{}
	}
	return nil
}

// tableChecksumSum recomputes Σ per-table checksums from a directory that
// has already been parsed; dirHeader is only the 12-byte offset table (the
// numTables field).
func tableChecksumSum(data []byte, dirHeader []byte) uint32 {
	numTables := int(be16(dirHeader[4:]))
	var sum uint32
	for i := 0; i < numTables; i++ {
		rec := data[headerLength+i*recordLength:]
		offset := be32(rec[8:])
		length := be32(rec[12:])
		padded := pad4(length)
		end := offset + padded
		if uint64(end) > uint64(len(data)) {
			end = uint32(len(data))
		}
		sum += calcChecksum(data[offset:end])
	}
	return sum
}

// Merge overlays fresh (tag -> table bytes) on top of existing's tables
// (same-tag compiled wins), optionally replacing the 'head' table with a
// freshly encoded one, and serialises the result: a 12-byte offset table, a
// 16-byte record per table, and 4-byte-aligned payloads with 'head' placed
// first and every other table following in ascending tag order. existing
// may be nil, in which case the result contains only the fresh tables.
func Merge(existing *Image, fresh map[tag.Tag][]byte, headInfo *head.Info) ([]byte, error) {
	scalerType := ScalerTypeTrueType
	tables := make(map[tag.Tag][]byte)
	if existing != nil {
		scalerType = existing.ScalerType
		for t := range existing.Toc {
			b, _ := existing.TableBytes(t)
			tables[t] = b
		}
	}
	for t, data := range fresh {
		tables[t] = data
	}
	if headInfo != nil {
		tables[headTag] = headInfo.Encode()
	}

	headData, hasHead := tables[headTag]
	if hasHead {
		owned := make([]byte, len(headData))
		copy(owned, headData)
		owned[8], owned[9], owned[10], owned[11] = 0, 0, 0, 0
		tables[headTag] = owned
	}

	order := tableOrder(tables)
	numTables := len(order)

	var buf bytes.Buffer
	buf.Grow(headerLength + numTables*recordLength)
	writeU32(&buf, uint32(scalerType))
	entrySelector, searchRange, rangeShift := directorySizing(numTables)
	writeU16(&buf, uint16(numTables))
	writeU16(&buf, searchRange)
	writeU16(&buf, entrySelector)
	writeU16(&buf, rangeShift)
	buf.Write(make([]byte, numTables*recordLength)) // records, patched below

	offsets := make([]uint32, numTables)
	lengths := make([]uint32, numTables)
	for i, t := range order {
		data := tables[t]
		offsets[i] = uint32(buf.Len())
		lengths[i] = uint32(len(data))
		buf.Write(data)
		for buf.Len()%4 != 0 {
			buf.WriteByte(0)
		}
	}

	out := buf.Bytes()
	var running uint32
	for i, t := range order {
		pos := headerLength + i*recordLength
		copy(out[pos:], t[:])
		padded := pad4(lengths[i])
		checksum := calcChecksum(out[offsets[i] : offsets[i]+padded])
		putU32(out[pos+4:], checksum)
		putU32(out[pos+8:], offsets[i])
		putU32(out[pos+12:], lengths[i])
		running += checksum
	}

	if hasHead {
		whole := calcChecksum(out)
		adjustment := checksumAdjustmentMagic - (whole + running)
		headOffset := offsets[indexOf(order, headTag)]
		putU32(out[headOffset+8:], adjustment)
	}

	return out, nil
}

func indexOf(order []tag.Tag, t tag.Tag) int {
	for i, x := range order {
		if x == t {
			return i
		}
	}
	return -1
}

// tableOrder returns the physical placement order for tables: 'head' first
// when present, then every other tag in ascending byte order.
func tableOrder(tables map[tag.Tag][]byte) []tag.Tag {
	order := make([]tag.Tag, 0, len(tables))
	_, hasHead := tables[headTag]
	if hasHead {
		order = append(order, headTag)
	}
	rest := make([]tag.Tag, 0, len(tables))
	for t := range tables {
		if t == headTag {
			continue
		}
		rest = append(rest, t)
	}
	sort.Slice(rest, func(i, j int) bool { return bytes.Compare(rest[i][:], rest[j][:]) < 0 })
	return append(order, rest...)
}

// directorySizing computes the offset table's searchRange/entrySelector/
// rangeShift fields from the table count, per the OpenType offset-table
// format (the largest power of two not exceeding numTables, and its log2).
func directorySizing(numTables int) (entrySelector, searchRange, rangeShift uint16) {
	n := uint16(numTables)
	var maxPower uint16 = 1
	for maxPower*2 <= n {
		maxPower *= 2
		entrySelector++
	}
	searchRange = maxPower * recordLength
	rangeShift = n*recordLength - searchRange
	return
}

// calcChecksum sums data as big-endian uint32 words, treating any trailing
// partial word as zero-padded, and wraps on overflow.
func calcChecksum(data []byte) uint32 {
	var sum uint32
	n := len(data) - len(data)%4
	for i := 0; i < n; i += 4 {
		sum += be32(data[i:])
	}
	if rem := len(data) % 4; rem != 0 {
		var tail [4]byte
		copy(tail[:], data[n:])
		sum += be32(tail[:])
	}
	return sum
}

func pad4(n uint32) uint32 {
	if r := n % 4; r != 0 {
		return n + (4 - r)
	}
	return n
}

func be16(b []byte) uint16 { return uint16(b[0])<<8 | uint16(b[1]) }
func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func putU32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}

func writeU16(buf *bytes.Buffer, v uint16) {
	buf.WriteByte(byte(v >> 8))
	buf.WriteByte(byte(v))
}

func writeU32(buf *bytes.Buffer, v uint32) {
	buf.WriteByte(byte(v >> 24))
	buf.WriteByte(byte(v >> 16))
	buf.WriteByte(byte(v >> 8))
	buf.WriteByte(byte(v))
}
