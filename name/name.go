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

// Package name implements the OpenType 'name' table, format 0: a flat
// record array plus a string pool, built directly from the
// platform/encoding/language/name-id records a `table name { ... }` block
// in feature source appends.
package name

import (
	"bytes"
	"sort"
	"unicode/utf16"

	"golang.org/x/text/encoding/charmap"
)

// Platform IDs, per the OpenType 'name' table spec.
const (
	PlatformUnicode   uint16 = 0
	PlatformMacintosh uint16 = 1
	PlatformWindows   uint16 = 3
)

// Record is one entry appended by a `nameid ...;` statement inside a
// `table name { ... }` block.
type Record struct {
	PlatformID uint16
	EncodingID uint16
	LanguageID uint16
	NameID     uint16
	Value      string
}

// Table is the ordered sequence of name records to emit. Order does not
// affect the OpenType semantics (readers sort by platform/encoding/
// language/name-id) but is kept stable here for deterministic encoding.
type Table []Record

func (r Record) encodedBytes() ([]byte, error) {
	if r.PlatformID == PlatformMacintosh {
		return charmap.Macintosh.NewEncoder().Bytes([]byte(r.Value))
	}
	// Windows and Unicode platforms use UTF-16BE.
	runes := utf16.Encode([]rune(r.Value))
	buf := make([]byte, 2*len(runes))
	for i, u := range runes {
		buf[2*i] = byte(u >> 8)
		buf[2*i+1] = byte(u)
	}
	return buf, nil
}

// Encode returns the binary format-0 'name' table: a header, a sorted
// array of name records, and a string pool in which identical encoded
// strings share one offset.
func (t Table) Encode() ([]byte, error) {
	type encoded struct {
		rec   Record
		bytes []byte
	}
	recs := make([]encoded, len(t))
	for i, r := range t {
		b, err := r.encodedBytes()
		if err != nil {
			return nil, &EncodeError{Reason: "cannot encode name record " + r.Value}
		}
		recs[i] = encoded{rec: r, bytes: b}
	}

	order := make([]int, len(recs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		x, y := recs[order[a]].rec, recs[order[b]].rec
		switch {
		case x.PlatformID != y.PlatformID:
			return x.PlatformID < y.PlatformID
		case x.EncodingID != y.EncodingID:
			return x.EncodingID < y.EncodingID
		case x.LanguageID != y.LanguageID:
			return x.LanguageID < y.LanguageID
		default:
			return x.NameID < y.NameID
		}
	})

	headerLen := 6 + 12*len(recs)
	buf := make([]byte, headerLen, headerLen+32*len(recs))
	buf[0] = 0
	buf[1] = 0
	buf[2] = byte(len(recs) >> 8)
	buf[3] = byte(len(recs))
	buf[4] = byte(headerLen >> 8)
	buf[5] = byte(headerLen)

	type pooled struct {
		bytes  []byte
		offset int
	}
	var pool []pooled
	poolStart := len(buf)

	for i, idx := range order {
		e := recs[idx]
		offset := -1
		for _, p := range pool {
			if bytes.Equal(p.bytes, e.bytes) {
				offset = p.offset
				break
			}
		}
		if offset == -1 {
			offset = len(buf) - poolStart
			buf = append(buf, e.bytes...)
			pool = append(pool, pooled{bytes: e.bytes, offset: offset})
		}

		p := 6 + 12*i
		buf[p] = byte(e.rec.PlatformID >> 8)
		buf[p+1] = byte(e.rec.PlatformID)
		buf[p+2] = byte(e.rec.EncodingID >> 8)
		buf[p+3] = byte(e.rec.EncodingID)
		buf[p+4] = byte(e.rec.LanguageID >> 8)
		buf[p+5] = byte(e.rec.LanguageID)
		buf[p+6] = byte(e.rec.NameID >> 8)
		buf[p+7] = byte(e.rec.NameID)
		buf[p+8] = byte(len(e.bytes) >> 8)
		buf[p+9] = byte(len(e.bytes))
		buf[p+10] = byte(offset >> 8)
		buf[p+11] = byte(offset)
	}

	return buf, nil
}

// EncodeError reports a name record that could not be encoded, such as a
// Macintosh-platform value containing a character outside MacRoman.
type EncodeError struct {
	Reason string
}

func (e *EncodeError) Error() string {
	return e.Reason
}
