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

// Package glyph contains the glyph identifier types shared by every
// substructure encoder.
package glyph

// ID enumerates the glyphs of a font.  The first glyph has index 0 and is
// used to indicate a missing character (usually rendered as an empty box).
type ID uint16

// Pair represents two consecutive glyphs, used for kerning and ligature
// lookups.
type Pair struct {
	Left, Right ID
}

// Range is an inclusive range of glyph IDs, as used by ClassDef and
// Coverage format 2 and by glyph-class ranges in feature source.
type Range struct {
	First, Last ID
}

// Contains reports whether gid lies within the range.
func (r Range) Contains(gid ID) bool {
	return gid >= r.First && gid <= r.Last
}
