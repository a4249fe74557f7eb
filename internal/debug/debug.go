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

// Package debug provides a small synthetic glyph order for use in unit
// tests across the compiler packages.
package debug

import (
	"seehuhn.de/go/otfea/font"
	"seehuhn.de/go/otfea/glyph"
)

// SimpleGlyphOrder returns a GlyphOrder with .notdef at GID 0 followed by
// A-Z at GIDs 1-26, the fixture every compile/opentype package test builds
// its PairPos/CursivePos/MarkBasePos/Subst cases against.
func SimpleGlyphOrder() *font.GlyphOrder {
	names := make([]string, 0, 27)
	names = append(names, ".notdef")
	for c := 'A'; c <= 'Z'; c++ {
		names = append(names, string(c))
	}
	order, err := font.NewGlyphOrder(names)
	if err != nil {
		panic(err)
	}
	return order
}

// MustGID looks up name in order and panics on failure; test-only
// convenience for building expected glyph.ID values from readable names.
func MustGID(order *font.GlyphOrder, name string) glyph.ID {
	gid, err := order.ByName(name)
	if err != nil {
		panic(err)
	}
	return gid
}
