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

// Package font holds the caller-supplied glyph order and the glyph-class
// symbol table built on top of it.  A [GlyphOrder] does not change after
// [NewGlyphOrder] returns; a [ClassTable] grows as [ClassTable.Define]
// registers classes.
package font

import "seehuhn.de/go/otfea/glyph"

// GlyphOrder is a bijection between glyph names (or CIDs) and 16-bit glyph
// IDs.  It is constructed once per compile and never mutated afterwards.
type GlyphOrder struct {
	byName map[string]glyph.ID
	byCID  map[uint32]glyph.ID
	names  []string // indexed by glyph.ID; "" if the glyph has no name
}

// NewGlyphOrder builds a GlyphOrder from an ordered list of glyph names.
// Glyph ID i is assigned to names[i]; an empty string leaves that GID
// nameless (addressable only by numeric ID, as happens for CID-keyed
// fonts).
func NewGlyphOrder(names []string) (*GlyphOrder, error) {
	if len(names) > 1<<16 {
		return nil, &GlyphOrderError{Reason: "too many glyphs", Detail: len(names)}
	}
	g := &GlyphOrder{
		byName: make(map[string]glyph.ID, len(names)),
		names:  append([]string(nil), names...),
	}
	for i, n := range names {
		if n == "" {
			continue
		}
		if err := validateGlyphName(n); err != nil {
			return nil, err
		}
		if _, dup := g.byName[n]; dup {
			return nil, &GlyphOrderError{Reason: "duplicate glyph name", Name: n}
		}
		g.byName[n] = glyph.ID(i)
	}
	return g, nil
}

// NewCIDGlyphOrder builds a GlyphOrder for a CID-keyed font, where glyphs
// are addressed by CID rather than by name.
func NewCIDGlyphOrder(cidToGID map[uint32]glyph.ID) *GlyphOrder {
	return &GlyphOrder{byCID: cidToGID}
}

// NumGlyphs returns the number of glyphs in the order.
func (g *GlyphOrder) NumGlyphs() int {
	return len(g.names)
}

// ByName resolves a glyph name to its glyph ID.
func (g *GlyphOrder) ByName(name string) (glyph.ID, error) {
	if gid, ok := g.byName[name]; ok {
		return gid, nil
	}
	return 0, &GlyphOrderError{Reason: "glyph not in order", Name: name}
}

// ByCID resolves a CID to its glyph ID.
func (g *GlyphOrder) ByCID(cid uint32) (glyph.ID, error) {
	if gid, ok := g.byCID[cid]; ok {
		return gid, nil
	}
	return 0, &GlyphOrderError{Reason: "glyph not in order", Detail: int(cid)}
}

// GlyphName returns the name of gid, or "" if it has none.
func (g *GlyphOrder) GlyphName(gid glyph.ID) string {
	if int(gid) < len(g.names) {
		return g.names[gid]
	}
	return ""
}

func validateGlyphName(name string) error {
	if len(name) == 0 || len(name) > 63 {
		return &GlyphOrderError{Reason: "glyph name length out of range", Name: name}
	}
	c := name[0]
	if !(c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')) {
		return &GlyphOrderError{Reason: "glyph name has invalid starting character", Name: name}
	}
	for i := 1; i < len(name); i++ {
		c := name[i]
		ok := c == '_' || c == '.' ||
			(c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
		if !ok {
			return &GlyphOrderError{Reason: "glyph name contains invalid character", Name: name}
		}
	}
	return nil
}

// GlyphOrderError reports a problem resolving a glyph reference.
type GlyphOrderError struct {
	Reason string
	Name   string
	Detail int
}

func (e *GlyphOrderError) Error() string {
	if e.Name != "" {
		return "glyph order: " + e.Reason + ": " + e.Name
	}
	return "glyph order: " + e.Reason
}
