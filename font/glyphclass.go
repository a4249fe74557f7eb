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

package font

import "seehuhn.de/go/otfea/glyph"

// ClassItem is one element of a [GlyphClass]: a single glyph, an inclusive
// glyph-ID range, or a reference to another named class.
type ClassItem struct {
	Glyph      string     // set for a single named glyph
	CID        uint32     // set for a single CID, when HasCID
	HasCID     bool
	Range      glyph.Range // set when IsRange
	IsRange    bool
	ClassName  string // set when this item refers to another @class
}

// GlyphClass is an ordered sequence of class items, exactly as named in
// feature source (`[A B @OTHER C-F]`).  Classes may refer to other named
// classes; cycles are rejected at resolution time.
type GlyphClass struct {
	Items []ClassItem
}

// ClassTable is the symbol table of named glyph classes accumulated while
// walking the AST; a repeated name overwrites the earlier definition.
// Entries may reference classes defined later in the source, so named
// references are resolved only when [ClassTable.Expand] is called.
type ClassTable struct {
	defs map[string]*GlyphClass
}

// NewClassTable creates an empty named-class symbol table.
func NewClassTable() *ClassTable {
	return &ClassTable{defs: make(map[string]*GlyphClass)}
}

// Define registers a named glyph class. Redefinition overwrites the
// previous definition, matching how the feature-file grammar treats a
// repeated `@name = [...]` statement.
func (t *ClassTable) Define(name string, c *GlyphClass) {
	t.defs[name] = c
}

// Expand resolves a GlyphClass (named or anonymous) against the glyph
// order, expanding named references transitively. Duplicates are preserved
// in the returned slice, matching spec: deduplication happens only inside
// downstream containers such as Coverage and ClassDef.
func (t *ClassTable) Expand(order *GlyphOrder, c *GlyphClass) ([]glyph.ID, error) {
	if err := t.checkAcyclic(c, nil); err != nil {
		return nil, err
	}
	return t.expand(order, c)
}

func (t *ClassTable) expand(order *GlyphOrder, c *GlyphClass) ([]glyph.ID, error) {
	var out []glyph.ID
	for _, item := range c.Items {
		switch {
		case item.ClassName != "":
			ref, ok := t.defs[item.ClassName]
			if !ok {
				return nil, &UndefinedReferenceError{Kind: "glyph class", Name: item.ClassName}
			}
			sub, err := t.expand(order, ref)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		case item.IsRange:
			for gid := item.Range.First; gid <= item.Range.Last; gid++ {
				out = append(out, gid)
				if gid == ^glyph.ID(0) {
					break // avoid wraparound on a range ending at 0xFFFF
				}
			}
		case item.HasCID:
			gid, err := order.ByCID(item.CID)
			if err != nil {
				return nil, err
			}
			out = append(out, gid)
		default:
			gid, err := order.ByName(item.Glyph)
			if err != nil {
				return nil, err
			}
			out = append(out, gid)
		}
	}
	return out, nil
}

// checkAcyclic walks the reference graph rooted at c with a depth-first
// search, failing closed the moment a class appears twice on the current
// path. This is a plain DFS rather than a call into a topological-sort
// library: the only candidate in the pack, seehuhn.de/go/dag, ships no
// retrievable API surface to ground a call against, and a cycle check over
// a handful of named classes does not warrant guessing one.
func (t *ClassTable) checkAcyclic(c *GlyphClass, path []string) error {
	for _, item := range c.Items {
		if item.ClassName == "" {
			continue
		}
		for _, seen := range path {
			if seen == item.ClassName {
				return &CycleError{Path: append(append([]string(nil), path...), item.ClassName)}
			}
		}
		ref, ok := t.defs[item.ClassName]
		if !ok {
			return &UndefinedReferenceError{Kind: "glyph class", Name: item.ClassName}
		}
		if err := t.checkAcyclic(ref, append(path, item.ClassName)); err != nil {
			return err
		}
	}
	return nil
}

// UndefinedReferenceError reports a reference to an anchor, mark class,
// named lookup, or glyph class that was never defined.
type UndefinedReferenceError struct {
	Kind string
	Name string
}

func (e *UndefinedReferenceError) Error() string {
	return "undefined " + e.Kind + ": " + e.Name
}

// CycleError reports a cyclic reference among named glyph classes.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	s := "cyclic glyph class reference:"
	for _, p := range e.Path {
		s += " " + p + " ->"
	}
	return s[:len(s)-3]
}
