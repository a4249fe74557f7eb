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

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/otfea/glyph"
)

func testOrder(t *testing.T) *GlyphOrder {
	t.Helper()
	order, err := NewGlyphOrder([]string{".notdef", "A", "B", "C", "D"})
	if err != nil {
		t.Fatalf("NewGlyphOrder: %v", err)
	}
	return order
}

func TestClassTableExpandRange(t *testing.T) {
	order := testOrder(t)
	table := NewClassTable()
	class := &GlyphClass{Items: []ClassItem{{IsRange: true, Range: glyph.Range{First: 1, Last: 3}}}}

	got, err := table.Expand(order, class)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	want := []glyph.ID{1, 2, 3}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Expand mismatch (-want +got):\n%s", diff)
	}
}

func TestClassTableExpandTransitiveReference(t *testing.T) {
	order := testOrder(t)
	table := NewClassTable()
	table.Define("INNER", &GlyphClass{Items: []ClassItem{{Glyph: "A"}, {Glyph: "B"}}})
	table.Define("OUTER", &GlyphClass{Items: []ClassItem{{ClassName: "INNER"}, {Glyph: "C"}}})

	got, err := table.Expand(order, &GlyphClass{Items: []ClassItem{{ClassName: "OUTER"}}})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	want := []glyph.ID{1, 2, 3}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Expand mismatch (-want +got):\n%s", diff)
	}
}

func TestClassTableDetectsCycle(t *testing.T) {
	order := testOrder(t)
	table := NewClassTable()
	table.Define("A", &GlyphClass{Items: []ClassItem{{ClassName: "B"}}})
	table.Define("B", &GlyphClass{Items: []ClassItem{{ClassName: "A"}}})

	_, err := table.Expand(order, &GlyphClass{Items: []ClassItem{{ClassName: "A"}}})
	if err == nil {
		t.Fatal("Expand did not detect a cyclic class reference")
	}
	if _, ok := err.(*CycleError); !ok {
		t.Errorf("got error type %T, want *CycleError", err)
	}
}

func TestClassTableUndefinedReference(t *testing.T) {
	order := testOrder(t)
	table := NewClassTable()
	_, err := table.Expand(order, &GlyphClass{Items: []ClassItem{{ClassName: "MISSING"}}})
	if _, ok := err.(*UndefinedReferenceError); !ok {
		t.Errorf("got error type %T, want *UndefinedReferenceError", err)
	}
}
