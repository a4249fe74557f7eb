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

	"seehuhn.de/go/otfea/glyph"
)

func TestGlyphOrderByName(t *testing.T) {
	order, err := NewGlyphOrder([]string{".notdef", "A", "B"})
	if err != nil {
		t.Fatalf("NewGlyphOrder: %v", err)
	}
	gid, err := order.ByName("B")
	if err != nil || gid != 2 {
		t.Errorf("ByName(B) = (%d, %v), want (2, nil)", gid, err)
	}
	if _, err := order.ByName("missing"); err == nil {
		t.Error("ByName accepted an undefined glyph name")
	}
	if got := order.GlyphName(1); got != "A" {
		t.Errorf("GlyphName(1) = %q, want %q", got, "A")
	}
}

func TestGlyphOrderRejectsDuplicateNames(t *testing.T) {
	if _, err := NewGlyphOrder([]string{"A", "A"}); err == nil {
		t.Error("NewGlyphOrder accepted a duplicate glyph name")
	}
}

func TestGlyphOrderRejectsInvalidNames(t *testing.T) {
	if _, err := NewGlyphOrder([]string{"1bad"}); err == nil {
		t.Error("NewGlyphOrder accepted a name starting with a digit")
	}
}

func TestCIDGlyphOrder(t *testing.T) {
	order := NewCIDGlyphOrder(map[uint32]glyph.ID{100: 5})
	gid, err := order.ByCID(100)
	if err != nil || gid != 5 {
		t.Errorf("ByCID(100) = (%d, %v), want (5, nil)", gid, err)
	}
	if _, err := order.ByCID(999); err == nil {
		t.Error("ByCID accepted an undefined CID")
	}
}
