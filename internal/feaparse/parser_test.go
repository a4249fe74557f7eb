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

package feaparse

import (
	"testing"

	"seehuhn.de/go/otfea/ast"
	"seehuhn.de/go/otfea/font"
	"seehuhn.de/go/otfea/tag"
)

func testOrder(t *testing.T) *font.GlyphOrder {
	t.Helper()
	names := []string{".notdef"}
	for c := 'A'; c <= 'Z'; c++ {
		names = append(names, string(c))
	}
	order, err := font.NewGlyphOrder(names)
	if err != nil {
		t.Fatalf("NewGlyphOrder: %v", err)
	}
	return order
}

func TestParseLanguageSystem(t *testing.T) {
	stmts, err := Parse("languagesystem latn dflt;", testOrder(t))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(stmts) != 1 {
		t.Fatalf("got %d statements, want 1", len(stmts))
	}
	ls, ok := stmts[0].(*ast.LanguageSystem)
	if !ok {
		t.Fatalf("got %T, want *ast.LanguageSystem", stmts[0])
	}
	if ls.Script != tag.Make("latn") || ls.Language != tag.Make("dflt") {
		t.Errorf("got script=%q language=%q", ls.Script.Trimmed(), ls.Language.Trimmed())
	}
}

func TestParseGlyphClassDefWithRange(t *testing.T) {
	stmts, err := Parse("@LETTERS = [A-C];", testOrder(t))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	def, ok := stmts[0].(*ast.GlyphClassDef)
	if !ok {
		t.Fatalf("got %T, want *ast.GlyphClassDef", stmts[0])
	}
	if def.Name != "LETTERS" || len(def.Class.Items) != 1 || !def.Class.Items[0].IsRange {
		t.Fatalf("unexpected class def: %+v", def)
	}
	rng := def.Class.Items[0].Range
	if rng.First != 1 || rng.Last != 3 { // A=1, C=3
		t.Errorf("range = %+v, want {1 3}", rng)
	}
}

func TestParseFeatureWithPairPos(t *testing.T) {
	src := `
feature kern {
    pos A B -50;
} kern;
`
	stmts, err := Parse(src, testOrder(t))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	fb, ok := stmts[0].(*ast.FeatureBlock)
	if !ok {
		t.Fatalf("got %T, want *ast.FeatureBlock", stmts[0])
	}
	if fb.Tag != tag.Make("kern") {
		t.Errorf("tag = %q, want kern", fb.Tag.Trimmed())
	}
	if len(fb.Statements) != 1 {
		t.Fatalf("got %d statements inside feature, want 1", len(fb.Statements))
	}
	pp, ok := fb.Statements[0].(*ast.PairPos)
	if !ok {
		t.Fatalf("got %T, want *ast.PairPos", fb.Statements[0])
	}
	if pp.ValueRecord1.XAdvance != -50 {
		t.Errorf("XAdvance = %d, want -50", pp.ValueRecord1.XAdvance)
	}
}

func TestParseSingleSubst(t *testing.T) {
	stmts, err := Parse("feature smcp { sub A by B; } smcp;", testOrder(t))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	fb := stmts[0].(*ast.FeatureBlock)
	ss, ok := fb.Statements[0].(*ast.SingleSubst)
	if !ok {
		t.Fatalf("got %T, want *ast.SingleSubst", fb.Statements[0])
	}
	if ss.From.Items[0].Glyph != "A" || ss.To.Items[0].Glyph != "B" {
		t.Errorf("unexpected substitution: %+v", ss)
	}
}

func TestParseMultipleSubst(t *testing.T) {
	stmts, err := Parse("feature test { sub A by B C; } test;", testOrder(t))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	fb := stmts[0].(*ast.FeatureBlock)
	ms, ok := fb.Statements[0].(*ast.MultipleSubst)
	if !ok {
		t.Fatalf("got %T, want *ast.MultipleSubst", fb.Statements[0])
	}
	if len(ms.To) != 2 || ms.To[0] != "B" || ms.To[1] != "C" {
		t.Errorf("To = %v, want [B C]", ms.To)
	}
}

func TestParseMarkClassAndMarkBasePos(t *testing.T) {
	src := `
markClass A <anchor 0 0> @TOP;
feature mark {
    pos base B <anchor 0 500> mark @TOP;
} mark;
`
	stmts, err := Parse(src, testOrder(t))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	mc, ok := stmts[0].(*ast.MarkClassEntry)
	if !ok {
		t.Fatalf("got %T, want *ast.MarkClassEntry", stmts[0])
	}
	if mc.Name != "TOP" || mc.Glyphs.Items[0].Glyph != "A" {
		t.Errorf("unexpected mark class: %+v", mc)
	}

	fb := stmts[1].(*ast.FeatureBlock)
	mb, ok := fb.Statements[0].(*ast.MarkBasePos)
	if !ok {
		t.Fatalf("got %T, want *ast.MarkBasePos", fb.Statements[0])
	}
	if len(mb.Entries) != 1 || mb.Entries[0].MarkClassName != "TOP" {
		t.Errorf("unexpected mark-base rule: %+v", mb)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse("this is not valid % fea", testOrder(t)); err == nil {
		t.Error("Parse accepted malformed source")
	}
}

func TestParseTableHeadBlock(t *testing.T) {
	stmts, err := Parse("table head { FontRevision 1.5; UnitsPerEm 2048; } head;", testOrder(t))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	th, ok := stmts[0].(*ast.TableHead)
	if !ok {
		t.Fatalf("got %T, want *ast.TableHead", stmts[0])
	}
	if th.UnitsPerEm == nil || *th.UnitsPerEm != 2048 {
		t.Fatalf("UnitsPerEm = %v, want 2048", th.UnitsPerEm)
	}
	if th.FontRevision == nil || *th.FontRevision != 1<<16|(1<<15) {
		t.Errorf("FontRevision = %v, want 0x18000 (1.5)", th.FontRevision)
	}
}
