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

package compile

import (
	"testing"

	"seehuhn.de/go/otfea/ast"
	"seehuhn.de/go/otfea/font"
	"seehuhn.de/go/otfea/internal/debug"
	"seehuhn.de/go/otfea/tag"
)

func TestCompileSingleSubstProducesGSUB(t *testing.T) {
	order := debug.SimpleGlyphOrder()
	statements := []ast.Statement{
		&ast.FeatureBlock{
			Tag: tag.Make("smcp"),
			Statements: []ast.Statement{
				&ast.SingleSubst{
					From: font.GlyphClass{Items: []font.ClassItem{{Glyph: "A"}}},
					To:   font.GlyphClass{Items: []font.ClassItem{{Glyph: "B"}}},
				},
			},
		},
	}

	result, err := Compile(order, statements)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	data, ok := result.Tables[tag.Make("GSUB")]
	if !ok {
		t.Fatal("Compile produced no GSUB table")
	}
	if len(data.Bytes) == 0 {
		t.Error("GSUB table is empty")
	}
	if _, ok := result.Tables[tag.Make("GPOS")]; ok {
		t.Error("Compile produced a GPOS table for a GSUB-only source")
	}
}

// TestCompilePairPosProducesGPOS's exact-byte and source-map coverage now
// lives in scenarios_test.go (TestCompilePairPosGoldenBytesAndSourceMapPatch
// and friends); this file keeps the compile-surface smoke tests.

func TestCompileRejectsMultipleSubstWithManyInputs(t *testing.T) {
	order := debug.SimpleGlyphOrder()
	statements := []ast.Statement{
		&ast.FeatureBlock{
			Tag: tag.Make("test"),
			Statements: []ast.Statement{
				&ast.MultipleSubst{
					From: font.GlyphClass{Items: []font.ClassItem{{Glyph: "A"}, {Glyph: "B"}}},
					To:   []string{"C", "D"},
				},
			},
		},
	}
	if _, err := Compile(order, statements); err == nil {
		t.Fatal("Compile accepted a multiple-substitution rule with more than one input glyph")
	} else if _, ok := err.(*RuleShapeError); !ok {
		t.Errorf("got error type %T, want *RuleShapeError", err)
	}
}

func TestCompileUndefinedGlyphClassReference(t *testing.T) {
	order := debug.SimpleGlyphOrder()
	statements := []ast.Statement{
		&ast.FeatureBlock{
			Tag: tag.Make("test"),
			Statements: []ast.Statement{
				&ast.SingleSubst{
					From: font.GlyphClass{Items: []font.ClassItem{{ClassName: "MISSING"}}},
					To:   font.GlyphClass{Items: []font.ClassItem{{Glyph: "B"}}},
				},
			},
		},
	}
	if _, err := Compile(order, statements); err == nil {
		t.Fatal("Compile accepted a reference to an undefined glyph class")
	}
}
