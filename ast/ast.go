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

// Package ast defines the top-level statement surface the feature compiler
// consumes: the shape a `.fea` parser (an external collaborator, out of
// scope here) is expected to hand the assembler in
// seehuhn.de/go/otfea/compile.
package ast

import (
	"seehuhn.de/go/otfea/font"
	"seehuhn.de/go/otfea/opentype/valuerecord"
	"seehuhn.de/go/otfea/sourcemap"
	"seehuhn.de/go/otfea/tag"
	"seehuhn.de/go/postscript/funit"
)

// Statement is any top-level construct accepted inside a feature file, or
// inside a feature/lookup block.
type Statement interface {
	isStatement()
}

// Span is the source location of a statement or value, used to thread
// source-map registrations through the assembler. The zero Span records
// nothing (see sourcemap.Map.Record).
type Span = sourcemap.Span

// LanguageSystem declares a script/language pair the font supports
// (`languagesystem latn dflt;`).
type LanguageSystem struct {
	Script, Language tag.Tag
}

func (*LanguageSystem) isStatement() {}

// AnchorDef binds a name to an anchor for later `<anchor NAME>` references
// (`anchorDef 0 500 TOP;`).
type AnchorDef struct {
	Name   string
	Anchor Anchor
}

func (*AnchorDef) isStatement() {}

// Anchor is a parsed `<anchor ...>` value: bare (x,y), contour-indexed,
// device-adjusted, a named reference, or null.
type Anchor struct {
	IsNull bool
	Name   string // set when this anchor is a `<anchor NAME>` reference

	X, Y       int16
	XSpan, YSpan Span

	HasContour bool
	ContourIdx uint16

	XDevice, YDevice map[uint16]int8 // ppem -> adjustment, when device-adjusted
}

// MarkClassEntry is one `markClass [glyphs] <anchor ...> @NAME;` statement.
// A mark class accumulates entries across multiple such statements.
type MarkClassEntry struct {
	Name   string
	Glyphs font.GlyphClass
	Anchor Anchor
}

func (*MarkClassEntry) isStatement() {}

// GlyphClassDef is a named glyph-class definition (`@NAME = [...];`).
type GlyphClassDef struct {
	Name  string
	Class font.GlyphClass
}

func (*GlyphClassDef) isStatement() {}

// TableHead is a `table head { ... }` block: field assignments that
// overwrite the compiler's head.Info.
type TableHead struct {
	FontRevision      *uint32
	UnitsPerEm        *uint16
	LowestRecPPEM     *uint16
	FontDirectionHint *int16
	GlyphDataFormat   *int16
}

func (*TableHead) isStatement() {}

// TableName is a `table name { nameid ...; }` block: one or more raw name
// records, emitted immediately when the block closes.
type TableName struct {
	Records []NameRecord
}

func (*TableName) isStatement() {}

// NameRecord is one `nameid` statement inside a `table name` block.
type NameRecord struct {
	PlatformID, EncodingID, LanguageID, NameID uint16
	Value                                      string
}

// TableGDEF is a `table GDEF { ... }` block.
type TableGDEF struct {
	GlyphClassByName  map[string][]string // class label -> glyph names, for GlyphClassDef
	MarkAttachClass   map[uint16][]string // class id -> glyph names
	MarkGlyphSets     [][]string          // one glyph-name list per mark glyph set
}

func (*TableGDEF) isStatement() {}

// FeatureBlock is a `feature <tag> { ... }` block.
type FeatureBlock struct {
	Tag        tag.Tag
	Statements []Statement
}

func (*FeatureBlock) isStatement() {}

// LookupBlock is a standalone `lookup <name> { ... }` definition, or a
// block nested inside a feature.
type LookupBlock struct {
	Name       string
	Statements []Statement
}

func (*LookupBlock) isStatement() {}

// LookupRef is a `lookup <name>;` reference inside a feature block: append
// the referenced lookup's indices to the enclosing feature.
type LookupRef struct {
	Name string
}

func (*LookupRef) isStatement() {}

// SubtableBreak is a `subtable;` statement. The compiler accepts it but
// does not act on it: rules that follow it join the same subtable as the
// rules before it.
type SubtableBreak struct{}

func (*SubtableBreak) isStatement() {}

// ScriptStmt is a `script <tag>;` statement inside a feature block,
// switching the current script for subsequent rules.
type ScriptStmt struct {
	Script tag.Tag
}

func (*ScriptStmt) isStatement() {}

// LanguageStmt is a `language <tag>;` statement inside a feature block.
type LanguageStmt struct {
	Language tag.Tag
}

func (*LanguageStmt) isStatement() {}

// PairPos is a `pos A B <vr1> <vr2>;` or `pos @A @B <vr1> <vr2>;` rule.
// First/Second are glyph classes; a single-glyph class on First selects
// the glyph-based (PairGlyphs) subtable, anything else the class-based
// (PairClass) subtable.
type PairPos struct {
	First, Second   font.GlyphClass
	ValueRecord1    ValueRecord
	ValueRecord2    ValueRecord
}

func (*PairPos) isStatement() {}

// ValueRecord is a parsed ValueRecord together with the optional source
// spans of its scalar fields, for source-map registration.
type ValueRecord struct {
	XPlacement, YPlacement, XAdvance, YAdvance int16
	XPlacementSpan, YPlacementSpan, XAdvanceSpan, YAdvanceSpan Span
}

// ToTable converts a parsed ValueRecord into the wire-layer
// valuerecord.Table the gtab encoders operate on.
func (vr ValueRecord) ToTable() *valuerecord.Table {
	return &valuerecord.Table{
		XPlacement: funit.Int16(vr.XPlacement),
		YPlacement: funit.Int16(vr.YPlacement),
		XAdvance:   funit.Int16(vr.XAdvance),
		YAdvance:   funit.Int16(vr.YAdvance),

		XPlacementSpan: vr.XPlacementSpan,
		YPlacementSpan: vr.YPlacementSpan,
		XAdvanceSpan:   vr.XAdvanceSpan,
		YAdvanceSpan:   vr.YAdvanceSpan,
	}
}

// CursivePos is a `pos cursive g <entry> <exit>;` rule.
type CursivePos struct {
	Glyphs      font.GlyphClass
	Entry, Exit Anchor
}

func (*CursivePos) isStatement() {}

// MarkBasePos is a `pos base <baseClass> <anchor> mark @MARK;` rule. A
// single statement may carry several (anchor, markClass) pairs when the
// source writes `pos base [...] <a1> mark @M1 <a2> mark @M2;`.
type MarkBasePos struct {
	Base    font.GlyphClass
	Entries []MarkBaseEntry
}

func (*MarkBasePos) isStatement() {}

// MarkBaseEntry pairs a base anchor with the mark class it attaches.
type MarkBaseEntry struct {
	Anchor        Anchor
	MarkClassName string
}

// SingleSubst is a `sub A by B;` or `sub [A B] by [C D];` rule.
type SingleSubst struct {
	From, To font.GlyphClass
}

func (*SingleSubst) isStatement() {}

// MultipleSubst is a `sub A by B C;` rule: one glyph replaced by a fixed
// sequence.
type MultipleSubst struct {
	From font.GlyphClass
	To   []string
}

func (*MultipleSubst) isStatement() {}

// AlternateSubst is a `sub A from [B C D];` rule.
type AlternateSubst struct {
	From       font.GlyphClass
	Alternates font.GlyphClass
}

func (*AlternateSubst) isStatement() {}
