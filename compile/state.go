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

// Package compile implements the feature assembler: it walks the parsed
// AST and a caller-supplied glyph order, and produces the compiled GPOS,
// GSUB, GDEF, head, and name tables plus their source maps.
package compile

import (
	"sort"

	"seehuhn.de/go/otfea/ast"
	"seehuhn.de/go/otfea/font"
	"seehuhn.de/go/otfea/glyph"
	"seehuhn.de/go/otfea/head"
	"seehuhn.de/go/otfea/opentype/anchor"
	"seehuhn.de/go/otfea/opentype/gtab"
	"seehuhn.de/go/otfea/tag"
)

// State aggregates everything the assembler accumulates while walking a
// feature file: the glyph order, the tables under construction, and the
// symbol tables rules refer to by name.
type State struct {
	Order   *font.GlyphOrder
	Classes *font.ClassTable

	Head *head.Info

	GPOS *gtabBuilder
	GSUB *gtabBuilder

	// MarkClasses maps a mark-class name to the (glyph, anchor) entries
	// accumulated for it so far; append-only, per spec §9.
	MarkClasses map[string][]markClassEntry

	// Anchors is the named-anchor symbol table (`anchorDef` statements).
	Anchors map[string]ast.Anchor

	// MarkClassStatementsAllowed flips to false after the first GPOS
	// positioning rule references a mark class.
	MarkClassStatementsAllowed bool

	// namedTables collects tables emitted immediately while walking the
	// AST (currently just `table name`), keyed by tag.
	namedTables map[tag.Tag][]byte

	// markClassOrder assigns each mark-class name a stable class id, the
	// order the name was first seen in a `markClass` statement.
	markClassOrder []string

	// pairClass, cursive, and markBase hold the per-lookup accumulator
	// state the rule handlers merge successive rules into, since a
	// lookup's final subtable is only known once every rule targeting it
	// has been seen.
	pairClassAccums map[gtab.LookupIndex]*pairClassAccum
	cursiveAccums   map[gtab.LookupIndex]map[glyph.ID]gtab.EntryExitRecord
	markBaseAccums  map[gtab.LookupIndex]*markBaseAccum
}

type markClassEntry struct {
	Glyphs []glyph.ID
	Class  uint16
	Anchor ast.Anchor
}

// NewState creates an empty compiler state for the given glyph order.
func NewState(order *font.GlyphOrder) *State {
	return &State{
		Order:                      order,
		Classes:                    font.NewClassTable(),
		MarkClasses:                make(map[string][]markClassEntry),
		Anchors:                    make(map[string]ast.Anchor),
		MarkClassStatementsAllowed: true,
		namedTables:                make(map[tag.Tag][]byte),
		pairClassAccums:            make(map[gtab.LookupIndex]*pairClassAccum),
		cursiveAccums:              make(map[gtab.LookupIndex]map[glyph.ID]gtab.EntryExitRecord),
		markBaseAccums:             make(map[gtab.LookupIndex]*markBaseAccum),
	}
}

// pairClassAccum tracks the class groups a class-based PairPos lookup has
// seen so far, so repeated `pos @A @B ...;` rules against the same lookup
// reuse a previously-assigned class index instead of renumbering.
type pairClassAccum struct {
	class1, class2 [][]glyph.ID
	adjust         map[[2]int]*gtab.PairAdjust
}

func newPairClassAccum() *pairClassAccum {
	return &pairClassAccum{adjust: make(map[[2]int]*gtab.PairAdjust)}
}

// classIndex returns the 1-based class index for members, reusing an
// existing group with the same glyph set (by identical sorted content) or
// appending a new one. Class 0 is the implicit "everything else" class and
// is never assigned explicitly.
func (a *pairClassAccum) classIndex(groups *[][]glyph.ID, members []glyph.ID) int {
	sorted := append([]glyph.ID(nil), members...)
	sortGlyphIDs(sorted)
	for i, g := range *groups {
		if glyphIDsEqual(g, sorted) {
			return i + 1
		}
	}
	*groups = append(*groups, sorted)
	return len(*groups)
}

// markBaseAccum tracks the mark and base anchors a mark-to-base lookup has
// accumulated across successive `pos base ...;` rules.
type markBaseAccum struct {
	marks map[glyph.ID]markArrayEntry
	base  map[glyph.ID]map[uint16]anchor.Table
}

type markArrayEntry struct {
	Class  uint16
	Anchor anchor.Table
}

func newMarkBaseAccum() *markBaseAccum {
	return &markBaseAccum{
		marks: make(map[glyph.ID]markArrayEntry),
		base:  make(map[glyph.ID]map[uint16]anchor.Table),
	}
}

func sortGlyphIDs(gg []glyph.ID) {
	sort.Slice(gg, func(i, j int) bool { return gg[i] < gg[j] })
}

func glyphIDsEqual(a, b []glyph.ID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// gtabBuilder accumulates a GPOS or GSUB table under construction: the
// final gtab.Info plus the bookkeeping the find-or-insert-lookup operation
// needs (named-lookup and feature-tag indices into the lookup list).
type gtabBuilder struct {
	scriptList  gtab.ScriptListInfo
	featureList gtab.FeatureListInfo
	lookups     gtab.LookupList

	// featureIndex maps a feature tag to its index in featureList, so
	// repeated `feature kern { ... }` blocks for the same tag append to
	// one FeatureRecord.
	featureIndex map[tag.Tag]gtab.FeatureIndex

	// namedLookups maps a `lookup NAME { ... }` name to the lookup
	// index(es) it produced, for `lookup NAME;` references.
	namedLookups map[string][]gtab.LookupIndex
}

func newGtabBuilder() *gtabBuilder {
	return &gtabBuilder{
		scriptList:   gtab.ScriptListInfo{},
		featureIndex: make(map[tag.Tag]gtab.FeatureIndex),
		namedLookups: make(map[string][]gtab.LookupIndex),
	}
}

// Info returns the finished gtab.Info for this table.
func (b *gtabBuilder) Info() *gtab.Info {
	return &gtab.Info{
		ScriptList:  b.scriptList,
		FeatureList: b.featureList,
		LookupList:  b.lookups,
	}
}

// ensureDefaultLangSys makes sure the DFLT script has a DefaultLangSys and
// returns it, creating the script entry if necessary.
func (b *gtabBuilder) ensureDefaultLangSys() *gtab.LangSys {
	script, ok := b.scriptList[tag.ScriptDFLT]
	if !ok {
		script = &gtab.Script{LangSys: map[tag.Tag]*gtab.LangSys{}}
		if b.scriptList == nil {
			b.scriptList = gtab.ScriptListInfo{}
		}
		b.scriptList[tag.ScriptDFLT] = script
	}
	if script.DefaultLangSys == nil {
		script.DefaultLangSys = &gtab.LangSys{Required: gtab.NoRequiredFeature}
	}
	return script.DefaultLangSys
}

// ensureFeature returns the FeatureIndex for t, creating an empty
// FeatureRecord the first time t is seen, and registers t on the DFLT
// script's default LangSys (per spec §4.1: "the block also inserts the
// feature tag into the DFLT script's default-langsys feature set").
func (b *gtabBuilder) ensureFeature(t tag.Tag) gtab.FeatureIndex {
	if idx, ok := b.featureIndex[t]; ok {
		return idx
	}
	idx := gtab.FeatureIndex(len(b.featureList))
	b.featureList = append(b.featureList, gtab.FeatureRecord{Tag: t})
	b.featureIndex[t] = idx

	ls := b.ensureDefaultLangSys()
	ls.Optional = append(ls.Optional, idx)
	return idx
}

// appendLookupToFeature records that lookupIdx implements feature t.
func (b *gtabBuilder) appendLookupToFeature(t tag.Tag, lookupIdx gtab.LookupIndex) {
	idx := b.ensureFeature(t)
	rec := &b.featureList[idx]
	for _, existing := range rec.Lookups {
		if existing == lookupIdx {
			return
		}
	}
	rec.Lookups = append(rec.Lookups, lookupIdx)
}

// newLookup appends a fresh lookup of the given type/flags and returns its
// index.
func (b *gtabBuilder) newLookup(lookupType uint16, flags gtab.LookupFlags) gtab.LookupIndex {
	idx := gtab.LookupIndex(len(b.lookups))
	b.lookups = append(b.lookups, &gtab.LookupTable{
		Meta: &gtab.LookupMetaInfo{LookupType: lookupType, LookupFlags: flags},
	})
	return idx
}
