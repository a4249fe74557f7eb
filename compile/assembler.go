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
	"seehuhn.de/go/otfea/ast"
	"seehuhn.de/go/otfea/font"
	"seehuhn.de/go/otfea/glyph"
	"seehuhn.de/go/otfea/head"
	"seehuhn.de/go/otfea/name"
	"seehuhn.de/go/otfea/opentype/anchor"
	"seehuhn.de/go/otfea/opentype/coverage"
	"seehuhn.de/go/otfea/opentype/gdef"
	"seehuhn.de/go/otfea/opentype/gtab"
	"seehuhn.de/go/otfea/sourcemap"
	"seehuhn.de/go/otfea/tag"
	"seehuhn.de/go/postscript/funit"
)

// lookup type numbers, per the OpenType spec.
const (
	gposTypePair    = 2
	gposTypeCursive = 3
	gposTypeMark    = 4
	gsubTypeSingle  = 1
	gsubTypeMulti   = 2
	gsubTypeAlt     = 3
)

// EncodedTable is one compiled table's bytes together with the source map
// recording where, within those bytes, each ValueRecord/Anchor scalar that
// carried a feature-source span ended up. SourceMap is nil for tables
// (head, GDEF, name) that never emit ValueRecord/Anchor scalars.
type EncodedTable struct {
	Bytes     []byte
	SourceMap *sourcemap.Map
}

// Result holds the tables a compile pass produced, keyed by tag.
type Result struct {
	Tables map[tag.Tag]EncodedTable
	Head   *head.Info
}

// Compile walks top-level statements and produces the compiled tables.
// order is the caller-supplied glyph order; statements is the AST an
// external `.fea` parser has already produced.
func Compile(order *font.GlyphOrder, statements []ast.Statement) (*Result, error) {
	st := NewState(order)
	var gdefTable gdef.Table
	hasGDEF := false

	for _, s := range statements {
		switch v := s.(type) {
		case *ast.LanguageSystem:
			st.registerLanguageSystem(v.Script, v.Language)

		case *ast.GlyphClassDef:
			class := v.Class
			st.Classes.Define(v.Name, &class)

		case *ast.AnchorDef:
			st.Anchors[v.Name] = v.Anchor

		case *ast.MarkClassEntry:
			if !st.MarkClassStatementsAllowed {
				return nil, &MarkClassNotAllowedError{Name: v.Name}
			}
			if err := st.addMarkClassEntry(v); err != nil {
				return nil, err
			}

		case *ast.TableHead:
			st.applyTableHead(v)

		case *ast.TableName:
			var records name.Table
			for _, r := range v.Records {
				records = append(records, name.Record{
					PlatformID: r.PlatformID, EncodingID: r.EncodingID,
					LanguageID: r.LanguageID, NameID: r.NameID, Value: r.Value,
				})
			}
			buf, err := records.Encode()
			if err != nil {
				return nil, err
			}
			st.namedTables[tag.Make("name")] = buf

		case *ast.TableGDEF:
			built, err := st.buildGDEF(v)
			if err != nil {
				return nil, err
			}
			gdefTable = built
			hasGDEF = true

		case *ast.FeatureBlock:
			if err := st.compileFeature(v); err != nil {
				return nil, err
			}

		case *ast.LookupBlock:
			if err := st.compileNamedLookup(v); err != nil {
				return nil, err
			}
		}
	}

	tables := make(map[tag.Tag]EncodedTable)
	if st.GPOS != nil && len(st.GPOS.lookups) > 0 {
		buf, sm := st.GPOS.Info().Encode()
		tables[tag.Make("GPOS")] = EncodedTable{Bytes: buf, SourceMap: sm}
	}
	if st.GSUB != nil && len(st.GSUB.lookups) > 0 {
		buf, sm := st.GSUB.Info().Encode()
		tables[tag.Make("GSUB")] = EncodedTable{Bytes: buf, SourceMap: sm}
	}
	if hasGDEF && !gdefTable.IsEmpty() {
		tables[tag.Make("GDEF")] = EncodedTable{Bytes: gdefTable.Encode()}
	}
	if st.Head != nil {
		tables[tag.Make("head")] = EncodedTable{Bytes: st.Head.Encode()}
	}
	for t, b := range st.namedTables {
		tables[t] = EncodedTable{Bytes: b}
	}

	return &Result{Tables: tables, Head: st.Head}, nil
}

func (st *State) registerLanguageSystem(script, lang tag.Tag) {
	for _, builder := range []*gtabBuilder{st.GPOS, st.GSUB} {
		if builder == nil {
			continue
		}
		st.registerLanguageSystemOn(builder, script, lang)
	}
}

func (st *State) registerLanguageSystemOn(builder *gtabBuilder, script, lang tag.Tag) {
	sc, ok := builder.scriptList[script]
	if !ok {
		sc = &gtab.Script{LangSys: map[tag.Tag]*gtab.LangSys{}}
		if builder.scriptList == nil {
			builder.scriptList = gtab.ScriptListInfo{}
		}
		builder.scriptList[script] = sc
	}
	if lang == tag.LangDFLT {
		if sc.DefaultLangSys == nil {
			sc.DefaultLangSys = &gtab.LangSys{Required: gtab.NoRequiredFeature}
		}
	} else if _, ok := sc.LangSys[lang]; !ok {
		sc.LangSys[lang] = &gtab.LangSys{Required: gtab.NoRequiredFeature}
	}
}

func (st *State) applyTableHead(v *ast.TableHead) {
	if st.Head == nil {
		st.Head = &head.Info{}
	}
	if v.FontRevision != nil {
		st.Head.FontRevision = head.Version(*v.FontRevision)
	}
	if v.UnitsPerEm != nil {
		st.Head.UnitsPerEm = *v.UnitsPerEm
	}
	if v.LowestRecPPEM != nil {
		st.Head.LowestRecPPEM = *v.LowestRecPPEM
	}
	if v.FontDirectionHint != nil {
		st.Head.FontDirectionHint = *v.FontDirectionHint
	}
	if v.GlyphDataFormat != nil {
		st.Head.GlyphDataFormat = *v.GlyphDataFormat
	}
}

func (st *State) addMarkClassEntry(v *ast.MarkClassEntry) error {
	glyphs, err := st.Classes.Expand(st.Order, &v.Glyphs)
	if err != nil {
		return err
	}
	class, ok := st.markClassID(v.Name)
	if !ok {
		class = uint16(len(st.markClassOrder))
		st.markClassOrder = append(st.markClassOrder, v.Name)
	}
	st.MarkClasses[v.Name] = append(st.MarkClasses[v.Name], markClassEntry{
		Glyphs: glyphs, Class: class, Anchor: v.Anchor,
	})
	return nil
}

func (st *State) markClassID(name string) (uint16, bool) {
	for i, n := range st.markClassOrder {
		if n == name {
			return uint16(i), true
		}
	}
	return 0, false
}

// resolveAnchor turns a parsed ast.Anchor into its wire-layer anchor.Table,
// following a named reference and registering the x/y source spans.
func (st *State) resolveAnchor(a ast.Anchor) (anchor.Table, error) {
	if a.Name != "" {
		ref, ok := st.Anchors[a.Name]
		if !ok {
			return anchor.Table{}, &UndefinedReferenceError{Kind: "anchor", Name: a.Name}
		}
		a = ref
	}
	if a.IsNull {
		return anchor.Table{}, nil
	}
	out := anchor.Table{X: funit.Int16(a.X), Y: funit.Int16(a.Y), XSpan: a.XSpan, YSpan: a.YSpan}
	if a.HasContour {
		out.HasContour = true
		out.ContourIdx = a.ContourIdx
	}
	return out, nil
}

func (st *State) buildGDEF(v *ast.TableGDEF) (gdef.Table, error) {
	var t gdef.Table
	if len(v.GlyphClassByName) > 0 {
		sets := make(map[uint16][]glyph.ID)
		for label, names := range v.GlyphClassByName {
			class, err := gdefStandardClass(label)
			if err != nil {
				return t, err
			}
			ids, err := st.namesToGIDs(names)
			if err != nil {
				return t, err
			}
			sets[class] = append(sets[class], ids...)
		}
		t.GlyphClassDef = gdef.GlyphClassesFromSets(sets)
	}
	if len(v.MarkAttachClass) > 0 {
		classDef := make(map[glyph.ID]uint16)
		for class, names := range v.MarkAttachClass {
			ids, err := st.namesToGIDs(names)
			if err != nil {
				return t, err
			}
			for _, gid := range ids {
				classDef[gid] = class
			}
		}
		t.MarkAttachClassDef = classDef
	}
	for _, names := range v.MarkGlyphSets {
		ids, err := st.namesToGIDs(names)
		if err != nil {
			return t, err
		}
		t.MarkGlyphSets = append(t.MarkGlyphSets, coverage.New(ids))
	}
	return t, nil
}

func gdefStandardClass(label string) (uint16, error) {
	switch label {
	case "base", "Base":
		return gdef.ClassBase, nil
	case "ligature", "Ligature":
		return gdef.ClassLigature, nil
	case "mark", "Mark":
		return gdef.ClassMark, nil
	case "component", "Component":
		return gdef.ClassComponent, nil
	}
	return 0, &UndefinedReferenceError{Kind: "GDEF glyph class", Name: label}
}

func (st *State) namesToGIDs(names []string) ([]glyph.ID, error) {
	out := make([]glyph.ID, 0, len(names))
	for _, n := range names {
		gid, err := st.Order.ByName(n)
		if err != nil {
			return nil, err
		}
		out = append(out, gid)
	}
	return out, nil
}

// blockContext is the per-feature/per-lookup-block state the assembler
// carries while walking a block's statements: which key the
// find-or-insert-lookup operation uses, the current script/language, and
// the subtable-break counters accumulated so far.
type blockContext struct {
	featureTag tag.Tag
	lookupName string // set instead of featureTag for a named lookup block

	script, lang tag.Tag
	subtableSkip map[uint16]int // keyed by lookup type
}

func newFeatureContext(t tag.Tag) *blockContext {
	return &blockContext{featureTag: t, script: tag.ScriptDFLT, lang: tag.LangDFLT, subtableSkip: map[uint16]int{}}
}

func newLookupContext(name string) *blockContext {
	return &blockContext{lookupName: name, script: tag.ScriptDFLT, lang: tag.LangDFLT, subtableSkip: map[uint16]int{}}
}

func (st *State) compileFeature(fb *ast.FeatureBlock) error {
	ctx := newFeatureContext(fb.Tag)
	return st.compileBlock(ctx, fb.Statements)
}

func (st *State) compileNamedLookup(lb *ast.LookupBlock) error {
	ctx := newLookupContext(lb.Name)
	return st.compileBlock(ctx, lb.Statements)
}

func (st *State) compileBlock(ctx *blockContext, statements []ast.Statement) error {
	for _, s := range statements {
		switch v := s.(type) {
		case *ast.SubtableBreak:
			for k := range ctx.subtableSkip {
				ctx.subtableSkip[k]++
			}
		case *ast.ScriptStmt:
			ctx.script = v.Script
			ctx.lang = tag.LangDFLT
		case *ast.LanguageStmt:
			ctx.lang = v.Language
		case *ast.LookupRef:
			if err := st.appendLookupRef(ctx, v.Name); err != nil {
				return err
			}
		case *ast.PairPos:
			if err := st.compilePairPos(ctx, v); err != nil {
				return err
			}
		case *ast.CursivePos:
			if err := st.compileCursivePos(ctx, v); err != nil {
				return err
			}
		case *ast.MarkBasePos:
			if err := st.compileMarkBasePos(ctx, v); err != nil {
				return err
			}
		case *ast.SingleSubst:
			if err := st.compileSingleSubst(ctx, v); err != nil {
				return err
			}
		case *ast.MultipleSubst:
			if err := st.compileMultipleSubst(ctx, v); err != nil {
				return err
			}
		case *ast.AlternateSubst:
			if err := st.compileAlternateSubst(ctx, v); err != nil {
				return err
			}
		case *ast.LookupBlock:
			// a nested `lookup NAME { ... }` definition: compile it as a
			// standalone named lookup, then reference it from here.
			if err := st.compileNamedLookup(v); err != nil {
				return err
			}
			if err := st.appendLookupRef(ctx, v.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

// findOrInsertLookup implements the central find-or-insert-lookup
// operation of spec §4.1: scan the block's key (named lookup or feature
// tag) for an existing lookup whose first subtable has the wanted Go type,
// skipping ctx's accumulated subtable-break count for this lookup type; on
// miss, allocate a new lookup.
func (st *State) findOrInsertLookup(builder *gtabBuilder, ctx *blockContext, lookupType uint16, matchesVariant func(gtab.Subtable) bool) gtab.LookupIndex {
	var candidates []gtab.LookupIndex
	if ctx.lookupName != "" {
		candidates = builder.namedLookups[ctx.lookupName]
	} else {
		idx := builder.ensureFeature(ctx.featureTag)
		candidates = builder.featureList[idx].Lookups
	}

	var matches []gtab.LookupIndex
	for _, li := range candidates {
		lt := builder.lookups[li]
		if len(lt.Subtables) > 0 && matchesVariant(lt.Subtables[0]) {
			matches = append(matches, li)
		}
	}
	skip := ctx.subtableSkip[lookupType]
	if skip < len(matches) {
		return matches[len(matches)-1-skip]
	}

	idx := builder.newLookup(lookupType, 0)
	if ctx.lookupName != "" {
		builder.namedLookups[ctx.lookupName] = append(builder.namedLookups[ctx.lookupName], idx)
	} else {
		builder.appendLookupToFeature(ctx.featureTag, idx)
	}
	return idx
}

func (st *State) appendLookupRef(ctx *blockContext, refName string) error {
	builder, indices, ok := st.namedLookupIndices(refName)
	if !ok {
		return &UndefinedReferenceError{Kind: "named lookup", Name: refName}
	}
	if ctx.lookupName == "" {
		for _, idx := range indices {
			builder.appendLookupToFeature(ctx.featureTag, idx)
		}
	}
	return nil
}

// namedLookupIndices returns the builder and lookup indices a named lookup
// produced, searching both tables (a lookup name is unique across a feature
// file in practice, so at most one table will have an entry).
func (st *State) namedLookupIndices(name string) (*gtabBuilder, []gtab.LookupIndex, bool) {
	if st.GPOS != nil {
		if idx, ok := st.GPOS.namedLookups[name]; ok {
			return st.GPOS, idx, true
		}
	}
	if st.GSUB != nil {
		if idx, ok := st.GSUB.namedLookups[name]; ok {
			return st.GSUB, idx, true
		}
	}
	return nil, nil, false
}

func (st *State) ensureGPOS() *gtabBuilder {
	if st.GPOS == nil {
		st.GPOS = newGtabBuilder()
	}
	return st.GPOS
}

func (st *State) ensureGSUB() *gtabBuilder {
	if st.GSUB == nil {
		st.GSUB = newGtabBuilder()
	}
	return st.GSUB
}
