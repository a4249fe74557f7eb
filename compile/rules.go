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
	"sort"

	"golang.org/x/exp/maps"
	"seehuhn.de/go/otfea/ast"
	"seehuhn.de/go/otfea/glyph"
	"seehuhn.de/go/otfea/opentype/anchor"
	"seehuhn.de/go/otfea/opentype/classdef"
	"seehuhn.de/go/otfea/opentype/coverage"
	"seehuhn.de/go/otfea/opentype/gtab"
	"seehuhn.de/go/otfea/opentype/markarray"
)

// compilePairPos handles a single `pos` rule with two glyph operands. A
// rule whose first operand is a single glyph selects the glyph-based
// (PairGlyphs) subtable variant, with one pair per glyph of the second
// operand; a wider first operand selects the class-based (PairClass) variant.
func (st *State) compilePairPos(ctx *blockContext, v *ast.PairPos) error {
	first, err := st.Classes.Expand(st.Order, &v.First)
	if err != nil {
		return err
	}
	second, err := st.Classes.Expand(st.Order, &v.Second)
	if err != nil {
		return err
	}

	builder := st.ensureGPOS()
	if len(first) == 1 {
		for _, right := range second {
			if err := st.compilePairGlyphs(builder, ctx, first[0], right, v); err != nil {
				return err
			}
		}
		return nil
	}
	return st.compilePairClass(builder, ctx, first, second, v)
}

func (st *State) compilePairGlyphs(builder *gtabBuilder, ctx *blockContext, left, right glyph.ID, v *ast.PairPos) error {
	idx := st.findOrInsertLookup(builder, ctx, gposTypePair, func(s gtab.Subtable) bool {
		_, ok := s.(*gtab.Gpos2_1)
		return ok
	})
	lookup := builder.lookups[idx]
	var sub *gtab.Gpos2_1
	if n := len(lookup.Subtables); n > 0 {
		sub = lookup.Subtables[n-1].(*gtab.Gpos2_1)
	} else {
		table := make(gtab.Gpos2_1)
		sub = &table
		lookup.Subtables = append(lookup.Subtables, sub)
	}
	(*sub)[glyph.Pair{Left: left, Right: right}] = &gtab.PairAdjust{
		First:  v.ValueRecord1.ToTable(),
		Second: v.ValueRecord2.ToTable(),
	}
	return nil
}

func (st *State) compilePairClass(builder *gtabBuilder, ctx *blockContext, first, second []glyph.ID, v *ast.PairPos) error {
	idx := st.findOrInsertLookup(builder, ctx, gposTypePair, func(s gtab.Subtable) bool {
		_, ok := s.(*gtab.Gpos2_2)
		return ok
	})
	lookup := builder.lookups[idx]
	var sub *gtab.Gpos2_2
	if n := len(lookup.Subtables); n > 0 {
		sub = lookup.Subtables[n-1].(*gtab.Gpos2_2)
	} else {
		sub = &gtab.Gpos2_2{}
		lookup.Subtables = append(lookup.Subtables, sub)
	}
	acc, ok := st.pairClassAccums[idx]
	if !ok {
		acc = newPairClassAccum()
		st.pairClassAccums[idx] = acc
	}

	class1 := acc.classIndex(&acc.class1, first)
	class2 := acc.classIndex(&acc.class2, second)
	acc.adjust[[2]int{class1, class2}] = &gtab.PairAdjust{
		First:  v.ValueRecord1.ToTable(),
		Second: v.ValueRecord2.ToTable(),
	}

	rebuildPairClass(sub, acc)
	return nil
}

// rebuildPairClass regenerates a Gpos2_2 subtable's Cov/Class1/Class2/Adjust
// fields from the accumulator's current set of class groups and
// per-(class1,class2) adjustments. Called after every new rule merges into
// acc, since the dense adjustment matrix's dimensions grow with the class
// count.
func rebuildPairClass(sub *gtab.Gpos2_2, acc *pairClassAccum) {
	var allFirst []glyph.ID
	class1 := make(classdef.Table)
	for i, members := range acc.class1 {
		for _, gid := range members {
			class1[gid] = uint16(i + 1)
			allFirst = append(allFirst, gid)
		}
	}
	class2 := make(classdef.Table)
	for i, members := range acc.class2 {
		for _, gid := range members {
			class2[gid] = uint16(i + 1)
		}
	}

	class1Count := len(acc.class1) + 1
	class2Count := len(acc.class2) + 1
	adjust := make([][]*gtab.PairAdjust, class1Count)
	for i := range adjust {
		row := make([]*gtab.PairAdjust, class2Count)
		for j := range row {
			row[j] = &gtab.PairAdjust{} // every cell must be non-nil, per Gpos2_2.encode
		}
		adjust[i] = row
	}
	for key, pa := range acc.adjust {
		adjust[key[0]][key[1]] = pa
	}

	sub.Cov = coverage.New(allFirst)
	sub.Class1 = class1
	sub.Class2 = class2
	sub.Adjust = adjust
}

// compileCursivePos handles a `pos cursive` rule: accumulate the entry/exit
// anchors of every glyph seen so far for this lookup, then rebuild the
// subtable in coverage order.
func (st *State) compileCursivePos(ctx *blockContext, v *ast.CursivePos) error {
	glyphs, err := st.Classes.Expand(st.Order, &v.Glyphs)
	if err != nil {
		return err
	}
	entry, err := st.resolveAnchor(v.Entry)
	if err != nil {
		return err
	}
	exit, err := st.resolveAnchor(v.Exit)
	if err != nil {
		return err
	}

	builder := st.ensureGPOS()
	idx := st.findOrInsertLookup(builder, ctx, gposTypeCursive, func(s gtab.Subtable) bool {
		_, ok := s.(*gtab.Gpos3_1)
		return ok
	})
	lookup := builder.lookups[idx]
	var sub *gtab.Gpos3_1
	if n := len(lookup.Subtables); n > 0 {
		sub = lookup.Subtables[n-1].(*gtab.Gpos3_1)
	} else {
		sub = &gtab.Gpos3_1{}
		lookup.Subtables = append(lookup.Subtables, sub)
	}

	acc, ok := st.cursiveAccums[idx]
	if !ok {
		acc = make(map[glyph.ID]gtab.EntryExitRecord)
		st.cursiveAccums[idx] = acc
	}
	for _, gid := range glyphs {
		acc[gid] = gtab.EntryExitRecord{Entry: entry, Exit: exit}
	}

	gids := maps.Keys(acc)
	sort.Slice(gids, func(i, j int) bool { return gids[i] < gids[j] })
	cov := coverage.New(gids)
	records := make([]gtab.EntryExitRecord, len(gids))
	for gid, covIdx := range cov {
		records[covIdx] = acc[gid]
	}
	sub.Cov = cov
	sub.Records = records
	return nil
}

// compileMarkBasePos handles a `pos base` rule: one or more (anchor,
// markClass) entries attaching a mark class to a set of base glyphs.
// Referencing a mark class here freezes the markClass symbol table.
func (st *State) compileMarkBasePos(ctx *blockContext, v *ast.MarkBasePos) error {
	st.MarkClassStatementsAllowed = false

	bases, err := st.Classes.Expand(st.Order, &v.Base)
	if err != nil {
		return err
	}

	builder := st.ensureGPOS()
	idx := st.findOrInsertLookup(builder, ctx, gposTypeMark, func(s gtab.Subtable) bool {
		_, ok := s.(*gtab.Gpos4_1)
		return ok
	})
	lookup := builder.lookups[idx]
	var sub *gtab.Gpos4_1
	if n := len(lookup.Subtables); n > 0 {
		sub = lookup.Subtables[n-1].(*gtab.Gpos4_1)
	} else {
		sub = &gtab.Gpos4_1{}
		lookup.Subtables = append(lookup.Subtables, sub)
	}

	acc, ok := st.markBaseAccums[idx]
	if !ok {
		acc = newMarkBaseAccum()
		st.markBaseAccums[idx] = acc
	}

	for _, entry := range v.Entries {
		marks, ok := st.MarkClasses[entry.MarkClassName]
		if !ok {
			return &UndefinedReferenceError{Kind: "mark class", Name: entry.MarkClassName}
		}
		baseAnchor, err := st.resolveAnchor(entry.Anchor)
		if err != nil {
			return err
		}
		for _, me := range marks {
			markAnchor, err := st.resolveAnchor(me.Anchor)
			if err != nil {
				return err
			}
			for _, gid := range me.Glyphs {
				acc.marks[gid] = markArrayEntry{Class: me.Class, Anchor: markAnchor}
			}
		}
		for _, baseGid := range bases {
			row, ok := acc.base[baseGid]
			if !ok {
				row = make(map[uint16]anchor.Table)
				acc.base[baseGid] = row
			}
			classIdx, ok := st.markClassID(entry.MarkClassName)
			if !ok {
				return &UndefinedReferenceError{Kind: "mark class", Name: entry.MarkClassName}
			}
			row[classIdx] = baseAnchor
		}
	}

	rebuildMarkBase(sub, acc, len(st.markClassOrder))
	return nil
}

func rebuildMarkBase(sub *gtab.Gpos4_1, acc *markBaseAccum, classCount int) {
	markGids := maps.Keys(acc.marks)
	sort.Slice(markGids, func(i, j int) bool { return markGids[i] < markGids[j] })
	markCov := coverage.New(markGids)
	markArray := make(markarray.Table, len(markGids))
	for gid, idx := range markCov {
		e := acc.marks[gid]
		markArray[idx] = markarray.Record{Class: e.Class, Anchor: e.Anchor}
	}

	baseGids := maps.Keys(acc.base)
	sort.Slice(baseGids, func(i, j int) bool { return baseGids[i] < baseGids[j] })
	baseCov := coverage.New(baseGids)
	baseArray := make([][]anchor.Table, len(baseGids))
	for gid, idx := range baseCov {
		row := make([]anchor.Table, classCount)
		for class, a := range acc.base[gid] {
			if int(class) < classCount {
				row[class] = a
			}
		}
		baseArray[idx] = row
	}

	sub.MarkCov = markCov
	sub.BaseCov = baseCov
	sub.MarkArray = markArray
	sub.BaseArray = baseArray
}

// compileSingleSubst handles a `sub ... by ...;` rule with equal-length
// glyph classes on both sides (a one-to-one replacement per position).
func (st *State) compileSingleSubst(ctx *blockContext, v *ast.SingleSubst) error {
	from, err := st.Classes.Expand(st.Order, &v.From)
	if err != nil {
		return err
	}
	to, err := st.Classes.Expand(st.Order, &v.To)
	if err != nil {
		return err
	}
	if len(to) == 1 && len(from) > 1 {
		// a many-to-one single substitution: every input glyph maps to the
		// same replacement.
		expanded := make([]glyph.ID, len(from))
		for i := range expanded {
			expanded[i] = to[0]
		}
		to = expanded
	}
	if len(from) != len(to) {
		return &RuleShapeError{Reason: "single substitution glyph count mismatch"}
	}

	builder := st.ensureGSUB()
	idx := st.findOrInsertLookup(builder, ctx, gsubTypeSingle, func(s gtab.Subtable) bool {
		_, ok := s.(*gtab.Gsub1_2)
		return ok
	})
	lookup := builder.lookups[idx]
	var sub *gtab.Gsub1_2
	if n := len(lookup.Subtables); n > 0 {
		sub = lookup.Subtables[n-1].(*gtab.Gsub1_2)
	} else {
		sub = &gtab.Gsub1_2{Cov: coverage.Table{}}
		lookup.Subtables = append(lookup.Subtables, sub)
	}

	merged := make(map[glyph.ID]glyph.ID, len(sub.Cov)+len(from))
	for gid, covIdx := range sub.Cov {
		merged[gid] = sub.SubstituteGlyphIDs[covIdx]
	}
	for i, gid := range from {
		merged[gid] = to[i]
	}

	gids := maps.Keys(merged)
	sort.Slice(gids, func(i, j int) bool { return gids[i] < gids[j] })
	cov := coverage.New(gids)
	subs := make([]glyph.ID, len(gids))
	for gid, covIdx := range cov {
		subs[covIdx] = merged[gid]
	}
	sub.Cov = cov
	sub.SubstituteGlyphIDs = subs
	return nil
}

// compileMultipleSubst handles a `sub A by B C ...;` rule: one input glyph
// replaced by a fixed sequence.
func (st *State) compileMultipleSubst(ctx *blockContext, v *ast.MultipleSubst) error {
	from, err := st.Classes.Expand(st.Order, &v.From)
	if err != nil {
		return err
	}
	if len(from) != 1 {
		return &RuleShapeError{Reason: "multiple substitution requires a single input glyph"}
	}
	seq := make([]glyph.ID, len(v.To))
	for i, name := range v.To {
		gid, err := st.Order.ByName(name)
		if err != nil {
			return err
		}
		seq[i] = gid
	}

	builder := st.ensureGSUB()
	idx := st.findOrInsertLookup(builder, ctx, gsubTypeMulti, func(s gtab.Subtable) bool {
		_, ok := s.(*gtab.Gsub2_1)
		return ok
	})
	lookup := builder.lookups[idx]
	var sub *gtab.Gsub2_1
	if n := len(lookup.Subtables); n > 0 {
		sub = lookup.Subtables[n-1].(*gtab.Gsub2_1)
	} else {
		sub = &gtab.Gsub2_1{Cov: coverage.Table{}}
		lookup.Subtables = append(lookup.Subtables, sub)
	}

	merged := make(map[glyph.ID][]glyph.ID, len(sub.Cov)+1)
	for gid, covIdx := range sub.Cov {
		merged[gid] = sub.Repl[covIdx]
	}
	merged[from[0]] = seq

	gids := maps.Keys(merged)
	sort.Slice(gids, func(i, j int) bool { return gids[i] < gids[j] })
	cov := coverage.New(gids)
	repl := make([][]glyph.ID, len(gids))
	for gid, covIdx := range cov {
		repl[covIdx] = merged[gid]
	}
	sub.Cov = cov
	sub.Repl = repl
	return nil
}

// compileAlternateSubst handles a `sub A from [B C D];` rule: a set of
// candidate replacement glyphs for a single input glyph.
func (st *State) compileAlternateSubst(ctx *blockContext, v *ast.AlternateSubst) error {
	from, err := st.Classes.Expand(st.Order, &v.From)
	if err != nil {
		return err
	}
	if len(from) != 1 {
		return &RuleShapeError{Reason: "alternate substitution requires a single input glyph"}
	}
	alternates, err := st.Classes.Expand(st.Order, &v.Alternates)
	if err != nil {
		return err
	}

	builder := st.ensureGSUB()
	idx := st.findOrInsertLookup(builder, ctx, gsubTypeAlt, func(s gtab.Subtable) bool {
		_, ok := s.(*gtab.Gsub3_1)
		return ok
	})
	lookup := builder.lookups[idx]
	var sub *gtab.Gsub3_1
	if n := len(lookup.Subtables); n > 0 {
		sub = lookup.Subtables[n-1].(*gtab.Gsub3_1)
	} else {
		sub = &gtab.Gsub3_1{Cov: coverage.Table{}}
		lookup.Subtables = append(lookup.Subtables, sub)
	}

	merged := make(map[glyph.ID][]glyph.ID, len(sub.Cov)+1)
	for gid, covIdx := range sub.Cov {
		merged[gid] = sub.Alternates[covIdx]
	}
	merged[from[0]] = alternates

	gids := maps.Keys(merged)
	sort.Slice(gids, func(i, j int) bool { return gids[i] < gids[j] })
	cov := coverage.New(gids)
	alts := make([][]glyph.ID, len(gids))
	for gid, covIdx := range cov {
		alts[covIdx] = merged[gid]
	}
	sub.Cov = cov
	sub.Alternates = alts
	return nil
}
