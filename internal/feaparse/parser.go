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
	"strconv"
	"strings"

	"seehuhn.de/go/otfea/ast"
	"seehuhn.de/go/otfea/font"
	"seehuhn.de/go/otfea/glyph"
	"seehuhn.de/go/otfea/tag"
)

// Parse reads the feature-file source in src and returns the ordered
// top-level statements it describes, resolving glyph-name ranges (`A-Z`)
// against order as they are parsed.
func Parse(src string, order *font.GlyphOrder) ([]ast.Statement, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, order: order, classNames: map[string][]string{}}

	var stmts []ast.Statement
	for p.peek().kind != tokEOF {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if s != nil {
			stmts = append(stmts, s)
		}
	}
	return stmts, nil
}

type parser struct {
	toks  []token
	pos   int
	order *font.GlyphOrder

	// classNames is a best-effort flattened (name -> glyph names) table,
	// populated eagerly as `@NAME = [...]` definitions are parsed. It only
	// serves the optional `table GDEF { GlyphClassDef @NAME, ...; }`
	// convenience form below; the compiler's own font.ClassTable handles
	// deferred/forward-referencing resolution.
	classNames map[string][]string
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) expectPunct(s string) error {
	t := p.peek()
	if t.kind != tokPunct || t.text != s {
		return &SyntaxError{Line: t.line, Reason: "expected " + s}
	}
	p.advance()
	return nil
}

func (p *parser) expectIdent() (string, error) {
	t := p.peek()
	if t.kind != tokIdent {
		return "", &SyntaxError{Line: t.line, Reason: "expected identifier"}
	}
	p.advance()
	return t.text, nil
}

func (p *parser) expectKeyword(kw string) error {
	t := p.peek()
	if t.kind != tokIdent || t.text != kw {
		return &SyntaxError{Line: t.line, Reason: "expected " + kw}
	}
	p.advance()
	return nil
}

func (p *parser) expectNumber() (int64, error) {
	t := p.peek()
	if t.kind != tokNumber {
		return 0, &SyntaxError{Line: t.line, Reason: "expected number"}
	}
	p.advance()
	return t.num, nil
}

func (p *parser) expectString() (string, error) {
	t := p.peek()
	if t.kind != tokString {
		return "", &SyntaxError{Line: t.line, Reason: "expected string"}
	}
	p.advance()
	return t.text, nil
}

func (p *parser) expectTag() (tag.Tag, error) {
	name, err := p.expectIdent()
	if err != nil {
		return tag.Tag{}, err
	}
	return tag.Parse(name)
}

// parseStatement parses one statement, in whatever context (top-level,
// feature block, lookup block) it appears; the assembler validates which
// constructs are actually legal where. A nil, nil result means the
// statement was recognised but intentionally produces nothing (an unknown
// nested table block, consumed and discarded).
func (p *parser) parseStatement() (ast.Statement, error) {
	t := p.peek()
	if t.kind == tokPunct && t.text == "@" {
		return p.parseClassDef()
	}
	if t.kind != tokIdent {
		return nil, &SyntaxError{Line: t.line, Reason: "expected statement"}
	}

	switch t.text {
	case "languagesystem":
		return p.parseLanguageSystem()
	case "anchorDef":
		return p.parseAnchorDef()
	case "markClass":
		return p.parseMarkClassStmt()
	case "table":
		return p.parseTable()
	case "feature":
		return p.parseFeature()
	case "lookup":
		return p.parseLookupTopLevel()
	case "subtable":
		p.advance()
		if err := p.expectPunct(";"); err != nil {
			return nil, err
		}
		return &ast.SubtableBreak{}, nil
	case "script":
		p.advance()
		tg, err := p.expectTag()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(";"); err != nil {
			return nil, err
		}
		return &ast.ScriptStmt{Script: tg}, nil
	case "language":
		p.advance()
		tg, err := p.expectTag()
		if err != nil {
			return nil, err
		}
		if n := p.peek(); n.kind == tokIdent && (n.text == "exclude_dflt" || n.text == "include_dflt") {
			p.advance()
		}
		if err := p.expectPunct(";"); err != nil {
			return nil, err
		}
		return &ast.LanguageStmt{Language: tg}, nil
	case "pos", "position":
		p.advance()
		return p.parsePos()
	case "sub", "substitute":
		p.advance()
		return p.parseSub()
	default:
		return nil, &SyntaxError{Line: t.line, Reason: "unknown statement keyword " + t.text}
	}
}

func (p *parser) parseStatementsUntilCloseBrace() ([]ast.Statement, error) {
	var stmts []ast.Statement
	for {
		t := p.peek()
		if t.kind == tokPunct && t.text == "}" {
			return stmts, nil
		}
		if t.kind == tokEOF {
			return nil, &SyntaxError{Line: t.line, Reason: "unexpected end of file"}
		}
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if s != nil {
			stmts = append(stmts, s)
		}
	}
}

func (p *parser) parseLanguageSystem() (ast.Statement, error) {
	p.advance() // "languagesystem"
	script, err := p.expectTag()
	if err != nil {
		return nil, err
	}
	lang, err := p.expectTag()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return &ast.LanguageSystem{Script: script, Language: lang}, nil
}

func (p *parser) parseAnchorDef() (ast.Statement, error) {
	p.advance() // "anchorDef"
	x, err := p.expectNumber()
	if err != nil {
		return nil, err
	}
	y, err := p.expectNumber()
	if err != nil {
		return nil, err
	}
	a := ast.Anchor{X: int16(x), Y: int16(y)}
	if t := p.peek(); t.kind == tokIdent && t.text == "contour" {
		p.advance()
		n, err := p.expectNumber()
		if err != nil {
			return nil, err
		}
		a.HasContour = true
		a.ContourIdx = uint16(n)
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return &ast.AnchorDef{Name: name, Anchor: a}, nil
}

func (p *parser) parseAnchor() (ast.Anchor, error) {
	if err := p.expectPunct("<"); err != nil {
		return ast.Anchor{}, err
	}
	if err := p.expectKeyword("anchor"); err != nil {
		return ast.Anchor{}, err
	}
	if t := p.peek(); t.kind == tokIdent {
		if t.text == "NULL" {
			p.advance()
			if err := p.expectPunct(">"); err != nil {
				return ast.Anchor{}, err
			}
			return ast.Anchor{IsNull: true}, nil
		}
		name, _ := p.expectIdent()
		if err := p.expectPunct(">"); err != nil {
			return ast.Anchor{}, err
		}
		return ast.Anchor{Name: name}, nil
	}
	x, err := p.expectNumber()
	if err != nil {
		return ast.Anchor{}, err
	}
	y, err := p.expectNumber()
	if err != nil {
		return ast.Anchor{}, err
	}
	a := ast.Anchor{X: int16(x), Y: int16(y)}
	if t := p.peek(); t.kind == tokIdent && t.text == "contour" {
		p.advance()
		n, err := p.expectNumber()
		if err != nil {
			return ast.Anchor{}, err
		}
		a.HasContour = true
		a.ContourIdx = uint16(n)
	}
	if err := p.expectPunct(">"); err != nil {
		return ast.Anchor{}, err
	}
	return a, nil
}

func (p *parser) parseMarkClassStmt() (ast.Statement, error) {
	p.advance() // "markClass"
	glyphs, err := p.parseGlyphClassValue()
	if err != nil {
		return nil, err
	}
	anchor, err := p.parseAnchor()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("@"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return &ast.MarkClassEntry{Name: name, Glyphs: glyphs, Anchor: anchor}, nil
}

func (p *parser) parseClassDef() (ast.Statement, error) {
	if err := p.expectPunct("@"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("="); err != nil {
		return nil, err
	}
	class, err := p.parseGlyphClassValue()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	p.classNames[name] = p.flattenClass(class)
	return &ast.GlyphClassDef{Name: name, Class: class}, nil
}

// flattenClass best-effort expands class to a flat glyph-name list, for
// the GDEF `@NAME` convenience form only; undefined or forward-referenced
// nested classes are silently skipped (the compiler's own resolution path
// is authoritative and will raise a proper error on those).
func (p *parser) flattenClass(c font.GlyphClass) []string {
	var names []string
	for _, item := range c.Items {
		switch {
		case item.ClassName != "":
			names = append(names, p.classNames[item.ClassName]...)
		case item.IsRange:
			for gid := item.Range.First; gid <= item.Range.Last; gid++ {
				if n := p.order.GlyphName(gid); n != "" {
					names = append(names, n)
				}
				if gid == ^glyph.ID(0) {
					break
				}
			}
		case item.Glyph != "":
			names = append(names, item.Glyph)
		}
	}
	return names
}

func (p *parser) parseGlyphClassValue() (font.GlyphClass, error) {
	if t := p.peek(); t.kind == tokPunct && t.text == "[" {
		p.advance()
		var items []font.ClassItem
		for {
			t := p.peek()
			if t.kind == tokPunct && t.text == "]" {
				p.advance()
				break
			}
			item, err := p.parseClassItem()
			if err != nil {
				return font.GlyphClass{}, err
			}
			items = append(items, item)
		}
		return font.GlyphClass{Items: items}, nil
	}
	item, err := p.parseClassItem()
	if err != nil {
		return font.GlyphClass{}, err
	}
	return font.GlyphClass{Items: []font.ClassItem{item}}, nil
}

func (p *parser) parseClassItem() (font.ClassItem, error) {
	t := p.peek()
	if t.kind == tokPunct && t.text == "@" {
		p.advance()
		name, err := p.expectIdent()
		if err != nil {
			return font.ClassItem{}, err
		}
		return font.ClassItem{ClassName: name}, nil
	}
	if t.kind != tokIdent {
		return font.ClassItem{}, &SyntaxError{Line: t.line, Reason: "expected glyph name"}
	}
	name := t.text
	p.advance()
	if n := p.peek(); n.kind == tokPunct && n.text == "-" {
		p.advance()
		endName, err := p.expectIdent()
		if err != nil {
			return font.ClassItem{}, err
		}
		start, err := p.order.ByName(name)
		if err != nil {
			return font.ClassItem{}, err
		}
		end, err := p.order.ByName(endName)
		if err != nil {
			return font.ClassItem{}, err
		}
		return font.ClassItem{IsRange: true, Range: glyph.Range{First: start, Last: end}}, nil
	}
	return font.ClassItem{Glyph: name}, nil
}

func (p *parser) parseValueRecord() (ast.ValueRecord, error) {
	t := p.peek()
	if t.kind == tokNumber {
		p.advance()
		return ast.ValueRecord{XAdvance: int16(t.num)}, nil
	}
	if t.kind == tokPunct && t.text == "<" {
		p.advance()
		x, err := p.expectNumber()
		if err != nil {
			return ast.ValueRecord{}, err
		}
		y, err := p.expectNumber()
		if err != nil {
			return ast.ValueRecord{}, err
		}
		xa, err := p.expectNumber()
		if err != nil {
			return ast.ValueRecord{}, err
		}
		ya, err := p.expectNumber()
		if err != nil {
			return ast.ValueRecord{}, err
		}
		if err := p.expectPunct(">"); err != nil {
			return ast.ValueRecord{}, err
		}
		return ast.ValueRecord{
			XPlacement: int16(x), YPlacement: int16(y),
			XAdvance: int16(xa), YAdvance: int16(ya),
		}, nil
	}
	return ast.ValueRecord{}, &SyntaxError{Line: t.line, Reason: "expected value record"}
}

func (p *parser) startsValueRecord() bool {
	t := p.peek()
	return t.kind == tokNumber || (t.kind == tokPunct && t.text == "<")
}

func (p *parser) parsePos() (ast.Statement, error) {
	if t := p.peek(); t.kind == tokIdent && t.text == "cursive" {
		p.advance()
		return p.parseCursivePos()
	}
	if t := p.peek(); t.kind == tokIdent && t.text == "base" {
		p.advance()
		return p.parseMarkBasePos()
	}

	first, err := p.parseGlyphClassValue()
	if err != nil {
		return nil, err
	}
	second, err := p.parseGlyphClassValue()
	if err != nil {
		return nil, err
	}
	vr1, err := p.parseValueRecord()
	if err != nil {
		return nil, err
	}
	var vr2 ast.ValueRecord
	if p.startsValueRecord() {
		vr2, err = p.parseValueRecord()
		if err != nil {
			return nil, err
		}
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return &ast.PairPos{First: first, Second: second, ValueRecord1: vr1, ValueRecord2: vr2}, nil
}

func (p *parser) parseCursivePos() (ast.Statement, error) {
	glyphs, err := p.parseGlyphClassValue()
	if err != nil {
		return nil, err
	}
	entry, err := p.parseAnchor()
	if err != nil {
		return nil, err
	}
	exit, err := p.parseAnchor()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return &ast.CursivePos{Glyphs: glyphs, Entry: entry, Exit: exit}, nil
}

func (p *parser) parseMarkBasePos() (ast.Statement, error) {
	base, err := p.parseGlyphClassValue()
	if err != nil {
		return nil, err
	}
	var entries []ast.MarkBaseEntry
	for {
		anchor, err := p.parseAnchor()
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("mark"); err != nil {
			return nil, err
		}
		if err := p.expectPunct("@"); err != nil {
			return nil, err
		}
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		entries = append(entries, ast.MarkBaseEntry{Anchor: anchor, MarkClassName: name})
		if t := p.peek(); t.kind == tokPunct && t.text == ";" {
			break
		}
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return &ast.MarkBasePos{Base: base, Entries: entries}, nil
}

func (p *parser) parseSub() (ast.Statement, error) {
	from, err := p.parseGlyphClassValue()
	if err != nil {
		return nil, err
	}
	kw := p.peek()
	switch {
	case kw.kind == tokIdent && kw.text == "by":
		p.advance()
		if t := p.peek(); t.kind == tokPunct && t.text == "[" {
			to, err := p.parseGlyphClassValue()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct(";"); err != nil {
				return nil, err
			}
			return &ast.SingleSubst{From: from, To: to}, nil
		}
		var names []string
		for p.peek().kind == tokIdent {
			t := p.advance()
			names = append(names, t.text)
		}
		if err := p.expectPunct(";"); err != nil {
			return nil, err
		}
		if len(names) == 1 {
			return &ast.SingleSubst{From: from, To: font.GlyphClass{Items: []font.ClassItem{{Glyph: names[0]}}}}, nil
		}
		return &ast.MultipleSubst{From: from, To: names}, nil
	case kw.kind == tokIdent && kw.text == "from":
		p.advance()
		alts, err := p.parseGlyphClassValue()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(";"); err != nil {
			return nil, err
		}
		return &ast.AlternateSubst{From: from, Alternates: alts}, nil
	default:
		return nil, &SyntaxError{Line: kw.line, Reason: "expected 'by' or 'from'"}
	}
}

func (p *parser) parseFeature() (ast.Statement, error) {
	p.advance() // "feature"
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	tg, err := tag.Parse(name)
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	stmts, err := p.parseStatementsUntilCloseBrace()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	closeName, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if closeName != name {
		return nil, &SyntaxError{Reason: "feature block closed with mismatched tag " + closeName}
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return &ast.FeatureBlock{Tag: tg, Statements: stmts}, nil
}

func (p *parser) parseLookupTopLevel() (ast.Statement, error) {
	p.advance() // "lookup"
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind == tokPunct && t.text == "{" {
		p.advance()
		stmts, err := p.parseStatementsUntilCloseBrace()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct("}"); err != nil {
			return nil, err
		}
		closeName, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if closeName != name {
			return nil, &SyntaxError{Reason: "lookup block closed with mismatched name " + closeName}
		}
		if err := p.expectPunct(";"); err != nil {
			return nil, err
		}
		return &ast.LookupBlock{Name: name, Statements: stmts}, nil
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return &ast.LookupRef{Name: name}, nil
}

func (p *parser) parseTable() (ast.Statement, error) {
	p.advance() // "table"
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	switch name {
	case "head":
		return p.parseTableHead()
	case "name":
		return p.parseTableName()
	case "GDEF":
		return p.parseTableGDEF()
	default:
		return nil, p.skipUnknownTable(name)
	}
}

// skipUnknownTable discards the body of a `table TAG { ... } TAG;` block
// this parser does not model (e.g. OS/2, hhea): every other named table
// spec.md lists as a Non-goal.
func (p *parser) skipUnknownTable(name string) error {
	if err := p.expectPunct("{"); err != nil {
		return err
	}
	depth := 1
	for depth > 0 {
		t := p.advance()
		if t.kind == tokEOF {
			return &SyntaxError{Line: t.line, Reason: "unterminated table " + name}
		}
		if t.kind == tokPunct && t.text == "{" {
			depth++
		}
		if t.kind == tokPunct && t.text == "}" {
			depth--
		}
	}
	if _, err := p.expectIdent(); err != nil {
		return err
	}
	return p.expectPunct(";")
}

func (p *parser) parseTableHead() (ast.Statement, error) {
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	v := &ast.TableHead{}
	for {
		t := p.peek()
		if t.kind == tokPunct && t.text == "}" {
			break
		}
		field, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		switch field {
		case "FontRevision":
			num := p.advance()
			rev, err := parseFixed1616(num.text)
			if err != nil {
				return nil, err
			}
			v.FontRevision = &rev
		case "UnitsPerEm":
			n, err := p.expectNumber()
			if err != nil {
				return nil, err
			}
			u := uint16(n)
			v.UnitsPerEm = &u
		case "LowestRecPPEM":
			n, err := p.expectNumber()
			if err != nil {
				return nil, err
			}
			u := uint16(n)
			v.LowestRecPPEM = &u
		case "FontDirectionHint":
			n, err := p.expectNumber()
			if err != nil {
				return nil, err
			}
			i := int16(n)
			v.FontDirectionHint = &i
		case "GlyphDataFormat":
			n, err := p.expectNumber()
			if err != nil {
				return nil, err
			}
			i := int16(n)
			v.GlyphDataFormat = &i
		default:
			return nil, &SyntaxError{Line: t.line, Reason: "unknown head field " + field}
		}
		if err := p.expectPunct(";"); err != nil {
			return nil, err
		}
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("head"); err != nil {
		return nil, err
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return v, nil
}

func (p *parser) parseTableName() (ast.Statement, error) {
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	v := &ast.TableName{}
	for {
		t := p.peek()
		if t.kind == tokPunct && t.text == "}" {
			break
		}
		if err := p.expectKeyword("nameid"); err != nil {
			return nil, err
		}
		id, err := p.expectNumber()
		if err != nil {
			return nil, err
		}
		if t := p.peek(); t.kind == tokString {
			value, _ := p.expectString()
			v.Records = append(v.Records, ast.NameRecord{
				PlatformID: 3, EncodingID: 1, LanguageID: 0x0409,
				NameID: uint16(id), Value: value,
			})
		} else {
			platform, err := p.expectNumber()
			if err != nil {
				return nil, err
			}
			enc, err := p.expectNumber()
			if err != nil {
				return nil, err
			}
			lang, err := p.expectNumber()
			if err != nil {
				return nil, err
			}
			value, err := p.expectString()
			if err != nil {
				return nil, err
			}
			v.Records = append(v.Records, ast.NameRecord{
				PlatformID: uint16(platform), EncodingID: uint16(enc), LanguageID: uint16(lang),
				NameID: uint16(id), Value: value,
			})
		}
		if err := p.expectPunct(";"); err != nil {
			return nil, err
		}
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("name"); err != nil {
		return nil, err
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return v, nil
}

func (p *parser) parseTableGDEF() (ast.Statement, error) {
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	v := &ast.TableGDEF{GlyphClassByName: map[string][]string{}}
	for {
		t := p.peek()
		if t.kind == tokPunct && t.text == "}" {
			break
		}
		if t.kind != tokIdent {
			return nil, &SyntaxError{Line: t.line, Reason: "expected GDEF statement"}
		}
		if t.text != "GlyphClassDef" {
			// MarkAttachClassDef / MarkGlyphSets / other clauses are
			// recognised by the Rust original's GDEF table model but not
			// wired into this parser; discard to the next ';'.
			for {
				tk := p.advance()
				if tk.kind == tokPunct && tk.text == ";" {
					break
				}
				if tk.kind == tokEOF {
					return nil, &SyntaxError{Line: tk.line, Reason: "unterminated GDEF clause"}
				}
			}
			continue
		}
		p.advance()
		labels := [4]string{"base", "ligature", "mark", "component"}
		for i, label := range labels {
			names, err := p.parseGDEFSlot()
			if err != nil {
				return nil, err
			}
			if len(names) > 0 {
				v.GlyphClassByName[label] = names
			}
			if i < 3 {
				if err := p.expectPunct(","); err != nil {
					return nil, err
				}
			}
		}
		if err := p.expectPunct(";"); err != nil {
			return nil, err
		}
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("GDEF"); err != nil {
		return nil, err
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return v, nil
}

func (p *parser) parseGDEFSlot() ([]string, error) {
	t := p.peek()
	if t.kind == tokPunct && (t.text == "," || t.text == ";") {
		return nil, nil
	}
	if t.kind == tokPunct && t.text == "@" {
		p.advance()
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		names, ok := p.classNames[name]
		if !ok {
			return nil, &SyntaxError{Line: t.line, Reason: "undefined class " + name}
		}
		return names, nil
	}
	if t.kind == tokPunct && t.text == "[" {
		p.advance()
		var names []string
		for {
			tk := p.peek()
			if tk.kind == tokPunct && tk.text == "]" {
				p.advance()
				break
			}
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			names = append(names, name)
		}
		return names, nil
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	return []string{name}, nil
}

// parseFixed1616 parses an AFDKO "1.000"-style version literal into its
// 16.16 fixed-point wire representation.
func parseFixed1616(text string) (uint32, error) {
	intPart, fracPart, hasFrac := strings.Cut(text, ".")
	i, err := strconv.ParseInt(intPart, 10, 32)
	if err != nil {
		return 0, &SyntaxError{Reason: "malformed version " + text}
	}
	var frac float64
	if hasFrac && fracPart != "" {
		f, err := strconv.ParseFloat("0."+fracPart, 64)
		if err != nil {
			return 0, &SyntaxError{Reason: "malformed version " + text}
		}
		frac = f
	}
	return uint32(i)<<16 | uint32(frac*65536+0.5), nil
}
