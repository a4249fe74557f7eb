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

package gtab

import (
	"sort"

	"golang.org/x/text/language"
	"seehuhn.de/go/otfea/tag"
)

// NoRequiredFeature is the LangSys.Required sentinel meaning "no feature is
// mandatory for this script/language".
const NoRequiredFeature FeatureIndex = 0xFFFF

// LangSys describes the mandatory and optional features for one
// script/language combination.
type LangSys struct {
	Required FeatureIndex // NoRequiredFeature if none
	Optional []FeatureIndex
}

// Script holds the default and per-language LangSys tables for one script
// tag.
type Script struct {
	DefaultLangSys *LangSys
	LangSys        map[tag.Tag]*LangSys
}

// ScriptListInfo is the ScriptList table: script tag to [Script] record.
type ScriptListInfo map[tag.Tag]*Script

// encode writes the ScriptList table.
func (info ScriptListInfo) encode() []byte {
	var scriptTags []tag.Tag
	for t := range info {
		scriptTags = append(scriptTags, t)
	}
	sort.Slice(scriptTags, func(i, j int) bool {
		return scriptOrderKey(scriptTags[i]) < scriptOrderKey(scriptTags[j])
	})

	totalSize := 2 + 6*len(scriptTags)
	for _, t := range scriptTags {
		script := info[t]
		langCount := len(script.LangSys)
		totalSize += 4 + 6*langCount
		if script.DefaultLangSys != nil {
			totalSize += 6 + 2*len(script.DefaultLangSys.Optional)
		}
		for _, ls := range script.LangSys {
			totalSize += 6 + 2*len(ls.Optional)
		}
	}

	buf := make([]byte, totalSize)
	buf[0] = byte(len(scriptTags) >> 8)
	buf[1] = byte(len(scriptTags))

	scriptTableOffset := make(map[tag.Tag]int, len(scriptTags))
	pos := 2 + 6*len(scriptTags)
	for i, t := range scriptTags {
		scriptTableOffset[t] = pos
		p := 2 + 6*i
		copy(buf[p:p+4], t[:])
		buf[p+4] = byte(pos >> 8)
		buf[p+5] = byte(pos)

		script := info[t]
		pos += 4 + 6*len(script.LangSys)
		if script.DefaultLangSys != nil {
			pos += 6 + 2*len(script.DefaultLangSys.Optional)
		}
		for _, ls := range script.LangSys {
			pos += 6 + 2*len(ls.Optional)
		}
	}

	for _, t := range scriptTags {
		script := info[t]
		scriptTablePos := scriptTableOffset[t]

		var langTags []tag.Tag
		for lt := range script.LangSys {
			langTags = append(langTags, lt)
		}
		sort.Slice(langTags, func(i, j int) bool {
			return string(langTags[i][:]) < string(langTags[j][:])
		})

		inner := 4 + 6*len(langTags)
		if script.DefaultLangSys != nil {
			buf[scriptTablePos] = byte(inner >> 8)
			buf[scriptTablePos+1] = byte(inner)
			writeLangSys(buf, scriptTablePos+inner, script.DefaultLangSys)
			inner += 6 + 2*len(script.DefaultLangSys.Optional)
		}
		buf[scriptTablePos+2] = byte(len(langTags) >> 8)
		buf[scriptTablePos+3] = byte(len(langTags))

		pos := 4 + 6*len(langTags)
		if script.DefaultLangSys != nil {
			pos += 6 + 2*len(script.DefaultLangSys.Optional)
		}
		for i, lt := range langTags {
			ls := script.LangSys[lt]
			p := scriptTablePos + 4 + 6*i
			copy(buf[p:p+4], lt[:])
			buf[p+4] = byte(pos >> 8)
			buf[p+5] = byte(pos)
			writeLangSys(buf, scriptTablePos+pos, ls)
			pos += 6 + 2*len(ls.Optional)
		}
	}

	return buf
}

func writeLangSys(buf []byte, pos int, ls *LangSys) {
	// lookupOrderOffset = 0 (no reordering table)
	buf[pos+2] = byte(ls.Required >> 8)
	buf[pos+3] = byte(ls.Required)
	buf[pos+4] = byte(len(ls.Optional) >> 8)
	buf[pos+5] = byte(len(ls.Optional))
	for i, idx := range ls.Optional {
		buf[pos+6+2*i] = byte(idx >> 8)
		buf[pos+6+2*i+1] = byte(idx)
	}
}

// scriptOrderKey sorts DFLT before every other script tag, then falls back
// to alphabetical order; the OpenType spec leaves ScriptList ordering
// unconstrained, but tools commonly expect DFLT first when present.
func scriptOrderKey(t tag.Tag) string {
	if t == tag.ScriptDFLT {
		return ""
	}
	return string(t[:])
}

// bcp47ForScript gives a representative BCP-47 tag for a handful of common
// OpenType script tags, enough to let [Info.FindLookups] match a requested
// language against the compiled ScriptList without hand-rolling a codec.
var bcp47ForScript = map[tag.Tag]string{
	tag.Make("latn"): "und-Latn",
	tag.Make("cyrl"): "und-Cyrl",
	tag.Make("grek"): "und-Grek",
	tag.Make("arab"): "und-Arab",
	tag.Make("hebr"): "und-Hebr",
	tag.Make("deva"): "und-Deva",
	tag.Make("thai"): "und-Thai",
	tag.Make("hang"): "ko-Hang",
	tag.Make("hani"): "und-Hani",
	tag.Make("kana"): "ja-Kana",
}

// FindLookups returns the lookups required to implement the given features
// for the script that best matches lang, preferring an exact OpenType
// script tag where known and otherwise BCP-47-matching via
// golang.org/x/text/language.
func (info *Info) FindLookups(lang language.Tag, includeFeature map[string]bool) []LookupIndex {
	if info == nil || len(info.ScriptList) == 0 {
		return nil
	}

	var scriptTags []tag.Tag
	var bcpTags []language.Tag
	for t := range info.ScriptList {
		scriptTags = append(scriptTags, t)
		bcp := bcp47ForScript[t]
		if bcp == "" {
			bcp = "und"
		}
		bcpTags = append(bcpTags, language.Make(bcp))
	}

	matcher := language.NewMatcher(bcpTags)
	_, index, _ := matcher.Match(lang)

	script := info.ScriptList[scriptTags[index]]
	if script == nil {
		return nil
	}

	includeLookup := make(map[LookupIndex]bool)
	collect := func(ls *LangSys) {
		if ls == nil {
			return
		}
		if ls.Required != NoRequiredFeature && int(ls.Required) < len(info.FeatureList) {
			for _, l := range info.FeatureList[ls.Required].Lookups {
				includeLookup[l] = true
			}
		}
		for _, f := range ls.Optional {
			if int(f) >= len(info.FeatureList) {
				continue
			}
			feature := info.FeatureList[f]
			if !includeFeature[feature.Tag.Trimmed()] {
				continue
			}
			for _, l := range feature.Lookups {
				includeLookup[l] = true
			}
		}
	}
	collect(script.DefaultLangSys)
	for _, ls := range script.LangSys {
		collect(ls)
	}

	numLookups := LookupIndex(len(info.LookupList))
	var ll []LookupIndex
	for l := range includeLookup {
		if l < numLookups {
			ll = append(ll, l)
		}
	}
	sort.Slice(ll, func(i, j int) bool { return ll[i] < ll[j] })
	return ll
}
