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
	"bytes"

	"seehuhn.de/go/otfea/tag"
)

// FeatureIndex enumerates features. It is used as an index into a
// [FeatureListInfo], and inside a [LangSys]'s feature-index lists.
type FeatureIndex uint16

// FeatureRecord is one entry of a FeatureList: a tag plus the lookups that
// implement it, in the order a Script/LangSys table may select.
type FeatureRecord struct {
	Tag     tag.Tag
	Lookups []LookupIndex
}

// FeatureListInfo is the ordered list of features available in a GSUB or
// GPOS table. [Info.Encode] prunes entries with an empty Lookups list
// before writing, remapping every FeatureIndex the ScriptList references
// accordingly — the OpenType requirement that a referenced feature always
// implement at least one lookup.
type FeatureListInfo []FeatureRecord

// encode writes the FeatureList table: an array of (tag, offset) records
// in list order, followed by the feature tables themselves, pooled by byte
// equality of their lookup-index list so identical feature bodies (the
// common case when several scripts reuse the same lookups under the same
// tag) share one payload. Callers must have already pruned empty entries
// (see [Info.Encode]).
func (list FeatureListInfo) encode() []byte {
	headerLen := 2 + 6*len(list)
	buf := make([]byte, headerLen, headerLen+16*len(list))
	buf[0] = byte(len(list) >> 8)
	buf[1] = byte(len(list))

	type pooled struct {
		bytes  []byte
		offset int
	}
	var pool []pooled

	for i, rec := range list {
		payload := encodeFeatureTable(rec.Lookups)

		offset := -1
		for _, p := range pool {
			if bytes.Equal(p.bytes, payload) {
				offset = p.offset
				break
			}
		}
		if offset == -1 {
			offset = len(buf)
			buf = append(buf, payload...)
			pool = append(pool, pooled{bytes: payload, offset: offset})
		}

		p := 2 + 6*i
		copy(buf[p:p+4], rec.Tag[:])
		buf[p+4] = byte(offset >> 8)
		buf[p+5] = byte(offset)
	}

	return buf
}

// prune drops features with no lookups from list and remaps every
// FeatureIndex referenced by scriptList to match the compacted result,
// preserving the relative order of the surviving features.
func prune(scriptList ScriptListInfo, list FeatureListInfo) (ScriptListInfo, FeatureListInfo) {
	remap := make(map[FeatureIndex]FeatureIndex, len(list))
	kept := make(FeatureListInfo, 0, len(list))
	for i, rec := range list {
		if len(rec.Lookups) == 0 {
			continue
		}
		remap[FeatureIndex(i)] = FeatureIndex(len(kept))
		kept = append(kept, rec)
	}

	remapLangSys := func(ls *LangSys) *LangSys {
		if ls == nil {
			return nil
		}
		out := &LangSys{Required: NoRequiredFeature}
		if idx, ok := remap[ls.Required]; ok {
			out.Required = idx
		}
		for _, f := range ls.Optional {
			if idx, ok := remap[f]; ok {
				out.Optional = append(out.Optional, idx)
			}
		}
		return out
	}

	newScripts := make(ScriptListInfo, len(scriptList))
	for scriptTag, script := range scriptList {
		newScript := &Script{DefaultLangSys: remapLangSys(script.DefaultLangSys)}
		if len(script.LangSys) > 0 {
			newScript.LangSys = make(map[tag.Tag]*LangSys, len(script.LangSys))
			for langTag, ls := range script.LangSys {
				newScript.LangSys[langTag] = remapLangSys(ls)
			}
		}
		newScripts[scriptTag] = newScript
	}

	return newScripts, kept
}

func encodeFeatureTable(lookups []LookupIndex) []byte {
	buf := make([]byte, 4+2*len(lookups))
	// featureParamsOffset = 0 (no feature parameters emitted)
	buf[2] = byte(len(lookups) >> 8)
	buf[3] = byte(len(lookups))
	for i, l := range lookups {
		buf[4+2*i] = byte(l >> 8)
		buf[4+2*i+1] = byte(l)
	}
	return buf
}
