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

// Package gtab implements the shared OpenType "GSUB"/"GPOS" table shape:
// ScriptList, FeatureList, LookupList, and the positioning/substitution
// subtable variants this module emits.
package gtab

import (
	"fmt"

	"seehuhn.de/go/otfea/sourcemap"
)

// Info contains the information needed to encode an OpenType "GSUB" or
// "GPOS" table.
type Info struct {
	// ScriptList lists, for each script/language, which features apply and
	// which one (if any) is required.
	ScriptList ScriptListInfo

	// FeatureList enumerates every feature available in the table. Features
	// are implemented by lookups from LookupList.
	FeatureList FeatureListInfo

	// LookupList enumerates every lookup used to implement the table's
	// features.
	LookupList LookupList
}

// Type chooses between "GSUB" and "GPOS" tables.
type Type byte

// The allowed values for Type.
const (
	TypeGsub Type = iota + 1
	TypeGpos
)

func (tp Type) String() string {
	switch tp {
	case TypeGsub:
		return "GSUB"
	case TypeGpos:
		return "GPOS"
	default:
		return fmt.Sprintf("Type(%d)", tp)
	}
}

// Encode returns the binary representation of a "GSUB" or "GPOS" table —
// a 10-byte version-1.0 header followed by the ScriptList, FeatureList and
// LookupList in that order — together with a source map recording, for
// every ValueRecord/Anchor scalar that carried a feature-source span, the
// byte offset that scalar ended up at in the returned table.
func (info *Info) Encode() ([]byte, *sourcemap.Map) {
	scriptList, featureListInfo := prune(info.ScriptList, info.FeatureList)
	scriptListBuf := scriptList.encode()
	featureList := featureListInfo.encode()

	total := 10
	var scriptListOffset int
	if scriptListBuf != nil {
		scriptListOffset = total
		total += len(scriptListBuf)
	}
	var featureListOffset int
	if featureList != nil {
		featureListOffset = total
		total += len(featureList)
	}

	sm := sourcemap.New()
	lookupList := info.LookupList.encode(sourcemap.NewRecorder(sm, total))
	var lookupListOffset int
	if lookupList != nil {
		lookupListOffset = total
		total += len(lookupList)
	}

	buf := make([]byte, total)
	copy(buf, []byte{
		0, 1, // major version
		0, 0, // minor version
		byte(scriptListOffset >> 8), byte(scriptListOffset),
		byte(featureListOffset >> 8), byte(featureListOffset),
		byte(lookupListOffset >> 8), byte(lookupListOffset),
	})
	copy(buf[scriptListOffset:], scriptListBuf)
	copy(buf[featureListOffset:], featureList)
	copy(buf[lookupListOffset:], lookupList)

	return buf, sm
}
