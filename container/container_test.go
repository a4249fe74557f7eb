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

package container

import (
	"testing"

	"seehuhn.de/go/otfea/head"
	"seehuhn.de/go/otfea/tag"
)

func TestMergeRoundTrip(t *testing.T) {
	fresh := map[tag.Tag][]byte{
		tag.Make("TEST"): {1, 2, 3}, // odd length, exercises 4-byte padding
		tag.Make("ABCD"): {9, 9, 9, 9, 9, 9},
	}
	info := &head.Info{UnitsPerEm: 1000}

	out, err := Merge(nil, fresh, info)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	img, err := Read(out)
	if err != nil {
		t.Fatalf("Read of merged output: %v", err)
	}
	if img.ScalerType != ScalerTypeTrueType {
		t.Errorf("ScalerType = 0x%08X, want 0x%08X", img.ScalerType, ScalerTypeTrueType)
	}
	if len(img.Toc) != 3 { // TEST, ABCD, head
		t.Fatalf("got %d tables, want 3", len(img.Toc))
	}

	got, ok := img.TableBytes(tag.Make("TEST"))
	if !ok || string(got) != "\x01\x02\x03" {
		t.Errorf("TEST table = %v, ok=%v", got, ok)
	}
}

func TestMergeOverlaysExisting(t *testing.T) {
	base, err := Merge(nil, map[tag.Tag][]byte{
		tag.Make("TEST"): {1, 1, 1, 1},
	}, &head.Info{})
	if err != nil {
		t.Fatalf("building base image: %v", err)
	}
	existing, err := Read(base)
	if err != nil {
		t.Fatalf("Read base: %v", err)
	}

	out, err := Merge(existing, map[tag.Tag][]byte{
		tag.Make("TEST"): {2, 2, 2, 2},
	}, &head.Info{})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	img, err := Read(out)
	if err != nil {
		t.Fatalf("Read merged: %v", err)
	}
	got, _ := img.TableBytes(tag.Make("TEST"))
	want := []byte{2, 2, 2, 2}
	if string(got) != string(want) {
		t.Errorf("TEST table = %v, want %v (fresh should win)", got, want)
	}
}

func TestReadRejectsTruncatedDirectory(t *testing.T) {
	data := []byte{0, 1, 0, 0, 0, 5, 0, 0, 0, 0, 0, 0} // claims 5 tables, no records
	if _, err := Read(data); err == nil {
		t.Error("Read accepted a truncated table directory")
	}
}

func TestReadRejectsBadScalerType(t *testing.T) {
	data := make([]byte, headerLength)
	putU32(data, 0xDEADBEEF)
	if _, err := Read(data); err == nil {
		t.Error("Read accepted an unrecognised scaler type")
	}
}

func TestDirectorySizing(t *testing.T) {
	cases := []struct {
		n                                      int
		entrySelector, searchRange, rangeShift uint16
	}{
		{1, 0, 16, 0},
		{4, 2, 64, 0},
		{5, 2, 64, 16},
	}
	for _, c := range cases {
		es, sr, rs := directorySizing(c.n)
		if es != c.entrySelector || sr != c.searchRange || rs != c.rangeShift {
			t.Errorf("directorySizing(%d) = (%d,%d,%d), want (%d,%d,%d)",
				c.n, es, sr, rs, c.entrySelector, c.searchRange, c.rangeShift)
		}
	}
}
