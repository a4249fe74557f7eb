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

import "fmt"

// BufferUnderflowError reports that an existing TTF image ended before a
// structure the offset-table reader expected to find there.
type BufferUnderflowError struct {
	Kind string
}

func (e *BufferUnderflowError) Error() string {
	return "sfnt: buffer underflow reading " + e.Kind
}

// UndefinedFeatureError reports a table record referencing a feature or
// lookup index beyond what its own list declares.
type UndefinedFeatureError struct {
	Where string
	Index int
}

func (e *UndefinedFeatureError) Error() string {
	return fmt.Sprintf("sfnt: %s references undefined index %d", e.Where, e.Index)
}

// InvalidValueError reports a field in an existing TTF's offset table or
// table record that fails a basic sanity check (a bad scaler type, a
// table extending past EOF, an overlapping table, and similar).
type InvalidValueError struct {
	Field string
	Where string
}

func (e *InvalidValueError) Error() string {
	return "sfnt: invalid " + e.Field + " in " + e.Where
}

// BadWholeFileChecksumError reports that a loaded TTF image's whole-file
// checksum does not match the checksumAdjustment recorded in its 'head'
// table (spec §4.4's load-time verification pass).
type BadWholeFileChecksumError struct{}

func (e *BadWholeFileChecksumError) Error() string {
	return "sfnt: whole-file checksum does not match head.checksumAdjustment"
}
