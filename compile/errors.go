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

import "fmt"

// UndefinedReferenceError reports a reference to an anchor, mark class, or
// named lookup that was never defined by the time it is used.
type UndefinedReferenceError struct {
	Kind string
	Name string
}

func (e *UndefinedReferenceError) Error() string {
	return "undefined " + e.Kind + ": " + e.Name
}

// MarkClassNotAllowedError reports a `markClass` statement appearing after
// the first GPOS rule has already referenced a mark class — the point
// after which the mark-class symbol table is frozen.
type MarkClassNotAllowedError struct {
	Name string
}

func (e *MarkClassNotAllowedError) Error() string {
	return "markClass statement for " + e.Name + " after mark classes were frozen"
}

// InvalidAnchorError reports an anchor that cannot be resolved or encoded.
type InvalidAnchorError struct {
	Reason string
}

func (e *InvalidAnchorError) Error() string {
	return "invalid anchor: " + e.Reason
}

// RuleShapeError reports a substitution or positioning rule whose operand
// glyph classes do not fit the shape its lookup type requires (e.g. a
// multiple-substitution rule with more than one input glyph).
type RuleShapeError struct {
	Reason string
}

func (e *RuleShapeError) Error() string {
	return "malformed rule: " + e.Reason
}

// OverflowError reports a value that does not fit the field it was
// assigned to (e.g. a lookup index beyond 16 bits).
type OverflowError struct {
	Type  string
	Scope string
	Item  string
	Value int64
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("%s overflow in %s %s: %d", e.Type, e.Scope, e.Item, e.Value)
}
