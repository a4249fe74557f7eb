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

// Command parse_test parses a feature source file and dumps the resulting
// statements, exiting non-zero on a syntax error. It is a smoke test for
// the grammar, not for the compiler.
package main

import (
	"flag"
	"fmt"
	"os"

	"seehuhn.de/go/otfea/font"
	"seehuhn.de/go/otfea/internal/feaparse"
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s <file.fea>\n", os.Args[0])
		os.Exit(1)
	}

	src, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Glyph-name ranges (`[A-C]`) need a glyph order to resolve; parse_test
	// has no font to ask, so it falls back to an empty order, and parsing a
	// file that uses that construct fails with a glyph-order error.
	order, _ := font.NewGlyphOrder(nil)

	statements, err := feaparse.Parse(string(src), order)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println()
	for _, s := range statements {
		fmt.Printf("%#v\n\n", s)
	}
	os.Exit(0)
}
