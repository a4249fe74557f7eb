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

// Command compile reads a feature source file, compiles it against a
// glyph order, and writes the resulting tables as a new SFNT file (or
// merges them into an existing one given with -ttf).
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"seehuhn.de/go/otfea/compile"
	"seehuhn.de/go/otfea/container"
	"seehuhn.de/go/otfea/font"
	"seehuhn.de/go/otfea/internal/feaparse"
	"seehuhn.de/go/otfea/tag"
)

func main() {
	glyphsFlag := flag.String("glyphs", "", "file with one glyph name per line (defaults to a small built-in fixture order)")
	ttfFlag := flag.String("ttf", "", "existing TTF/OTF file to merge the compiled tables into")
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s [-glyphs file] [-ttf file] <input.fea> <output.ttf>\n", os.Args[0])
		os.Exit(1)
	}
	inPath, outPath := flag.Arg(0), flag.Arg(1)

	order, err := loadGlyphOrder(*glyphsFlag)
	if err != nil {
		log.Fatalf("glyph order: %v", err)
	}

	src, err := os.ReadFile(inPath)
	if err != nil {
		log.Fatalf("reading %s: %v", inPath, err)
	}

	log.Print("parsing...")
	statements, err := feaparse.Parse(string(src), order)
	if err != nil {
		log.Fatalf("parse error: %v", err)
	}
	log.Print("parsed successfully")

	log.Print("compiling...")
	result, err := compile.Compile(order, statements)
	if err != nil {
		log.Fatalf("compile error: %v", err)
	}
	log.Print("compiled successfully")

	var existing *container.Image
	if *ttfFlag != "" {
		data, err := os.ReadFile(*ttfFlag)
		if err != nil {
			log.Fatalf("reading %s: %v", *ttfFlag, err)
		}
		existing, err = container.Read(data)
		if err != nil {
			log.Fatalf("reading %s: %v", *ttfFlag, err)
		}
	}

	freshBytes := make(map[tag.Tag][]byte, len(result.Tables))
	for t, encoded := range result.Tables {
		freshBytes[t] = encoded.Bytes
	}
	out, err := container.Merge(existing, freshBytes, result.Head)
	if err != nil {
		log.Fatalf("merge error: %v", err)
	}

	if err := os.WriteFile(outPath, out, 0644); err != nil {
		log.Fatalf("writing %s: %v", outPath, err)
	}
	log.Printf("wrote %s (%d bytes, %d tables)", outPath, len(out), len(result.Tables))
}

func loadGlyphOrder(path string) (*font.GlyphOrder, error) {
	if path == "" {
		return font.NewGlyphOrder(defaultGlyphNames())
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var names []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		name := strings.TrimSpace(sc.Text())
		if name == "" || strings.HasPrefix(name, "#") {
			continue
		}
		names = append(names, name)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return font.NewGlyphOrder(names)
}

// defaultGlyphNames is a small built-in fixture glyph order, used when no
// -glyphs file is given: the basic Latin alphabet, digits, and the
// keywords the feature grammar itself uses as glyph names in its own test
// suite (by, feature, lookup, sub, table), so `compile` can round-trip
// small self-describing examples with no external glyph list.
func defaultGlyphNames() []string {
	names := []string{".notdef", "space"}
	for c := 'A'; c <= 'Z'; c++ {
		names = append(names, string(c))
	}
	for c := 'a'; c <= 'z'; c++ {
		names = append(names, string(c))
	}
	for c := '0'; c <= '9'; c++ {
		names = append(names, string(c))
	}
	names = append(names, "by", "feature", "lookup", "sub", "table")
	return names
}
