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

// Command ttf-ls lists the offset table and table directory of an SFNT
// file, without interpreting any table's contents.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"seehuhn.de/go/otfea/container"
	"seehuhn.de/go/otfea/tag"
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s <file.ttf>\n", os.Args[0])
		os.Exit(1)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	img, err := container.Read(data)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("scalerType: 0x%08X\n", img.ScalerType)
	fmt.Printf("numTables:  %d\n\n", len(img.Toc))

	tags := make([]tag.Tag, 0, len(img.Toc))
	for t := range img.Toc {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Trimmed() < tags[j].Trimmed() })

	for _, t := range tags {
		rec := img.Toc[t]
		fmt.Printf("%-6s offset=%-10d length=%-10d\n", t.Trimmed(), rec.Offset, rec.Length)
	}
}
