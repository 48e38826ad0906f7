//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2025 Aaron Mathis aaron.mathis@gmail.com
//
// This file is part of RaceClean.
//
// RaceClean is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// RaceClean is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with RaceClean. If not, see https://www.gnu.org/licenses/.

package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/aaronlmathis/raceclean/core"
)

// RuleWidth is the width of the separator lines printed between report sections.
const RuleWidth = 50

// Rule writes a line of '=' characters.
func Rule(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("=", RuleWidth))
}

// Banner writes title framed by two rules.
func Banner(w io.Writer, title string) {
	Rule(w)
	fmt.Fprintln(w, title)
	Rule(w)
}

// Table writes headers and rows as aligned columns separated by two spaces, with a dashed line under
// the header. Widths are measured in display cells so accented driver names line up.
func Table(w io.Writer, headers []string, rows [][]string) error {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if cw := runewidth.StringWidth(row[i]); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	dashes := make([]string, len(headers))
	for i, width := range widths {
		dashes[i] = strings.Repeat("-", width)
	}

	if err := writeRow(w, widths, headers); err != nil {
		return err
	}
	if err := writeRow(w, widths, dashes); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writeRow(w, widths, row); err != nil {
			return err
		}
	}
	return nil
}

// Records renders the given columns of rows with core.FormatValue. Missing values print as "<nil>".
func Records(w io.Writer, columns []string, rows []core.Record) error {
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = make([]string, len(columns))
		for j, c := range columns {
			if core.IsMissing(r[c]) {
				cells[i][j] = "<nil>"
				continue
			}
			cells[i][j] = core.FormatValue(r[c])
		}
	}
	return Table(w, columns, cells)
}

func writeRow(w io.Writer, widths []int, cells []string) error {
	var sb strings.Builder
	for i, width := range widths {
		content := ""
		if i < len(cells) {
			content = cells[i]
		}
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(content)
		if i < len(widths)-1 {
			if padding := width - runewidth.StringWidth(content); padding > 0 {
				sb.WriteString(strings.Repeat(" ", padding))
			}
		}
	}
	sb.WriteString("\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
