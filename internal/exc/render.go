// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package exc

import (
	"fmt"
	"strings"
)

// Render formats e against the source text it was raised for: a header naming
// the line and column, the message, the offending source line, and a caret
// under the column.
func Render(source string, e Exception) string {
	loc := e.Location()
	var b strings.Builder
	_, _ = fmt.Fprintf(&b, "Compilation failed at line: %d, col: %d\n", loc.Line, loc.Column)
	_, _ = b.WriteString(e.Message())
	_ = b.WriteByte('\n')
	_, _ = b.WriteString(sourceLine(source, loc.Line))
	_ = b.WriteByte('\n')
	if loc.Column > 0 {
		_, _ = b.WriteString(strings.Repeat(" ", int(loc.Column)))
	}
	_ = b.WriteByte('^')
	return b.String()
}

func sourceLine(source string, line int32) string {
	if line < 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if int(line) > len(lines) {
		return ""
	}
	return strings.TrimSuffix(lines[line-1], "\r")
}
