// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package exc

import (
	"github.com/bufbuild/protocompile/ast"
	protoreporter "github.com/bufbuild/protocompile/reporter"
)

// ToErrorWithPos converts e into the positioned error type used by the
// protocompile reporter package so that it prints as file:line:col: message.
// Columns are converted to protocompile's 1-based convention.
func ToErrorWithPos(e Exception) protoreporter.ErrorWithPos {
	loc := e.Location()
	pos := ast.SourcePos{
		Filename: loc.URI,
		Line:     int(loc.Line),
		Col:      int(loc.Column) + 1,
		Offset:   int(loc.Offset),
	}
	return protoreporter.Error(pos, messageOnly{e})
}

// messageOnly drops the code and location prefix from Error so that the
// protocompile position is the only one printed.
type messageOnly struct {
	Exception
}

func (m messageOnly) Error() string {
	return m.Code() + ": " + m.Message()
}

func (m messageOnly) Unwrap() error {
	return m.Exception
}
