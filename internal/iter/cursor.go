// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package iter

import (
	"gopkg.spork.dev/compiler.go/internal/exc"
	"gopkg.spork.dev/compiler.go/internal/idl"
	"gopkg.spork.dev/compiler.go/internal/optional"
)

// CursorState is a snapshot of a Cursor's read position. It is a plain value
// so capturing and restoring one is O(1).
type CursorState struct {
	Offset int
	Line   int32
	Column int32
}

// Cursor yields the characters of a source text one at a time while tracking
// the line and column of the next character. Characters are bytes; the
// language has no multi-byte lexemes.
type Cursor struct {
	uri    string
	source string
	state  CursorState
}

func NewCursor(uri string, source string) *Cursor {
	return &Cursor{
		uri:    uri,
		source: source,
		state:  CursorState{Line: 1},
	}
}

// Peek returns the current character without consuming it, or nothing at the
// end of input.
func (c *Cursor) Peek() optional.Optional[byte] {
	if c.AtEnd() {
		return optional.None[byte]()
	}
	return optional.Some(c.source[c.state.Offset])
}

// Advance consumes and returns the current character. A newline moves to the
// next line and resets the column; any other character moves one column.
func (c *Cursor) Advance() (byte, exc.Exception) {
	if c.AtEnd() {
		return 0, c.ReportError(exc.CodeUnexpectedEOF, "cannot advance past the end of input")
	}
	ch := c.source[c.state.Offset]
	c.state.Offset = c.state.Offset + 1
	if ch == '\n' {
		c.state.Line = c.state.Line + 1
		c.state.Column = 0
	} else {
		c.state.Column = c.state.Column + 1
	}
	return ch, nil
}

func (c *Cursor) AtEnd() bool {
	return c.state.Offset >= len(c.source)
}

func (c *Cursor) Snapshot() CursorState {
	return c.state
}

func (c *Cursor) Restore(s CursorState) {
	c.state = s
}

// Location is the position of the current character.
func (c *Cursor) Location() idl.Location {
	return idl.Location{
		Line:   c.state.Line,
		Column: c.state.Column,
		Offset: int64(c.state.Offset),
	}
}

// Source returns the complete text the cursor reads from.
func (c *Cursor) Source() string {
	return c.source
}

// ReportError builds an exception anchored at the current position. The
// caller decides whether to abort; exc.Render formats it for display.
func (c *Cursor) ReportError(code string, message string) exc.Exception {
	return exc.New(exc.Location{Location: c.Location(), URI: c.uri}, code, message)
}

// Attempt runs fn and rewinds the cursor to where it was if fn reports no
// match. Nested attempts unwind innermost first because each one restores
// only its own snapshot.
func Attempt[T any](c *Cursor, fn func(*Cursor) optional.Optional[T]) optional.Optional[T] {
	state := c.Snapshot()
	result := fn(c)
	if !result.IsPresent() {
		c.Restore(state)
	}
	return result
}

// Probe runs fn and always rewinds the cursor afterwards. It answers "would
// this match here" without consuming anything.
func Probe[T any](c *Cursor, fn func(*Cursor) optional.Optional[T]) bool {
	state := c.Snapshot()
	defer c.Restore(state)
	return fn(c).IsPresent()
}
