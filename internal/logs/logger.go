// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package logs

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// ParseLevel converts a level name to a slog level. The empty string is info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// New returns a logger that writes text records to terminal and, when file is
// not nil, JSON records to file. Both handlers share level so it can be
// changed after construction.
func New(terminal io.Writer, file io.Writer, level *slog.LevelVar) *slog.Logger {
	options := &slog.HandlerOptions{
		Level: level,
	}
	handlers := []slog.Handler{
		slog.NewTextHandler(terminal, options),
	}
	if file != nil {
		handlers = append(handlers, slog.NewJSONHandler(file, options))
	}
	return slog.New(slogmulti.Fanout(handlers...))
}

// Discard is a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
