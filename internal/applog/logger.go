// Package applog builds the server's structured logger: a colorized
// console handler, an optional rotating file handler, and an in-memory ring
// buffer the dashboard reads from directly instead of re-parsing console
// text.
package applog

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures logger construction.
type Options struct {
	// Console selects the stream plain console output goes to. Mirrors the
	// original implementation's stdio-mode rule: in stdio transport mode,
	// logs must go to stderr so they never collide with MCP protocol frames
	// on stdout.
	Console io.Writer
	// FilePath, if non-empty, tees every record into a lumberjack-rotated
	// file in addition to Console.
	FilePath string
	RingSize int
	Level    slog.Level
}

// Logger bundles an *slog.Logger with the ring buffer backing the
// dashboard's log page.
type Logger struct {
	*slog.Logger
	Ring       *RingBuffer
	fileWriter io.Closer
}

// New builds a Logger per opts.
func New(opts Options) *Logger {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	ring := NewRingBuffer(opts.RingSize)

	handlers := []slog.Handler{
		NewColorTextHandler(console, ring, &slog.HandlerOptions{Level: opts.Level}),
	}

	var fileWriter io.Closer
	if opts.FilePath != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     7, // days
			Compress:   true,
		}
		fileWriter = lj
		// File output carries no ANSI color and is not mirrored into the
		// ring buffer a second time -- the console handler already did
		// that bookkeeping.
		handlers = append(handlers, slog.NewTextHandler(lj, &slog.HandlerOptions{Level: opts.Level}))
	}

	var handler slog.Handler
	if len(handlers) == 1 {
		handler = handlers[0]
	} else {
		handler = &fanoutHandler{handlers: handlers}
	}

	return &Logger{
		Logger:     slog.New(handler),
		Ring:       ring,
		fileWriter: fileWriter,
	}
}

// Close releases the rotating file handle, if one was opened.
func (l *Logger) Close() error {
	if l.fileWriter != nil {
		return l.fileWriter.Close()
	}
	return nil
}

// Emergency writes directly to stderr, bypassing every handler, for crash
// paths (dashboard panics) where the normal logging pipeline might itself
// be the thing that's broken.
func Emergency(source, message string) {
	fmt.Fprintf(os.Stderr, "EMERGENCY [%s] %s\n", source, message)
}

// ForceTerminalReset restores a sane terminal state after a dashboard crash:
// exits the alternate screen buffer, resets attributes, clears the screen,
// homes the cursor, and re-shows it.
func ForceTerminalReset() {
	const reset = "\033[?1049l\033[0m\033[2J\033[H\033[?25h\033[?1000l"
	fmt.Fprint(os.Stderr, reset)
}
