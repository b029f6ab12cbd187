// Copyright (c) 2025 The QuestForge developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"sync"

	ethlog "github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
)

// Verbosity levels accepted on the command line.
const (
	VerbosityCrit  = 0
	VerbosityError = 1
	VerbosityWarn  = 2
	VerbosityInfo  = 3
	VerbosityDebug = 4
	VerbosityTrace = 5
)

// Level converts a command line verbosity into a slog level.
func Level(verbosity int) slog.Level {
	switch {
	case verbosity <= VerbosityCrit:
		return ethlog.LevelCrit
	case verbosity == VerbosityError:
		return ethlog.LevelError
	case verbosity == VerbosityWarn:
		return ethlog.LevelWarn
	case verbosity == VerbosityInfo:
		return ethlog.LevelInfo
	case verbosity == VerbosityDebug:
		return ethlog.LevelDebug
	default:
		return ethlog.LevelTrace
	}
}

// Setup installs the root handler. Terminal output is colored when w is a tty.
func Setup(w io.Writer, verbosity int, json bool) {
	lvl := Level(verbosity)

	var handler slog.Handler
	if json {
		handler = ethlog.JSONHandlerWithLevel(w, lvl)
	} else {
		useColor := false
		if f, ok := w.(*os.File); ok {
			useColor = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
		handler = ethlog.NewTerminalHandlerWithLevel(w, lvl, useColor)
	}
	ethlog.SetDefault(ethlog.NewLogger(handler))
}

// Discard silences all logging.
func Discard() {
	ethlog.SetDefault(ethlog.NewLogger(ethlog.DiscardHandler()))
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Capture redirects all records into a buffer in JSON format until restore is called.
func Capture() (out interface{ String() string }, restore func()) {
	old := ethlog.Root()
	buf := &syncBuffer{}
	ethlog.SetDefault(ethlog.NewLogger(ethlog.JSONHandlerWithLevel(buf, ethlog.LevelTrace)))
	return buf, func() { ethlog.SetDefault(old) }
}
