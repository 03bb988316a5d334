package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// GlobalFlags holds the flags that shape output across every command:
// how much to log, whether to color it, and whether a human or a
// script is expected to read it.
type GlobalFlags struct {
	JSON    bool
	NoColor bool
	Verbose int
	Quiet   bool
}

// newLogger builds the process logger at the verbosity globals asks
// for: warnings by default, -q drops to errors only, -v to info, -vv
// to debug.
func newLogger(globals GlobalFlags) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case globals.Quiet:
		level = slog.LevelError
	case globals.Verbose >= 2:
		level = slog.LevelDebug
	case globals.Verbose >= 1:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// useColor decides whether to colorize stderr/stdout output: off when
// --no-color is given, off when output isn't a terminal (piped to a
// file, captured by a script), on otherwise.
func useColor(globals GlobalFlags) bool {
	if globals.NoColor || globals.JSON {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// summaryColors groups the color.Color instances a run's summary
// printer needs so call sites don't re-derive useColor() per line.
type summaryColors struct {
	ok   *color.Color
	warn *color.Color
	bad  *color.Color
	dim  *color.Color
}

func newSummaryColors(globals GlobalFlags) summaryColors {
	sc := summaryColors{
		ok:   color.New(color.FgGreen),
		warn: color.New(color.FgYellow),
		bad:  color.New(color.FgRed, color.Bold),
		dim:  color.New(color.Faint),
	}
	if !useColor(globals) {
		sc.ok.DisableColor()
		sc.warn.DisableColor()
		sc.bad.DisableColor()
		sc.dim.DisableColor()
	}
	return sc
}

// newFileProgressBar renders a "parsing N object files" bar, or a
// no-op bar when output isn't a terminal or -q/--json silences
// progress reporting.
func newFileProgressBar(globals GlobalFlags, total int) *progressbar.ProgressBar {
	if globals.Quiet || globals.JSON || !isatty.IsTerminal(os.Stderr.Fd()) {
		return progressbar.DefaultSilent(int64(total))
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("parsing object files"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
