package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/deepnoodle-ai/condense/errz"
)

var red = color.New(color.FgRed).SprintFunc()

func useColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func fatal(err error) {
	var structured *errz.StructuredError
	if errors.As(err, &structured) {
		fmt.Fprint(os.Stderr, red(structured.FriendlyErrorMessage()))
	} else {
		fmt.Fprintf(os.Stderr, "%s\n", red(err.Error()))
	}
	os.Exit(1)
}
