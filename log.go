package main

import (
	"fmt"
	"os"
)

// logger writes progress to stderr when verbose output was requested.
type logger bool

func (l logger) Logf(format string, a ...interface{}) {
	if !l {
		return
	}
	fmt.Fprintf(os.Stderr, format, a...)
	fmt.Fprintln(os.Stderr, "")
}
