package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	os.Exit(run())
}

func run() int {
	err := newRootCommand().Execute()
	if err == nil {
		return 0
	}
	// A cancelled context means the user interrupted; the exit code says
	// enough on its own.
	if !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "pearl:", err)
	}
	return 1
}
