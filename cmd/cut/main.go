// Command cut is a standalone entry point for the cut applet.
package main

import (
	"os"

	"github.com/rcarmo/hawksed/pkg/applets/cut"
	"github.com/rcarmo/hawksed/pkg/core"
)

func main() {
	stdio := core.DefaultStdio()
	os.Exit(cut.Run(stdio, os.Args[1:]))
}
