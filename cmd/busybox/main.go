package main

import (
	"os"
	"path/filepath"

	"github.com/rcarmo/hawksed/pkg/applets/awk"
	"github.com/rcarmo/hawksed/pkg/applets/cut"
	"github.com/rcarmo/hawksed/pkg/applets/sed"
	"github.com/rcarmo/hawksed/pkg/core"
)

type appletFunc func(stdio *core.Stdio, args []string) int

var applets = map[string]appletFunc{
	"sed": sed.Run,
	"cut": cut.Run,
	"awk": awk.Run,
}

func main() {
	stdio := core.DefaultStdio()

	applet, args := resolveApplet(os.Args)
	if applet == "" {
		usage(stdio)
		os.Exit(core.ExitUsage)
	}

	run, ok := applets[applet]
	if !ok {
		stdio.Errorf("busybox: applet not found: %s\n", applet)
		usage(stdio)
		os.Exit(core.ExitUsage)
	}

	// Applets expect args without the applet name.
	os.Exit(run(stdio, args))
}

func resolveApplet(args []string) (string, []string) {
	if len(args) == 0 {
		return "", nil
	}

	// If invoked as "busybox applet ..."
	if len(args) > 1 && filepath.Base(args[0]) == "busybox" {
		return args[1], args[2:]
	}

	// If invoked as a symlink named after the applet
	applet := filepath.Base(args[0])
	return applet, args[1:]
}

func usage(stdio *core.Stdio) {
	stdio.Print("hawksed applets:")
	for name := range applets {
		stdio.Print(" ", name)
	}
	stdio.Println()
	stdio.Println("usage: busybox <applet> [args...]")
}
