package main

import (
	"fmt"
	"os"

	"github.com/Shibashis-Mandal/Library-Management-System/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cli.NewRootCommand(version).Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "librarian: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
