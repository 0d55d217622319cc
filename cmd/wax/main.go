// Copyright (c) 2013-2026, Gerson Kurz, NG Branch Technology GmbH
// MIT License

package main

import (
	"fmt"
	"os"

	"github.com/gersonkurz/wax/internal/cli"
)

// Version is set via ldflags at build time
var Version = "1.0.0-dev"

func main() {
	if err := cli.Execute(os.Args[1:], Version); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", cli.Error("Error:"), err)
		os.Exit(1)
	}
}
