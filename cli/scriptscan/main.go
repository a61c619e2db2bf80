// Package main is the scriptscan command.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"go.viam.com/bootscript/cli"
)

func main() {
	if err := cli.NewApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		os.Exit(1)
	}
}
