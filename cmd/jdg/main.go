// Package main is the entry point for the jdg CLI.
package main

import (
	"fmt"
	"os"

	"github.com/jdg-tools/jdg/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
