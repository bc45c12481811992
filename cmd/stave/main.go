// Package main is the stave demo host: a small CLI that loads YAML
// project files and drives the engine through its render, inspect,
// and simulate paths.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
