// Package main is the entry point for the seek CLI.
package main

import (
	"os"

	"github.com/runger/seek/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
