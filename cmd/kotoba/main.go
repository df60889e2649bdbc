// Package main is the entry point for the kotoba CLI.
package main

import (
	"os"

	"github.com/f3rmion/kotoba/cmd/kotoba/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
