// Package main is the entry point for the suiwen CLI.
package main

import (
	"os"

	"github.com/f3rmion/suiwen/cmd/suiwen/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
