package main

import (
	"os"

	"github.com/onelane/onelane/internal/cmd"
)

func main() {
	// Execute prints the error through cobra; the exit code is ours.
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
