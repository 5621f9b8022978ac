// Package main provides the skyoverlay CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/skyoverlay/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
