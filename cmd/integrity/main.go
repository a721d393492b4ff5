// Package main provides the entry point for the integrity checker CLI.
package main

import (
	"os"

	"github.com/jamesainslie/integrity/pkg/integrity/logging"
)

func main() {
	code := Execute()
	_ = logging.Close()
	os.Exit(code)
}
