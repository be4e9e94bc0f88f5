// Package main is the entry point for the duck-job binary.
package main

import (
	"os"

	"duck-job/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
