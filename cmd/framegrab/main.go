package main

import (
	"os"

	"github.com/liqwen/framegrab/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
