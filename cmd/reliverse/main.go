package main

import (
	"os"

	"github.com/reliverse/reliverse/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
