package main

import (
	"os"

	"github.com/shortsmith/shortsmith/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
