package main

import (
	"os"

	"github.com/mjoly/fieldops/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
