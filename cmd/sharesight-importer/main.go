package main

import (
	"os"

	"github.com/jamescrowley/sharesight-importer/cmd/sharesight-importer/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
