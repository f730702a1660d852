package main

import (
	"os"

	"github.com/combokit/combotracker/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
