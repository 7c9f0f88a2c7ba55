package main

import (
	"os"

	"github.com/skilltrack/skilltrack/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
