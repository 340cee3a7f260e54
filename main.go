package main

import (
	"os"

	"github.com/abhisek/codedrill/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
