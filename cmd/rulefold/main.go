package main

import (
	"os"

	"github.com/solatis/rulefold/cmd/rulefold/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
