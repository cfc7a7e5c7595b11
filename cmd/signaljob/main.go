package main

import (
	"os"

	"github.com/wonny/signaljob/cmd/signaljob/commands"
)

// main is the entry point for the signaljob CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
