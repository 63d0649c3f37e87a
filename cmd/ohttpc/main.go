package main

import (
	"os"

	"ohttpc/cmd/ohttpc/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
