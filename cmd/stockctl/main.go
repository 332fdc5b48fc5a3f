package main

import (
	"os"

	"stocks-skill/cmd/stockctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
