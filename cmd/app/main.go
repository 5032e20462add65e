package main

import (
	"os"

	"github.com/Elyson25/clean-air-now/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		os.Exit(1)
	}
}
