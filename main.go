package main

import (
	"os"

	"github.com/bluekornchips/gandalf/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
