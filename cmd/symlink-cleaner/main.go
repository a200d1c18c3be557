package main

import (
	"os"

	"github.com/Zagrios/bs-manager/cmd/symlink-cleaner/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
