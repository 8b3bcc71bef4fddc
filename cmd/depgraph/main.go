package main

import (
	"os"

	"depgraph/internal/cliapp"
)

func main() {
	os.Exit(cliapp.Run(os.Args[1:]))
}
