package main

import (
	"fmt"
	"os"

	"github.com/gradeassist/cmd"
)

const (
	version = "0.1.0"
)

func main() {
	if err := cmd.NewApp(version).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
