package main

import (
	"fmt"
	"os"

	"github.com/aakhterov/github-repo-analyzer/internal/cli"
)

func main() {
	if err := cli.New().Run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
