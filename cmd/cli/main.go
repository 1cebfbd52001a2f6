package main

import (
	"os"

	"liquidity-crisis/internal/cli"
)

func main() {
	os.Exit(cli.New(os.Stdout, os.Stderr).Execute(os.Args[1:]))
}
