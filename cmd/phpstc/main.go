package main

import (
	"os"

	"github.com/Lerchensporn/PHP-Static-Type-Checker/pkg/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:], os.Stdout, os.Stderr))
}
