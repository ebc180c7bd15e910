// Command dynq compiles, evaluates and lowers dynamic expressions.
package main

import (
	"os"

	"github.com/roach88/dynq/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
