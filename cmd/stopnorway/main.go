package main

import (
	"os"

	"github.com/stopnorway/stopnorway/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
