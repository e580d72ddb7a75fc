package main

import (
	"os"

	"github.com/populist-vote/platform-sub000/internal/cli"
)

func main() {
	os.Exit(cli.Execute(cli.NewRootCmd()))
}
