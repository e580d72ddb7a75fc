// Command merge-tx merges the staged TX candidate filings. It takes no flags;
// configuration comes from the environment.
package main

import (
	"os"

	"github.com/populist-vote/platform-sub000/internal/cli"
)

func main() {
	os.Exit(cli.Execute(cli.NewSourceCmd("tx")))
}
