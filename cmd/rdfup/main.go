// Command rdfup applies RDF dataset update requests.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/roach88/rdfup/internal/cli"
)

func main() {
	// A missing .env is fine; RDFUP_* may come from the real environment.
	_ = godotenv.Load()

	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
