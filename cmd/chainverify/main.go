// Command chainverify verifies a signed supply-chain layout against the
// signed link metadata its steps produced.
package main

import (
	"fmt"
	"os"

	"github.com/ossvet/chainverify/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
