// Command shardd serves one local shard over HTTP so that other processes
// can use it as a remote endpoint, and prints document counts of shards.
//
// Every flag can also be given as an XAPIAND_* environment variable (dashes
// become underscores) or as a key in the TOML file named by --config.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := NewRootCommand(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
