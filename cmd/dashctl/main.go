// Command dashctl is the operator's command-line client for the health
// dashboard backend. It keeps the bearer token and the date window in a
// local file so later invocations stay logged in.
package main

import (
	"os"
	_ "time/tzdata"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
