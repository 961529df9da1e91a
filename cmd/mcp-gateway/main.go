// Command mcp-gateway serves an upstream JSON API through the cached,
// retrying client and fetches one-off URLs from the command line.
package main

import (
	"os"
)

// appName is reported in logs and on /status.
const appName = "mcp-gateway"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
