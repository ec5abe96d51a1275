// mockbay - virtual endpoint server for mocking HTTP, SSE and WebSocket
// backends.
package main

import "github.com/mockbay/mockbay/pkg/cli"

// Build-time variables set via ldflags.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	cli.Execute(version, commit)
}
