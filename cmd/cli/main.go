// wareader - Chat Export Reader
//
// wareader parses exported chat-log text files into ordered transcripts and
// renders them as reports, in a terminal viewer, or over HTTP.
package main

import (
	"os"

	"github.com/ccollicutt/wareader/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
