package main

import (
	"os"

	"github.com/imgcodec-core/imgcodec/cmd/imginspect/internal/cli"
)

// version/commit/date are injected at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := cli.Run(version, commit, date); err != nil {
		os.Exit(1)
	}
}
