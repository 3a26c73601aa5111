package main

import (
	"os"

	"github.com/RevCBH/swarm/internal/cli"
)

// Build-time variables (set via ldflags)
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	app := cli.New()
	app.SetVersion(version, commit, date)

	if err := app.Execute(); err != nil {
		app.ReportError(err)
		os.Exit(cli.ExitCode(err))
	}
}
