package main

import (
	"github.com/belphemur/TileSlicer/cmd/tileslicer/commands"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)

	commands.Execute()
}
