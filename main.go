package main

import (
	"github.com/AsterZephyr/screego-client/cmd"
	pmode "github.com/AsterZephyr/screego-client/config/mode"
)

var (
	version    = "unknown"
	commitHash = "unknown"
	mode       = pmode.Dev
)

func main() {
	pmode.Set(mode)
	cmd.Run(version, commitHash)
}
