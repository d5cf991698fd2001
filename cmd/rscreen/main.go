package main

import (
	"os"

	"github.com/wonhee/rscreen/cmd/rscreen/commands"
)

// main is the entry point for the rscreen CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/rscreen [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
