package main

import (
	"os"

	"github.com/wonny/sectorlens/cmd/sector/commands"
)

// main is the entry point for the sector CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/sector [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
