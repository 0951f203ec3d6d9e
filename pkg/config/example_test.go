package config_test

import (
	"fmt"

	"github.com/wonny/sectorlens/pkg/config"
)

// Example demonstrates how to use the config package
func Example() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	fmt.Printf("Environment: %s\n", cfg.Env)
	fmt.Printf("Input: %s\n", cfg.InputDir)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Printf("Postgres sink: %v\n", cfg.Database.Enabled())
}
