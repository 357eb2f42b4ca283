package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Best effort: a missing .env is fine, the environment may already
	// carry the API keys.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
