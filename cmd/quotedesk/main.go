package main

import (
	"github.com/joho/godotenv"
	"github.com/matthieukhl/quotedesk/internal/cmd"
)

func main() {
	_ = godotenv.Load() // Load .env file if it exists
	cmd.Execute()
}
