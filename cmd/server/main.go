package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/mdaffarudiyanto/vacation-planner-poc/internal/app"
)

func main() {
	// Optional .env for local development; missing file is fine.
	_ = godotenv.Load()

	if err := app.Run(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
