package main

import (
	"log"

	"github.com/baotran/ragchat-be/cmd"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}
	cmd.Execute()
}
