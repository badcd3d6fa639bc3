package main

import (
	"errors"
	"io/fs"
	"log"

	"github.com/andreyxaxa/listing-admin/config"
	"github.com/andreyxaxa/listing-admin/internal/app"
	"github.com/joho/godotenv"
)

func main() {
	// Config: .env is optional, real environment wins
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("config error: %s", err)
	}

	cfg, err := config.New()
	if err != nil {
		// без админа и секрета сессий сервис не поднимаем
		log.Fatalf("Config error: %s", err)
	}

	// Run
	app.Run(cfg)
}
