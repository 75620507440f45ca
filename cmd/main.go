package main

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"

	"github.com/farellandr/coursehub/internal/logger"
	"github.com/farellandr/coursehub/internal/server"
)

func main() {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Fatal("error loading .env file", "error", err)
	}

	if err := server.Start(); err != nil {
		logger.Fatal("server failed to start", "error", err)
	}
}
