package main

import (
	"os"

	"github.com/ikkim/catalogo-backend/pkg/logger"
)

func main() {
	logger.Initialize(logger.Config{
		Level:       "info",
		Format:      "console",
		EnableColor: true,
	})

	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
