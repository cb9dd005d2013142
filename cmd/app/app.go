package main

import (
	"os"

	"github.com/DRSN-tech/shop-orders/internal/app"
	config "github.com/DRSN-tech/shop-orders/internal/cfg"
	"github.com/DRSN-tech/shop-orders/pkg/logger"
)

func main() {
	log := logger.NewSlogLogger()

	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		os.Exit(1)
	}
	log.SetLevel(os.Stdout, logger.ParseLevel(cfg.App.LogLevel))

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize app")
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		os.Exit(1)
	}
}
