package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"designspace/internal"
	"designspace/internal/config"
	"designspace/internal/container"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	internal.DefaultLogger.SetLevel(internal.ParseLogLevel(appConfig.LogLevel))
	gin.SetMode(appConfig.Server.GinMode)

	designFile, err := config.LoadDesignFile(appConfig.Paths.DesignFile)
	if err != nil {
		log.Fatalf("Failed to load design file: %v", err)
	}

	appContainer, err := container.New(appConfig, designFile)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Starting design report server on port %s", appConfig.Server.Port)
	if err := appContainer.Server().Run(ctx, appContainer.Addr()); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
