package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/akrylov/photosync/internal/app"
	"github.com/akrylov/photosync/internal/config"
)

func main() {
	// optional .env for local development
	_ = godotenv.Load()

	cfg := config.LoadConfig()
	ctx := context.Background()

	a, err := app.NewApp(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init error: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "backup pass error: %v\n", err)
		os.Exit(1)
	}
}
