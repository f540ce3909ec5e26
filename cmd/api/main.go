// Package main provides the main entry point for the meal plan API server
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/fx"

	"github.com/orbitfit/mealplan/internal/infrastructure/container"
)

func main() {
	configPath := flag.String("config", os.Getenv("MEALPLAN_CONFIG_FILE"), "path to the YAML config file")
	flag.Parse()

	app := fx.New(
		container.Module(*configPath),
		fx.StopTimeout(30*time.Second),
	)

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	// Wait for SIGINT/SIGTERM or a shutdown request from the server goroutine
	sig := <-app.Wait()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Fatalf("Failed to stop application gracefully: %v", err)
	}

	os.Exit(sig.ExitCode)
}
