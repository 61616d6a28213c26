package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"skillswap/api"
	"skillswap/config"
	"skillswap/database"
	"skillswap/events"
	"skillswap/repository"
	"skillswap/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting skillswap server...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	log.Println("Initializing services...")
	userService := service.NewUserService(uowFactory, cfg)
	ledgerService := service.NewLedgerService(uowFactory, cfg)
	walletService := service.NewWalletService(uowFactory)
	log.Println("Services initialized successfully")

	// Initialize HTTP server
	handler := api.NewHandler(userService, ledgerService, walletService)
	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      api.NewRouter(handler),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s in %s mode...", cfg.ListenAddr, cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for context cancellation or a server failure
	select {
	case err := <-serverErr:
		db.Close()
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	// Cleanup resources
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down server: %v", err)
	}

	// Close database connection
	log.Println("Closing database connection...")
	db.Close()

	log.Println("Shutdown completed")
	return nil
}
