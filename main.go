package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/sideshub-backend/api"
	"github.com/rpupo63/sideshub-backend/config"
	"github.com/rpupo63/sideshub-backend/database"
	"github.com/rpupo63/sideshub-backend/logging"
	"github.com/rpupo63/sideshub-backend/services"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	c, err := config.Load(context.Background())
	logging.Setup(config.GetString(c, "APP_ENV", "production"))
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading configuration")
	}

	log.Info().Msg("Initializing app...")

	db, err := database.Open(c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}

	if config.GetBool(c, "MIGRATE_ON_START", false) {
		if err := database.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("Error migrating database")
		}
		log.Info().Msg("Database migration completed")
	}

	server, err := api.NewServer(database.New(db), c, newStorage(c))
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	errChannel := make(chan error, 2)

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
}

// newStorage returns nil when uploads are not configured so the upload
// endpoint can answer 503.
func newStorage(c map[string]string) *services.ObjectStorage {
	storage, err := services.NewObjectStorage(context.Background(), c)
	if errors.Is(err, services.ErrStorageNotConfigured) {
		log.Warn().Msg("S3_BUCKET not set, uploads disabled")
		return nil
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing object storage")
	}
	return storage
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-ch)
}
