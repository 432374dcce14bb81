// Command migrate creates or updates the schema for every model. With
// -report it only prints database columns no model maps and leaves the
// schema untouched.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/sideshub-backend/config"
	"github.com/rpupo63/sideshub-backend/database"
	"github.com/rpupo63/sideshub-backend/logging"
)

func main() {
	report := flag.Bool("report", false, "print the column mismatch report instead of migrating")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
	}

	c, err := config.Load(context.Background())
	logging.Setup(config.GetString(c, "APP_ENV", "production"))
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading configuration")
	}

	db, err := database.Open(c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}

	if *report {
		mismatches, err := database.ColumnMismatches(db)
		if err != nil {
			log.Fatal().Err(err).Msg("Error building column report")
		}
		if total := database.WriteColumnMismatchReport(os.Stdout, mismatches); total > 0 {
			log.Warn().Int("columns", total).Msg("Database has columns no model maps")
		}
		return
	}

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Error migrating database")
	}
	log.Info().Msg("Database migration completed")
}
