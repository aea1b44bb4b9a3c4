// Command importcsv loads ingredients from a "name,measurement_unit" CSV file
// into the configured database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/franciscosanchezn/gin-recipes-api/internal/config"
	"github.com/franciscosanchezn/gin-recipes-api/internal/database"
	"github.com/franciscosanchezn/gin-recipes-api/internal/services"
)

func main() {
	path := flag.String("file", "data/ingredients.csv", "CSV file with name,measurement_unit rows")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
	log.SetFormatter(&log.JSONFormatter{})

	conf, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	ctx := context.Background()
	db, err := database.InitDatabase(ctx, database.NewDatabaseConfig(conf))
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	file, err := os.Open(*path)
	if err != nil {
		log.WithError(err).Fatal("Failed to open CSV file")
	}
	defer file.Close()

	result, err := services.NewIngredientImporter(db).Import(ctx, file)
	if err != nil {
		log.WithError(err).WithField("file", *path).Fatal("Import failed")
	}
	fmt.Printf("Imported %s: %d created, %d already present\n", *path, result.Created, result.Existed)
}
