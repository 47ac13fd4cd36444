package main

import (
	"log"
	"os"
	"time"

	"facilitybook/internal/app"
	"facilitybook/internal/database"
	"facilitybook/internal/repository"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is empty")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is empty")
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal(err)
	}
	if err := repository.Migrate(db); err != nil {
		log.Fatal(err)
	}

	uploads := os.Getenv("UPLOADS_DIR")
	if uploads == "" {
		uploads = "uploads"
	}
	if err := os.MkdirAll(uploads, 0o755); err != nil {
		log.Fatal(err)
	}

	r := app.NewRouter(db, app.Config{
		JWTSecret:  secret,
		TokenTTL:   24 * time.Hour,
		UploadsDir: uploads,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
