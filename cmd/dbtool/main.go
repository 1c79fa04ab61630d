package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"zonerouter/internal/adapters/repositories"
	"zonerouter/internal/platform/db"
)

// dbtool initializes and seeds the depot catalogue: Postgres when
// DATABASE_URL is set (shared-instance deployments, spec §4.6), SQLite
// otherwise (single-binary/local runs).
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	seedPath := getEnv("DEPOT_SEED_PATH", "data/seeds/depots.json")
	ctx := context.Background()

	if databaseURL := os.Getenv("DATABASE_URL"); strings.TrimSpace(databaseURL) != "" {
		conn, err := db.Open(databaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer conn.Close()

		if err := initAndSeedPostgres(ctx, conn, seedPath); err != nil {
			log.Fatal(err)
		}
		return
	}

	dbPath := getEnv("DB_PATH", "data/cache.db")
	conn, err := db.OpenSQLite(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if err := initAndSeedSQLite(conn, seedPath); err != nil {
		log.Fatal(err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func initAndSeedSQLite(conn *sql.DB, seedPath string) error {
	log.Println("Initializing SQLite depot catalogue schema...")
	if err := repositories.InitSchema(conn); err != nil {
		return err
	}
	log.Println("Schema ready.")

	log.Println("Seeding depot catalogue...")
	repo := repositories.NewSqliteDepotRepository(conn)
	if err := repositories.SeedDepots(context.Background(), repo, seedPath); err != nil {
		return err
	}
	log.Println("Seeding complete.")

	return nil
}

func initAndSeedPostgres(ctx context.Context, conn *sql.DB, seedPath string) error {
	log.Println("Initializing Postgres depot catalogue schema...")
	if err := repositories.InitPostgresSchema(ctx, conn); err != nil {
		return err
	}
	log.Println("Schema ready.")

	log.Println("Seeding depot catalogue...")
	repo := repositories.NewPgxDepotRepository(conn)
	if err := repositories.SeedDepots(ctx, repo, seedPath); err != nil {
		return err
	}
	log.Println("Seeding complete.")

	return nil
}
