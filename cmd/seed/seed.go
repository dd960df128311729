package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"sort"

	"assistancevoyage/db"
	"assistancevoyage/db/migrations"
	"assistancevoyage/internal/catalog"
	"assistancevoyage/internal/logging"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	file := flag.String("file", "catalog.yaml", "catalog file to load")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not read .env file", "err", err)
	}
	logging.InitLogger(os.Getenv("LOG_LEVEL"))

	connString := os.Getenv("POSTGRES_CONN")
	if connString == "" {
		slog.Error("POSTGRES_CONN env variable is not set")
		os.Exit(1)
	}

	c, err := catalog.Load(*file)
	if err != nil {
		slog.Error("cannot load catalog", "file", *file, "err", err)
		os.Exit(1)
	}

	dbConn, err := sqlx.Connect("postgres", connString)
	if err != nil {
		slog.Error("cannot connect to DB", "err", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	if err := migrations.Run(dbConn.DB); err != nil {
		slog.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	stats, err := c.Apply(context.Background(), db.NewStorage(dbConn))
	if err != nil {
		slog.Error("seeding failed", "err", err)
		os.Exit(1)
	}

	kinds := make([]string, 0, len(stats))
	for k := range stats {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		slog.Info("catalog loaded", "kind", k, "count", stats[k])
	}
}
