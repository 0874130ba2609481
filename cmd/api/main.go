package main

import (
	"context"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"taxoscreen/adapters/postgres"
	"taxoscreen/adapters/tabular"
	"taxoscreen/app"
	"taxoscreen/internal/api"
	"taxoscreen/internal/config"
	"taxoscreen/internal/migration"
)

func main() {
	// .env is optional; environment variables win
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.NewRunner().Run(context.Background(), db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	server := api.NewServer(
		app.NewScreenService(),
		postgres.NewScreenRepository(db),
		tabular.NewDataReader(),
		cfg.Screen,
	)
	if err := server.ListenAndServe(cfg.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
