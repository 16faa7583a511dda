package main

import (
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/regkit/registrar/internal/adapters/api"
	"github.com/regkit/registrar/internal/adapters/notify"
	"github.com/regkit/registrar/internal/adapters/registry"
	"github.com/regkit/registrar/internal/adapters/repository"
	"github.com/regkit/registrar/internal/core/ports"
	"github.com/regkit/registrar/internal/core/services"
)

func main() {
	listenAddr := envOr("LISTEN_ADDR", ":8080")
	registryMode := envOr("REGISTRY_MODE", "memory")
	apiToken := os.Getenv("API_TOKEN")
	if apiToken == "" {
		log.Fatal("API_TOKEN must be set")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	var domains ports.DomainRepository
	var contacts ports.ContactRepository

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		db, err := sql.Open("pgx", dbURL)
		if err != nil {
			log.Fatalf("Unable to connect to database: %v\n", err)
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			fmt.Printf("Warning: Could not ping database: %v\n", err)
		}

		domains = repository.NewPostgresDomainStore(db)
		contacts = repository.NewPostgresContactStore(db)
	} else {
		// No database configured: keep records in memory. Fine for
		// development, useless for anything else.
		domains = repository.NewMemoryDomainStore()
		contacts = repository.NewMemoryContactStore()
	}

	var client ports.RegistryClient
	switch registryMode {
	case "memory":
		client = registry.NewMemory()
	default:
		log.Fatalf("unknown REGISTRY_MODE %q", registryMode)
	}

	var notifier ports.Notifier
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
		notifier = notify.NewRedisNotifier(redisAddr, os.Getenv("REDIS_PASSWORD"), db)
	}

	svc := services.NewService(client, domains, contacts, notifier, logger)

	apiHandler := api.NewAPIHandler(svc, domains)
	mux := http.NewServeMux()
	apiHandler.RegisterRoutes(mux, apiToken)

	fmt.Printf("Management API listening on %s...\n", listenAddr)
	if err := http.ListenAndServe(listenAddr, mux); err != nil {
		log.Fatalf("HTTP Server failed: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
