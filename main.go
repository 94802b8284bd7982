package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"genealogy-service/api"
	"genealogy-service/db"
	"genealogy-service/store"
)

func main() {
	// Load environment variables from a .env file when present; the system
	// environment always works without one.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system environment variables")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Could not initialize logger: %v", err)
	}
	defer logger.Sync()

	// The connection pool is the single shared resource of the process. A
	// failed ping is logged but not fatal: the server keeps serving (requests
	// fail with store errors) and recovers once the database is reachable.
	pool, err := db.Open(db.ConfigFromEnv())
	if pool == nil {
		logger.Fatal("database driver initialization failed", zap.Error(err))
	}
	defer pool.Close()
	if err != nil {
		logger.Error("database connection failed", zap.Error(err))
	} else if err := db.Migrate(pool); err != nil {
		logger.Error("schema migration failed", zap.Error(err))
	} else {
		logger.Info("database connected successfully")
	}

	historyStore := store.NewHistoryStore(pool, logger)
	router := api.NewRouter(
		api.NewTreeHandler(store.NewTreeStore(pool, historyStore), logger),
		api.NewNodeHandler(store.NewNodeStore(pool, historyStore), logger),
		api.NewRelationshipHandler(store.NewRelationshipStore(pool, historyStore), logger),
		api.NewLayoutHandler(store.NewLayoutStore(pool, historyStore), historyStore, logger),
		logger,
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000" // Default port
	}

	logger.Info("server running", zap.String("port", port))
	if err := http.ListenAndServe(":"+port, router); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
