package main

import (
	"flag"
	"log"
	"os"

	"github.com/pevans/blogscrape/config"
	"github.com/pevans/blogscrape/store"
)

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	if err := config.LoadEnvFiles(""); err != nil {
		log.Fatalf("Failed to load env files: %v", err)
	}

	defaultDB := "articles.db"
	fileCfg, err := config.LoadConfigFile(getEnv("BLOGSCRAPE_CONFIG", ""))
	if err != nil {
		log.Fatalf("Failed to load config file: %v", err)
	}
	if fileCfg != nil && fileCfg.Storage.DSN != "" {
		defaultDB = fileCfg.Storage.DSN
	}

	dbPath := flag.String("db", getEnv("BLOGSCRAPE_DB", defaultDB), "Path to the SQLite article database")
	addr := flag.String("addr", getEnv("BLOGSCRAPE_API_ADDR", "localhost:8000"), "Address to listen on")
	flag.Parse()

	articleStore, err := store.NewArticleStore(*dbPath)
	if err != nil {
		log.Fatalf("Failed to create article store: %v", err)
	}
	defer articleStore.Close()

	server := store.NewArticleAPIServer(articleStore)
	router := server.SetupRouter()

	log.Printf("Starting Article API server on http://%s/api/articles", *addr)
	if err := router.Run(*addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
