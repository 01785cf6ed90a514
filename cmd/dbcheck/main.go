package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"go-jobsearch-automation/internal/config"
	"go-jobsearch-automation/internal/database"
	"go-jobsearch-automation/internal/models"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config file")
	source := flag.String("source", "linkedin", "site of the job to look up")
	link := flag.String("link", "", "canonical job link to look up")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is not set. Please check your .env file.")
	}

	fmt.Println("Attempting to connect to PostgreSQL...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := database.ConnectDB(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("❌ %v\n(Check your connection string, password, and network access)", err)
	}
	defer repo.Close()

	version, size, err := repo.ServerInfo(ctx)
	if err != nil {
		log.Fatalf("❌ Query failed: %v", err)
	}
	fmt.Printf("📦 Current Database Size: %s\n", size)
	fmt.Println("🚀 Database Version:", version)

	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatalf("❌ %v", err)
	}
	fmt.Println("✅ Schema ready")

	if *link != "" {
		job, err := repo.GetJob(ctx, *source, models.JobLink(*link))
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		fmt.Printf("🔎 %s @ %s (%s), saved %s\n", job.Title, job.Company, job.Location, job.CreatedAt.Format(time.RFC3339))
	}
}
