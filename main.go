package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"datadeck/adapters/ingest"
	"datadeck/adapters/llm"
	"datadeck/adapters/llm/heuristic"
	"datadeck/adapters/memory"
	"datadeck/adapters/postgres"
	"datadeck/app"
	"datadeck/internal"
	"datadeck/internal/analytics"
	"datadeck/internal/cleaning"
	"datadeck/internal/config"
	"datadeck/internal/migration"
	"datadeck/internal/schema"
	"datadeck/ports"
	"datadeck/ui"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := internal.DefaultLogger

	repo, err := buildRepository(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize dataset store: %v", err)
	}

	reader := ingest.NewReader()
	inferencer := schema.NewInferencer(schema.Config{
		SampleSize:             cfg.Pipeline.SampleSize,
		TypeThreshold:          cfg.Pipeline.TypeThreshold,
		MaxCategories:          cfg.Pipeline.MaxCategories,
		CategoricalRowFraction: schema.DefaultConfig().CategoricalRowFraction,
	})
	cleaner := cleaning.NewCleaner(cleaning.Config{
		CompletenessThreshold: cfg.Pipeline.CompletenessThreshold,
		ZScoreThreshold:       cfg.Pipeline.ZScoreThreshold,
	})
	aggregator := analytics.NewAggregator(analytics.Config{
		PieMaxCategories: cfg.Pipeline.PieMaxCategories,
	})

	pipeline := app.NewPipelineService(reader, inferencer, cleaner, repo)
	queries := app.NewQueryService(repo, aggregator, buildInsightGenerator(cfg, logger), cfg.AI.Timeout)

	httpApp := ui.NewApp(ui.Config{}, pipeline, queries)

	addr := ":" + cfg.Server.Port
	logger.Info("Server listening on %s", addr)
	server := &http.Server{
		Addr:         addr,
		Handler:      httpApp.Router(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

// buildRepository connects Postgres when DATABASE_URL is set, otherwise
// falls back to the in-memory store
func buildRepository(cfg *config.Config, logger *internal.Logger) (ports.DatasetRepository, error) {
	if cfg.Database.URL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory dataset store")
		return memory.NewDatasetRepository(), nil
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		return nil, err
	}

	logger.Info("Connected to Postgres dataset store")
	return postgres.NewDatasetRepository(db), nil
}

// buildInsightGenerator uses the OpenAI adapter when a key is configured
// and the deterministic heuristic generator otherwise
func buildInsightGenerator(cfg *config.Config, logger *internal.Logger) ports.InsightGenerator {
	if cfg.AI.OpenAIKey == "" {
		logger.Info("OPENAI_API_KEY not set, using heuristic insight generator")
		return heuristic.NewGenerator()
	}

	clientConfig := llm.Config{
		APIKey:      cfg.AI.OpenAIKey,
		BaseURL:     cfg.AI.BaseURL,
		Model:       cfg.AI.OpenAIModel,
		Timeout:     cfg.AI.Timeout,
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
	}
	client, err := llm.NewClient(clientConfig)
	if err != nil {
		logger.Warn("Failed to build LLM client (%v), using heuristic insight generator", err)
		return heuristic.NewGenerator()
	}
	return llm.NewInsightGenerator(client, clientConfig)
}
