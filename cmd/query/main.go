package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"corpus-embed/internal/artifact"
	"corpus-embed/internal/config"
	"corpus-embed/internal/embedding"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: query <query>")
		os.Exit(1)
	}
	query := os.Args[1]

	_ = godotenv.Load()

	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	client, err := embedding.NewClient(&cfg.Embedder)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedding client")
	}
	encoder := embedding.NewEncoder(client, cfg.Embedder.BatchSize, cfg.Embedder.Dimension)

	vec, err := encoder.EncodeQuery(context.Background(), query)
	if err != nil {
		log.Fatal().Err(err).Msg("Error encoding query")
	}

	outPath := filepath.Join(cfg.Output.Dir, cfg.Output.QueryFile)
	if err := artifact.WriteQueryVector(outPath, vec); err != nil {
		log.Fatal().Err(err).Msg("Error writing query vector")
	}

	fmt.Printf("Wrote %d-dimensional query vector to %s\n", len(vec), outPath)
}
