package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"corpus-embed/internal/artifact"
	"corpus-embed/internal/config"
	"corpus-embed/internal/corpus"
	"corpus-embed/internal/embedding"
	"corpus-embed/internal/helper"
	"corpus-embed/internal/passage"
	"corpus-embed/internal/pipeline"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	_ = godotenv.Load()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	dryRun := flag.Bool("dry-run", false, "Collect passages without embedding or writing")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	runID := helper.NewRunID()
	logger := log.With().Str("run_id", runID).Logger()
	logger.Debug().Interface("config", cfg).Msg("Loaded config")

	ctx := context.Background()

	stream, err := corpus.Open(&cfg.Corpus)
	if err != nil {
		logger.Fatal().Err(err).Msg("Error opening corpus source")
	}
	defer stream.Close()

	segmenter, err := passage.NewPunktSegmenter()
	if err != nil {
		logger.Fatal().Err(err).Msg("Error initializing sentence tokenizer")
	}
	extractor := passage.NewExtractor(segmenter, cfg.Passage.MinChars, cfg.Passage.MaxChars, cfg.Passage.Dedup)

	if *dryRun {
		p := pipeline.New(stream, extractor, nil, nil, cfg.Limit, logger)
		passages, ids, records, err := p.Collect(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("Error collecting passages")
		}
		logger.Info().Int("records", records).Int("passages", len(passages)).Int("ids", len(ids)).Msg("Dry run complete")
		return
	}

	client, err := embedding.NewClient(&cfg.Embedder)
	if err != nil {
		logger.Fatal().Err(err).Msg("Error initializing embedding client")
	}
	encoder := embedding.NewEncoder(client, cfg.Embedder.BatchSize, cfg.Embedder.Dimension)

	writer := artifact.NewWriter(cfg.Output.Dir, cfg.Output.PassagesFile, cfg.Output.IDsFile, cfg.Output.EmbeddingsFile)

	p := pipeline.New(stream, extractor, encoder, writer, cfg.Limit, logger)
	stats, err := p.Run(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("Pipeline failed")
	}

	fmt.Printf("Collected %d passages from %d records\n", stats.Passages, stats.Records)
	fmt.Printf("Embedding dim: %d\n", stats.Dimension)
	fmt.Printf("MB: %.2f\n", float64(stats.EmbeddingBytes)/(1024*1024))
}
