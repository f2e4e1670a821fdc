package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"corpus-embed/internal/config"
	"corpus-embed/internal/export"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	configPath := flag.String("config", configFilePath, "Path to the config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	exporter := export.NewExporter(&cfg.Export)
	outPath := filepath.Join(cfg.Output.Dir, cfg.Export.OutputFile)
	if err := exporter.Export(context.Background(), outPath); err != nil {
		log.Fatal().Err(err).Msg("Error exporting model")
	}
}
