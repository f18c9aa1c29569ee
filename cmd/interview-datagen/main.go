package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/petems/whisper-scribe/internal/config"
	"github.com/petems/whisper-scribe/internal/datagen"
	"github.com/petems/whisper-scribe/internal/logging"
)

func main() {
	count := flag.Int("count", 0, "number of records to generate (0 = configured default)")
	outDir := flag.String("out", "", "output directory (default: configured data dir)")
	flag.Parse()

	// Pull OPENAI_API_KEY from .env when present
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log := logging.New()
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	log := logging.NewWithLevel(cfg.LogLevel)

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal().Msg("OPENAI_API_KEY environment variable is not set")
	}

	n := cfg.Datagen.Count
	if *count > 0 {
		n = *count
	}
	dir := cfg.Datagen.Dir
	if *outDir != "" {
		dir = *outDir
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create output directory")
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	path := filepath.Join(dir, fmt.Sprintf("synthetic_interview_data_%s.jsonl", timestamp))

	f, err := os.Create(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create output file")
	}
	defer f.Close()

	log.Info().Str("path", path).Int("count", n).Msg("Generating synthetic interview data")

	gen := datagen.New(apiKey, cfg.Datagen.Model, log)
	if err := gen.WriteDataset(context.Background(), f, n); err != nil {
		log.Fatal().Err(err).Msg("Dataset generation failed")
	}

	log.Info().Str("path", path).Msg("Synthetic interview data saved")
}
