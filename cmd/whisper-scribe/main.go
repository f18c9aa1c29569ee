package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/atotto/clipboard"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/petems/whisper-scribe/internal/audio"
	"github.com/petems/whisper-scribe/internal/capture"
	"github.com/petems/whisper-scribe/internal/config"
	"github.com/petems/whisper-scribe/internal/logging"
	"github.com/petems/whisper-scribe/internal/transcribe"
)

var (
	// Version is set via ldflags at build time
	Version = "dev"
	// Commit is set via ldflags at build time
	Commit = "unknown"
)

func main() {
	listDevices := flag.Bool("list-devices", false, "list audio input devices and exit")
	filePath := flag.String("file", "", "transcribe an existing WAV file instead of recording")
	flag.Parse()

	// .env is optional; tool paths may also come from the environment
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log := logging.New()
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	log := logging.NewWithLevel(cfg.LogLevel)
	log.Info().Str("version", Version).Str("commit", Commit).Msg("whisper-scribe starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pipeline := transcribe.New(cfg.Tools, log)

	if cfg.Tools.AutoFetchModel {
		if err := transcribe.EnsureModel(cfg.Tools.Model, cfg.Tools.ModelPath, log); err != nil {
			log.Fatal().Err(err).Msg("Failed to fetch model")
		}
	}

	// Transcribe-only mode skips the capture stack entirely
	if *filePath != "" {
		emit(ctx, pipeline, cfg, *filePath)
		return
	}

	mic, err := audio.New(cfg.Audio)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize audio")
	}
	defer mic.Close()

	if *listDevices {
		devices, err := mic.ListDevices()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to list devices")
		}
		for _, d := range devices {
			marker := " "
			if d.Default {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, d.Name)
		}
		return
	}

	session := capture.NewSession(mic, cfg.Audio.DeviceID, log)

	// Stop a live recording cleanly on Ctrl+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("Shutting down")
		if session.Recording() {
			session.Stop(recordingPath(cfg))
		}
		cancel()
		os.Exit(0)
	}()

	fmt.Println("Press Enter to start recording, Enter again to stop, Ctrl+C to quit.")
	scanner := bufio.NewScanner(os.Stdin)

	for scanner.Scan() {
		if !session.Recording() {
			if err := session.Start(); err != nil {
				log.Error().Err(err).Msg("Failed to start recording")
				continue
			}
			fmt.Println("Recording... press Enter to stop.")
			continue
		}

		path, err := session.Stop(recordingPath(cfg))
		if err != nil {
			if errors.Is(err, capture.ErrNoData) {
				fmt.Println("No audio captured.")
				continue
			}
			log.Error().Err(err).Msg("Failed to save recording")
			continue
		}

		emit(ctx, pipeline, cfg, path)
		fmt.Println("Press Enter to start recording.")
	}
}

func recordingPath(cfg *config.Config) string {
	return filepath.Join(cfg.Recording.Dir, uuid.NewString()+".wav")
}

func emit(ctx context.Context, pipeline *transcribe.Pipeline, cfg *config.Config, path string) {
	text, err := pipeline.Transcribe(ctx, path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}

	fmt.Println(text)

	if cfg.CopyToClipboard {
		if err := clipboard.WriteAll(text); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to copy transcript to clipboard: %v\n", err)
		}
	}
}
