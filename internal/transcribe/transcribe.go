// Package transcribe runs the two-stage speech-to-text pipeline: sox
// resamples and downmixes a recording to the canonical 16 kHz mono profile,
// then whisper-cli produces the transcript. Every failure mode comes back as
// an error wrapping one of the package sentinels; nothing panics past the
// pipeline boundary.
package transcribe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/petems/whisper-scribe/internal/config"
)

// Pipeline transcribes one audio file at a time. It holds no state between
// calls; retries are a caller concern.
type Pipeline struct {
	cfg     config.ToolsConfig
	timeout time.Duration
	log     zerolog.Logger
}

// New creates a pipeline from the configured tool locations.
func New(cfg config.ToolsConfig, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		log:     log,
	}
}

// Transcribe preprocesses inputPath with sox and runs whisper-cli on the
// result, returning the trimmed transcript. Preconditions are checked in a
// fixed order (sox, whisper-cli, model, input) and the first violation wins.
func (p *Pipeline) Transcribe(ctx context.Context, inputPath string) (string, error) {
	if _, err := os.Stat(p.cfg.SoxPath); err != nil {
		return "", fmt.Errorf("%w: sox at %s", ErrToolNotFound, p.cfg.SoxPath)
	}
	if _, err := os.Stat(p.cfg.WhisperPath); err != nil {
		return "", fmt.Errorf("%w: whisper-cli at %s", ErrToolNotFound, p.cfg.WhisperPath)
	}
	if _, err := os.Stat(p.cfg.ModelPath); err != nil {
		return "", fmt.Errorf("%w: %s", ErrModelNotFound, p.cfg.ModelPath)
	}
	if _, err := os.Stat(inputPath); err != nil {
		return "", fmt.Errorf("%w: %s", ErrInputNotFound, inputPath)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	cleanedPath := CleanedPath(inputPath)

	// Stage 1: resample to 16 kHz and downmix to mono.
	p.log.Debug().Str("input", inputPath).Str("cleaned", cleanedPath).Msg("Running sox")
	_, stderr, err := run(ctx, p.cfg.SoxPath, inputPath, cleanedPath, "rate", "16k", "channels", "1")
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrPreprocessingFailed, errDetail(stderr, err, ""))
	}

	// sox can exit zero without writing anything; don't trust it blindly.
	if _, err := os.Stat(cleanedPath); err != nil {
		return "", ErrCleanedFileMissing
	}

	// Stage 2: speech-to-text on the cleaned file.
	p.log.Debug().Str("model", p.cfg.ModelPath).Str("file", cleanedPath).Msg("Running whisper-cli")
	stdout, stderr, err := run(ctx, p.cfg.WhisperPath, "--model", p.cfg.ModelPath, "--file", cleanedPath)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("%w: %s", ErrRecognitionFailed, errDetail(stderr, err, "no error message returned"))
		}
		return "", fmt.Errorf("%w: %v", ErrUnexpectedFailure, err)
	}

	transcript := strings.TrimSpace(stdout)
	if transcript == "" {
		return "", ErrEmptyTranscript
	}

	p.log.Info().Str("input", inputPath).Int("chars", len(transcript)).Msg("Transcription complete")
	return transcript, nil
}

// CleanedPath returns the sibling output path for the preprocessed file:
// "out.wav" -> "out_clean.wav".
func CleanedPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_clean" + ext
}

// run executes a command and returns its captured stdout and stderr. Output
// is always captured before control returns, and the process handle does not
// outlive the call.
func run(ctx context.Context, name string, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// errDetail prefers captured stderr, then the fallback message, then the
// process error itself.
func errDetail(stderr string, err error, fallback string) string {
	if s := strings.TrimSpace(stderr); s != "" {
		return s
	}
	if fallback != "" {
		return fallback
	}
	return err.Error()
}
