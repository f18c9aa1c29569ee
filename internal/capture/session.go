// Package capture owns the microphone recording lifecycle: a Session moves
// between Idle and Recording, collecting device chunks into a Buffer and
// writing them out as a WAV file on stop.
package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/petems/whisper-scribe/internal/audio"
	"github.com/petems/whisper-scribe/internal/wavfile"
)

// SampleRate is fixed by what the downstream recognizer expects.
const SampleRate = 16000

var (
	// ErrAlreadyRecording is returned by Start while a session is live.
	ErrAlreadyRecording = errors.New("recording already in progress")
	// ErrNotRecording is returned by Stop when nothing is recording.
	ErrNotRecording = errors.New("no active recording to stop")
	// ErrNoData is returned by Stop when the device delivered no audio.
	// It is an expected outcome (start immediately followed by stop), not a
	// fault; no file is written.
	ErrNoData = errors.New("no audio data was recorded")
)

// Session is a single-user recording session. At most one capture task runs
// at a time; Start while recording is rejected rather than double-started.
// Stop may be called from a different goroutine than the one that started.
type Session struct {
	dev      audio.Capture
	deviceID string
	log      zerolog.Logger

	mu        sync.Mutex
	recording bool
	buf       *Buffer
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewSession creates an idle session bound to the given capture device.
func NewSession(dev audio.Capture, deviceID string, log zerolog.Logger) *Session {
	return &Session{
		dev:      dev,
		deviceID: deviceID,
		log:      log,
	}
}

// Recording reports whether a capture task is currently live.
func (s *Session) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}

// Start transitions Idle -> Recording: allocates a fresh buffer and launches
// the background capture task. A second Start without an intervening Stop
// returns ErrAlreadyRecording and leaves the live session untouched.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recording {
		s.log.Info().Msg("Recording is already in progress")
		return ErrAlreadyRecording
	}

	s.log.Info().Msg("Starting continuous recording")

	s.recording = true
	s.buf = NewBuffer()
	s.done = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	go s.run(ctx, s.buf, s.done)

	return nil
}

// run is the background capture task. Its lifetime is bounded exactly by the
// Recording state: it exits once ctx is cancelled and the device has been
// told to stop, after draining chunks the device delivered before teardown.
func (s *Session) run(ctx context.Context, buf *Buffer, done chan struct{}) {
	defer close(done)

	chunks := make(chan []int16, 8)

	if err := s.dev.Start(ctx, s.deviceID, SampleRate, chunks); err != nil {
		s.log.Error().Err(err).Msg("Failed to open audio input")
		return
	}
	defer s.dev.Stop()

	for {
		select {
		case <-ctx.Done():
			// Keep whatever was already in flight; anything the device
			// produces after this point is dropped by its own ctx check.
			for {
				select {
				case chunk := <-chunks:
					buf.Append(chunk)
				default:
					return
				}
			}
		case chunk := <-chunks:
			buf.Append(chunk)
		}
	}
}

// Stop transitions Recording -> Idle, joins the background capture task (so
// no further chunk can land after it returns), and writes the buffered audio
// to filename as a 16 kHz mono WAV, creating parent directories as needed.
// It returns the written path, or ErrNotRecording / ErrNoData.
func (s *Session) Stop(filename string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.recording {
		s.log.Info().Msg("No active recording to stop")
		return "", ErrNotRecording
	}

	s.log.Info().Msg("Stopping recording")
	s.recording = false

	s.cancel()
	// Join: after this the device is released and the buffer is ours alone.
	<-s.done

	if s.buf.Len() == 0 {
		s.log.Info().Msg("No audio data was recorded")
		return "", ErrNoData
	}

	if dir := filepath.Dir(filename); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	samples := s.buf.Concat()
	if err := wavfile.Write(filename, samples, SampleRate); err != nil {
		return "", err
	}

	s.log.Info().
		Str("path", filename).
		Int("samples", len(samples)).
		Int("chunks", s.buf.Chunks()).
		Msg("Audio saved")

	return filename, nil
}
