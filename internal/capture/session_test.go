package capture

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/petems/whisper-scribe/internal/audio"
	"github.com/petems/whisper-scribe/internal/wavfile"
)

// mockCapture stands in for the PortAudio device layer: it records the
// context and channel handed to Start so tests can emit chunks like a device
// callback would.
type mockCapture struct {
	mu  sync.Mutex
	ctx context.Context
	out chan<- []int16
}

func (m *mockCapture) Start(ctx context.Context, deviceID string, sampleRate int, out chan<- []int16) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ctx = ctx
	m.out = out
	return nil
}

func (m *mockCapture) Stop() error { return nil }

func (m *mockCapture) ListDevices() ([]audio.Device, error) {
	return []audio.Device{{ID: "default", Name: "Default", Default: true}}, nil
}

func (m *mockCapture) Close() error { return nil }

// emit delivers one chunk the way the device read loop would, waiting for
// the session to have opened (or reopened) the stream first.
func (m *mockCapture) emit(t *testing.T, chunk []int16) {
	t.Helper()

	deadline := time.Now().Add(time.Second)
	for {
		m.mu.Lock()
		ctx, out := m.ctx, m.out
		m.mu.Unlock()

		if ctx != nil && ctx.Err() == nil {
			select {
			case out <- chunk:
			case <-ctx.Done():
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("device was never opened")
		}
		time.Sleep(time.Millisecond)
	}
}

// emitLate sends on whatever stream is registered, even a torn-down one,
// imitating a device callback firing after teardown.
func (m *mockCapture) emitLate(chunk []int16) {
	m.mu.Lock()
	ctx, out := m.ctx, m.out
	m.mu.Unlock()

	select {
	case out <- chunk:
	case <-ctx.Done():
	default:
	}
}

func newTestSession() (*Session, *mockCapture) {
	mock := &mockCapture{}
	return NewSession(mock, "default", zerolog.Nop()), mock
}

func TestStopWithoutStart(t *testing.T) {
	session, _ := newTestSession()

	path := filepath.Join(t.TempDir(), "out.wav")
	if _, err := session.Stop(path); !errors.Is(err, ErrNotRecording) {
		t.Fatalf("expected ErrNotRecording, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("no file should be written when nothing was recorded")
	}
}

func TestStartWhileRecordingIsRejected(t *testing.T) {
	session, mock := newTestSession()

	if err := session.Start(); err != nil {
		t.Fatalf("first start failed: %v", err)
	}
	mock.emit(t, []int16{1, 2, 3})

	// A second start must be rejected and must not reset the live buffer.
	if err := session.Start(); !errors.Is(err, ErrAlreadyRecording) {
		t.Fatalf("expected ErrAlreadyRecording, got %v", err)
	}
	mock.emit(t, []int16{4, 5})

	path := filepath.Join(t.TempDir(), "out.wav")
	if _, err := session.Stop(path); err != nil {
		t.Fatalf("stop failed: %v", err)
	}

	samples, _, err := wavfile.Read(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	want := []int16{1, 2, 3, 4, 5}
	if len(samples) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(samples))
	}
	for i := range want {
		if samples[i] != want[i] {
			t.Fatalf("sample %d: expected %d, got %d", i, want[i], samples[i])
		}
	}
}

func TestStopWithNoAudio(t *testing.T) {
	session, _ := newTestSession()

	if err := session.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "out.wav")
	if _, err := session.Stop(path); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("no file should be written for an empty recording")
	}

	if session.Recording() {
		t.Fatal("session should be idle after stop")
	}
}

func TestStopPreservesChunkOrder(t *testing.T) {
	session, mock := newTestSession()

	if err := session.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	c1 := []int16{10, 20, 30}
	c2 := []int16{-1, -2}
	c3 := []int16{32767, -32768, 0}
	mock.emit(t, c1)
	mock.emit(t, c2)
	mock.emit(t, c3)

	// Destination directory does not exist yet; Stop must create it.
	path := filepath.Join(t.TempDir(), "recordings", "session", "out.wav")
	got, err := session.Stop(path)
	if err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if got != path {
		t.Fatalf("expected path %q, got %q", path, got)
	}

	samples, rate, err := wavfile.Read(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if rate != SampleRate {
		t.Fatalf("expected sample rate %d, got %d", SampleRate, rate)
	}

	var want []int16
	want = append(want, c1...)
	want = append(want, c2...)
	want = append(want, c3...)

	if len(samples) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(samples))
	}
	for i := range want {
		if samples[i] != want[i] {
			t.Fatalf("sample %d: expected %d, got %d", i, want[i], samples[i])
		}
	}
}

func TestNoAppendsAfterStop(t *testing.T) {
	session, mock := newTestSession()

	if err := session.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	mock.emit(t, []int16{1, 2, 3})

	path := filepath.Join(t.TempDir(), "out.wav")
	if _, err := session.Stop(path); err != nil {
		t.Fatalf("stop failed: %v", err)
	}

	buffered := session.buf.Len()

	// Simulate a device firing late after teardown. The chunk must never
	// reach the buffer.
	mock.emitLate([]int16{9, 9, 9})
	time.Sleep(50 * time.Millisecond)

	if got := session.buf.Len(); got != buffered {
		t.Fatalf("buffer mutated after stop: had %d samples, now %d", buffered, got)
	}
}

func TestRestartUsesFreshBuffer(t *testing.T) {
	session, mock := newTestSession()

	if err := session.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	mock.emit(t, []int16{1, 2, 3})

	dir := t.TempDir()
	if _, err := session.Stop(filepath.Join(dir, "first.wav")); err != nil {
		t.Fatalf("stop failed: %v", err)
	}

	if err := session.Start(); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	mock.emit(t, []int16{7})

	path := filepath.Join(dir, "second.wav")
	if _, err := session.Stop(path); err != nil {
		t.Fatalf("second stop failed: %v", err)
	}

	samples, _, err := wavfile.Read(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(samples) != 1 || samples[0] != 7 {
		t.Fatalf("second recording should contain only its own audio, got %v", samples)
	}
}
