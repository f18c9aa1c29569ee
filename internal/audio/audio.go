package audio

import "context"

// Capture defines the interface for audio capture. Implementations open the
// input device at the requested sample rate (mono, 16-bit signed samples) and
// deliver each chunk on out until ctx is cancelled. Chunks are freshly
// allocated per delivery; the device's internal buffer is never handed out.
type Capture interface {
	Start(ctx context.Context, deviceID string, sampleRate int, out chan<- []int16) error
	Stop() error
	ListDevices() ([]Device, error)
	Close() error
}

// Device represents an audio input device
type Device struct {
	ID      string
	Name    string
	Default bool
}
