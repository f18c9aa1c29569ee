package transcribe

import "errors"

// ErrToolNotFound indicates the sox or whisper-cli executable is missing
// from its configured location.
var ErrToolNotFound = errors.New("tool not found")

// ErrModelNotFound indicates the recognition model file is missing.
var ErrModelNotFound = errors.New("model not found")

// ErrInputNotFound indicates the caller-supplied audio file does not exist.
var ErrInputNotFound = errors.New("audio file not found")

// ErrPreprocessingFailed indicates sox exited non-zero or failed to launch.
var ErrPreprocessingFailed = errors.New("sox processing failed")

// ErrCleanedFileMissing indicates sox exited zero but produced no output file.
var ErrCleanedFileMissing = errors.New("cleaned audio file not found after sox processing")

// ErrRecognitionFailed indicates whisper-cli exited non-zero.
var ErrRecognitionFailed = errors.New("whisper CLI failed")

// ErrEmptyTranscript indicates recognition succeeded but returned no text.
var ErrEmptyTranscript = errors.New("transcription completed but returned empty text")

// ErrUnexpectedFailure covers uncategorized process or OS faults.
var ErrUnexpectedFailure = errors.New("unexpected failure during transcription")
