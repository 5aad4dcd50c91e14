// Package capture owns the microphone for the lifetime of one recording:
// device acquisition, chunk buffering, and finalization into a WAV artifact.
// The device stream is the one exclusively-owned resource in the client; it
// is released on every exit path, including errors and aborts.
package capture

import (
	"errors"
	"fmt"
	"sync"
)

// State is the lifecycle state of a capture session.
type State int

const (
	StateIdle State = iota
	StateRequesting
	StateRecording
	StateStopping
	StateStopped
)

// String returns the state name for logs and error messages.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateRecording:
		return "recording"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Config describes the capture format. The artifact is always encoded as
// 16-bit PCM WAV regardless of device characteristics.
type Config struct {
	SampleRate int // e.g. 16000
	Channels   int // e.g. 1
	FrameSize  int // samples per device read
}

// Device opens microphone streams. The portaudio-backed implementation is
// the production device; tests substitute fakes.
type Device interface {
	Open(cfg Config) (Stream, error)
}

// Stream delivers PCM chunks from an open device. Close releases the
// underlying hardware; after Close no further chunks are delivered.
type Stream interface {
	Read() ([]int16, error)
	Close() error
}

// CaptureDeniedError reports that the microphone could not be acquired:
// permission denied or device failure. Recoverable; the session returns to
// idle and a new start may be attempted.
type CaptureDeniedError struct {
	Err error
}

func (e *CaptureDeniedError) Error() string {
	return fmt.Sprintf("microphone unavailable: %v", e.Err)
}

func (e *CaptureDeniedError) Unwrap() error { return e.Err }

var (
	// ErrCaptureBusy is returned when Start is called while another session
	// holds the device. This is a programming error, not a user condition:
	// the flow never exposes two concurrent recordings.
	ErrCaptureBusy = errors.New("capture: another session is already recording")

	// ErrNotRecording is returned when Stop is called outside the Recording
	// state.
	ErrNotRecording = errors.New("capture: stop called while not recording")
)

// active guards the system-wide single-recording invariant.
var (
	activeMu sync.Mutex
	active   *Session
)

// Artifact is the finalized output of one completed capture session.
type Artifact struct {
	PromptIndex int
	WAV         []byte
}

// Session is the lifecycle of one microphone recording. A Session is used
// once: Idle -> Requesting -> Recording -> Stopped.
type Session struct {
	device Device
	cfg    Config

	mu          sync.Mutex
	state       State
	stream      Stream
	chunks      [][]int16
	promptIndex int

	quit       chan struct{}
	readerDone chan struct{}
}

// NewSession creates an idle capture session for the given device and
// format.
func NewSession(device Device, cfg Config) *Session {
	return &Session{
		device: device,
		cfg:    cfg,
		state:  StateIdle,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start requests the microphone and begins buffering chunks for the given
// prompt index. On denial or device error the session returns to Idle and a
// CaptureDeniedError is raised; existing buffered data elsewhere is never
// touched.
func (s *Session) Start(promptIndex int) error {
	activeMu.Lock()
	if active != nil {
		activeMu.Unlock()
		return ErrCaptureBusy
	}
	active = s
	activeMu.Unlock()

	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		s.releaseGuard()
		return ErrCaptureBusy
	}
	s.state = StateRequesting
	s.promptIndex = promptIndex
	s.mu.Unlock()

	stream, err := s.device.Open(s.cfg)
	if err != nil {
		s.mu.Lock()
		s.state = StateIdle
		s.mu.Unlock()
		s.releaseGuard()
		return &CaptureDeniedError{Err: err}
	}

	s.mu.Lock()
	s.stream = stream
	s.state = StateRecording
	s.quit = make(chan struct{})
	s.readerDone = make(chan struct{})
	s.mu.Unlock()

	go s.readLoop(stream)
	return nil
}

// readLoop buffers chunks until the session is stopped or the stream fails.
func (s *Session) readLoop(stream Stream) {
	defer close(s.readerDone)
	for {
		select {
		case <-s.quit:
			return
		default:
		}

		chunk, err := stream.Read()
		if err != nil {
			return
		}

		s.mu.Lock()
		if s.state == StateRecording {
			buf := make([]int16, len(chunk))
			copy(buf, chunk)
			s.chunks = append(s.chunks, buf)
		}
		s.mu.Unlock()
	}
}

// Stop finalizes the buffered chunks into one WAV artifact, releases the
// device stream, and transitions to Stopped. Chunk delivery completes before
// Stop returns; no chunks are accepted afterwards. Only valid from
// Recording.
func (s *Session) Stop() (Artifact, error) {
	s.mu.Lock()
	if s.state != StateRecording {
		s.mu.Unlock()
		return Artifact{}, ErrNotRecording
	}
	// Claim the teardown before unlocking so an overlapping Stop or Abort
	// cannot close quit a second time.
	s.state = StateStopping
	quit := s.quit
	done := s.readerDone
	stream := s.stream
	s.mu.Unlock()

	close(quit)
	// Unblock a pending read; the reader discards the error and exits.
	_ = stream.Close()
	<-done

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateStopped
	s.stream = nil
	s.releaseGuard()

	wavData, err := encodeWAV(s.chunks, s.cfg.SampleRate, s.cfg.Channels)
	if err != nil {
		return Artifact{}, fmt.Errorf("finalize recording: %w", err)
	}

	return Artifact{PromptIndex: s.promptIndex, WAV: wavData}, nil
}

// Abort releases the device stream and discards all buffered chunks. Safe to
// call from any state; used on restart and error paths so the microphone is
// never leaked.
func (s *Session) Abort() {
	s.mu.Lock()
	if s.state == StateStopping {
		// An in-flight Stop owns the stream teardown; it will release the
		// device and the guard.
		s.mu.Unlock()
		return
	}
	stream := s.stream
	quit := s.quit
	done := s.readerDone
	recording := s.state == StateRecording
	s.stream = nil
	s.chunks = nil
	s.state = StateIdle
	s.mu.Unlock()

	if recording {
		close(quit)
	}
	if stream != nil {
		_ = stream.Close()
	}
	if recording {
		<-done
	}
	s.releaseGuard()
}

// releaseGuard clears the system-wide active-session slot if held by s.
func (s *Session) releaseGuard() {
	activeMu.Lock()
	if active == s {
		active = nil
	}
	activeMu.Unlock()
}

// ChunkCount returns the number of buffered chunks. Used by tests to verify
// that a rejected start leaves an active session's buffer untouched.
func (s *Session) ChunkCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chunks)
}
