package capture

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

var paInitOnce sync.Once

// PortAudioDevice captures from the default system input device.
type PortAudioDevice struct{}

// Open initializes PortAudio (once per process) and starts an input stream
// in the requested format.
func (PortAudioDevice) Open(cfg Config) (Stream, error) {
	var initErr error
	paInitOnce.Do(func() {
		initErr = portaudio.Initialize()
	})
	if initErr != nil {
		return nil, fmt.Errorf("initialize portaudio: %w", initErr)
	}

	buf := make([]int16, cfg.FrameSize*cfg.Channels)
	stream, err := portaudio.OpenDefaultStream(cfg.Channels, 0, float64(cfg.SampleRate), cfg.FrameSize, buf)
	if err != nil {
		return nil, fmt.Errorf("open input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return nil, fmt.Errorf("start input stream: %w", err)
	}

	return &portAudioStream{stream: stream, buf: buf}, nil
}

type portAudioStream struct {
	mu     sync.Mutex
	stream *portaudio.Stream
	buf    []int16
	closed bool
}

func (s *portAudioStream) Read() ([]int16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("stream closed")
	}
	if err := s.stream.Read(); err != nil {
		return nil, err
	}

	out := make([]int16, len(s.buf))
	copy(out, s.buf)
	return out, nil
}

func (s *portAudioStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	_ = s.stream.Stop()
	return s.stream.Close()
}
