package capture

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeStream hands out a fixed chunk per read until closed.
type fakeStream struct {
	mu     sync.Mutex
	closed bool
	chunk  []int16
	reads  int
}

func (s *fakeStream) Read() ([]int16, error) {
	// Pace the reader so tests get a handful of chunks, not millions.
	time.Sleep(time.Millisecond)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errors.New("stream closed")
	}
	s.reads++
	out := make([]int16, len(s.chunk))
	copy(out, s.chunk)
	return out, nil
}

func (s *fakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeStream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakeDevice struct {
	mu      sync.Mutex
	stream  *fakeStream
	openErr error
	opens   int
}

func (d *fakeDevice) Open(cfg Config) (Stream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opens++
	if d.openErr != nil {
		return nil, d.openErr
	}
	d.stream = &fakeStream{chunk: []int16{1, -1, 2, -2}}
	return d.stream, nil
}

func testConfig() Config {
	return Config{SampleRate: 16000, Channels: 1, FrameSize: 4}
}

func waitForChunks(t *testing.T, s *Session) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for s.ChunkCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no chunks buffered within deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestStartStopProducesWAV(t *testing.T) {
	dev := &fakeDevice{}
	s := NewSession(dev, testConfig())

	if err := s.Start(2); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if s.State() != StateRecording {
		t.Fatalf("state: got %s, want recording", s.State())
	}
	waitForChunks(t, s)

	artifact, err := s.Stop()
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if s.State() != StateStopped {
		t.Errorf("state after stop: got %s, want stopped", s.State())
	}
	if artifact.PromptIndex != 2 {
		t.Errorf("prompt index: got %d, want 2", artifact.PromptIndex)
	}
	if !dev.stream.isClosed() {
		t.Error("stop must release the device stream")
	}
	if !bytes.HasPrefix(artifact.WAV, []byte("RIFF")) {
		t.Errorf("artifact is not a WAV file: % x", artifact.WAV[:min(8, len(artifact.WAV))])
	}
	if len(artifact.WAV) <= 44 {
		t.Error("artifact carries no audio data")
	}
}

func TestStopWithoutStart(t *testing.T) {
	s := NewSession(&fakeDevice{}, testConfig())
	if _, err := s.Stop(); !errors.Is(err, ErrNotRecording) {
		t.Errorf("Stop on idle session: got %v, want ErrNotRecording", err)
	}
}

func TestDeniedDeviceReturnsToIdle(t *testing.T) {
	dev := &fakeDevice{openErr: errors.New("permission denied")}
	s := NewSession(dev, testConfig())

	err := s.Start(0)
	var denied *CaptureDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("expected CaptureDeniedError, got %v", err)
	}
	if s.State() != StateIdle {
		t.Errorf("state after denial: got %s, want idle", s.State())
	}

	// The guard is released; a later attempt may succeed.
	dev.openErr = nil
	if err := s.Start(0); err != nil {
		t.Fatalf("retry after denial failed: %v", err)
	}
	s.Abort()
}

func TestSecondSessionRejectedWhileRecording(t *testing.T) {
	dev := &fakeDevice{}
	first := NewSession(dev, testConfig())
	if err := first.Start(0); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitForChunks(t, first)
	before := first.ChunkCount()

	second := NewSession(&fakeDevice{}, testConfig())
	if err := second.Start(1); !errors.Is(err, ErrCaptureBusy) {
		t.Fatalf("second Start: got %v, want ErrCaptureBusy", err)
	}
	if second.State() != StateIdle {
		t.Errorf("rejected session state: got %s, want idle", second.State())
	}

	// The active session keeps recording, its buffer intact or growing.
	if first.State() != StateRecording {
		t.Errorf("active session state: got %s, want recording", first.State())
	}
	if first.ChunkCount() < before {
		t.Error("rejected start must not touch the active session's buffer")
	}

	if _, err := first.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	// Device is free again.
	third := NewSession(&fakeDevice{}, testConfig())
	if err := third.Start(1); err != nil {
		t.Fatalf("Start after stop failed: %v", err)
	}
	third.Abort()
}

func TestNoChunksAfterStop(t *testing.T) {
	dev := &fakeDevice{}
	s := NewSession(dev, testConfig())
	if err := s.Start(0); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitForChunks(t, s)

	if _, err := s.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	count := s.ChunkCount()

	time.Sleep(20 * time.Millisecond)
	if s.ChunkCount() != count {
		t.Error("chunks buffered after Stop returned")
	}
}

func TestAbortReleasesStream(t *testing.T) {
	dev := &fakeDevice{}
	s := NewSession(dev, testConfig())
	if err := s.Start(0); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitForChunks(t, s)

	s.Abort()

	if s.State() != StateIdle {
		t.Errorf("state after abort: got %s, want idle", s.State())
	}
	if !dev.stream.isClosed() {
		t.Error("abort must release the device stream")
	}
	if s.ChunkCount() != 0 {
		t.Error("abort must discard buffered chunks")
	}

	// Guard released: a fresh session can record.
	next := NewSession(dev, testConfig())
	if err := next.Start(0); err != nil {
		t.Fatalf("Start after abort failed: %v", err)
	}
	next.Abort()
}

// blockingStream parks Read until Close unblocks it, keeping the reader
// goroutine in flight so overlapping teardown calls can race.
type blockingStream struct {
	mu      sync.Mutex
	closed  bool
	unblock chan struct{}
}

func newBlockingStream() *blockingStream {
	return &blockingStream{unblock: make(chan struct{})}
}

func (s *blockingStream) Read() ([]int16, error) {
	<-s.unblock
	return nil, errors.New("stream closed")
}

func (s *blockingStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.unblock)
	}
	return nil
}

type blockingDevice struct {
	stream *blockingStream
}

func (d *blockingDevice) Open(cfg Config) (Stream, error) {
	d.stream = newBlockingStream()
	return d.stream, nil
}

func TestConcurrentStopClaimedOnce(t *testing.T) {
	dev := &blockingDevice{}
	s := NewSession(dev, testConfig())
	if err := s.Start(0); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Stop()
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, rejected int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrNotRecording):
			rejected++
		default:
			t.Errorf("unexpected Stop error: %v", err)
		}
	}
	if succeeded != 1 || rejected != 1 {
		t.Errorf("overlapping stops: %d succeeded, %d rejected; want exactly one of each", succeeded, rejected)
	}
	if s.State() != StateStopped {
		t.Errorf("state: got %s, want stopped", s.State())
	}

	// The guard is released exactly once and the device is free again.
	next := NewSession(&fakeDevice{}, testConfig())
	if err := next.Start(0); err != nil {
		t.Fatalf("Start after overlapping stops failed: %v", err)
	}
	next.Abort()
}

// gatedCloseStream additionally holds Close open until the test releases it,
// pinning the session in its teardown window.
type gatedCloseStream struct {
	blockingStream
	gate chan struct{}
}

func (s *gatedCloseStream) Close() error {
	_ = s.blockingStream.Close()
	<-s.gate
	return nil
}

type gatedCloseDevice struct {
	stream *gatedCloseStream
}

func (d *gatedCloseDevice) Open(cfg Config) (Stream, error) {
	d.stream = &gatedCloseStream{
		blockingStream: blockingStream{unblock: make(chan struct{})},
		gate:           make(chan struct{}),
	}
	return d.stream, nil
}

func TestAbortDuringStopDoesNotInterfere(t *testing.T) {
	dev := &gatedCloseDevice{}
	s := NewSession(dev, testConfig())
	if err := s.Start(0); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	stopDone := make(chan error, 1)
	go func() {
		_, err := s.Stop()
		stopDone <- err
	}()

	deadline := time.Now().Add(time.Second)
	for s.State() != StateStopping {
		if time.Now().After(deadline) {
			t.Fatal("session never entered the teardown window")
		}
		time.Sleep(time.Millisecond)
	}

	// Abort while the stop is mid-teardown: it must defer to the stop, not
	// close the quit channel a second time.
	s.Abort()

	close(dev.stream.gate)
	select {
	case err := <-stopDone:
		if err != nil {
			t.Fatalf("Stop failed: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Stop did not finish")
	}

	if s.State() != StateStopped {
		t.Errorf("state: got %s, want stopped", s.State())
	}

	// Guard released by the stop; the device is free.
	next := NewSession(&fakeDevice{}, testConfig())
	if err := next.Start(0); err != nil {
		t.Fatalf("Start after abort-during-stop failed: %v", err)
	}
	next.Abort()
}

func TestEncodeWAVSampleCount(t *testing.T) {
	chunks := [][]int16{{1, 2, 3, 4}, {5, 6, 7, 8}}
	data, err := encodeWAV(chunks, 16000, 1)
	if err != nil {
		t.Fatalf("encodeWAV failed: %v", err)
	}

	// 16-bit mono: 8 samples = 16 bytes of PCM after the 44-byte header.
	if len(data) != 44+16 {
		t.Errorf("wav size: got %d, want 60", len(data))
	}
}
