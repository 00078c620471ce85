package usecase

import (
	"sync"

	"advisorvoice/internal/ports"
)

type activeSession struct {
	cancel func()
	audio  ports.AudioSession
	stream ports.StreamingSession

	aggregator  *transcriptAggregator
	eventsDone  chan struct{}
	audioDone   chan struct{}
	speechFinal chan struct{}

	stopOnce  sync.Once
	stopped   chan struct{}
	finalOnce sync.Once
	finished  chan struct{}

	errMu      sync.Mutex
	captureErr error
}

func newActiveSession(cancel func(), audio ports.AudioSession, stream ports.StreamingSession) *activeSession {
	return &activeSession{
		cancel:      cancel,
		audio:       audio,
		stream:      stream,
		aggregator:  newTranscriptAggregator(),
		eventsDone:  make(chan struct{}),
		audioDone:   make(chan struct{}),
		speechFinal: make(chan struct{}),
		stopped:     make(chan struct{}),
		finished:    make(chan struct{}),
	}
}

func (s *activeSession) requestStop() {
	s.stopOnce.Do(func() { close(s.stopped) })
}

func (s *activeSession) markSpeechFinal() {
	s.finalOnce.Do(func() { close(s.speechFinal) })
}

func (s *activeSession) stopRequested() bool {
	select {
	case <-s.stopped:
		return true
	default:
		return false
	}
}

func (s *activeSession) fail(err error) {
	if err == nil {
		return
	}
	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.captureErr == nil {
		s.captureErr = err
	}
}

func (s *activeSession) captureError() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.captureErr
}
