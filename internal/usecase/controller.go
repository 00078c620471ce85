package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"advisorvoice/internal/domain"
	"advisorvoice/internal/ports"
)

var ErrNoSpeech = errors.New("no speech detected")

// ListenConfig controls one listening session.
type ListenConfig struct {
	Audio          ports.AudioConfig
	Streaming      ports.StreamingConfig
	ChunkSize      int
	StreamingGrace time.Duration
	// Window bounds a session that never reaches a speech-final result.
	Window time.Duration
}

// ListeningController is the speech transcript source. It runs at most one
// capture+recognition session and reports exactly one terminal event per
// session to its TranscriptHandler.
type ListeningController struct {
	audio     ports.AudioCapture
	provider  ports.TranscriptionProvider
	events    ports.EventSink
	finalizer transcriptFinalizer
	logger    *slog.Logger
	cfg       ListenConfig

	mu      sync.Mutex
	current *activeSession
	handler ports.TranscriptHandler
}

func NewListeningController(
	audio ports.AudioCapture,
	provider ports.TranscriptionProvider,
	rules ports.RulesEngine,
	events ports.EventSink,
	logger *slog.Logger,
	cfg ListenConfig,
) *ListeningController {
	if cfg.ChunkSize < 256 {
		cfg.ChunkSize = 4096
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ListeningController{
		audio:     audio,
		provider:  provider,
		events:    events,
		finalizer: newTranscriptFinalizer(rules, events, logger),
		logger:    logger,
		cfg:       cfg,
	}
}

// SetHandler installs the receiver of terminal session events.
func (c *ListeningController) SetHandler(handler ports.TranscriptHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = handler
}

// Start opens a session. It is a no-op while a session is already running.
func (c *ListeningController) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		c.logger.Debug("listen request ignored, session already active")
		return nil
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	stream, err := c.provider.StartStreaming(sessionCtx, c.cfg.Streaming)
	if err != nil {
		cancel()
		return err
	}

	audioSession, err := c.audio.Start(sessionCtx, c.cfg.Audio)
	if err != nil {
		_ = stream.Close()
		cancel()
		return err
	}

	active := newActiveSession(cancel, audioSession, stream)
	c.current = active

	go consumeTranscriptionEvents(active.stream, active.aggregator, c.events, active.markSpeechFinal, active.eventsDone)
	go pumpAudioChunks(active.audio, active.stream, c.cfg.ChunkSize, c.events, active.fail, active.audioDone)
	go c.watch(sessionCtx, active)
	return nil
}

// Stop aborts the running session, if any, and waits for it to wind down.
// Calling it while idle is a no-op.
func (c *ListeningController) Stop() {
	c.mu.Lock()
	active := c.current
	c.mu.Unlock()

	if active == nil {
		return
	}
	active.requestStop()
	<-active.finished
}

func (c *ListeningController) Listening() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}

func (c *ListeningController) watch(ctx context.Context, active *activeSession) {
	var window <-chan time.Time
	if c.cfg.Window > 0 {
		timer := time.NewTimer(c.cfg.Window)
		defer timer.Stop()
		window = timer.C
	}

	select {
	case <-active.speechFinal:
	case <-active.eventsDone:
	case <-window:
		c.logger.Debug("listen window elapsed")
	case <-active.stopped:
	case <-ctx.Done():
		active.requestStop()
	}

	if active.stopRequested() {
		c.abort(active)
		c.finish(active, func(h ports.TranscriptHandler) {
			h.OnRecognitionError(domain.RecognitionAborted, context.Canceled)
		})
		return
	}

	raw, streamErr := c.drain(active)
	if active.stopRequested() {
		c.finish(active, func(h ports.TranscriptHandler) {
			h.OnRecognitionError(domain.RecognitionAborted, context.Canceled)
		})
		return
	}

	if raw == "" {
		err := streamErr
		if err == nil {
			err = active.captureError()
		}
		if err == nil {
			err = domain.NewRecognitionError(domain.RecognitionNoSpeech, ErrNoSpeech)
		} else {
			c.events.SessionError(domain.ErrorCodeRecognition, err.Error())
		}
		kind := domain.RecognitionErrorKindOf(err)
		c.finish(active, func(h ports.TranscriptHandler) {
			h.OnRecognitionError(kind, err)
		})
		return
	}

	utterance := c.finalizer.Finalize(raw)
	c.finish(active, func(h ports.TranscriptHandler) {
		h.OnTranscript(utterance)
	})
}

// drain stops capture, lets trailing audio reach the provider and waits for
// the stream to deliver its last results.
func (c *ListeningController) drain(active *activeSession) (string, error) {
	if err := active.audio.Stop(); err != nil {
		c.events.SessionError(domain.ErrorCodeAudioStop, "failed to stop audio capture cleanly")
	}

	if c.cfg.StreamingGrace > 0 {
		timer := time.NewTimer(c.cfg.StreamingGrace)
		select {
		case <-timer.C:
		case <-active.stopped:
			timer.Stop()
		}
	}

	_ = active.stream.CloseSend()
	streamErr := waitForStream(active.stream, 4*time.Second)
	<-active.eventsDone
	<-active.audioDone

	return active.aggregator.Raw(), streamErr
}

func (c *ListeningController) abort(active *activeSession) {
	active.cancel()
	_ = active.audio.Stop()
	_ = active.stream.Close()
	<-active.eventsDone
	<-active.audioDone
}

// finish releases the session slot before delivering the terminal event, so
// the handler may start a new session right away.
func (c *ListeningController) finish(active *activeSession, deliver func(ports.TranscriptHandler)) {
	active.cancel()

	c.mu.Lock()
	if c.current == active {
		c.current = nil
	}
	handler := c.handler
	c.mu.Unlock()

	if handler != nil {
		deliver(handler)
	}
	close(active.finished)
}
