package ports

import (
	"context"
	"io"
	"time"

	"advisorvoice/internal/domain"
)

// AudioConfig describes how the microphone should be captured.
type AudioConfig struct {
	SampleRate  int
	Channels    int
	InputFormat string
	InputDevice string
}

// AudioSession is a live capture session.
type AudioSession interface {
	io.ReadCloser
	Stop() error
}

// AudioCapture creates microphone capture sessions.
type AudioCapture interface {
	Start(ctx context.Context, cfg AudioConfig) (AudioSession, error)
}

// StreamingConfig describes provider-agnostic streaming settings.
type StreamingConfig struct {
	SampleRate     int
	Channels       int
	Encoding       string
	InterimResults bool
}

// StreamingSession is an active provider websocket session.
type StreamingSession interface {
	SendAudio(chunk []byte) error
	CloseSend() error
	Events() <-chan domain.TranscriptEvent
	Wait() error
	Close() error
}

// TranscriptionProvider starts streaming transcription sessions.
type TranscriptionProvider interface {
	StartStreaming(ctx context.Context, cfg StreamingConfig) (StreamingSession, error)
}

// RulesEngine transforms transcripts using deterministic rules.
type RulesEngine interface {
	Apply(text string) (string, error)
}

// TranscriptHandler receives the single terminal event of a listening session.
type TranscriptHandler interface {
	OnTranscript(utterance domain.Utterance)
	OnRecognitionError(kind domain.RecognitionErrorKind, err error)
}

// VoiceOptions tunes synthesized speech.
type VoiceOptions struct {
	Locale string
	Rate   float64
	Pitch  float64
	Volume float64
}

// Speaker synthesizes speech. A new Speak cancels any utterance still playing.
type Speaker interface {
	Speak(ctx context.Context, text string, opts VoiceOptions) error
	Cancel() error
}

// Shell owns screen and module navigation state.
type Shell interface {
	Navigate(screen domain.Screen)
	OpenModule(module domain.ModuleID, params map[string]string)
	CommandDispatched(envelope map[string]any)
}

// NotificationSink records notifications; exact (title, message) duplicates are dropped.
type NotificationSink interface {
	Add(kind, title, message string, priority domain.NotificationPriority, showToast bool) (domain.Notification, bool)
}

// Scheduler runs fn after d. The returned func cancels a pending run.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (cancel func() bool)
}

// EventSink emits backend state/events to the UI.
type EventSink interface {
	SessionStateChanged(state domain.SessionState, reason domain.SessionStateReason)
	PartialTranscript(text string)
	FinalTranscript(raw string, normalized string)
	SessionError(code domain.ErrorCode, detail string)
}
