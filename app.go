package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"advisorvoice/internal/bootstrap"
	"advisorvoice/internal/config"
	"advisorvoice/internal/domain"
	"advisorvoice/internal/logging"
	"advisorvoice/internal/notifications"
	"advisorvoice/internal/ports"
	"advisorvoice/internal/usecase"
)

const (
	eventSession      = "advisor:session"
	eventPartial      = "advisor:partial"
	eventFinal        = "advisor:final"
	eventError        = "advisor:error"
	eventNotification = "advisor:notification"
	eventNavigate     = "advisor:navigate"
	eventModule       = "advisor:module"
	eventCommand      = "advisor:command"
	eventSpeak        = "advisor:speak"
	eventSpeakCancel  = "advisor:speak-cancel"
)

// App is the Wails application root. It is the shell the dispatcher drives
// and the event sink for the conversation.
type App struct {
	ctx  context.Context
	emit func(ctx context.Context, name string, data ...any)

	conversation  *usecase.Conversation
	notifications *notifications.Store
	cfg           config.Config
	logger        *slog.Logger
	newLogger     func(level string) *slog.Logger
	bootErr       error
}

func NewApp() *App {
	return &App{
		emit: runtime.EventsEmit,
		newLogger: func(level string) *slog.Logger {
			return logging.Terminal(os.Stderr, level)
		},
	}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	if err := config.LoadEnvFiles(".env"); err != nil {
		a.bootErr = err
		a.SessionError(domain.ErrorCodeStartup, err.Error())
		return
	}
	cfg, err := config.Load()
	if err != nil {
		a.bootErr = err
		a.SessionError(domain.ErrorCodeStartup, err.Error())
		return
	}
	a.logger = a.newLogger(cfg.LogLevel)

	services, err := bootstrap.BuildWithConfig(cfg, bootstrap.Deps{
		Events:          a,
		Shell:           a,
		FrontendSpeaker: frontendSpeaker{app: a},
		Observer:        a.notificationAdded,
		Logger:          a.logger,
	})
	if err != nil {
		a.bootErr = err
		a.logger.Error("startup failed", "err", err)
		a.SessionError(domain.ErrorCodeStartup, err.Error())
		return
	}

	a.cfg = services.Config
	a.conversation = services.Conversation
	a.notifications = services.Notifications
	a.SessionStateChanged(domain.SessionStateIdle, domain.SessionReasonReady)
}

func (a *App) shutdown(_ context.Context) {
	if a.conversation != nil {
		a.conversation.Stop()
	}
}

// StartListening is tap-to-talk.
func (a *App) StartListening() (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	if err := a.conversation.Activate(a.ctx); err != nil {
		return a.status(), err
	}
	return a.status(), nil
}

// StopListening ends listening and any pending follow-up. Safe when idle.
func (a *App) StopListening() domain.Status {
	if a.conversation == nil {
		return a.GetStatus()
	}
	a.conversation.Stop()
	return a.status()
}

// SubmitText runs a typed utterance through the same pipeline as speech.
func (a *App) SubmitText(text string) (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	if err := a.conversation.Submit(a.ctx, text); err != nil {
		return a.status(), err
	}
	return a.status(), nil
}

// GetStatus returns the current conversation status and unread count.
func (a *App) GetStatus() domain.Status {
	if a.conversation == nil {
		if a.bootErr != nil {
			return domain.Status{State: domain.SessionStateError, Message: a.bootErr.Error()}
		}
		return domain.Status{State: domain.SessionStateIdle}
	}
	return a.status()
}

func (a *App) status() domain.Status {
	status := a.conversation.Status()
	if a.notifications != nil {
		status.Unread = a.notifications.UnreadCount()
	}
	return status
}

// GetNotifications returns notifications, newest first.
func (a *App) GetNotifications() []domain.Notification {
	if a.notifications == nil {
		return []domain.Notification{}
	}
	return a.notifications.List()
}

func (a *App) MarkNotificationRead(id string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.notifications.MarkRead(id)
}

func (a *App) MarkAllNotificationsRead() {
	if a.notifications != nil {
		a.notifications.MarkAllRead()
	}
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}

	return map[string]string{
		"provider":         "Deepgram",
		"model":            a.cfg.Deepgram.Model,
		"language":         a.cfg.Deepgram.Language,
		"voiceLocale":      a.cfg.Voice.Locale,
		"speaker":          a.cfg.Voice.Speaker,
		"rulesFile":        a.cfg.Rules.Path,
		"audioInput":       a.cfg.Audio.InputDevice,
		"audioInputFormat": a.cfg.Audio.InputFormat,
	}
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.conversation == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

func (a *App) send(name string, data any) {
	if a.ctx == nil || a.emit == nil {
		return
	}
	a.emit(a.ctx, name, data)
}

// SessionStateChanged emits conversation lifecycle updates to the frontend.
func (a *App) SessionStateChanged(state domain.SessionState, reason domain.SessionStateReason) {
	a.send(eventSession, map[string]string{
		"state":   string(state),
		"reason":  string(reason),
		"message": sessionReasonMessage(reason),
	})
}

// PartialTranscript emits live partial transcript text.
func (a *App) PartialTranscript(text string) {
	a.send(eventPartial, map[string]string{"text": text})
}

// FinalTranscript emits the utterance that is about to be interpreted.
func (a *App) FinalTranscript(raw string, normalized string) {
	a.send(eventFinal, map[string]string{
		"raw":        raw,
		"normalized": normalized,
	})
}

// SessionError emits backend errors to the UI.
func (a *App) SessionError(code domain.ErrorCode, detail string) {
	a.send(eventError, map[string]string{
		"code":    string(code),
		"message": errorMessage(code, detail),
		"detail":  detail,
	})
}

// Navigate switches the bottom navigation tab.
func (a *App) Navigate(screen domain.Screen) {
	a.send(eventNavigate, map[string]any{
		"screenIndex": int(screen),
		"screen":      screen.String(),
	})
}

// OpenModule opens a module screen with optional parameters.
func (a *App) OpenModule(module domain.ModuleID, params map[string]string) {
	if params == nil {
		params = map[string]string{}
	}
	a.send(eventModule, map[string]any{
		"moduleId": string(module),
		"params":   params,
	})
}

// CommandDispatched mirrors every dispatched command for the UI's history.
func (a *App) CommandDispatched(envelope map[string]any) {
	a.send(eventCommand, envelope)
}

func (a *App) notificationAdded(n domain.Notification, showToast bool) {
	a.send(eventNotification, map[string]any{
		"notification": n,
		"showToast":    showToast,
	})
}

// frontendSpeaker hands speech to the webview's speech synthesis. The page
// cancels any utterance in flight before speaking a new one.
type frontendSpeaker struct {
	app *App
}

func (s frontendSpeaker) Speak(_ context.Context, text string, opts ports.VoiceOptions) error {
	s.app.send(eventSpeak, map[string]string{
		"text":   text,
		"lang":   opts.Locale,
		"rate":   strconv.FormatFloat(opts.Rate, 'f', -1, 64),
		"pitch":  strconv.FormatFloat(opts.Pitch, 'f', -1, 64),
		"volume": strconv.FormatFloat(opts.Volume, 'f', -1, 64),
	})
	return nil
}

func (s frontendSpeaker) Cancel() error {
	s.app.send(eventSpeakCancel, nil)
	return nil
}

func sessionReasonMessage(reason domain.SessionStateReason) string {
	switch reason {
	case domain.SessionReasonReady:
		return "Tap to talk"
	case domain.SessionReasonListeningStarted:
		return "Listening..."
	case domain.SessionReasonListeningStopped:
		return "Stopped listening"
	case domain.SessionReasonTranscriptReady:
		return "Got it"
	case domain.SessionReasonTextSubmitted:
		return "Command received"
	case domain.SessionReasonNoSpeech:
		return "Didn't hear anything"
	case domain.SessionReasonPermissionDenied:
		return "Microphone access needed"
	case domain.SessionReasonNetworkUnavailable:
		return "Speech service unreachable"
	case domain.SessionReasonAborted:
		return "Listening cancelled"
	case domain.SessionReasonRecognitionFailed:
		return "Speech recognition failed"
	case domain.SessionReasonResponding:
		return "Responding"
	case domain.SessionReasonFollowUpScheduled:
		return "Anything else?"
	case domain.SessionReasonTurnComplete:
		return "Done"
	default:
		return ""
	}
}

func errorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Startup failed"
	case domain.ErrorCodeAudioStop:
		return "Audio stop issue"
	case domain.ErrorCodeAudioStream:
		return "Audio streaming issue"
	case domain.ErrorCodeRecognition:
		return "Speech recognition error"
	case domain.ErrorCodeRules:
		return "Transcript cleanup failed"
	case domain.ErrorCodeSpeech:
		return "Speech output failed"
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}
