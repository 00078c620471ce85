package bootstrap

import (
	"fmt"
	"log/slog"

	"advisorvoice/internal/agenda"
	"advisorvoice/internal/audio"
	"advisorvoice/internal/config"
	"advisorvoice/internal/intent"
	"advisorvoice/internal/notifications"
	"advisorvoice/internal/phrasebook"
	"advisorvoice/internal/ports"
	"advisorvoice/internal/providers/deepgram"
	"advisorvoice/internal/rules"
	"advisorvoice/internal/speech"
	"advisorvoice/internal/speech/espeak"
	"advisorvoice/internal/usecase"
)

// Deps are the shell-side collaborators a runtime supplies.
type Deps struct {
	Events ports.EventSink
	Shell  ports.Shell
	// FrontendSpeaker backs the "frontend" speaker setting.
	FrontendSpeaker ports.Speaker
	// Observer sees every newly recorded notification.
	Observer  notifications.Observer
	Scheduler ports.Scheduler
	Logger    *slog.Logger
}

// Services is the assembled runtime graph.
type Services struct {
	Conversation  *usecase.Conversation
	Listener      *usecase.ListeningController
	Notifications *notifications.Store
	Config        config.Config
}

// BuildWithConfig wires all backend dependencies for cfg.
func BuildWithConfig(cfg config.Config, deps Deps) (Services, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	rulesEngine, err := rules.NewEngine(cfg.Rules.Path, cfg.Rules.IterationLimit)
	if err != nil {
		return Services{}, err
	}

	book, err := phrasebook.Load(cfg.Content.PhrasebookPath)
	if err != nil {
		return Services{}, err
	}
	today, err := agenda.Load(cfg.Content.AgendaPath)
	if err != nil {
		return Services{}, err
	}

	speaker, err := selectSpeaker(cfg.Voice, deps.FrontendSpeaker, logger)
	if err != nil {
		return Services{}, err
	}

	store := notifications.NewStore(notifications.WithObserver(deps.Observer))

	listener := usecase.NewListeningController(
		audio.NewMicrophone(cfg.Audio.RecorderCommand),
		deepgram.NewProvider(deepgram.Config{
			APIKey:      cfg.Deepgram.APIKey,
			APIBaseURL:  cfg.Deepgram.APIBaseURL,
			Model:       cfg.Deepgram.Model,
			Language:    cfg.Deepgram.Language,
			SmartFormat: cfg.Deepgram.SmartFormat,
			Endpointing: cfg.Deepgram.Endpointing,
			Keywords:    cfg.Deepgram.Keywords,
		}),
		rulesEngine,
		deps.Events,
		logger.With("component", "listener"),
		usecase.ListenConfig{
			Audio: ports.AudioConfig{
				SampleRate:  cfg.Audio.SampleRate,
				Channels:    cfg.Audio.Channels,
				InputFormat: cfg.Audio.InputFormat,
				InputDevice: cfg.Audio.InputDevice,
			},
			Streaming: ports.StreamingConfig{
				SampleRate:     cfg.Audio.SampleRate,
				Channels:       cfg.Audio.Channels,
				Encoding:       "linear16",
				InterimResults: true,
			},
			ChunkSize:      cfg.Session.ChunkSize,
			StreamingGrace: cfg.Session.StreamingGrace,
			Window:         cfg.Session.ListenWindow,
		},
	)

	narrator := usecase.NewNarrator(speaker, book, today, usecase.NarratorConfig{
		Voice: ports.VoiceOptions{
			Locale: cfg.Voice.Locale,
			Rate:   cfg.Voice.Rate,
			Pitch:  cfg.Voice.Pitch,
			Volume: cfg.Voice.Volume,
		},
		ListenDelay:  cfg.Conversation.FollowUpDelay,
		ClarifyDelay: cfg.Conversation.ClarifyDelay,
		HelpDelay:    cfg.Conversation.HelpDelay,
		WelcomeDelay: cfg.Conversation.WelcomeDelay,
	}, logger.With("component", "narrator"))

	conversation := usecase.NewConversation(
		listener,
		intent.NewParser(intent.NewClassifier(), intent.NewExtractor()),
		usecase.NewDispatcher(deps.Shell, store, logger.With("component", "dispatcher")),
		narrator,
		deps.Scheduler,
		deps.Events,
		logger.With("component", "conversation"),
	)
	listener.SetHandler(conversation)

	logger.Debug("runtime wired",
		"rules", rulesEngine.Len(),
		"speaker", cfg.Voice.Speaker,
		"locale", cfg.Voice.Locale,
	)

	return Services{
		Conversation:  conversation,
		Listener:      listener,
		Notifications: store,
		Config:        cfg,
	}, nil
}

func selectSpeaker(cfg config.VoiceConfig, frontend ports.Speaker, logger *slog.Logger) (ports.Speaker, error) {
	switch cfg.Speaker {
	case config.SpeakerFrontend:
		if frontend == nil {
			logger.Warn("no frontend speaker available, replies will not be spoken")
			return speech.Muted{Logger: logger}, nil
		}
		return frontend, nil
	case config.SpeakerEspeak:
		return espeak.NewSpeaker(cfg.EspeakCommand), nil
	case config.SpeakerNone:
		return speech.Muted{Logger: logger}, nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownSpeaker, cfg.Speaker)
	}
}
