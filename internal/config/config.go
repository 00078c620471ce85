package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

// Speaker backends.
const (
	SpeakerFrontend = "frontend"
	SpeakerEspeak   = "espeak"
	SpeakerNone     = "none"
)

var ErrUnknownSpeaker = errors.New("unknown speaker backend")

// DefaultKeywords boosts the advisor vocabulary the recognizer tends to miss.
var DefaultKeywords = []string{"illustration:2", "withdrawal:2", "appointment:1", "annuity:1"}

// Config stores runtime configuration for the advisor voice assistant.
type Config struct {
	Deepgram     DeepgramConfig
	Audio        AudioConfig
	Rules        RulesConfig
	Session      SessionConfig
	Voice        VoiceConfig
	Conversation ConversationConfig
	Content      ContentConfig
	LogLevel     string
}

type DeepgramConfig struct {
	APIKey      string
	APIBaseURL  string
	Model       string
	Language    string
	SmartFormat bool
	Endpointing time.Duration
	Keywords    []string
}

type AudioConfig struct {
	RecorderCommand string
	InputFormat     string
	InputDevice     string
	SampleRate      int
	Channels        int
}

type RulesConfig struct {
	Path           string
	IterationLimit int
}

type SessionConfig struct {
	ChunkSize      int
	StreamingGrace time.Duration
	ListenWindow   time.Duration
}

// VoiceConfig selects the speech output backend. Rate, pitch and volume are
// multipliers around 1.0.
type VoiceConfig struct {
	Locale        string
	Rate          float64
	Pitch         float64
	Volume        float64
	Speaker       string
	EspeakCommand string
}

type ConversationConfig struct {
	FollowUpDelay time.Duration
	ClarifyDelay  time.Duration
	HelpDelay     time.Duration
	WelcomeDelay  time.Duration
}

// ContentConfig points at optional YAML overrides. Empty means built-in content.
type ContentConfig struct {
	PhrasebookPath string
	AgendaPath     string
}

// LoadEnvFiles merges .env files into the environment without overriding
// variables that are already set. Missing files are skipped.
func LoadEnvFiles(paths ...string) error {
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("stat env file %q: %w", path, err)
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file %q: %w", path, err)
		}
	}
	return nil
}

// Load resolves configuration from environment variables and sensible defaults.
func Load() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, errors.New("could not determine home directory")
	}
	configDir := filepath.Join(home, ".config", "advisorvoice")

	rulesPath := strings.TrimSpace(os.Getenv("ADVISOR_RULES_FILE"))
	if rulesPath == "" {
		rulesPath = firstExisting(filepath.Join(configDir, "advisor.rules"))
	}

	locale, err := canonicalLocale(envOrDefault("ADVISOR_VOICE_LOCALE", "en-US"))
	if err != nil {
		return Config{}, err
	}

	speaker := strings.ToLower(envOrDefault("ADVISOR_SPEAKER", SpeakerFrontend))
	switch speaker {
	case SpeakerFrontend, SpeakerEspeak, SpeakerNone:
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownSpeaker, speaker)
	}

	cfg := Config{
		Deepgram: DeepgramConfig{
			APIKey:      strings.TrimSpace(os.Getenv("DEEPGRAM_API_KEY")),
			APIBaseURL:  envOrDefault("DEEPGRAM_API_BASE", "https://api.deepgram.com/v1"),
			Model:       envOrDefault("DEEPGRAM_MODEL", "nova-2"),
			Language:    envOrDefault("DEEPGRAM_LANGUAGE", locale),
			SmartFormat: envOrDefaultBool("DEEPGRAM_SMART_FORMAT", true),
			Endpointing: envOrDefaultMillis("DEEPGRAM_ENDPOINTING_MS", 800*time.Millisecond),
			Keywords:    envOrDefaultList("DEEPGRAM_KEYWORDS", DefaultKeywords),
		},
		Audio: AudioConfig{
			RecorderCommand: envOrDefault("ADVISOR_FFMPEG_COMMAND", "ffmpeg"),
			InputFormat:     envOrDefault("ADVISOR_AUDIO_INPUT_FORMAT", "pulse"),
			InputDevice:     envOrDefault("ADVISOR_AUDIO_INPUT_DEVICE", "default"),
			SampleRate:      envOrDefaultInt("ADVISOR_SAMPLE_RATE", 16000),
			Channels:        envOrDefaultInt("ADVISOR_CHANNELS", 1),
		},
		Rules: RulesConfig{
			Path:           rulesPath,
			IterationLimit: envOrDefaultInt("ADVISOR_RULE_ITERATION_LIMIT", 30),
		},
		Session: SessionConfig{
			ChunkSize:      envOrDefaultInt("ADVISOR_AUDIO_CHUNK_SIZE", 4096),
			StreamingGrace: envOrDefaultMillis("ADVISOR_STREAMING_GRACE_MS", time.Second),
			ListenWindow:   envOrDefaultMillis("ADVISOR_LISTEN_WINDOW_MS", 10*time.Second),
		},
		Voice: VoiceConfig{
			Locale:        locale,
			Rate:          envOrDefaultFloat("ADVISOR_VOICE_RATE", 1, 0.5, 2),
			Pitch:         envOrDefaultFloat("ADVISOR_VOICE_PITCH", 1, 0, 2),
			Volume:        envOrDefaultFloat("ADVISOR_VOICE_VOLUME", 1, 0, 1),
			Speaker:       speaker,
			EspeakCommand: envOrDefault("ADVISOR_ESPEAK_COMMAND", "espeak-ng"),
		},
		Conversation: ConversationConfig{
			FollowUpDelay: envOrDefaultMillis("ADVISOR_FOLLOWUP_DELAY_MS", 1500*time.Millisecond),
			ClarifyDelay:  envOrDefaultMillis("ADVISOR_CLARIFY_DELAY_MS", 6*time.Second),
			HelpDelay:     envOrDefaultMillis("ADVISOR_HELP_DELAY_MS", 10*time.Second),
			WelcomeDelay:  envOrDefaultMillis("ADVISOR_WELCOME_DELAY_MS", 3*time.Second),
		},
		Content: ContentConfig{
			PhrasebookPath: firstNonEmpty(os.Getenv("ADVISOR_PHRASEBOOK_FILE"), existingOrEmpty(filepath.Join(configDir, "phrasebook.yaml"))),
			AgendaPath:     firstNonEmpty(os.Getenv("ADVISOR_AGENDA_FILE"), existingOrEmpty(filepath.Join(configDir, "agenda.yaml"))),
		},
		LogLevel: strings.ToLower(envOrDefault("ADVISOR_LOG_LEVEL", "info")),
	}

	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}
	if cfg.Rules.IterationLimit <= 0 {
		cfg.Rules.IterationLimit = 30
	}
	if cfg.Session.ChunkSize < 256 {
		cfg.Session.ChunkSize = 4096
	}
	if cfg.Session.ListenWindow < time.Second {
		cfg.Session.ListenWindow = 10 * time.Second
	}

	return cfg, nil
}

// canonicalLocale validates a BCP 47 tag and returns its canonical form.
func canonicalLocale(raw string) (string, error) {
	tag, err := language.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid ADVISOR_VOICE_LOCALE %q: %w", raw, err)
	}
	return tag.String(), nil
}

func firstExisting(paths ...string) string {
	if found := existingOrEmpty(paths...); found != "" {
		return found
	}
	if len(paths) == 0 {
		return ""
	}
	return paths[0]
}

func existingOrEmpty(paths ...string) string {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// envOrDefaultMillis reads a non-negative millisecond count.
func envOrDefaultMillis(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return fallback
	}
	return time.Duration(parsed) * time.Millisecond
}

// envOrDefaultFloat falls back when the value is unparseable or outside [lo, hi].
func envOrDefaultFloat(key string, fallback, lo, hi float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed < lo || parsed > hi {
		return fallback
	}
	return parsed
}

func envOrDefaultBool(key string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func envOrDefaultList(key string, fallback []string) []string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return append([]string(nil), fallback...)
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
