// Package speech holds speaker backends that need no external process.
package speech

import (
	"context"
	"log/slog"

	"advisorvoice/internal/ports"
)

// Muted satisfies ports.Speaker by logging what would have been said.
type Muted struct {
	Logger *slog.Logger
}

func (m Muted) Speak(_ context.Context, text string, _ ports.VoiceOptions) error {
	if m.Logger != nil {
		m.Logger.Debug("speech muted", "text", text)
	}
	return nil
}

func (Muted) Cancel() error { return nil }
