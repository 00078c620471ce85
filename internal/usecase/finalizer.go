package usecase

import (
	"log/slog"

	"advisorvoice/internal/domain"
	"advisorvoice/internal/ports"
)

// transcriptFinalizer runs substitution rules over a raw transcript. A rules
// failure is reported and the raw text is used unchanged.
type transcriptFinalizer struct {
	rules  ports.RulesEngine
	events ports.EventSink
	logger *slog.Logger
}

func newTranscriptFinalizer(rules ports.RulesEngine, events ports.EventSink, logger *slog.Logger) transcriptFinalizer {
	return transcriptFinalizer{rules: rules, events: events, logger: logger}
}

func (f transcriptFinalizer) Finalize(raw string) domain.Utterance {
	if f.rules == nil {
		return domain.NewUtterance(raw)
	}
	transformed, err := f.rules.Apply(raw)
	if err != nil {
		f.logger.Warn("transcript rules failed, using raw text", "err", err)
		f.events.SessionError(domain.ErrorCodeRules, err.Error())
		return domain.NewUtterance(raw)
	}
	u := domain.NewUtterance(transformed)
	if u.Empty() {
		return domain.NewUtterance(raw)
	}
	return u
}
