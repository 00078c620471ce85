package usecase

import (
	"strings"
	"sync"

	"advisorvoice/internal/domain"
	"advisorvoice/internal/ports"
)

// transcriptAggregator assembles one utterance from provider events. Interim
// results only cover audio after the last final, so the newest partial is
// kept as a pending tail and dropped once a final replaces it.
type transcriptAggregator struct {
	mu      sync.Mutex
	finals  []string
	pending string
}

func newTranscriptAggregator() *transcriptAggregator {
	return &transcriptAggregator{}
}

func (a *transcriptAggregator) Add(event domain.TranscriptEvent) {
	text := strings.TrimSpace(event.Text)
	if text == "" {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if event.Kind == domain.TranscriptKindFinal {
		a.finals = append(a.finals, text)
		a.pending = ""
		return
	}
	a.pending = text
}

// Raw joins the finals with any partial still waiting on its final. Stopping
// mid-phrase keeps the words heard so far.
func (a *transcriptAggregator) Raw() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	parts := a.finals
	if a.pending != "" {
		parts = append(parts[:len(parts):len(parts)], a.pending)
	}
	return strings.Join(parts, " ")
}

// consumeTranscriptionEvents feeds the aggregator and forwards partials. The
// first non-empty speech-final event ends the utterance.
func consumeTranscriptionEvents(
	session ports.StreamingSession,
	aggregator *transcriptAggregator,
	events ports.EventSink,
	onSpeechFinal func(),
	done chan struct{},
) {
	defer close(done)

	for event := range session.Events() {
		text := strings.TrimSpace(event.Text)
		if text == "" {
			continue
		}
		aggregator.Add(event)
		if event.Kind == domain.TranscriptKindPartial {
			events.PartialTranscript(text)
		}
		if event.IsSpeechFinal && onSpeechFinal != nil {
			onSpeechFinal()
		}
	}
}
