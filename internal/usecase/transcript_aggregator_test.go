package usecase

import (
	"testing"

	"advisorvoice/internal/domain"
)

func TestTranscriptAggregatorKeepsPendingTail(t *testing.T) {
	t.Parallel()

	agg := newTranscriptAggregator()
	agg.Add(domain.TranscriptEvent{Kind: domain.TranscriptKindPartial, Text: "go to"})
	agg.Add(domain.TranscriptEvent{Kind: domain.TranscriptKindFinal, Text: "go to my"})
	agg.Add(domain.TranscriptEvent{Kind: domain.TranscriptKindPartial, Text: "cal"})
	agg.Add(domain.TranscriptEvent{Kind: domain.TranscriptKindPartial, Text: "calendar"})

	if got := agg.Raw(); got != "go to my calendar" {
		t.Fatalf("unexpected transcript: %q", got)
	}
}

func TestTranscriptAggregatorFinalReplacesPartial(t *testing.T) {
	t.Parallel()

	agg := newTranscriptAggregator()
	agg.Add(domain.TranscriptEvent{Kind: domain.TranscriptKindPartial, Text: "create tas"})
	agg.Add(domain.TranscriptEvent{Kind: domain.TranscriptKindFinal, Text: "create task"})
	agg.Add(domain.TranscriptEvent{Kind: domain.TranscriptKindPartial, Text: "call Jo"})
	agg.Add(domain.TranscriptEvent{Kind: domain.TranscriptKindFinal, Text: "call John"})

	if got := agg.Raw(); got != "create task call John" {
		t.Fatalf("unexpected transcript: %q", got)
	}
}

func TestTranscriptAggregatorIgnoresEmpty(t *testing.T) {
	t.Parallel()

	agg := newTranscriptAggregator()
	agg.Add(domain.TranscriptEvent{Kind: domain.TranscriptKindPartial, Text: "   "})
	if got := agg.Raw(); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestConsumeTranscriptionEventsSignalsSpeechFinal(t *testing.T) {
	t.Parallel()

	stream := newFakeStreamingSession()
	stream.events <- domain.TranscriptEvent{Kind: domain.TranscriptKindPartial, Text: "show"}
	stream.events <- domain.TranscriptEvent{Kind: domain.TranscriptKindFinal, Text: "", IsSpeechFinal: true}
	stream.events <- domain.TranscriptEvent{Kind: domain.TranscriptKindFinal, Text: "show calendar", IsSpeechFinal: true}
	_ = stream.CloseSend()

	agg := newTranscriptAggregator()
	events := &fakeEventSink{}
	done := make(chan struct{})
	signals := 0
	consumeTranscriptionEvents(stream, agg, events, func() { signals++ }, done)
	<-done

	if signals != 1 {
		t.Fatalf("expected one speech-final signal, got %d", signals)
	}
	if got := agg.Raw(); got != "show calendar" {
		t.Fatalf("unexpected transcript: %q", got)
	}
	if partials := events.snapshotPartials(); len(partials) != 1 || partials[0] != "show" {
		t.Fatalf("unexpected partials: %v", partials)
	}
}
