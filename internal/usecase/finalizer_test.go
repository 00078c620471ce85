package usecase

import (
	"errors"
	"log/slog"
	"testing"

	"advisorvoice/internal/domain"
)

func TestTranscriptFinalizerRulesFailure(t *testing.T) {
	t.Parallel()

	events := &fakeEventSink{}
	f := newTranscriptFinalizer(&fakeRules{err: errors.New("rules")}, events, slog.Default())

	u := f.Finalize("Go  Home")
	if u.Raw != "Go Home" || u.Normalized != "go home" {
		t.Fatalf("expected raw fallback, got %+v", u)
	}
	errs := events.snapshotErrors()
	if len(errs) != 1 || errs[0].code != domain.ErrorCodeRules {
		t.Fatalf("expected rules error event, got %v", errs)
	}
}

func TestTranscriptFinalizerAppliesRules(t *testing.T) {
	t.Parallel()

	f := newTranscriptFinalizer(&fakeRules{transform: "create task"}, &fakeEventSink{}, slog.Default())
	if u := f.Finalize("create tusk"); u.Raw != "create task" {
		t.Fatalf("unexpected utterance: %+v", u)
	}
}

func TestTranscriptFinalizerKeepsRawWhenRulesEraseEverything(t *testing.T) {
	t.Parallel()

	f := newTranscriptFinalizer(&blankRules{}, &fakeEventSink{}, slog.Default())
	if u := f.Finalize("um help"); u.Raw != "um help" {
		t.Fatalf("expected raw text, got %+v", u)
	}

	f = newTranscriptFinalizer(nil, &fakeEventSink{}, slog.Default())
	if u := f.Finalize("help"); u.Raw != "help" {
		t.Fatalf("expected pass-through without rules, got %+v", u)
	}
}

type blankRules struct{}

func (blankRules) Apply(string) (string, error) { return "  ", nil }
