package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"advisorvoice/internal/bootstrap"
	"advisorvoice/internal/config"
	"advisorvoice/internal/domain"
	"advisorvoice/internal/ports"
)

func TestResolveSpeaker(t *testing.T) {
	t.Parallel()

	cases := []struct {
		flag, configured, want string
	}{
		{"", config.SpeakerEspeak, config.SpeakerEspeak},
		{"console", config.SpeakerNone, config.SpeakerFrontend},
		{" ESPEAK ", config.SpeakerFrontend, config.SpeakerEspeak},
		{"none", config.SpeakerFrontend, config.SpeakerNone},
	}
	for _, tc := range cases {
		if got := resolveSpeaker(tc.flag, tc.configured); got != tc.want {
			t.Fatalf("resolveSpeaker(%q, %q) = %q, want %q", tc.flag, tc.configured, got, tc.want)
		}
	}
}

func TestConsolePrintsShellEvents(t *testing.T) {
	t.Parallel()

	out := &syncBuffer{}
	c := newConsole(out, discardLogger())

	c.Navigate(domain.ScreenTasks)
	c.OpenModule(domain.ModuleIllustration, map[string]string{"customerName": "Jane Doe", "age": "70"})
	c.OpenModule(domain.ModuleEnterprise, nil)
	c.notificationAdded(domain.Notification{Title: "Task created", Message: "call Jane"}, true)
	c.notificationAdded(domain.Notification{Title: "quiet", Message: "no toast"}, false)
	c.SessionStateChanged(domain.SessionStateError, domain.SessionReasonPermissionDenied)
	_ = c.Speak(context.Background(), "Opening tasks.", ports.VoiceOptions{})

	want := strings.Join([]string{
		"-> screen: tasks",
		"-> module: illustration {age=70, customerName=Jane Doe}",
		"-> module: enterprise",
		"* Task created: call Jane",
		"(permission denied)",
		"advisor: Opening tasks.",
		"",
	}, "\n")
	if got := out.String(); got != want {
		t.Fatalf("unexpected output:\n%s", got)
	}
}

func TestREPLRoutesControlCommands(t *testing.T) {
	t.Parallel()

	conv := &fakeConversation{}
	list := &fakeNotifications{items: []domain.Notification{
		{ID: "n1", Title: "Task created", Message: "call Jane", Priority: domain.PriorityMedium},
		{ID: "n2", Title: "Appointment scheduled", Message: "Ann at 3:00 PM", Priority: domain.PriorityMedium, Read: true},
	}}
	out := &syncBuffer{}
	r := newREPL(conv, list, newConsole(out, discardLogger()))

	input := strings.Join([]string{
		"go to calendar",
		"  ",
		":listen",
		":status",
		":notifications",
		":read n1",
		":read all",
		":read missing",
		"stop",
		":stop",
		":quit",
		"never reached",
	}, "\n")
	if err := r.Run(context.Background(), strings.NewReader(input)); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if got := strings.Join(conv.submitted, "|"); got != "go to calendar|stop" {
		t.Fatalf("unexpected submissions: %q", got)
	}
	if conv.activations != 1 {
		t.Fatalf("expected one activation, got %d", conv.activations)
	}
	// :stop plus the deferred stop on exit
	if conv.stops != 2 {
		t.Fatalf("expected two stops, got %d", conv.stops)
	}
	if strings.Join(list.marked, ",") != "n1,missing" || !list.allRead {
		t.Fatalf("unexpected read marks: %v all=%v", list.marked, list.allRead)
	}

	text := out.String()
	for _, want := range []string{
		"state: idle listening: false unread: 1",
		"1 unread",
		"[ ] n1  Task created: call Jane (medium)",
		"[x] n2  Appointment scheduled: Ann at 3:00 PM (medium)",
		"error: not found",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output:\n%s", want, text)
		}
	}
}

func TestREPLReturnsOnEOFAndShowsUsage(t *testing.T) {
	t.Parallel()

	conv := &fakeConversation{submitErr: errors.New("empty utterance")}
	out := &syncBuffer{}
	r := newREPL(conv, &fakeNotifications{}, newConsole(out, discardLogger()))

	if err := r.Run(context.Background(), strings.NewReader(":bogus\n:notifications\nhello")); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, ":listen          tap to talk") || !strings.Contains(text, "no notifications") {
		t.Fatalf("expected usage and empty list:\n%s", text)
	}
	if !strings.Contains(text, "error: empty utterance") {
		t.Fatalf("expected submit error to be printed:\n%s", text)
	}
	if conv.stops != 1 {
		t.Fatalf("expected stop on exit, got %d", conv.stops)
	}
}

func TestTypedCommandEndToEnd(t *testing.T) {
	t.Parallel()

	out := &syncBuffer{}
	c := newConsole(out, discardLogger())
	services, err := bootstrap.BuildWithConfig(config.Config{
		Rules: config.RulesConfig{IterationLimit: 30},
		Voice: config.VoiceConfig{Locale: "en-US", Speaker: config.SpeakerFrontend},
	}, bootstrap.Deps{
		Events:          c,
		Shell:           c,
		FrontendSpeaker: c,
		Observer:        c.notificationAdded,
		Logger:          discardLogger(),
	})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	r := newREPL(services.Conversation, services.Notifications, c)
	input := "go to calendar\ncreate task call John Smith tomorrow\n:notifications\n"
	if err := r.Run(context.Background(), strings.NewReader(input)); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"you: go to calendar",
		"-> screen: calendar",
		"you: create task call John Smith tomorrow",
		"* Task created: call John Smith tomorrow",
		"Task created: call John Smith tomorrow (medium)",
		"1 unread",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output:\n%s", want, text)
		}
	}
	if strings.Count(text, "advisor: ") != 2 {
		t.Fatalf("expected one spoken reply per command:\n%s", text)
	}
}

type fakeConversation struct {
	mu          sync.Mutex
	submitted   []string
	activations int
	stops       int
	submitErr   error
}

func (f *fakeConversation) Activate(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activations++
	return nil
}

func (f *fakeConversation) Submit(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submitted = append(f.submitted, text)
	return nil
}

func (f *fakeConversation) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
}

func (f *fakeConversation) Status() domain.Status {
	return domain.Status{State: domain.SessionStateIdle}
}

type fakeNotifications struct {
	items   []domain.Notification
	marked  []string
	allRead bool
}

func (f *fakeNotifications) List() []domain.Notification { return f.items }

func (f *fakeNotifications) UnreadCount() int {
	unread := 0
	for _, n := range f.items {
		if !n.Read {
			unread++
		}
	}
	return unread
}

func (f *fakeNotifications) MarkRead(id string) error {
	f.marked = append(f.marked, id)
	if id == "missing" {
		return errors.New("not found")
	}
	return nil
}

func (f *fakeNotifications) MarkAllRead() { f.allRead = true }

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
