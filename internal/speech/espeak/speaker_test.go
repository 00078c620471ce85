package espeak

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"advisorvoice/internal/ports"
)

func TestArgsMapsVoiceOptions(t *testing.T) {
	t.Parallel()

	got := strings.Join(Args("Going to tasks.", ports.VoiceOptions{Locale: "en-US", Rate: 1, Pitch: 1, Volume: 1}), " ")
	want := "-v en-us -s 175 -p 50 -a 100 -- Going to tasks."
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	got = strings.Join(Args("hi", ports.VoiceOptions{Rate: 1.2, Pitch: 3, Volume: 0.5}), " ")
	want = "-s 210 -p 99 -a 50 -- hi"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestSpeakRunsCommand(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "spoken.txt")
	script := writeScript(t, "speak.sh", "#!/usr/bin/env bash\nfor last; do :; done\nprintf '%s' \"$last\" > '"+out+"'\n")
	speaker := NewSpeaker(script)

	if err := speaker.Speak(context.Background(), "Task created: call Jane.", ports.VoiceOptions{}); err != nil {
		t.Fatalf("speak failed: %v", err)
	}

	waitFor(t, func() bool { return !playing(speaker) })
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("expected script output: %v", err)
	}
	if string(data) != "Task created: call Jane." {
		t.Fatalf("unexpected spoken text: %q", string(data))
	}
}

func TestSpeakCancelsPreviousUtterance(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "slow.sh", "#!/usr/bin/env bash\nexec sleep 5\n")
	speaker := NewSpeaker(script)

	if err := speaker.Speak(context.Background(), "first", ports.VoiceOptions{}); err != nil {
		t.Fatalf("speak failed: %v", err)
	}
	first := speaker.current
	if err := speaker.Speak(context.Background(), "second", ports.VoiceOptions{}); err != nil {
		t.Fatalf("speak failed: %v", err)
	}

	select {
	case <-first.done:
	default:
		t.Fatalf("expected first utterance to be stopped")
	}
	if !playing(speaker) {
		t.Fatalf("expected second utterance to be playing")
	}

	if err := speaker.Cancel(); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if playing(speaker) {
		t.Fatalf("expected silence after cancel")
	}
	if err := speaker.Cancel(); err != nil {
		t.Fatalf("second cancel should be a no-op, got %v", err)
	}
}

func TestSpeakIgnoresBlankText(t *testing.T) {
	t.Parallel()

	speaker := NewSpeaker(filepath.Join(t.TempDir(), "missing"))
	if err := speaker.Speak(context.Background(), "  ", ports.VoiceOptions{}); err != nil {
		t.Fatalf("expected blank text to be ignored, got %v", err)
	}
	if err := speaker.Speak(context.Background(), "hello", ports.VoiceOptions{}); err == nil {
		t.Fatalf("expected missing command error")
	}
}

func writeScript(t *testing.T, name string, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o700); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return path
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func playing(s *Speaker) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return false
	}
	select {
	case <-s.current.done:
		return false
	default:
		return true
	}
}
