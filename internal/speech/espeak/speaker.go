// Package espeak speaks replies through the espeak-ng command line tool.
package espeak

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"advisorvoice/internal/ports"
)

const (
	baseWordsPerMinute = 175
	basePitch          = 50
	baseAmplitude      = 100
)

// Speaker runs one espeak-ng process per utterance. Starting a new utterance
// kills the one still playing.
type Speaker struct {
	command string

	mu      sync.Mutex
	current *playback
}

type playback struct {
	cmd  *exec.Cmd
	done chan struct{}
}

func NewSpeaker(command string) *Speaker {
	if command == "" {
		command = "espeak-ng"
	}
	return &Speaker{command: command}
}

// Speak starts playback and returns without waiting for it to finish.
func (s *Speaker) Speak(ctx context.Context, text string, opts ports.VoiceOptions) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_ = s.stopLocked()

	cmd := exec.CommandContext(ctx, s.command, Args(text, opts)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start espeak: %w", err)
	}

	p := &playback{cmd: cmd, done: make(chan struct{})}
	go func() {
		_ = cmd.Wait()
		close(p.done)
	}()
	s.current = p
	return nil
}

// Cancel stops the current utterance, if any.
func (s *Speaker) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopLocked()
}

func (s *Speaker) stopLocked() error {
	p := s.current
	if p == nil {
		return nil
	}
	s.current = nil

	select {
	case <-p.done:
		return nil
	default:
	}

	err := p.cmd.Process.Kill()
	if errors.Is(err, os.ErrProcessDone) {
		err = nil
	}
	<-p.done
	return err
}

// Args maps voice options onto espeak-ng flags. Rate, pitch and volume are
// multipliers around 1.0.
func Args(text string, opts ports.VoiceOptions) []string {
	args := []string{}
	if voice := voiceName(opts.Locale); voice != "" {
		args = append(args, "-v", voice)
	}
	args = append(args,
		"-s", strconv.Itoa(scale(baseWordsPerMinute, opts.Rate, 80, 450)),
		"-p", strconv.Itoa(scale(basePitch, opts.Pitch, 0, 99)),
		"-a", strconv.Itoa(scale(baseAmplitude, opts.Volume, 0, 200)),
		"--", text,
	)
	return args
}

// voiceName turns a BCP 47 tag like "en-US" into espeak's "en-us".
func voiceName(locale string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(locale), "_", "-"))
}

func scale(base int, factor float64, lo, hi int) int {
	if factor <= 0 {
		factor = 1
	}
	v := int(float64(base)*factor + 0.5)
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
