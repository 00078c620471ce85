package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"

	"advisorvoice/internal/domain"
	"advisorvoice/internal/ports"
)

const controlPrefix = ":"

const usage = `commands:
  :listen          tap to talk
  :stop            stop listening and cancel follow-ups
  :status          show the conversation state
  :notifications   list notifications
  :read <id|all>   mark notifications read
  :quit            exit
anything else is handled as a typed command`

// console is the terminal shell: it prints navigation, speech and session
// events instead of rendering them.
type console struct {
	mu     sync.Mutex
	out    io.Writer
	logger *slog.Logger
}

func newConsole(out io.Writer, logger *slog.Logger) *console {
	if logger == nil {
		logger = slog.Default()
	}
	return &console{out: out, logger: logger}
}

func (c *console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format+"\n", args...)
}

func (c *console) SessionStateChanged(state domain.SessionState, reason domain.SessionStateReason) {
	switch state {
	case domain.SessionStateListening:
		c.printf("(listening...)")
	case domain.SessionStateError:
		c.printf("(%s)", strings.ReplaceAll(string(reason), "_", " "))
	default:
		c.logger.Debug("session state", "state", state, "reason", reason)
	}
}

func (c *console) PartialTranscript(text string) {
	c.printf("  ~ %s", text)
}

func (c *console) FinalTranscript(raw string, _ string) {
	c.printf("you: %s", raw)
}

func (c *console) SessionError(code domain.ErrorCode, detail string) {
	c.printf("error[%s]: %s", code, detail)
}

func (c *console) Navigate(screen domain.Screen) {
	c.printf("-> screen: %s", screen)
}

func (c *console) OpenModule(module domain.ModuleID, params map[string]string) {
	if len(params) == 0 {
		c.printf("-> module: %s", module)
		return
	}
	keys := lo.Keys(params)
	slices.Sort(keys)
	pairs := lo.Map(keys, func(key string, _ int) string {
		return key + "=" + params[key]
	})
	c.printf("-> module: %s {%s}", module, strings.Join(pairs, ", "))
}

func (c *console) CommandDispatched(envelope map[string]any) {
	c.logger.Debug("command dispatched", "command", envelope)
}

func (c *console) Speak(_ context.Context, text string, _ ports.VoiceOptions) error {
	c.printf("advisor: %s", text)
	return nil
}

func (c *console) Cancel() error { return nil }

func (c *console) notificationAdded(n domain.Notification, showToast bool) {
	if showToast {
		c.printf("* %s: %s", n.Title, n.Message)
	}
}

type conversation interface {
	Activate(ctx context.Context) error
	Submit(ctx context.Context, text string) error
	Stop()
	Status() domain.Status
}

type notificationList interface {
	List() []domain.Notification
	UnreadCount() int
	MarkRead(id string) error
	MarkAllRead()
}

type repl struct {
	conversation  conversation
	notifications notificationList
	console       *console
}

func newREPL(conv conversation, notifications notificationList, console *console) *repl {
	return &repl{conversation: conv, notifications: notifications, console: console}
}

// Run reads lines until EOF, :quit or ctx is done.
func (r *repl) Run(ctx context.Context, in io.Reader) error {
	defer r.conversation.Stop()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-scanErr
			}
			if quit := r.handle(ctx, line); quit {
				return nil
			}
		}
	}
}

func (r *repl) handle(ctx context.Context, line string) (quit bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, controlPrefix) {
		if err := r.conversation.Submit(ctx, line); err != nil {
			r.console.printf("error: %v", err)
		}
		return false
	}

	fields := strings.Fields(strings.TrimPrefix(line, controlPrefix))
	if len(fields) == 0 {
		r.console.printf("%s", usage)
		return false
	}

	switch fields[0] {
	case "listen":
		if err := r.conversation.Activate(ctx); err != nil {
			r.console.printf("error: %v", err)
		}
	case "stop":
		r.conversation.Stop()
	case "status":
		status := r.conversation.Status()
		r.console.printf("state: %s listening: %t unread: %d %s", status.State, status.Listening, r.notifications.UnreadCount(), status.Message)
	case "notifications":
		r.printNotifications()
	case "read":
		r.markRead(fields[1:])
	case "quit", "exit":
		return true
	default:
		r.console.printf("%s", usage)
	}
	return false
}

func (r *repl) printNotifications() {
	items := r.notifications.List()
	if len(items) == 0 {
		r.console.printf("no notifications")
		return
	}
	for _, n := range items {
		mark := " "
		if n.Read {
			mark = "x"
		}
		r.console.printf("[%s] %s  %s: %s (%s)", mark, n.ID, n.Title, n.Message, n.Priority)
	}
	r.console.printf("%d unread", r.notifications.UnreadCount())
}

func (r *repl) markRead(args []string) {
	if len(args) == 0 {
		r.console.printf("usage: :read <id|all>")
		return
	}
	if args[0] == "all" {
		r.notifications.MarkAllRead()
		return
	}
	if err := r.notifications.MarkRead(args[0]); err != nil {
		r.console.printf("error: %v", err)
	}
}
