package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"advisorvoice/internal/domain"
	"advisorvoice/internal/ports"
)

var ErrEmptyUtterance = errors.New("empty utterance")

// Listener is the speech transcript source driven by the conversation.
type Listener interface {
	Start(ctx context.Context) error
	Stop()
	Listening() bool
}

// CommandParser turns an utterance into a command.
type CommandParser interface {
	Parse(u domain.Utterance) (domain.IntentTag, domain.Command)
}

// Conversation runs the turn loop:
//
//	idle -> listening -> result|error -> responding -> [followup_prompt -> listening]
//
// Every scheduled step carries the generation it was scheduled under; Stop,
// Activate and Submit bump the generation so stale steps do nothing. The
// listening session is tagged the same way, so a transcript that lands after
// Stop is dropped instead of dispatched.
type Conversation struct {
	listener   Listener
	parser     CommandParser
	dispatcher *Dispatcher
	narrator   *Narrator
	scheduler  ports.Scheduler
	events     ports.EventSink
	logger     *slog.Logger

	mu         sync.Mutex
	base       context.Context
	state      domain.SessionState
	generation uint64
	listenGen  uint64
	pending    func() bool
	welcomed   bool
	message    string
}

func NewConversation(
	listener Listener,
	parser CommandParser,
	dispatcher *Dispatcher,
	narrator *Narrator,
	scheduler ports.Scheduler,
	events ports.EventSink,
	logger *slog.Logger,
) *Conversation {
	if scheduler == nil {
		scheduler = ports.TimerScheduler{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Conversation{
		listener:   listener,
		parser:     parser,
		dispatcher: dispatcher,
		narrator:   narrator,
		scheduler:  scheduler,
		events:     events,
		logger:     logger,
		base:       context.Background(),
		state:      domain.SessionStateIdle,
	}
}

// Activate is tap-to-talk. The first activation greets the advisor before
// listening; later ones listen right away.
func (c *Conversation) Activate(ctx context.Context) error {
	c.mu.Lock()
	c.base = context.WithoutCancel(ctx)
	gen := c.advanceLocked()
	welcome := !c.welcomed
	c.welcomed = true
	c.mu.Unlock()

	if !welcome {
		return c.listen(gen)
	}

	text := c.narrator.Welcome()
	if c.transition(gen, domain.SessionStateResponding, domain.SessionReasonResponding) {
		c.say(text)
	}
	c.schedule(gen, c.narrator.WelcomeDelay(), func() {
		_ = c.listen(gen)
	})
	return nil
}

// Submit handles typed input. A live voice session is stopped first.
func (c *Conversation) Submit(ctx context.Context, text string) error {
	u := domain.NewUtterance(text)
	if u.Empty() {
		return ErrEmptyUtterance
	}

	c.mu.Lock()
	c.base = context.WithoutCancel(ctx)
	c.advanceLocked()
	c.mu.Unlock()

	c.listener.Stop()

	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()

	c.events.FinalTranscript(u.Raw, u.Normalized)
	c.transition(gen, domain.SessionStateResult, domain.SessionReasonTextSubmitted)
	c.handle(gen, u)
	return nil
}

// Stop ends listening, silences speech and drops any pending follow-up.
// It is safe to call at any time.
func (c *Conversation) Stop() {
	c.mu.Lock()
	c.advanceLocked()
	c.mu.Unlock()

	c.listener.Stop()
	if err := c.narrator.Silence(); err != nil {
		c.logger.Warn("failed to cancel speech", "err", err)
	}

	c.mu.Lock()
	changed := c.state != domain.SessionStateIdle
	c.state = domain.SessionStateIdle
	c.mu.Unlock()

	if changed {
		c.events.SessionStateChanged(domain.SessionStateIdle, domain.SessionReasonListeningStopped)
	}
}

func (c *Conversation) Status() domain.Status {
	c.mu.Lock()
	status := domain.Status{State: c.state, Message: c.message}
	c.mu.Unlock()

	status.Listening = c.listener.Listening()
	return status
}

// OnTranscript receives the final utterance of a listening session.
func (c *Conversation) OnTranscript(u domain.Utterance) {
	gen, ok := c.sessionGeneration()
	if !ok {
		c.logger.Debug("dropping transcript from a stopped session", "text", u.Raw)
		return
	}

	c.events.FinalTranscript(u.Raw, u.Normalized)
	if !c.transition(gen, domain.SessionStateResult, domain.SessionReasonTranscriptReady) {
		return
	}
	if u.Empty() {
		c.OnRecognitionError(domain.RecognitionNoSpeech, ErrNoSpeech)
		return
	}
	c.handle(gen, u)
}

// OnRecognitionError receives the failure of a listening session.
func (c *Conversation) OnRecognitionError(kind domain.RecognitionErrorKind, err error) {
	gen, ok := c.sessionGeneration()
	if !ok {
		c.logger.Debug("dropping error from a stopped session", "kind", kind, "err", err)
		return
	}

	if kind == domain.RecognitionAborted {
		c.transition(gen, domain.SessionStateIdle, domain.SessionReasonAborted)
		return
	}

	c.logger.Debug("listening failed", "kind", kind, "err", err)
	if !c.transition(gen, domain.SessionStateError, kind.Reason()) {
		return
	}
	c.respond(gen, c.narrator.ForError(kind, err))
}

func (c *Conversation) handle(gen uint64, u domain.Utterance) {
	tag, cmd := c.parser.Parse(u)
	c.logger.Info("utterance classified", "intent", tag, "command", cmd.Type(), "text", u.Raw)

	outcome := c.dispatcher.Dispatch(cmd)
	c.respond(gen, c.narrator.Compose(cmd, outcome))
}

func (c *Conversation) respond(gen uint64, reply Reply) {
	if reply.Text != "" {
		if !c.transition(gen, domain.SessionStateResponding, domain.SessionReasonResponding) {
			return
		}
		c.say(reply.Text)
	}

	if reply.FollowUp == nil {
		c.transition(gen, domain.SessionStateIdle, domain.SessionReasonTurnComplete)
		return
	}
	if !c.transition(gen, domain.SessionStateFollowUpPrompt, domain.SessionReasonFollowUpScheduled) {
		return
	}

	prompt := reply.FollowUp.Prompt
	c.schedule(gen, reply.FollowUp.Delay, func() {
		c.say(prompt)
		c.schedule(gen, c.narrator.ListenDelay(), func() {
			_ = c.listen(gen)
		})
	})
}

func (c *Conversation) listen(gen uint64) error {
	if c.listener.Listening() {
		// the running session now answers to this generation
		c.mu.Lock()
		if c.generation == gen {
			c.listenGen = gen
		}
		c.mu.Unlock()
		return nil
	}
	if !c.transition(gen, domain.SessionStateListening, domain.SessionReasonListeningStarted) {
		return nil
	}

	c.mu.Lock()
	ctx := c.base
	c.listenGen = gen
	c.mu.Unlock()

	err := c.listener.Start(ctx)
	if err == nil {
		return nil
	}

	var recErr *domain.RecognitionError
	if errors.As(err, &recErr) {
		c.OnRecognitionError(recErr.Kind, err)
		return err
	}
	c.logger.Error("failed to start listening", "err", err)
	c.events.SessionError(domain.ErrorCodeStartup, err.Error())
	c.transition(gen, domain.SessionStateError, domain.SessionReasonRecognitionFailed)
	c.transition(gen, domain.SessionStateIdle, domain.SessionReasonTurnComplete)
	return err
}

func (c *Conversation) say(text string) {
	if text == "" {
		return
	}
	c.mu.Lock()
	c.message = text
	ctx := c.base
	c.mu.Unlock()

	if err := c.narrator.Speak(ctx, text); err != nil {
		c.logger.Warn("speech failed", "err", err)
		c.events.SessionError(domain.ErrorCodeSpeech, err.Error())
	}
}

// schedule runs fn after d unless the generation moves on first.
func (c *Conversation) schedule(gen uint64, d time.Duration, fn func()) {
	if !c.isCurrent(gen) {
		return
	}
	cancel := c.scheduler.AfterFunc(d, func() {
		if c.isCurrent(gen) {
			fn()
		}
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		cancel()
		return
	}
	c.pending = cancel
}

func (c *Conversation) transition(gen uint64, state domain.SessionState, reason domain.SessionStateReason) bool {
	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		return false
	}
	c.state = state
	c.mu.Unlock()

	c.events.SessionStateChanged(state, reason)
	return true
}

func (c *Conversation) advanceLocked() uint64 {
	c.generation++
	if c.pending != nil {
		c.pending()
		c.pending = nil
	}
	return c.generation
}

// sessionGeneration returns the generation the listening session was started
// under and whether it is still current.
func (c *Conversation) sessionGeneration() (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listenGen, c.listenGen == c.generation
}

func (c *Conversation) currentGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

func (c *Conversation) isCurrent(gen uint64) bool {
	return c.currentGeneration() == gen
}
