package usecase

import (
	"context"
	"log/slog"
	"math/rand"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"advisorvoice/internal/agenda"
	"advisorvoice/internal/domain"
	"advisorvoice/internal/phrasebook"
	"advisorvoice/internal/ports"
)

// NarratorConfig holds the voice and the delays that keep prompts from
// talking over each other. ListenDelay separates a spoken follow-up prompt
// from re-opened listening.
type NarratorConfig struct {
	Voice        ports.VoiceOptions
	ListenDelay  time.Duration
	ClarifyDelay time.Duration
	HelpDelay    time.Duration
	WelcomeDelay time.Duration
}

// FollowUp is a prompt spoken after Delay, after which listening re-opens.
type FollowUp struct {
	Delay  time.Duration
	Prompt string
}

// Reply is what the narrator says for one turn.
type Reply struct {
	Text     string
	FollowUp *FollowUp
}

var moduleNames = map[domain.ModuleID]string{
	domain.ModuleIllustration: "the income illustration",
	domain.ModuleLifeStage:    "life stage insights",
	domain.ModuleMeetingPrep:  "meeting prep",
	domain.ModuleAutomation:   "compliance automation",
	domain.ModulePredictive:   "predictive insights",
	domain.ModuleEnterprise:   "the enterprise portfolio",
	domain.ModuleEngagement:   "intelligent engagement",
}

// Narrator owns the speaker and picks phrasings uniformly from the phrasebook.
type Narrator struct {
	speaker ports.Speaker
	book    phrasebook.Book
	agenda  agenda.Agenda
	cfg     NarratorConfig
	logger  *slog.Logger
	pick    func(n int) int
	printer *message.Printer
}

type NarratorOption func(*Narrator)

// WithPicker replaces the uniform random index source.
func WithPicker(pick func(n int) int) NarratorOption {
	return func(n *Narrator) { n.pick = pick }
}

func NewNarrator(speaker ports.Speaker, book phrasebook.Book, ag agenda.Agenda, cfg NarratorConfig, logger *slog.Logger, opts ...NarratorOption) *Narrator {
	if logger == nil {
		logger = slog.Default()
	}
	tag, err := language.Parse(cfg.Voice.Locale)
	if err != nil {
		tag = language.AmericanEnglish
	}
	n := &Narrator{
		speaker: speaker,
		book:    book,
		agenda:  ag,
		cfg:     cfg,
		logger:  logger,
		pick:    rand.Intn,
		printer: message.NewPrinter(tag),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Compose picks the reply for a dispatched command.
func (n *Narrator) Compose(cmd domain.Command, outcome Outcome) Reply {
	switch cmd.(type) {
	case nil, domain.Unrecognized:
		return Reply{
			Text:     n.choose(n.book.Pool(phrasebook.PoolClarification)),
			FollowUp: n.followUp(n.cfg.ClarifyDelay),
		}
	case domain.Help:
		return Reply{
			Text:     n.choose(n.book.Pool(phrasebook.PoolHelp)),
			FollowUp: n.followUp(n.cfg.HelpDelay),
		}
	}
	phrase := n.choose(n.book.Confirmation(cmd.Type()))
	return Reply{Text: phrasebook.Format(phrase, n.slots(cmd, outcome))}
}

// ForError picks the reply for a failed listening session. Silent kinds
// yield an empty reply.
func (n *Narrator) ForError(kind domain.RecognitionErrorKind, err error) Reply {
	switch kind {
	case domain.RecognitionPermissionDenied:
		return Reply{Text: n.choose(n.book.Pool(phrasebook.PoolPermissionPrompt))}
	case domain.RecognitionOther:
		return Reply{Text: n.choose(n.book.Pool(phrasebook.PoolClarification))}
	case domain.RecognitionNetworkUnavailable:
		n.logger.Warn("speech recognition unavailable", "err", err)
		return Reply{}
	default:
		return Reply{}
	}
}

func (n *Narrator) Welcome() string {
	return n.choose(n.book.Pool(phrasebook.PoolWelcome))
}

func (n *Narrator) ListenDelay() time.Duration {
	return n.cfg.ListenDelay
}

func (n *Narrator) WelcomeDelay() time.Duration {
	return n.cfg.WelcomeDelay
}

// Speak hands text to the speaker; the speaker drops anything still playing.
func (n *Narrator) Speak(ctx context.Context, text string) error {
	if text == "" || n.speaker == nil {
		return nil
	}
	return n.speaker.Speak(ctx, text, n.cfg.Voice)
}

// Silence cuts off the current utterance.
func (n *Narrator) Silence() error {
	if n.speaker == nil {
		return nil
	}
	return n.speaker.Cancel()
}

func (n *Narrator) followUp(delay time.Duration) *FollowUp {
	return &FollowUp{Delay: delay, Prompt: n.choose(n.book.Pool(phrasebook.PoolFollowUp))}
}

func (n *Narrator) choose(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[n.pick(len(pool))]
}

func (n *Narrator) slots(cmd domain.Command, outcome Outcome) map[string]string {
	slots := map[string]string{}
	switch c := cmd.(type) {
	case domain.CreateTask:
		slots[phrasebook.SlotTask] = c.Description
	case domain.ScheduleAppointment:
		slots[phrasebook.SlotCustomer] = c.CustomerName
		slots[phrasebook.SlotTime] = c.Time
	case domain.ShowIllustration:
		slots[phrasebook.SlotCustomer] = c.Params.CustomerName
		slots[phrasebook.SlotAge] = strconv.Itoa(c.Params.Age)
		slots[phrasebook.SlotAmount] = n.printer.Sprintf("%d", c.Params.MonthlyWithdrawal)
	case domain.ShowDemo:
		slots[phrasebook.SlotCustomer] = c.CustomerName
	case domain.ClientReviewPrep:
		slots[phrasebook.SlotCustomer] = c.CustomerName
	case domain.ReadTasks:
		slots[phrasebook.SlotAgenda] = n.agenda.TasksReadout()
	case domain.ReadAppointments:
		slots[phrasebook.SlotAgenda] = n.agenda.AppointmentsReadout()
	case domain.DailySummary:
		slots[phrasebook.SlotAgenda] = n.agenda.SummaryReadout()
	}
	switch outcome.Effect {
	case EffectNavigate:
		slots[phrasebook.SlotScreen] = outcome.Screen.String()
	case EffectModule:
		slots[phrasebook.SlotModule] = moduleName(outcome.Module)
	}
	return slots
}

func moduleName(id domain.ModuleID) string {
	if name, ok := moduleNames[id]; ok {
		return name
	}
	return string(id)
}
