// Package phrasebook holds the named pools of equivalent phrasings the
// narrator samples from, plus a YAML override loader.
package phrasebook

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"advisorvoice/internal/domain"
)

// Pool names a situation the narrator can speak about.
type Pool string

const (
	PoolWelcome          Pool = "welcome"
	PoolClarification    Pool = "clarification"
	PoolFollowUp         Pool = "followup"
	PoolHelp             Pool = "help"
	PoolPermissionPrompt Pool = "permission"
)

// Placeholders substituted by Format.
const (
	SlotCustomer = "{customer}"
	SlotTask     = "{task}"
	SlotTime     = "{time}"
	SlotAge      = "{age}"
	SlotAmount   = "{amount}"
	SlotScreen   = "{screen}"
	SlotModule   = "{module}"
	SlotAgenda   = "{agenda}"
)

var (
	Welcome = []string{
		"Hi, I'm your advisor assistant. What can I do for you?",
		"Welcome back. How can I help today?",
	}
	Clarifications = []string{
		"Sorry, I didn't catch that.",
		"I'm not sure what you meant.",
		"I didn't understand that request.",
		"Could you say that another way?",
	}
	FollowUps = []string{
		"Anything else?",
		"What else can I help with?",
		"Is there anything else you need?",
	}
	Help = []string{
		"You can say things like create task call John Smith tomorrow, schedule a meeting with Jane Doe at 3 pm, " +
			"run illustration for Jane Doe at age 70 with 3,000 dollars monthly, read my tasks, " +
			"what appointments do I have, give me my daily summary, or open predictive insights.",
	}
	PermissionPrompts = []string{
		"I need microphone access to hear you. Please allow the microphone and tap to talk again.",
	}

	Confirmations = map[domain.CommandType][]string{
		domain.CommandCreateTask: {
			"Task created: {task}.",
			"Got it. I added {task} to your tasks.",
			"Done. {task} is on your list.",
		},
		domain.CommandScheduleAppointment: {
			"Scheduling a meeting with {customer} at {time}.",
			"Okay, {customer} at {time}. It's on your calendar.",
		},
		domain.CommandViewCustomers: {
			"Here are your customers.",
			"Opening your customer list.",
		},
		domain.CommandReadTasks: {
			"Here are your tasks. {agenda}",
		},
		domain.CommandReadAppointments: {
			"Here is your calendar. {agenda}",
		},
		domain.CommandDailySummary: {
			"Here's your daily summary. {agenda}",
		},
		domain.CommandShowIllustration: {
			"Running an illustration for {customer}, age {age}, withdrawing {amount} dollars a month.",
			"Here's the projection for {customer} at age {age} with {amount} dollars monthly.",
		},
		domain.CommandShowDemo: {
			"Opening the engagement demo for {customer}.",
			"Let me show you how engagement works with {customer}.",
		},
		domain.CommandNavigate: {
			"Going to {screen}.",
			"Opening {screen}.",
		},
		domain.CommandOpenModule: {
			"Opening {module}.",
			"Here is {module}.",
		},
		domain.CommandClientReviewPrep: {
			"Preparing your review with {customer}.",
			"Here's your meeting prep for {customer}.",
		},
	}
)

// Book is the full set of pools used by one narrator.
type Book struct {
	Pools         map[Pool][]string
	Confirmations map[domain.CommandType][]string
}

// Default returns a Book backed by copies of the package pools.
func Default() Book {
	b := Book{
		Pools: map[Pool][]string{
			PoolWelcome:          clone(Welcome),
			PoolClarification:    clone(Clarifications),
			PoolFollowUp:         clone(FollowUps),
			PoolHelp:             clone(Help),
			PoolPermissionPrompt: clone(PermissionPrompts),
		},
		Confirmations: make(map[domain.CommandType][]string, len(Confirmations)),
	}
	for cmd, phrases := range Confirmations {
		b.Confirmations[cmd] = clone(phrases)
	}
	return b
}

// Pool returns the phrasings for a situation; nil when unknown.
func (b Book) Pool(p Pool) []string {
	return b.Pools[p]
}

// Confirmation returns the phrasings for a dispatched command type.
func (b Book) Confirmation(t domain.CommandType) []string {
	return b.Confirmations[t]
}

// Format substitutes {slot} placeholders. Unknown placeholders are left as is.
func Format(phrase string, slots map[string]string) string {
	if len(slots) == 0 {
		return phrase
	}
	pairs := make([]string, 0, len(slots)*2)
	for key, value := range slots {
		pairs = append(pairs, key, value)
	}
	return strings.TrimSpace(strings.NewReplacer(pairs...).Replace(phrase))
}

type fileBook struct {
	Welcome           []string            `yaml:"welcome,omitempty"`
	Clarifications    []string            `yaml:"clarifications,omitempty"`
	FollowUps         []string            `yaml:"followups,omitempty"`
	Help              []string            `yaml:"help,omitempty"`
	PermissionPrompts []string            `yaml:"permission,omitempty"`
	Confirmations     map[string][]string `yaml:"confirmations,omitempty"`
}

// Load reads a YAML override on top of the defaults. Non-empty lists replace
// the default pool of the same name. An empty path yields the defaults.
func Load(path string) (Book, error) {
	book := Default()
	path = strings.TrimSpace(path)
	if path == "" {
		return book, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Book{}, fmt.Errorf("read phrasebook %s: %w", path, err)
	}
	if err := book.Merge(data); err != nil {
		return Book{}, fmt.Errorf("parse phrasebook %s: %w", path, err)
	}
	return book, nil
}

// Merge applies a YAML document to b in place.
func (b *Book) Merge(data []byte) error {
	var parsed fileBook
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return err
	}

	overrides := map[Pool][]string{
		PoolWelcome:          parsed.Welcome,
		PoolClarification:    parsed.Clarifications,
		PoolFollowUp:         parsed.FollowUps,
		PoolHelp:             parsed.Help,
		PoolPermissionPrompt: parsed.PermissionPrompts,
	}
	for pool, phrases := range overrides {
		if phrases = nonEmpty(phrases); len(phrases) > 0 {
			b.Pools[pool] = phrases
		}
	}

	for key, phrases := range parsed.Confirmations {
		cmd := domain.CommandType(strings.ToUpper(strings.TrimSpace(key)))
		if _, ok := Confirmations[cmd]; !ok {
			return fmt.Errorf("unknown command type %q in confirmations", key)
		}
		if phrases = nonEmpty(phrases); len(phrases) > 0 {
			b.Confirmations[cmd] = phrases
		}
	}
	return nil
}

func nonEmpty(phrases []string) []string {
	out := make([]string, 0, len(phrases))
	for _, phrase := range phrases {
		if phrase = strings.TrimSpace(phrase); phrase != "" {
			out = append(out, phrase)
		}
	}
	return out
}

func clone(in []string) []string {
	return append([]string(nil), in...)
}
