// Package intent turns utterances into typed commands with ordered keyword
// rules and per-slot pattern chains.
package intent

import (
	"strings"

	"advisorvoice/internal/domain"
)

// Matcher reports whether a normalized utterance satisfies a rule.
type Matcher func(normalized string) bool

// Rule pairs an intent with its predicate.
type Rule struct {
	Tag   domain.IntentTag
	Match Matcher
}

// Classifier evaluates rules in order and returns the first match.
// Ties are resolved by list position, never by specificity scoring, so more
// specific rules must be listed before broad ones.
type Classifier struct {
	rules []Rule
}

// NewClassifier builds the default rule order; extra rules run after the built-ins.
func NewClassifier(extra ...Rule) *Classifier {
	rules := defaultRules()
	rules = append(rules, extra...)
	return &Classifier{rules: rules}
}

// Classify returns the intent of a normalized (lowercase) utterance.
func (c *Classifier) Classify(normalized string) domain.IntentTag {
	normalized = strings.ToLower(strings.TrimSpace(normalized))
	if normalized == "" {
		return domain.IntentUnrecognized
	}
	for _, rule := range c.rules {
		if rule.Match(normalized) {
			return rule.Tag
		}
	}
	return domain.IntentUnrecognized
}

// Rules returns a copy of the evaluation order.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

var (
	CreateTaskTriggers       = []string{"create a task", "create task", "add a task", "add task", "new task"}
	ReadTasksTriggers        = []string{"read my tasks", "what are my tasks", "show tasks", "show my tasks"}
	ReadAppointmentsTriggers = []string{"read appointments", "read my appointments", "what appointments", "my calendar"}
	DailySummaryTriggers     = []string{"daily summary", "how am i doing", "my progress"}
	BirthdayTriggers         = []string{"send birthday", "birthday wishes", "birthday message"}
	IllustrationTriggers     = []string{"run illustration", "show illustration", "policy projection", "illustration"}
	ReviewPrepTriggers       = []string{"client review", "review prep", "meeting prep", "prepare for", "prep for"}
	DemoTriggers             = []string{"advanced engagement", "intelligent engagement", "show demo", "birthday demo", "customer engagement demo", "show me how it works"}
	HomeTriggers             = []string{"go home", "home screen", "dashboard"}
	TasksTriggers            = []string{"go to tasks"}
	CalendarTriggers         = []string{"go to calendar", "show calendar"}
	ModuleVerbs              = []string{"open", "launch", "show", "go to", "take me to", "switch to", "module"}
	ScheduleTriggers         = []string{"schedule", "appointment", "meeting"}
	CustomerTriggers         = []string{"customer", "client", "add note"}
	HelpTriggers             = []string{"help", "what can you do"}
)

// ModuleKeywords maps a keyword group onto a module id.
type ModuleKeywords struct {
	Module   domain.ModuleID
	Keywords []string
}

// ModuleGroups is checked in order; the first group with a hit wins.
var ModuleGroups = []ModuleKeywords{
	{Module: domain.ModuleIllustration, Keywords: []string{"income", "illustration", "planning"}},
	{Module: domain.ModuleLifeStage, Keywords: []string{"life", "stage", "milestone", "retention"}},
	{Module: domain.ModuleMeetingPrep, Keywords: []string{"meeting", "prep", "preparation"}},
	{Module: domain.ModuleAutomation, Keywords: []string{"compliance", "automation", "document"}},
	{Module: domain.ModulePredictive, Keywords: []string{"predictive", "analytic", "insight", "risk"}},
	{Module: domain.ModuleEnterprise, Keywords: []string{"enterprise", "business", "portfolio"}},
}

// MatchModule finds the module named by a normalized utterance.
func MatchModule(normalized string) (domain.ModuleID, bool) {
	for _, group := range ModuleGroups {
		if containsAny(normalized, group.Keywords) {
			return group.Module, true
		}
	}
	return "", false
}

func defaultRules() []Rule {
	return []Rule{
		{Tag: domain.IntentCreateTask, Match: anyOf(CreateTaskTriggers...)},
		{Tag: domain.IntentReadTasks, Match: anyOf(ReadTasksTriggers...)},
		{Tag: domain.IntentReadAppointments, Match: anyOf(ReadAppointmentsTriggers...)},
		{Tag: domain.IntentDailySummary, Match: anyOf(DailySummaryTriggers...)},
		// birthday outreach must beat the generic demo and customer rules
		{Tag: domain.IntentBirthdayDemo, Match: anyOf(BirthdayTriggers...)},
		{Tag: domain.IntentShowIllustration, Match: either(
			anyOf(IllustrationTriggers...),
			both(anyOf("withdrawal"), anyOf("age", "monthly")),
		)},
		{Tag: domain.IntentClientReviewPrep, Match: anyOf(ReviewPrepTriggers...)},
		{Tag: domain.IntentShowDemo, Match: anyOf(DemoTriggers...)},
		{Tag: domain.IntentNavigateHome, Match: anyOf(HomeTriggers...)},
		{Tag: domain.IntentNavigateTasks, Match: anyOf(TasksTriggers...)},
		{Tag: domain.IntentNavigateCalendar, Match: anyOf(CalendarTriggers...)},
		{Tag: domain.IntentOpenModule, Match: both(anyOf(ModuleVerbs...), namesModule)},
		{Tag: domain.IntentScheduleAppointment, Match: anyOf(ScheduleTriggers...)},
		{Tag: domain.IntentViewCustomers, Match: anyOf(CustomerTriggers...)},
		{Tag: domain.IntentHelp, Match: anyOf(HelpTriggers...)},
		// a bare module phrase ("predictive insights") still opens the module,
		// but only once every other intent has had its chance
		{Tag: domain.IntentOpenModule, Match: namesModule},
	}
}

func namesModule(s string) bool {
	_, ok := MatchModule(s)
	return ok
}

func anyOf(keywords ...string) Matcher {
	return func(s string) bool {
		return containsAny(s, keywords)
	}
}

func either(a, b Matcher) Matcher {
	return func(s string) bool { return a(s) || b(s) }
}

func both(a, b Matcher) Matcher {
	return func(s string) bool { return a(s) && b(s) }
}

func containsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}
