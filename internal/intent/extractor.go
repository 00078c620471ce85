package intent

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"advisorvoice/internal/domain"
)

// DefaultTaskDescription is used when nothing is left after stripping the trigger.
const DefaultTaskDescription = "New task"

// Candidate tries to read one slot value from the raw utterance.
type Candidate[T any] func(raw string) (T, bool)

// FirstOf runs candidates in order and returns the first hit, else fallback.
func FirstOf[T any](raw string, fallback T, candidates ...Candidate[T]) T {
	for _, candidate := range candidates {
		if value, ok := candidate(raw); ok {
			return value
		}
	}
	return fallback
}

// Extractor pulls slot values out of raw utterances.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract builds the command for tag. Missing slots degrade to defaults.
func (e *Extractor) Extract(tag domain.IntentTag, u domain.Utterance) domain.Command {
	raw := u.Raw
	switch tag {
	case domain.IntentCreateTask:
		return domain.CreateTask{Description: TaskDescription(raw)}
	case domain.IntentScheduleAppointment:
		return domain.ScheduleAppointment{
			CustomerName: CustomerName(raw, domain.DefaultCustomerName, "with", "for", "client", "customer"),
			Time:         MeetingTime(raw),
		}
	case domain.IntentViewCustomers:
		return domain.ViewCustomers{
			CustomerName: CustomerName(raw, "", "customer", "client", "for", "about"),
			AddNote:      strings.Contains(u.Normalized, "add note"),
		}
	case domain.IntentReadTasks:
		return domain.ReadTasks{}
	case domain.IntentReadAppointments:
		return domain.ReadAppointments{}
	case domain.IntentDailySummary:
		return domain.DailySummary{}
	case domain.IntentShowIllustration:
		return domain.ShowIllustration{Params: domain.IllustrationParams{
			CustomerName:      CustomerName(raw, domain.DefaultCustomerName, "for", "client", "customer", "with"),
			Age:               Age(raw),
			MonthlyWithdrawal: MonthlyWithdrawal(raw),
		}}
	case domain.IntentBirthdayDemo:
		return domain.ShowDemo{
			Kind:         domain.DemoKindBirthday,
			CustomerName: CustomerName(raw, domain.DefaultCustomerName, "to", "for", "client", "customer"),
			Age:          optionalAge(raw),
		}
	case domain.IntentShowDemo:
		return domain.ShowDemo{
			Kind:         domain.DemoKindEngagement,
			CustomerName: CustomerName(raw, domain.DefaultCustomerName, "for", "to", "with", "client", "customer"),
			Age:          optionalAge(raw),
		}
	case domain.IntentNavigateHome:
		return domain.Navigate{Screen: domain.ScreenHome}
	case domain.IntentNavigateTasks:
		return domain.Navigate{Screen: domain.ScreenTasks}
	case domain.IntentNavigateCalendar:
		return domain.Navigate{Screen: domain.ScreenCalendar}
	case domain.IntentOpenModule:
		module, ok := MatchModule(u.Normalized)
		if !ok {
			return domain.Unrecognized{Text: raw}
		}
		cmd := domain.OpenModule{Module: module}
		if name := CustomerName(raw, "", "for", "client", "customer"); name != "" {
			cmd.Params = map[string]string{"customerName": name}
		}
		return cmd
	case domain.IntentClientReviewPrep:
		return domain.ClientReviewPrep{
			CustomerName: CustomerName(raw, domain.DefaultCustomerName, "for", "with", "client", "about"),
		}
	case domain.IntentHelp:
		return domain.Help{}
	default:
		return domain.Unrecognized{Text: raw}
	}
}

var (
	leadingFillers  = wordSet("please", "create", "add", "make", "can", "could", "would", "you", "i", "want", "need", "to", "a", "an", "for", "that", "about", "called", "named", "reminder", "-", ":")
	trailingFillers = wordSet("please", "thanks", "thank", "you")
)

// TaskDescription strips the create-task trigger and surrounding filler words.
func TaskDescription(raw string) string {
	text := raw
	for _, re := range createTaskPatterns {
		if loc := re.FindStringIndex(text); loc != nil {
			text = text[:loc[0]] + " " + text[loc[1]:]
			break
		}
	}

	words := strings.Fields(text)
	for len(words) > 0 && leadingFillers[normalizeWord(words[0])] {
		words = words[1:]
	}
	for len(words) > 0 && trailingFillers[normalizeWord(words[len(words)-1])] {
		words = words[:len(words)-1]
	}
	description := strings.TrimRight(strings.Join(words, " "), ",;: ")
	if description == "" {
		return DefaultTaskDescription
	}
	return description
}

var createTaskPatterns = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(CreateTaskTriggers))
	for _, trigger := range CreateTaskTriggers {
		out = append(out, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(trigger)))
	}
	return out
}()

var nameStopWords = wordSet(
	"a", "an", "the", "my", "our", "their", "his", "her", "me", "us", "and", "or",
	"at", "age", "aged", "with", "who", "on", "for", "to", "about", "from", "by", "in", "is",
	"tomorrow", "today", "tonight", "next", "this", "morning", "afternoon", "evening", "noon", "midnight",
	"monthly", "month", "per", "years", "year", "old", "withdrawing", "withdrawal", "withdrawals", "dollars",
	"retiring", "review", "meeting", "appointment", "demo", "birthday", "illustration", "wishes", "message",
	"am", "pm", "please", "list", "lists", "roster", "details", "profile", "note", "notes",
	"customer", "customers", "client", "clients", "prep", "preparation", "module", "insights", "now",
	"named", "called",
)

// introducers name the customer outright and win over the caller's anchors
var introducers = []string{"named", "called"}

const maxNameWords = 3

// CustomerName reads up to three name words after the first productive anchor.
// "named" and "called" are tried first, then anchors in the given order.
func CustomerName(raw string, fallback string, anchors ...string) string {
	candidates := make([]Candidate[string], 0, len(introducers)+len(anchors))
	for _, anchor := range append(introducers[:len(introducers):len(introducers)], anchors...) {
		candidates = append(candidates, nameAfter(anchor))
	}
	return FirstOf(raw, fallback, candidates...)
}

func nameAfter(anchor string) Candidate[string] {
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(anchor) + `\s+`)
	return func(raw string) (string, bool) {
		for _, loc := range re.FindAllStringIndex(raw, -1) {
			if name := readName(raw[loc[1]:]); name != "" {
				return name, true
			}
		}
		return "", false
	}
}

func readName(rest string) string {
	var words []string
	for _, token := range strings.Fields(rest) {
		word := strings.TrimRight(token, ".,!?;:")
		word = strings.TrimSuffix(strings.TrimSuffix(word, "'s"), "’s")
		if word == "" || nameStopWords[strings.ToLower(word)] || !isNameWord(word) {
			break
		}
		words = append(words, word)
		// punctuation or a possessive ends the name
		if len(words) == maxNameWords || word != token {
			break
		}
	}
	if len(words) == 0 {
		return ""
	}
	return TitleCase(strings.Join(words, " "))
}

func isNameWord(word string) bool {
	for _, r := range word {
		if !unicode.IsLetter(r) && r != '-' && r != '\'' {
			return false
		}
	}
	return true
}

// TitleCase capitalizes each word of a name.
func TitleCase(name string) string {
	return cases.Title(language.English).String(strings.ToLower(name))
}

var (
	agePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bage\s+(\d{2,3})\b`),
		regexp.MustCompile(`(?i)\baged\s+(\d{2,3})\b`),
		regexp.MustCompile(`(?i)\b(\d{2,3})\s+years?\s+old\b`),
		regexp.MustCompile(`(?i)\b(\d{2,3})[\s-]+year[\s-]+old\b`),
	}
	atAgePattern = regexp.MustCompile(`(?i)\bat\s+(\d{2,3})\b(\s*(?::|a\.?m\b|p\.?m\b|o'?clock))?`)
)

// Age reads an age slot, defaulting to domain.DefaultAge.
func Age(raw string) int {
	return FirstOf(raw, domain.DefaultAge, ageCandidates()...)
}

func optionalAge(raw string) *int {
	for _, candidate := range ageCandidates() {
		if age, ok := candidate(raw); ok {
			return &age
		}
	}
	return nil
}

func ageCandidates() []Candidate[int] {
	candidates := make([]Candidate[int], 0, len(agePatterns)+1)
	for _, re := range agePatterns {
		candidates = append(candidates, intPattern(re, plausibleAge))
	}
	candidates = append(candidates, func(raw string) (int, bool) {
		for _, m := range atAgePattern.FindAllStringSubmatch(raw, -1) {
			if strings.TrimSpace(m[2]) != "" {
				continue
			}
			if age, err := strconv.Atoi(m[1]); err == nil && plausibleAge(age) {
				return age, true
			}
		}
		return 0, false
	})
	return candidates
}

func plausibleAge(age int) bool {
	return age >= 18 && age <= 120
}

const amountExpr = `(\d{1,3}(?:,\d{3})+|\d+)(?:\.\d+)?`

var withdrawalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$\s*` + amountExpr),
	regexp.MustCompile(`(?i)\b` + amountExpr + `\s*dollars\b`),
	regexp.MustCompile(`(?i)\bwithdraw(?:al|als|ing)?\s+(?:of\s+)?\$?` + amountExpr),
	regexp.MustCompile(`(?i)\b` + amountExpr + `\s+(?:a|per)\s+month\b`),
	regexp.MustCompile(`(?i)\b` + amountExpr + `\s+monthly\b`),
}

// MonthlyWithdrawal reads a dollar amount, defaulting to domain.DefaultMonthlyWithdrawal.
func MonthlyWithdrawal(raw string) int {
	candidates := make([]Candidate[int], 0, len(withdrawalPatterns))
	for _, re := range withdrawalPatterns {
		candidates = append(candidates, intPattern(re, func(v int) bool { return v > 0 }))
	}
	return FirstOf(raw, domain.DefaultMonthlyWithdrawal, candidates...)
}

// ParseAmount parses "2,000", "$2,000" or "2000.50" into whole dollars.
func ParseAmount(s string) (int, bool) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if whole, _, found := strings.Cut(s, "."); found {
		s = whole
	}
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

func intPattern(re *regexp.Regexp, valid func(int) bool) Candidate[int] {
	return func(raw string) (int, bool) {
		for _, m := range re.FindAllStringSubmatch(raw, -1) {
			v, ok := ParseAmount(m[1])
			if ok && valid(v) {
				return v, true
			}
		}
		return 0, false
	}
}

var (
	clockPattern    = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*([ap])\.?\s*m\b\.?`)
	twentyFourHour  = regexp.MustCompile(`(?i)\bat\s+(\d{1,2}):(\d{2})\b`)
	namedTimeValues = map[string]string{"noon": "12:00 PM", "midnight": "12:00 AM"}
	namedTimes      = regexp.MustCompile(`(?i)\b(noon|midnight)\b`)
)

// MeetingTime reads a clock time, defaulting to domain.DefaultMeetingTime.
func MeetingTime(raw string) string {
	return FirstOf(raw, domain.DefaultMeetingTime,
		func(raw string) (string, bool) {
			m := clockPattern.FindStringSubmatch(raw)
			if m == nil {
				return "", false
			}
			hour, _ := strconv.Atoi(m[1])
			minute := m[2]
			if minute == "" {
				minute = "00"
			}
			if hour < 1 || hour > 12 {
				return "", false
			}
			return strconv.Itoa(hour) + ":" + minute + " " + strings.ToUpper(m[3]) + "M", true
		},
		func(raw string) (string, bool) {
			m := namedTimes.FindStringSubmatch(raw)
			if m == nil {
				return "", false
			}
			return namedTimeValues[strings.ToLower(m[1])], true
		},
		func(raw string) (string, bool) {
			m := twentyFourHour.FindStringSubmatch(raw)
			if m == nil {
				return "", false
			}
			hour, _ := strconv.Atoi(m[1])
			if hour > 23 {
				return "", false
			}
			suffix := "AM"
			if hour >= 12 {
				suffix = "PM"
			}
			if hour == 0 {
				hour = 12
			} else if hour > 12 {
				hour -= 12
			}
			return strconv.Itoa(hour) + ":" + m[2] + " " + suffix, true
		},
	)
}

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

func normalizeWord(word string) string {
	return strings.ToLower(strings.Trim(word, ".,!?;"))
}
