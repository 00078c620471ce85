package domain

import (
	"encoding/json"
	"strings"
)

// IntentTag is the classifier verdict for an utterance.
type IntentTag string

const (
	IntentCreateTask          IntentTag = "CREATE_TASK"
	IntentScheduleAppointment IntentTag = "SCHEDULE_APPOINTMENT"
	IntentViewCustomers       IntentTag = "VIEW_CUSTOMERS"
	IntentReadTasks           IntentTag = "READ_TASKS"
	IntentReadAppointments    IntentTag = "READ_APPOINTMENTS"
	IntentDailySummary        IntentTag = "DAILY_SUMMARY"
	IntentShowIllustration    IntentTag = "SHOW_ILLUSTRATION"
	IntentBirthdayDemo        IntentTag = "BIRTHDAY_DEMO"
	IntentShowDemo            IntentTag = "SHOW_DEMO"
	IntentNavigateHome        IntentTag = "NAVIGATE_HOME"
	IntentNavigateTasks       IntentTag = "NAVIGATE_TASKS"
	IntentNavigateCalendar    IntentTag = "NAVIGATE_CALENDAR"
	IntentOpenModule          IntentTag = "OPEN_MODULE"
	IntentClientReviewPrep    IntentTag = "CLIENT_REVIEW_PREP"
	IntentHelp                IntentTag = "HELP"
	IntentUnrecognized        IntentTag = "UNRECOGNIZED"
)

// CommandType tags a Command variant at the shell boundary.
type CommandType string

const (
	CommandCreateTask          CommandType = "CREATE_TASK"
	CommandScheduleAppointment CommandType = "SCHEDULE_APPOINTMENT"
	CommandViewCustomers       CommandType = "VIEW_CUSTOMERS"
	CommandReadTasks           CommandType = "READ_TASKS"
	CommandReadAppointments    CommandType = "READ_APPOINTMENTS"
	CommandDailySummary        CommandType = "DAILY_SUMMARY"
	CommandShowIllustration    CommandType = "SHOW_ILLUSTRATION"
	CommandShowDemo            CommandType = "SHOW_DEMO"
	CommandNavigate            CommandType = "NAVIGATE"
	CommandOpenModule          CommandType = "OPEN_MODULE"
	CommandClientReviewPrep    CommandType = "CLIENT_REVIEW_PREP"
	CommandHelp                CommandType = "HELP"
	CommandUnrecognized        CommandType = "UNRECOGNIZED"
)

// Slot defaults applied when extraction misses.
const (
	DefaultCustomerName      = "Sarah Johnson"
	DefaultAge               = 65
	DefaultMonthlyWithdrawal = 2000
	DefaultMeetingTime       = "2:00 PM"
)

// Command is a classified utterance. Each variant carries only its own slots.
type Command interface {
	Type() CommandType
}

type CreateTask struct {
	Description string `json:"data"`
}

type ScheduleAppointment struct {
	CustomerName string `json:"customerName"`
	Time         string `json:"time"`
}

type ViewCustomers struct {
	CustomerName string `json:"customerName,omitempty"`
	AddNote      bool   `json:"addNote,omitempty"`
}

type ReadTasks struct{}

type ReadAppointments struct{}

type DailySummary struct{}

// IllustrationParams are the projection inputs handed to the illustration module.
type IllustrationParams struct {
	CustomerName      string `json:"customerName"`
	Age               int    `json:"age"`
	MonthlyWithdrawal int    `json:"monthlyWithdrawal"`
}

type ShowIllustration struct {
	Params IllustrationParams `json:"params"`
}

// DemoKind distinguishes the engagement demo flavors.
type DemoKind string

const (
	DemoKindBirthday   DemoKind = "birthday"
	DemoKindEngagement DemoKind = "engagement"
)

type ShowDemo struct {
	Kind         DemoKind `json:"kind"`
	CustomerName string   `json:"customerName"`
	Age          *int     `json:"age,omitempty"`
}

type Navigate struct {
	Screen Screen `json:"screenIndex"`
}

type OpenModule struct {
	Module ModuleID          `json:"moduleId"`
	Params map[string]string `json:"params,omitempty"`
}

type ClientReviewPrep struct {
	CustomerName string `json:"customerName"`
}

type Help struct{}

type Unrecognized struct {
	Text string `json:"text,omitempty"`
}

func (CreateTask) Type() CommandType          { return CommandCreateTask }
func (ScheduleAppointment) Type() CommandType { return CommandScheduleAppointment }
func (ViewCustomers) Type() CommandType       { return CommandViewCustomers }
func (ReadTasks) Type() CommandType           { return CommandReadTasks }
func (ReadAppointments) Type() CommandType    { return CommandReadAppointments }
func (DailySummary) Type() CommandType        { return CommandDailySummary }
func (ShowIllustration) Type() CommandType    { return CommandShowIllustration }
func (ShowDemo) Type() CommandType            { return CommandShowDemo }
func (Navigate) Type() CommandType            { return CommandNavigate }
func (OpenModule) Type() CommandType          { return CommandOpenModule }
func (ClientReviewPrep) Type() CommandType    { return CommandClientReviewPrep }
func (Help) Type() CommandType                { return CommandHelp }
func (Unrecognized) Type() CommandType        { return CommandUnrecognized }

// Envelope renders cmd in the `{type, ...slots}` shape consumed by the shell.
func Envelope(cmd Command) map[string]any {
	out := map[string]any{}
	if cmd == nil {
		out["type"] = string(CommandUnrecognized)
		return out
	}
	if data, err := json.Marshal(cmd); err == nil {
		_ = json.Unmarshal(data, &out)
	}
	out["type"] = string(cmd.Type())
	return out
}

// Utterance is one finalized piece of user input.
type Utterance struct {
	Raw        string `json:"raw"`
	Normalized string `json:"normalized"`
}

// NewUtterance collapses whitespace and derives the lowercase form.
func NewUtterance(text string) Utterance {
	raw := strings.Join(strings.Fields(text), " ")
	return Utterance{Raw: raw, Normalized: strings.ToLower(raw)}
}

func (u Utterance) Empty() bool {
	return u.Normalized == ""
}
