// Package agenda provides the small static agenda read aloud for task,
// appointment and daily-summary requests.
package agenda

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Task struct {
	Title    string `yaml:"title"`
	Due      string `yaml:"due,omitempty"`
	Priority string `yaml:"priority,omitempty"`
}

type Appointment struct {
	Customer string `yaml:"customer"`
	Time     string `yaml:"time"`
	Purpose  string `yaml:"purpose,omitempty"`
}

type Summary struct {
	PoliciesSold int `yaml:"policies_sold"`
	MonthlyGoal  int `yaml:"monthly_goal"`
	NewClients   int `yaml:"new_clients"`
	FollowUpsDue int `yaml:"followups_due"`
}

// Agenda is what the narrator reads out. It is never mutated after load.
type Agenda struct {
	Tasks        []Task        `yaml:"tasks"`
	Appointments []Appointment `yaml:"appointments"`
	Summary      Summary       `yaml:"summary"`
}

// maxReadout caps how many items are spoken in one reply.
const maxReadout = 3

func Default() Agenda {
	return Agenda{
		Tasks: []Task{
			{Title: "Call Sarah Johnson about her annuity renewal", Due: "today", Priority: "high"},
			{Title: "Send the Garcia family their beneficiary forms", Due: "today", Priority: "medium"},
			{Title: "Review Tom Lee's retirement illustration", Due: "tomorrow", Priority: "medium"},
		},
		Appointments: []Appointment{
			{Customer: "Jane Doe", Time: "10:00 AM", Purpose: "annual review"},
			{Customer: "Maria Garcia", Time: "2:00 PM", Purpose: "policy update"},
		},
		Summary: Summary{PoliciesSold: 7, MonthlyGoal: 12, NewClients: 3, FollowUpsDue: 4},
	}
}

// Load reads an agenda from YAML. An empty path yields Default.
func Load(path string) (Agenda, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Agenda{}, fmt.Errorf("read agenda %s: %w", path, err)
	}
	var a Agenda
	if err := yaml.Unmarshal(data, &a); err != nil {
		return Agenda{}, fmt.Errorf("parse agenda %s: %w", path, err)
	}
	return a, nil
}

func (a Agenda) TasksReadout() string {
	if len(a.Tasks) == 0 {
		return "You have no open tasks."
	}
	items := make([]string, 0, maxReadout)
	for _, task := range a.Tasks[:min(len(a.Tasks), maxReadout)] {
		item := task.Title
		if task.Due != "" {
			item += ", due " + task.Due
		}
		items = append(items, item)
	}
	return fmt.Sprintf("You have %s. %s.", plural(len(a.Tasks), "task"), strings.Join(items, ". "))
}

func (a Agenda) AppointmentsReadout() string {
	if len(a.Appointments) == 0 {
		return "You have no appointments today."
	}
	items := make([]string, 0, maxReadout)
	for _, appt := range a.Appointments[:min(len(a.Appointments), maxReadout)] {
		item := fmt.Sprintf("%s with %s", appt.Time, appt.Customer)
		if appt.Purpose != "" {
			item += " for " + appt.Purpose
		}
		items = append(items, item)
	}
	return fmt.Sprintf("You have %s. %s.", plural(len(a.Appointments), "appointment"), strings.Join(items, ". "))
}

func (a Agenda) SummaryReadout() string {
	s := a.Summary
	out := fmt.Sprintf("You've sold %s", plural(s.PoliciesSold, "policy"))
	if s.MonthlyGoal > 0 {
		out += fmt.Sprintf(" of your %d goal this month", s.MonthlyGoal)
	}
	out += fmt.Sprintf(", added %s, and have %s due.",
		plural(s.NewClients, "new client"), plural(s.FollowUpsDue, "follow-up"))
	return out
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	if strings.HasSuffix(noun, "y") {
		return fmt.Sprintf("%d %sies", n, strings.TrimSuffix(noun, "y"))
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
