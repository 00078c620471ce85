package usecase

import (
	"fmt"
	"log/slog"
	"strconv"

	"advisorvoice/internal/domain"
	"advisorvoice/internal/ports"
)

// Effect is the kind of shell state change a command produced.
type Effect string

const (
	EffectNone     Effect = "none"
	EffectNavigate Effect = "navigate"
	EffectModule   Effect = "module"
)

// Notification titles raised as dispatch side effects.
const (
	TitleTaskCreated          = "Task created"
	TitleAppointmentScheduled = "Appointment scheduled"
)

// Outcome describes what Dispatch did.
type Outcome struct {
	Effect       Effect
	Screen       domain.Screen
	Module       domain.ModuleID
	Params       map[string]string
	Notification *domain.Notification
}

// Dispatcher routes commands to the application shell. It does not
// deduplicate; receivers own that.
type Dispatcher struct {
	shell         ports.Shell
	notifications ports.NotificationSink
	logger        *slog.Logger
}

func NewDispatcher(shell ports.Shell, notifications ports.NotificationSink, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{shell: shell, notifications: notifications, logger: logger}
}

func (d *Dispatcher) Dispatch(cmd domain.Command) Outcome {
	if cmd == nil {
		cmd = domain.Unrecognized{}
	}
	d.shell.CommandDispatched(domain.Envelope(cmd))

	var out Outcome
	switch c := cmd.(type) {
	case domain.CreateTask:
		out = d.navigate(domain.ScreenTasks)
		out.Notification = d.notify("task", TitleTaskCreated, c.Description)
	case domain.ScheduleAppointment:
		out = d.navigate(domain.ScreenCalendar)
		out.Notification = d.notify("appointment", TitleAppointmentScheduled, fmt.Sprintf("%s at %s", c.CustomerName, c.Time))
	case domain.ViewCustomers:
		out = d.navigate(domain.ScreenCustomers)
	case domain.ReadTasks:
		out = d.navigate(domain.ScreenTasks)
	case domain.ReadAppointments:
		out = d.navigate(domain.ScreenCalendar)
	case domain.DailySummary:
		out = d.navigate(domain.ScreenHome)
	case domain.Navigate:
		out = d.navigate(c.Screen)
	case domain.ShowIllustration:
		out = d.openModule(domain.ModuleIllustration, map[string]string{
			"customerName":      c.Params.CustomerName,
			"age":               strconv.Itoa(c.Params.Age),
			"monthlyWithdrawal": strconv.Itoa(c.Params.MonthlyWithdrawal),
		})
	case domain.ShowDemo:
		params := map[string]string{
			"kind":         string(c.Kind),
			"customerName": c.CustomerName,
		}
		if c.Age != nil {
			params["age"] = strconv.Itoa(*c.Age)
		}
		out = d.openModule(domain.ModuleEngagement, params)
	case domain.ClientReviewPrep:
		out = d.openModule(domain.ModuleMeetingPrep, map[string]string{"customerName": c.CustomerName})
	case domain.OpenModule:
		out = d.openModule(c.Module, c.Params)
	default:
		out = Outcome{Effect: EffectNone}
	}

	d.logger.Debug("command dispatched", "type", cmd.Type(), "effect", out.Effect)
	return out
}

func (d *Dispatcher) navigate(screen domain.Screen) Outcome {
	d.shell.Navigate(screen)
	return Outcome{Effect: EffectNavigate, Screen: screen}
}

func (d *Dispatcher) openModule(module domain.ModuleID, params map[string]string) Outcome {
	d.shell.OpenModule(module, params)
	return Outcome{Effect: EffectModule, Module: module, Params: params}
}

func (d *Dispatcher) notify(kind, title, message string) *domain.Notification {
	if d.notifications == nil {
		return nil
	}
	n, added := d.notifications.Add(kind, title, message, domain.PriorityMedium, true)
	if !added {
		d.logger.Debug("duplicate notification dropped", "title", title)
	}
	return &n
}
