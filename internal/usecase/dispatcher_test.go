package usecase

import (
	"testing"

	"advisorvoice/internal/domain"
	"advisorvoice/internal/notifications"
)

func TestDispatcherRoutes(t *testing.T) {
	t.Parallel()

	age := 58
	cases := []struct {
		name   string
		cmd    domain.Command
		effect Effect
		screen domain.Screen
		module domain.ModuleID
	}{
		{name: "create task", cmd: domain.CreateTask{Description: "x"}, effect: EffectNavigate, screen: domain.ScreenTasks},
		{name: "schedule", cmd: domain.ScheduleAppointment{CustomerName: "Ann", Time: "3:00 PM"}, effect: EffectNavigate, screen: domain.ScreenCalendar},
		{name: "customers", cmd: domain.ViewCustomers{}, effect: EffectNavigate, screen: domain.ScreenCustomers},
		{name: "read tasks", cmd: domain.ReadTasks{}, effect: EffectNavigate, screen: domain.ScreenTasks},
		{name: "read appointments", cmd: domain.ReadAppointments{}, effect: EffectNavigate, screen: domain.ScreenCalendar},
		{name: "summary", cmd: domain.DailySummary{}, effect: EffectNavigate, screen: domain.ScreenHome},
		{name: "navigate", cmd: domain.Navigate{Screen: domain.ScreenCustomers}, effect: EffectNavigate, screen: domain.ScreenCustomers},
		{name: "illustration", cmd: domain.ShowIllustration{}, effect: EffectModule, module: domain.ModuleIllustration},
		{name: "demo", cmd: domain.ShowDemo{Kind: domain.DemoKindEngagement, Age: &age}, effect: EffectModule, module: domain.ModuleEngagement},
		{name: "review prep", cmd: domain.ClientReviewPrep{CustomerName: "Tom Lee"}, effect: EffectModule, module: domain.ModuleMeetingPrep},
		{name: "open module", cmd: domain.OpenModule{Module: domain.ModulePredictive}, effect: EffectModule, module: domain.ModulePredictive},
		{name: "help", cmd: domain.Help{}, effect: EffectNone},
		{name: "unrecognized", cmd: domain.Unrecognized{}, effect: EffectNone},
	}

	for _, tc := range cases {
		shell := &fakeShell{}
		out := NewDispatcher(shell, notifications.NewStore(), nil).Dispatch(tc.cmd)

		if out.Effect != tc.effect {
			t.Fatalf("%s: effect %s, want %s", tc.name, out.Effect, tc.effect)
		}
		switch tc.effect {
		case EffectNavigate:
			if screens := shell.snapshotScreens(); len(screens) != 1 || screens[0] != tc.screen {
				t.Fatalf("%s: unexpected navigation %v", tc.name, screens)
			}
		case EffectModule:
			if modules := shell.snapshotModules(); len(modules) != 1 || modules[0].module != tc.module {
				t.Fatalf("%s: unexpected module %v", tc.name, modules)
			}
		default:
			if len(shell.snapshotScreens())+len(shell.snapshotModules()) != 0 {
				t.Fatalf("%s: expected no shell effect", tc.name)
			}
		}
		if envelopes := shell.snapshotEnvelopes(); len(envelopes) != 1 || envelopes[0]["type"] != string(tc.cmd.Type()) {
			t.Fatalf("%s: expected command to be published, got %v", tc.name, envelopes)
		}
	}
}

func TestDispatcherDoesNotDeduplicate(t *testing.T) {
	t.Parallel()

	shell := &fakeShell{}
	store := notifications.NewStore()
	d := NewDispatcher(shell, store, nil)

	first := d.Dispatch(domain.ScheduleAppointment{CustomerName: "Ann", Time: "3:00 PM"})
	second := d.Dispatch(domain.ScheduleAppointment{CustomerName: "Ann", Time: "3:00 PM"})

	if len(shell.snapshotScreens()) != 2 || len(shell.snapshotEnvelopes()) != 2 {
		t.Fatalf("expected both dispatches to reach the shell")
	}
	if first.Notification == nil || second.Notification == nil || first.Notification.ID != second.Notification.ID {
		t.Fatalf("expected the store to drop the duplicate notification")
	}
	list := store.List()
	if len(list) != 1 || list[0].Title != TitleAppointmentScheduled || list[0].Message != "Ann at 3:00 PM" {
		t.Fatalf("unexpected notifications: %v", list)
	}
}

func TestDispatcherModuleParams(t *testing.T) {
	t.Parallel()

	shell := &fakeShell{}
	age := 58
	NewDispatcher(shell, nil, nil).Dispatch(domain.ShowDemo{Kind: domain.DemoKindBirthday, CustomerName: "Maria Garcia", Age: &age})

	modules := shell.snapshotModules()
	params := modules[0].params
	if params["kind"] != "birthday" || params["customerName"] != "Maria Garcia" || params["age"] != "58" {
		t.Fatalf("unexpected params: %v", params)
	}
}
