package agenda

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultReadouts(t *testing.T) {
	t.Parallel()

	a := Default()
	require.Equal(t,
		"You have 3 tasks. Call Sarah Johnson about her annuity renewal, due today. "+
			"Send the Garcia family their beneficiary forms, due today. "+
			"Review Tom Lee's retirement illustration, due tomorrow.",
		a.TasksReadout())
	require.Equal(t,
		"You have 2 appointments. 10:00 AM with Jane Doe for annual review. 2:00 PM with Maria Garcia for policy update.",
		a.AppointmentsReadout())
	require.Equal(t,
		"You've sold 7 policies of your 12 goal this month, added 3 new clients, and have 4 follow-ups due.",
		a.SummaryReadout())
}

func TestEmptyReadouts(t *testing.T) {
	t.Parallel()

	var a Agenda
	require.Equal(t, "You have no open tasks.", a.TasksReadout())
	require.Equal(t, "You have no appointments today.", a.AppointmentsReadout())
	require.Equal(t, "You've sold 0 policies, added 0 new clients, and have 0 follow-ups due.", a.SummaryReadout())
}

func TestReadoutCapsItems(t *testing.T) {
	t.Parallel()

	a := Agenda{Tasks: []Task{{Title: "a"}, {Title: "b"}, {Title: "c"}, {Title: "d"}}}
	require.Equal(t, "You have 4 tasks. a. b. c.", a.TasksReadout())
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "agenda.yaml")
	doc := `
tasks:
  - title: Renew the Patel policy
appointments:
  - customer: Raj Patel
    time: "9:30 AM"
summary:
  policies_sold: 1
  new_clients: 1
  followups_due: 1
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	a, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "You have 1 task. Renew the Patel policy.", a.TasksReadout())
	require.Equal(t, "You have 1 appointment. 9:30 AM with Raj Patel.", a.AppointmentsReadout())
	require.Equal(t, "You've sold 1 policy, added 1 new client, and have 1 follow-up due.", a.SummaryReadout())

	def, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), def)

	require.NoError(t, os.WriteFile(path, []byte("tasks: {"), 0o644))
	_, err = Load(path)
	require.ErrorContains(t, err, "parse agenda")
}
