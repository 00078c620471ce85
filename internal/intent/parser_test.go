package intent

import (
	"testing"

	"github.com/stretchr/testify/require"

	"advisorvoice/internal/domain"
)

func TestParserEndToEnd(t *testing.T) {
	t.Parallel()

	p := NewParser(nil, nil)

	tag, cmd := p.Parse(domain.NewUtterance("Create task call John Smith tomorrow"))
	require.Equal(t, domain.IntentCreateTask, tag)
	require.Equal(t, domain.CreateTask{Description: "call John Smith tomorrow"}, cmd)

	tag, cmd = p.Parse(domain.NewUtterance("Go to calendar"))
	require.Equal(t, domain.IntentNavigateCalendar, tag)
	require.Equal(t, domain.Navigate{Screen: domain.ScreenCalendar}, cmd)

	tag, cmd = p.Parse(domain.NewUtterance("what's the weather"))
	require.Equal(t, domain.IntentUnrecognized, tag)
	require.Equal(t, domain.Unrecognized{Text: "what's the weather"}, cmd)
}

func TestParserOpensModuleWithoutVerb(t *testing.T) {
	t.Parallel()

	p := NewParser(nil, nil)

	tag, cmd := p.Parse(domain.NewUtterance("Risk analysis for Tom Lee"))
	require.Equal(t, domain.IntentOpenModule, tag)
	require.Equal(t, domain.OpenModule{
		Module: domain.ModulePredictive,
		Params: map[string]string{"customerName": "Tom Lee"},
	}, cmd)

	tag, cmd = p.Parse(domain.NewUtterance("compliance automation"))
	require.Equal(t, domain.IntentOpenModule, tag)
	require.Equal(t, domain.OpenModule{Module: domain.ModuleAutomation}, cmd)
}

func TestParserUsesCustomClassifier(t *testing.T) {
	t.Parallel()

	p := NewParser(NewClassifier(Rule{Tag: domain.IntentHelp, Match: anyOf("weather")}), nil)

	tag, cmd := p.Parse(domain.NewUtterance("what's the weather"))
	require.Equal(t, domain.IntentHelp, tag)
	require.Equal(t, domain.Help{}, cmd)
}
