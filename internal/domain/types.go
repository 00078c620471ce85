package domain

// SessionState models the conversational loop.
type SessionState string

const (
	SessionStateIdle           SessionState = "idle"
	SessionStateListening      SessionState = "listening"
	SessionStateResult         SessionState = "result"
	SessionStateError          SessionState = "error"
	SessionStateResponding     SessionState = "responding"
	SessionStateFollowUpPrompt SessionState = "followup_prompt"
)

// SessionStateReason provides a structured reason for state transitions.
type SessionStateReason string

const (
	SessionReasonReady              SessionStateReason = "ready"
	SessionReasonListeningStarted   SessionStateReason = "listening_started"
	SessionReasonListeningStopped   SessionStateReason = "listening_stopped"
	SessionReasonTranscriptReady    SessionStateReason = "transcript_ready"
	SessionReasonTextSubmitted      SessionStateReason = "text_submitted"
	SessionReasonNoSpeech           SessionStateReason = "no_speech"
	SessionReasonPermissionDenied   SessionStateReason = "permission_denied"
	SessionReasonNetworkUnavailable SessionStateReason = "network_unavailable"
	SessionReasonAborted            SessionStateReason = "aborted"
	SessionReasonRecognitionFailed  SessionStateReason = "recognition_failed"
	SessionReasonResponding         SessionStateReason = "responding"
	SessionReasonFollowUpScheduled  SessionStateReason = "followup_scheduled"
	SessionReasonTurnComplete       SessionStateReason = "turn_complete"
)

// ErrorCode identifies non-fatal and fatal backend errors.
type ErrorCode string

const (
	ErrorCodeStartup     ErrorCode = "startup"
	ErrorCodeAudioStop   ErrorCode = "audio_stop"
	ErrorCodeAudioStream ErrorCode = "audio_stream"
	ErrorCodeRecognition ErrorCode = "recognition"
	ErrorCodeRules       ErrorCode = "rules"
	ErrorCodeSpeech      ErrorCode = "speech"
)

// TranscriptKind identifies whether a stream event is partial or final text.
type TranscriptKind string

const (
	TranscriptKindPartial TranscriptKind = "partial"
	TranscriptKindFinal   TranscriptKind = "final"
)

// TranscriptEvent represents incremental transcription output from a provider.
type TranscriptEvent struct {
	Kind          TranscriptKind `json:"kind"`
	Text          string         `json:"text"`
	IsSpeechFinal bool           `json:"isSpeechFinal"`
}

// Status summarizes the current runtime status.
type Status struct {
	State     SessionState `json:"state"`
	Listening bool         `json:"listening"`
	Message   string       `json:"message,omitempty"`
	Unread    int          `json:"unread"`
}

// Screen is a bottom-navigation index in the application shell.
type Screen int

const (
	ScreenHome      Screen = 0
	ScreenTasks     Screen = 1
	ScreenCustomers Screen = 2
	ScreenCalendar  Screen = 3
)

func (s Screen) String() string {
	switch s {
	case ScreenHome:
		return "home"
	case ScreenTasks:
		return "tasks"
	case ScreenCustomers:
		return "customers"
	case ScreenCalendar:
		return "calendar"
	default:
		return "unknown"
	}
}

// ModuleID names one of the intelligent module screens.
type ModuleID string

const (
	ModuleIllustration ModuleID = "illustration"
	ModuleLifeStage    ModuleID = "lifestage"
	ModuleMeetingPrep  ModuleID = "meetingprep"
	ModuleAutomation   ModuleID = "automation"
	ModulePredictive   ModuleID = "predictive"
	ModuleEnterprise   ModuleID = "enterprise"
	ModuleEngagement   ModuleID = "engagement"
)
