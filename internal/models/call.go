package models

// CallStatus represents the state of a live interview call.
type CallStatus string

const (
	CallInactive   CallStatus = "inactive"
	CallConnecting CallStatus = "connecting"
	CallActive     CallStatus = "active"
	CallFinished   CallStatus = "finished"
)

// callTransitions is the immutable transition table for the call state
// machine. A manual disconnect jumps straight from active to finished.
var callTransitions = map[CallStatus][]CallStatus{
	CallInactive:   {CallConnecting},
	CallConnecting: {CallActive, CallFinished},
	CallActive:     {CallFinished},
	CallFinished:   {},
}

// CanTransition reports whether moving from s to next is allowed.
func (s CallStatus) CanTransition(next CallStatus) bool {
	for _, allowed := range callTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal returns true once the call has finished.
func (s CallStatus) IsTerminal() bool {
	return s == CallFinished
}

// Voice-session SDK event types, as delivered over the call gateway.
const (
	EventCallStart   = "call-start"
	EventCallEnd     = "call-end"
	EventSpeechStart = "speech-start"
	EventSpeechEnd   = "speech-end"
	EventTranscript  = "transcript"
	EventError       = "error"
)

// CallEvent is one event relayed from the external voice-session SDK.
// Transcript chunks carry the speaker role and the recognized text; only
// chunks with TranscriptType "final" become transcript turns.
type CallEvent struct {
	Type           string `json:"type"`
	Role           string `json:"role,omitempty"`
	TranscriptType string `json:"transcript_type,omitempty"`
	Transcript     string `json:"transcript,omitempty"`
	Message        string `json:"message,omitempty"`
}

// CallMessage is a server-to-client message on the call gateway.
type CallMessage struct {
	Type   string     `json:"type"`
	Status CallStatus `json:"status,omitempty"`
	URL    string     `json:"url,omitempty"`
	Error  string     `json:"error,omitempty"`
}
