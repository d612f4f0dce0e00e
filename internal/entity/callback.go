package entity

// CallbackEventType represents the type of callback event
type CallbackEventType string

const (
	CallbackEventTypeEntry       CallbackEventType = "entry"
	CallbackEventTypeFinalResult CallbackEventType = "final_result"
	CallbackEventTypeError       CallbackEventType = "error"
)

// CallbackEvent represents a callback event
type CallbackEvent struct {
	Event     CallbackEventType `json:"event"`
	Timestamp string            `json:"timestamp"` // ISO-8601 UTC
	Data      any               `json:"data"`
}

// CallbackEntryData is sent for every system entry of a callback session
type CallbackEntryData struct {
	SessionID string       `json:"session_id"`
	Entry     ChatEntryDTO `json:"entry"`
}

// CallbackFinalResultData is sent once a session completes
type CallbackFinalResultData struct {
	SessionID   string                 `json:"session_id"`
	Answers     map[string]AnswerValue `json:"answers"`
	CompletedAt string                 `json:"completed_at"`
}

// CallbackErrorData represents data for error event
type CallbackErrorData struct {
	Error CallbackErrorDetails `json:"error"`
}

// CallbackErrorDetails contains error information
type CallbackErrorDetails struct {
	Message string         `json:"message"`
	Details map[string]any `json:"details"` // session id, failed step
}
