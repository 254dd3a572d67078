// Package shurufa defines the request/response types for the baseline
// completion engine's wire protocol. Messages are JSON-encoded and sent
// over a TCP loopback connection, one object per line.
package shurufa

// ClientDescriptor identifies the application driving a suggest request.
type ClientDescriptor struct {
	App string `json:"app,omitempty"`
	Pid int    `json:"pid,omitempty"`
}

// SuggestRequest is sent from a client to the engine to request a completion.
type SuggestRequest struct {
	// Type is always "suggest".
	Type string `json:"type"`
	// RequestID is an opaque fingerprint the client uses to match this
	// request to its reply, and to cancel it.
	RequestID string `json:"request_id"`
	// Context is the full text surrounding the cursor.
	Context string `json:"context"`
	// Cursor is the cursor position within Context, in UTF-16 code units.
	Cursor int `json:"cursor"`
	// LanguageHint is an optional hint about the text's language; unused
	// by the current ASCII-only completion path but carried for clients.
	LanguageHint string `json:"language_hint,omitempty"`
	// MaxLen bounds the byte length of the returned suggestion.
	MaxLen int `json:"max_len"`
	// Client optionally identifies the calling application.
	Client *ClientDescriptor `json:"client,omitempty"`
}

// CancelRequest asks the engine to drop a pending SuggestRequest with the
// given RequestID, if it has not already been answered.
type CancelRequest struct {
	// Type is always "cancel".
	Type      string `json:"type"`
	RequestID string `json:"request_id"`
}

// ClientMessageTag is used to sniff the "type" field of an incoming line
// before decoding it into the concrete request type.
type ClientMessageTag struct {
	Type string `json:"type"`
}

// SuggestionReply is sent from the engine back to the client.
type SuggestionReply struct {
	// Type is always "suggestion".
	Type string `json:"type"`
	// RequestID echoes the originating SuggestRequest.RequestID.
	RequestID string `json:"request_id"`
	// Suggestion is the text to insert at the cursor; empty when no
	// completion passed the confidence gate.
	Suggestion string `json:"suggestion"`
	// Confidence is in [0,1]; 0 when Suggestion is empty.
	Confidence float64 `json:"confidence"`
	// ReplaceRange is [start,end] in UTF-16 code units into the original
	// context. In the current engine start == end == the request cursor,
	// since suggestions are pure insertions.
	ReplaceRange [2]int `json:"replace_range"`
}
