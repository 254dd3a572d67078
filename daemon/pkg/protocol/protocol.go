// Package protocol defines the prediction daemon's data model and wire
// envelope. Messages are JSON-encoded and sent over a Unix domain socket,
// one object per line, with the request/response body flattened into the
// envelope alongside the correlation id.
package protocol

// Language is the text language a predict request is framed in.
type Language string

const (
	LanguageZh Language = "zh"
	LanguageEn Language = "en"
)

// Mode selects next-token continuation or fill-in-the-middle completion.
type Mode string

const (
	ModeNext Mode = "next"
	ModeFim  Mode = "fim"
)

// Source tags which engine produced a PredictResponse.
type Source string

const (
	SourceLocalNext Source = "local_next"
	SourceLocalFim  Source = "local_fim"
	SourceCloud     Source = "cloud"
)

// ErrorCode enumerates the error taxonomy surfaced to daemon clients.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "invalid_request"
	ErrTimeout        ErrorCode = "timeout"
	ErrInternal       ErrorCode = "internal"
)

// DefaultMaxTokens and DefaultLatencyBudgetMs are substituted by the
// router when a request leaves the corresponding field at its zero value.
const (
	DefaultMaxTokens       = 12
	DefaultLatencyBudgetMs = 90
)

// PredictRequest is the body of a "predict" request.
type PredictRequest struct {
	Prefix          string   `json:"prefix"`
	Suffix          string   `json:"suffix,omitempty"`
	Language        Language `json:"language,omitempty"`
	Mode            Mode     `json:"mode,omitempty"`
	MaxTokens       uint32   `json:"max_tokens,omitempty"`
	LatencyBudgetMs uint64   `json:"latency_budget_ms,omitempty"`
}

// PredictResponse is the body of a "predict" response.
type PredictResponse struct {
	GhostText  string   `json:"ghost_text"`
	Candidates []string `json:"candidates"`
	Confidence float64  `json:"confidence"`
	Source     Source   `json:"source"`
	ElapsedMs  uint64   `json:"elapsed_ms"`
}

// ErrorBody is the body of an "error" response.
type ErrorBody struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// RequestType enumerates the "type" discriminator of a DaemonRequest.
type RequestType string

const (
	RequestPredict        RequestType = "predict"
	RequestPing           RequestType = "ping"
	RequestConfigGet      RequestType = "config_get"
	RequestConfigReload   RequestType = "config_reload"
	RequestConfigDefaults RequestType = "config_defaults"
	RequestConfigValidate RequestType = "config_validate"
)

// ResponseType enumerates the "type" discriminator of a DaemonResponse.
type ResponseType string

const (
	ResponsePredict ResponseType = "predict"
	ResponsePong    ResponseType = "pong"
	ResponseError   ResponseType = "error"
	ResponseConfig  ResponseType = "config"
)

// DaemonRequest is the envelope for every client-to-daemon message. The
// predict fields are flattened alongside the envelope fields, as the
// wire format requires; they are simply absent (zero-valued) for "ping"
// and config requests.
type DaemonRequest struct {
	ID   string      `json:"id,omitempty"`
	Type RequestType `json:"type"`
	PredictRequest
}

// DaemonResponse is the envelope for every daemon-to-client message.
// At most one of PredictResponse, Error, or Config is populated, matching
// Type; PredictResponse is embedded so its fields flatten into the
// envelope on the wire, as the "predict" response body requires.
type DaemonResponse struct {
	ID   string       `json:"id"`
	Type ResponseType `json:"type"`
	*PredictResponse
	Error  *ErrorBody `json:"error,omitempty"`
	Config any        `json:"config,omitempty"`
}
