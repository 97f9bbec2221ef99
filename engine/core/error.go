package core

// Error is the single error envelope surfaced across inference step
// boundaries (IWI/MFP/MVP/TVA). It always carries a human message, a short
// machine-checkable code, and (where known) the paradigm/step/key that
// failed, per spec §7 ("attach the failing step, paradigm name, and ...
// offending input key to raised errors").
type Error struct {
	Message  string         `json:"message,omitempty"`
	Code     string         `json:"code,omitempty"`
	Step     string         `json:"step,omitempty"`
	Paradigm string         `json:"paradigm,omitempty"`
	InputKey string         `json:"input_key,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
	cause    error
}

// Error kinds, used as Error.Code values (see spec §7).
const (
	CodeConfiguration = "configuration_error"
	CodeBinding       = "binding_error"
	CodeSelection     = "selection_error"
	CodeResolution    = "resolution_error"
	CodeExecution     = "execution_error"
)

// NewError wraps err with a code and optional details.
func NewError(err error, code string, details map[string]any) *Error {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{Message: msg, Code: code, Details: details, cause: err}
}

// WithStep annotates the error with the step that raised it.
func (e *Error) WithStep(step string) *Error {
	if e == nil {
		return nil
	}
	e.Step = step
	return e
}

// WithParadigm annotates the error with the paradigm name in play.
func (e *Error) WithParadigm(name string) *Error {
	if e == nil {
		return nil
	}
	e.Paradigm = name
	return e
}

// WithInputKey annotates the error with the offending input key.
func (e *Error) WithInputKey(key string) *Error {
	if e == nil {
		return nil
	}
	e.InputKey = key
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Step == "" && e.Paradigm == "" {
		return e.Message
	}
	return e.Step + "[" + e.Paradigm + "]: " + e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// AsMap renders the error for inclusion in a diagnostic payload.
func (e *Error) AsMap() map[string]any {
	if e == nil {
		return nil
	}
	return map[string]any{
		"message":   e.Message,
		"code":      e.Code,
		"step":      e.Step,
		"paradigm":  e.Paradigm,
		"input_key": e.InputKey,
		"details":   e.Details,
	}
}
