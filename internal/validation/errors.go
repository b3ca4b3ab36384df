package validation

import "fmt"

// ValidationError reports an inbound payload that cannot be interpreted as
// key-value data. It is the only error surfaced to webhook callers as a 4xx.
type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e *ValidationError) Error() string {
	msg := e.Msg
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("invalid payload: %s: %v", msg, e.Err)
	}
	return "invalid payload: " + msg
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
