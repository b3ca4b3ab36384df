// Package webhook decodes vendor call events into a vendor-neutral Event.
package webhook

// Normalized message types.
const (
	TypeToolCalls       = "tool-calls"
	TypeEndOfCallReport = "end-of-call-report"
	TypeUnknown         = "unknown"
)

// Event is one decoded webhook delivery.
type Event struct {
	Vendor    string
	Type      string
	CallID    string
	ToolCalls []ToolCall
	Report    *CallReport
	Raw       []byte
}

// ToolCall is one function invocation requested by the voice agent.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any

	// ArgumentsErr is set when the arguments could not be parsed. Arguments
	// is then empty and only this tool call fails.
	ArgumentsErr error
}

// CallReport is the structured summary attached to an end-of-call report.
type CallReport struct {
	StructuredData map[string]any
	Summary        string
}

// Decoder turns a raw request body into an Event.
type Decoder interface {
	Vendor() string
	Decode(body []byte) (*Event, error)
}
