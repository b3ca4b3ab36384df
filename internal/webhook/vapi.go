package webhook

import (
	"encoding/json"
	"strings"

	"realflow/internal/validation"
)

// VendorVapi is the path segment Vapi posts to.
const VendorVapi = "vapi"

// VapiDecoder decodes Vapi server messages. It accepts the several envelope
// shapes Vapi has used for message type, call id and tool calls.
type VapiDecoder struct{}

// Vendor implements Decoder.
func (VapiDecoder) Vendor() string {
	return VendorVapi
}

// Decode implements Decoder. Only a body that is not a JSON object produces
// an error; unparseable tool arguments are reported on that tool call.
func (VapiDecoder) Decode(body []byte) (*Event, error) {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &validation.ValidationError{Field: "body", Msg: "must be a JSON object", Err: err}
	}
	if payload == nil {
		return nil, &validation.ValidationError{Field: "body", Msg: "must be a JSON object"}
	}

	message := object(payload["message"])
	if message == nil {
		message = object(payload["data"])
	}
	if message == nil {
		message = map[string]any{}
	}

	ev := &Event{
		Vendor: VendorVapi,
		Type:   normalizeType(firstString(payload["type"], message["type"], payload["message_type"], payload["messageType"])),
		CallID: callID(payload, message),
		Raw:    body,
	}

	switch ev.Type {
	case TypeToolCalls:
		ev.ToolCalls = toolCalls(payload, message)
	case TypeEndOfCallReport:
		ev.Report = callReport(message)
	}

	return ev, nil
}

func normalizeType(t string) string {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "tool-calls", "toolcalls", "tool_calls", "tool-calls-v1":
		return TypeToolCalls
	case "end-of-call-report", "end_of_call_report":
		return TypeEndOfCallReport
	case "":
		return TypeUnknown
	default:
		return strings.ToLower(strings.TrimSpace(t))
	}
}

func callID(payload, message map[string]any) string {
	for _, candidate := range []any{payload["call"], payload["callData"], payload["session"], message["call"]} {
		call := object(candidate)
		if call == nil {
			continue
		}
		if id := firstString(call["id"], call["call_id"], call["uuid"], call["session_id"]); id != "" {
			return id
		}
	}
	return firstString(payload["call_id"], payload["callId"], message["call_id"], message["callId"])
}

func toolCalls(payload, message map[string]any) []ToolCall {
	var raw []any
	for _, candidate := range []any{
		message["toolCalls"], message["tool_calls"], message["toolcalls"], message["toolCallList"],
		payload["toolCalls"], payload["tool_calls"],
	} {
		if list, ok := candidate.([]any); ok && len(list) > 0 {
			raw = list
			break
		}
	}

	calls := make([]ToolCall, 0, len(raw))
	for _, item := range raw {
		tc := object(item)
		if tc == nil {
			continue
		}

		fn := object(tc["function"])
		if fn == nil {
			fn = tc
		}

		var args any
		switch a := fn["arguments"].(type) {
		case map[string]any, string:
			args = a
		}
		if isEmpty(args) {
			args = firstPresent(tc["arguments"], tc["params"], fn["params"], tc["parameters"])
		}

		parsed, argErr := validation.ParseArguments(args)
		if argErr != nil {
			parsed = map[string]any{}
		}

		name := firstString(fn["name"], fn["function"], fn["tool"], fn["toolName"])
		if name == "" {
			name = "unknown"
		}

		calls = append(calls, ToolCall{
			ID:           firstString(tc["id"], tc["toolCallId"]),
			Name:         name,
			Arguments:    parsed,
			ArgumentsErr: argErr,
		})
	}
	return calls
}

func callReport(message map[string]any) *CallReport {
	analysis := object(message["analysis"])
	if analysis == nil {
		return nil
	}

	var data map[string]any
	switch sd := analysis["structuredData"].(type) {
	case map[string]any:
		data = sd
	case string:
		if parsed, err := validation.ParseArguments(sd); err == nil && len(parsed) > 0 {
			data = parsed
		}
	}
	if data == nil {
		return nil
	}

	return &CallReport{
		StructuredData: data,
		Summary:        firstString(analysis["summary"], message["summary"]),
	}
}

func object(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func firstString(values ...any) string {
	for _, v := range values {
		switch v.(type) {
		case map[string]any, []any:
			continue
		}
		if s := validation.Stringify(v); s != "" {
			return s
		}
	}
	return ""
}

func firstPresent(values ...any) any {
	for _, v := range values {
		if !isEmpty(v) {
			return v
		}
	}
	return nil
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case map[string]any:
		return len(t) == 0
	}
	return false
}
