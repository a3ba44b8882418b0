// Copyright (c) 2025 Empbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package channel

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"empbridge/cli/internal/bridge/model"
)

// Envelope keys.
const (
	keyChannel   = "channel"
	keyMethod    = "method"
	keyArguments = "arguments"
	keyStatus    = "status"
	keyResult    = "result"
	keyCode      = "code"
	keyMessage   = "message"
	keyDetails   = "details"
)

func encodeCall(channel string, call model.MethodCall) (*structpb.Struct, error) {
	fields := map[string]any{
		keyChannel: channel,
		keyMethod:  call.Method,
	}
	if call.Arguments != nil {
		fields[keyArguments] = plain(call.Arguments)
	}
	req, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode call %q: %w", call.Method, err)
	}
	return req, nil
}

func decodeCall(req *structpb.Struct) (string, model.MethodCall) {
	f := req.GetFields()
	call := model.MethodCall{Method: f[keyMethod].GetStringValue()}
	if v, ok := f[keyArguments]; ok {
		call.Arguments = v.AsInterface()
	}
	return f[keyChannel].GetStringValue(), call
}

func encodeOutcome(o model.Outcome) (*structpb.Struct, error) {
	fields := map[string]any{keyStatus: string(o.Status)}
	switch o.Status {
	case model.StatusSuccess:
		fields[keyResult] = plain(o.Result)
	case model.StatusError:
		fields[keyCode] = o.Code
		fields[keyMessage] = o.Message
		if o.Details != nil {
			fields[keyDetails] = plain(o.Details)
		}
	}
	resp, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode outcome: %w", err)
	}
	return resp, nil
}

func decodeOutcome(resp *structpb.Struct) (model.Outcome, error) {
	f := resp.GetFields()
	switch status := model.Status(f[keyStatus].GetStringValue()); status {
	case model.StatusSuccess:
		var result any
		if v, ok := f[keyResult]; ok {
			result = v.AsInterface()
		}
		return model.Success(result), nil
	case model.StatusError:
		var details any
		if v, ok := f[keyDetails]; ok {
			details = v.AsInterface()
		}
		return model.Failure(f[keyCode].GetStringValue(), f[keyMessage].GetStringValue(), details), nil
	case model.StatusNotImplemented:
		return model.NotImplemented(), nil
	default:
		return model.Outcome{}, fmt.Errorf("unknown outcome status %q", status)
	}
}

// plain converts values structpb cannot represent directly.
func plain(v any) any {
	switch t := v.(type) {
	case map[string]string:
		out := make(map[string]any, len(t))
		for k, s := range t {
			out[k] = s
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	default:
		return v
	}
}
