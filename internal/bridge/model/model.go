// Copyright (c) 2025 Empbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package model defines the transport-agnostic values exchanged through the bridge:
// the method call coming from the UI side and the outcome going back to it.
package model

// MethodCall is one named call on the employees channel.
// Arguments is a heterogeneous key/value bundle, or nil.
type MethodCall struct {
	Method    string
	Arguments any
}

// Status discriminates the three possible answers to a call.
type Status string

const (
	StatusSuccess        Status = "success"
	StatusError          Status = "error"
	StatusNotImplemented Status = "not_implemented"
)

// Outcome is the answer to a MethodCall. Result is set for StatusSuccess; Code,
// Message and the optional Details are set for StatusError.
type Outcome struct {
	Status  Status
	Result  any
	Code    string
	Message string
	Details any
}

// Success builds a successful outcome.
func Success(result any) Outcome {
	return Outcome{Status: StatusSuccess, Result: result}
}

// Failure builds an error outcome.
func Failure(code, message string, details any) Outcome {
	return Outcome{Status: StatusError, Code: code, Message: message, Details: details}
}

// NotImplemented builds the outcome for an unknown method.
func NotImplemented() Outcome {
	return Outcome{Status: StatusNotImplemented}
}
