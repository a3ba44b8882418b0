// Copyright (c) 2025 Empbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ChannelErrorType represents the category of a method channel transport error
type ChannelErrorType int

const (
	ChannelErrorUnknown ChannelErrorType = iota
	ChannelErrorNetwork
	ChannelErrorTimeout
	ChannelErrorInternal
	ChannelErrorUnavailable
	ChannelErrorCanceled
)

// ParseChannelError categorizes a transport error, preferring the gRPC status code
// and falling back to the message text.
func ParseChannelError(err error) ChannelErrorType {
	if err == nil {
		return ChannelErrorUnknown
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Unavailable:
			return ChannelErrorUnavailable
		case codes.DeadlineExceeded:
			return ChannelErrorTimeout
		case codes.Internal:
			return ChannelErrorInternal
		case codes.Canceled:
			return ChannelErrorCanceled
		}
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "rst_stream"), strings.Contains(lower, "connection reset"),
		strings.Contains(lower, "connection refused"):
		return ChannelErrorNetwork
	case strings.Contains(lower, "deadline"), strings.Contains(lower, "timeout"):
		return ChannelErrorTimeout
	case strings.Contains(lower, "unavailable"):
		return ChannelErrorUnavailable
	}
	return ChannelErrorUnknown
}

// FormatChannelError formats a method channel error in a user-friendly way
func FormatChannelError(err error) string {
	var builder strings.Builder

	builder.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Bridge unreachable"))
	builder.WriteString("\n\n")

	switch ParseChannelError(err) {
	case ChannelErrorNetwork, ChannelErrorUnavailable:
		builder.WriteString("The employee bridge is not accepting calls.\n")
		builder.WriteString("Check that 'empbridge serve' is running and that --addr points at it.\n")
	case ChannelErrorTimeout:
		builder.WriteString("The employee bridge did not answer in time.\n")
		builder.WriteString("The database behind it may be slow or unreachable.\n")
	case ChannelErrorInternal:
		builder.WriteString("The employee bridge failed while handling the call.\n")
		builder.WriteString("See the server log for details.\n")
	case ChannelErrorCanceled:
		builder.WriteString("The call was cancelled before the bridge answered.\n")
	default:
		builder.WriteString("The call to the employee bridge was interrupted.\n")
	}

	builder.WriteString("\n")
	builder.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ Retry, or use --local to call the database directly"))
	builder.WriteString("\n")

	if err != nil && strings.TrimSpace(err.Error()) != "" {
		builder.WriteString("\n")
		builder.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Technical details: " + Mask(err.Error())))
	}

	return builder.String()
}

// PresentChannelError displays a formatted channel error
func PresentChannelError(err error) {
	fmt.Println()
	fmt.Println(FormatChannelError(err))
	fmt.Println()
}
