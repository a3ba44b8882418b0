// Copyright (c) 2025 Empbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package neterrors turns network failures (reaching the method channel or the
// database server) into user-friendly messages.
package neterrors

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	"github.com/pterm/pterm"

	"empbridge/cli/internal/logging"
)

// Category is the coarse class of a network failure.
type Category string

const (
	CategoryTimeout Category = "timeout"
	CategoryDNS     Category = "dns"
	CategoryRefused Category = "refused"
	CategoryTLS     Category = "tls"
	CategoryOther   Category = "other"
)

// Classify returns the category of err.
func Classify(err error) Category {
	switch {
	case err == nil:
		return CategoryOther
	case isTimeoutError(err):
		return CategoryTimeout
	case isDNSError(err):
		return CategoryDNS
	case isConnectionRefusedError(err):
		return CategoryRefused
	case isTLSError(err):
		return CategoryTLS
	default:
		return CategoryOther
	}
}

// FormatNetworkError displays a friendly explanation of err while doing action
// against target, and returns err wrapped for logging.
func FormatNetworkError(err error, action, target string) error {
	if err == nil {
		return nil
	}
	for _, line := range Describe(err, action, target) {
		pterm.Println(line)
	}
	pterm.Println()
	return fmt.Errorf("network error: %w", err)
}

// Describe returns the lines FormatNetworkError prints.
func Describe(err error, action, target string) []string {
	switch Classify(err) {
	case CategoryTimeout:
		return []string{
			fmt.Sprintf("⏱️  Connection timeout while %s", action),
			fmt.Sprintf("%s took too long to respond. Check that it is running and that no firewall drops the traffic.", target),
		}
	case CategoryDNS:
		return []string{
			fmt.Sprintf("🌐 Cannot resolve %s while %s", target, action),
			"Check the host name and your DNS settings.",
		}
	case CategoryRefused:
		return []string{
			fmt.Sprintf("🚫 Connection refused while %s", action),
			fmt.Sprintf("Nothing is accepting connections at %s. Check the address and port, or start the service.", target),
		}
	case CategoryTLS:
		return []string{
			fmt.Sprintf("🔒 Secure connection failed while %s", action),
			"Check the server certificate and your system clock.",
		}
	default:
		return []string{
			fmt.Sprintf("❌ Cannot reach %s while %s", target, action),
			"Technical details: " + truncate(logging.Mask(err.Error()), 160),
		}
	}
}

func isTimeoutError(err error) bool {
	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded") {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such host")
}

func isConnectionRefusedError(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

func isTLSError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "certificate") ||
		strings.Contains(errStr, "handshake")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
