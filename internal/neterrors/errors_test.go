// Copyright (c) 2025 Empbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package neterrors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Category
	}{
		{name: "deadline", err: context.DeadlineExceeded, want: CategoryTimeout},
		{name: "dns", err: &net.DNSError{Err: "no such host", Name: "db.invalid"}, want: CategoryDNS},
		{
			name: "refused",
			err:  &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)},
			want: CategoryRefused,
		},
		{name: "refused text", err: errors.New("rpc error: code = Unavailable desc = connection error: connection refused"), want: CategoryRefused},
		{name: "tls", err: errors.New("x509: certificate signed by unknown authority"), want: CategoryTLS},
		{name: "other", err: errors.New("boom"), want: CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestDescribe_MasksSecrets(t *testing.T) {
	err := fmt.Errorf("open sqlserver://sa:Secret123@db:1433: %w", errors.New("boom"))
	lines := Describe(err, "connecting", "db:1433")
	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "db:1433")
	assert.NotContains(t, joined, "Secret123")
}

func TestFormatNetworkError_Wraps(t *testing.T) {
	assert.NoError(t, FormatNetworkError(nil, "connecting", "x"))

	err := FormatNetworkError(context.DeadlineExceeded, "calling the bridge", "127.0.0.1:50051")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
