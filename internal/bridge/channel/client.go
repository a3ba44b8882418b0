// Copyright (c) 2025 Empbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package channel

import (
	"context"
	"crypto/tls"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"empbridge/cli/internal/bridge/model"
)

// DefaultPort is used when the dial address has no port.
const DefaultPort = "50051"

// Client invokes methods on a remote channel.
type Client struct {
	conn    *grpc.ClientConn
	channel string
}

// Dial creates a client for addr. With useTLS the server name is taken from addr.
func Dial(addr, channel string, useTLS bool, opts ...grpc.DialOption) (*Client, error) {
	host := addr
	target := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	} else {
		target = net.JoinHostPort(addr, DefaultPort)
	}

	creds := insecure.NewCredentials()
	if useTLS {
		creds = credentials.NewTLS(&tls.Config{ServerName: host, MinVersion: tls.VersionTLS12})
	}

	conn, err := grpc.NewClient(target, append([]grpc.DialOption{grpc.WithTransportCredentials(creds)}, opts...)...)
	if err != nil {
		return nil, err
	}
	return NewClient(conn, channel), nil
}

// NewClient wraps an existing connection.
func NewClient(conn *grpc.ClientConn, channel string) *Client {
	return &Client{conn: conn, channel: channel}
}

// Invoke sends call and returns the remote outcome. Transport failures are returned
// as gRPC status errors; store failures arrive as error outcomes.
func (c *Client) Invoke(ctx context.Context, call model.MethodCall) (model.Outcome, error) {
	req, err := encodeCall(c.channel, call)
	if err != nil {
		return model.Outcome{}, err
	}
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, InvokeMethod, req, resp); err != nil {
		return model.Outcome{}, err
	}
	return decodeOutcome(resp)
}

// Call is an alias of Invoke so a Client can stand in for a local dispatcher.
func (c *Client) Call(ctx context.Context, call model.MethodCall) (model.Outcome, error) {
	return c.Invoke(ctx, call)
}

func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
