// Copyright (c) 2025 Empbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package channel carries method calls between a UI process and the bridge over gRPC.
// Each call is one unary Invoke RPC. The request and response are generic
// google.protobuf.Struct envelopes, so no generated code is involved:
//
//	request:  {"channel": "...", "method": "...", "arguments": {...}}
//	response: {"status": "success",         "result": ...}
//	          {"status": "error",           "code": "...", "message": "...", "details": ...}
//	          {"status": "not_implemented"}
package channel

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/pterm/pterm"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"empbridge/cli/internal/bridge"
	"empbridge/cli/internal/bridge/model"
	"empbridge/cli/internal/logging"
)

const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "empbridge.MethodChannel"
	// InvokeMethod is the full method path of the Invoke RPC.
	InvokeMethod = "/" + ServiceName + "/Invoke"
)

// Handler answers method calls. *bridge.Dispatcher implements it.
type Handler interface {
	Call(ctx context.Context, call model.MethodCall) (model.Outcome, error)
}

type invoker interface {
	Invoke(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*invoker)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Invoke", Handler: invokeHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "empbridge/channel.proto",
}

func invokeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(invoker).Invoke(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: InvokeMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(invoker).Invoke(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Server exposes a Handler on one named channel.
type Server struct {
	handler Handler
	channel string
	logger  *pterm.Logger
}

// NewServer creates a Server answering calls addressed to channel.
func NewServer(h Handler, channel string, logger *pterm.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{handler: h, channel: channel, logger: logger}
}

// Register attaches the service to gs.
func (s *Server) Register(gs *grpc.Server) {
	gs.RegisterService(&serviceDesc, s)
}

// Invoke implements the Invoke RPC.
func (s *Server) Invoke(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	channel, call := decodeCall(req)
	if channel != s.channel {
		return nil, status.Errorf(codes.NotFound, "unknown channel %q", channel)
	}

	outcome, err := s.handler.Call(ctx, call)
	if err != nil {
		if errors.Is(err, bridge.ErrClosed) {
			return nil, status.Error(codes.Unavailable, "bridge is shutting down")
		}
		return nil, status.FromContextError(err).Err()
	}

	resp, err := encodeOutcome(outcome)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return resp, nil
}

// Serve runs a gRPC server on lis until ctx is done, then stops it gracefully.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(s.logUnary))
	s.Register(gs)

	go func() {
		<-ctx.Done()
		gs.GracefulStop()
	}()

	s.logger.Info("Method channel listening", s.logger.Args("address", lis.Addr().String(), "channel", s.channel))
	if err := gs.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

func (s *Server) logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	args := []any{"rpc", info.FullMethod, "elapsed", time.Since(start).String()}
	if err != nil {
		s.logger.Warn("RPC failed", s.logger.Args(append(args, "code", status.Code(err).String())...))
	} else {
		s.logger.Debug("RPC served", s.logger.Args(args...))
	}
	return resp, err
}
