// Copyright (c) 2025 Empbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package bridge dispatches named method calls from the UI side to the employee store
// and delivers exactly one outcome per call back to the caller.
//
// Store work runs on background goroutines owned by the Dispatcher. Outcomes of that
// work are handed to the caller's Result on the goroutine running Dispatcher.Run, which
// plays the role of the UI thread. Calls that can be answered without touching the
// store (unknown methods, malformed arguments) are answered synchronously from Handle.
//
// Close cancels all in-flight work. Outcomes of cancelled calls are dropped.
package bridge

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pterm/pterm"

	"empbridge/cli/internal/bridge/model"
	"empbridge/cli/internal/employee"
	apperrors "empbridge/cli/internal/errors"
	"empbridge/cli/internal/logging"
	"empbridge/cli/internal/metrics"
)

// Channel is the name of the method channel served by the dispatcher.
const Channel = "com.example.poc_app_assessment/employees"

// Method names recognized on the channel.
const (
	MethodFetchEmployees = "fetchEmployees"
	MethodAddEmployee    = "addEmployee"
	MethodUpdateEmployee = "updateEmployee"
)

// Error codes delivered to the caller.
const (
	CodeUnavailable     = "UNAVAILABLE"
	CodeError           = "ERROR"
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeNotFound        = "NOT_FOUND"
)

// Messages delivered to the caller.
const (
	MsgDataUnavailable = "Employee data not available."
	MsgConnectFailed   = "Failed to connect to the database"
	MsgAddFailed       = "Failed to add employee"
	MsgUpdateFailed    = "Failed to update employee"
	MsgInvalidPayload  = "Invalid employee payload"
	MsgNotFound        = "Employee not found"
	MsgAdded           = "Employee added successfully"
	MsgUpdated         = "Employee updated successfully"
)

// ErrClosed is returned by Call once the dispatcher has been closed.
var ErrClosed = errors.New("dispatcher closed")

// Result receives the outcome of one method call. Exactly one of its methods is
// invoked, exactly once.
type Result interface {
	Success(result any)
	Error(code, message string, details any)
	NotImplemented()
}

// ResultFunc adapts a function receiving an Outcome to the Result interface.
type ResultFunc func(model.Outcome)

func (f ResultFunc) Success(result any) { f(model.Success(result)) }
func (f ResultFunc) Error(code, message string, details any) {
	f(model.Failure(code, message, details))
}
func (f ResultFunc) NotImplemented() { f(model.NotImplemented()) }

// Operations is the data access surface used by the dispatcher.
type Operations interface {
	FetchAll(ctx context.Context) ([]employee.Record, error)
	Add(ctx context.Context, e employee.Employee) error
	Update(ctx context.Context, e employee.Employee) (int64, error)
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMetrics records call outcomes and latency.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithStrictUpdate answers NOT_FOUND when an update matches no row.
func WithStrictUpdate(strict bool) Option {
	return func(d *Dispatcher) { d.strictUpdate = strict }
}

// WithErrorDetails attaches {"kind": <error kind>} to store error outcomes.
func WithErrorDetails(enabled bool) Option {
	return func(d *Dispatcher) { d.errorDetails = enabled }
}

// WithOperationTimeout bounds each store operation. Zero means no bound.
func WithOperationTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) { d.timeout = timeout }
}

type delivery struct {
	res     Result
	outcome model.Outcome
}

// Dispatcher routes method calls to Operations.
type Dispatcher struct {
	ops     Operations
	logger  *pterm.Logger
	metrics *metrics.Metrics

	strictUpdate bool
	errorDetails bool
	timeout      time.Duration

	scope  context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup

	deliveries chan delivery
}

// New creates a Dispatcher over ops. A nil logger discards output.
func New(ops Operations, logger *pterm.Logger, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = logging.Discard()
	}
	scope, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		ops:        ops,
		logger:     logger,
		scope:      scope,
		cancel:     cancel,
		deliveries: make(chan delivery),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run delivers outcomes of background work until ctx is done or the dispatcher is
// closed. Result callbacks for store-backed calls run on the goroutine calling Run.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.scope.Done():
			return nil
		case dl := <-d.deliveries:
			if d.scope.Err() != nil {
				return nil
			}
			deliver(dl.res, dl.outcome)
		}
	}
}

// Done is closed once the dispatcher has been closed.
func (d *Dispatcher) Done() <-chan struct{} { return d.scope.Done() }

// Close cancels in-flight work and waits for background goroutines to exit.
// It is safe to call more than once.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.cancel()
	d.wg.Wait()
}

// Handle routes call and arranges for res to receive its outcome.
func (d *Dispatcher) Handle(call model.MethodCall, res Result) {
	d.logger.Debug("Method call received", d.logger.Args("method", call.Method))

	switch call.Method {
	case MethodFetchEmployees:
		d.launch(call.Method, res, d.fetchEmployees)

	case MethodAddEmployee, MethodUpdateEmployee:
		emp, err := employee.Decode(call.Arguments)
		if err != nil {
			d.reject(call.Method, res, err)
			return
		}
		if call.Method == MethodAddEmployee {
			d.launch(call.Method, res, func(ctx context.Context) model.Outcome { return d.addEmployee(ctx, emp) })
		} else {
			d.launch(call.Method, res, func(ctx context.Context) model.Outcome { return d.updateEmployee(ctx, emp) })
		}

	default:
		d.logger.Debug("Method not implemented", d.logger.Args("method", call.Method))
		d.metrics.ObserveOperation(metrics.OperationUnknown, metrics.OutcomeNotImplemented, 0)
		res.NotImplemented()
	}
}

// Call handles call and waits for its outcome. The outcome is delivered by Run, which
// must be running on another goroutine.
func (d *Dispatcher) Call(ctx context.Context, call model.MethodCall) (model.Outcome, error) {
	ch := make(chan model.Outcome, 1)
	d.Handle(call, ResultFunc(func(o model.Outcome) { ch <- o }))

	select {
	case o := <-ch:
		return o, nil
	case <-ctx.Done():
		return model.Outcome{}, ctx.Err()
	case <-d.scope.Done():
		return model.Outcome{}, ErrClosed
	}
}

func (d *Dispatcher) reject(method string, res Result, err error) {
	var invalid *employee.InvalidFieldsError
	var details any
	if errors.As(err, &invalid) {
		fields := make([]any, len(invalid.Fields))
		for i, f := range invalid.Fields {
			fields[i] = f
		}
		details = fields
	}
	d.logger.Warn("Rejected malformed arguments", d.logger.Args("method", method, "error", err.Error()))
	d.metrics.ObserveOperation(method, metrics.OutcomeInvalid, 0)
	res.Error(CodeInvalidArgument, MsgInvalidPayload, details)
}

func (d *Dispatcher) launch(method string, res Result, op func(context.Context) model.Outcome) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.Warn("Dispatcher closed, dropping call", d.logger.Args("method", method))
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()

		ctx := d.scope
		if d.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d.timeout)
			defer cancel()
		}

		start := time.Now()
		outcome := op(ctx)
		d.metrics.ObserveOperation(method, outcomeLabel(outcome), time.Since(start))

		if d.scope.Err() != nil {
			d.logger.Debug("Dropping outcome of cancelled call", d.logger.Args("method", method))
			return
		}
		select {
		case d.deliveries <- delivery{res: res, outcome: outcome}:
		case <-d.scope.Done():
			d.logger.Debug("Dropping outcome of cancelled call", d.logger.Args("method", method))
		}
	}()
}

func (d *Dispatcher) fetchEmployees(ctx context.Context) model.Outcome {
	records, err := d.ops.FetchAll(ctx)
	if err != nil {
		d.logError("Failed to fetch employee data", err)
		return d.failure(CodeUnavailable, MsgDataUnavailable, err)
	}

	payload, err := employee.EncodeRecords(records)
	if err != nil {
		d.logError("Failed to encode employee data", err)
		return d.failure(CodeUnavailable, MsgDataUnavailable, err)
	}

	d.logger.Debug("Successfully fetched employee data", d.logger.Args("rows", len(records)))
	return model.Success(payload)
}

func (d *Dispatcher) addEmployee(ctx context.Context, e employee.Employee) model.Outcome {
	if err := d.ops.Add(ctx, e); err != nil {
		d.logError("Error adding employee", err)
		if errors.Is(err, apperrors.ErrNoConnection) {
			return d.failure(CodeError, MsgConnectFailed, err)
		}
		return d.failure(CodeError, MsgAddFailed, err)
	}
	d.logger.Debug("Employee added", d.logger.Args("employee_id", e.EmployeeID))
	return model.Success(MsgAdded)
}

func (d *Dispatcher) updateEmployee(ctx context.Context, e employee.Employee) model.Outcome {
	n, err := d.ops.Update(ctx, e)
	if err != nil {
		d.logError("Error updating employee", err)
		if errors.Is(err, apperrors.ErrNoConnection) {
			return d.failure(CodeError, MsgConnectFailed, err)
		}
		return d.failure(CodeError, MsgUpdateFailed, err)
	}
	if n == 0 && d.strictUpdate {
		d.logger.Warn("Update matched no employee", d.logger.Args("employee_id", e.EmployeeID))
		return d.failure(CodeNotFound, MsgNotFound, apperrors.New(apperrors.NotFound, "update employee"))
	}
	d.logger.Debug("Employee updated", d.logger.Args("employee_id", e.EmployeeID, "rows", n))
	return model.Success(MsgUpdated)
}

func (d *Dispatcher) failure(code, message string, err error) model.Outcome {
	var details any
	if d.errorDetails {
		details = map[string]any{"kind": string(apperrors.KindOf(err))}
	}
	return model.Failure(code, message, details)
}

func (d *Dispatcher) logError(msg string, err error) {
	d.logger.Error(msg, d.logger.Args(
		"kind", string(apperrors.KindOf(err)),
		"error", logging.Mask(err.Error()),
	))
}

func deliver(res Result, o model.Outcome) {
	switch o.Status {
	case model.StatusSuccess:
		res.Success(o.Result)
	case model.StatusError:
		res.Error(o.Code, o.Message, o.Details)
	default:
		res.NotImplemented()
	}
}

func outcomeLabel(o model.Outcome) string {
	switch o.Status {
	case model.StatusSuccess:
		return metrics.OutcomeSuccess
	case model.StatusNotImplemented:
		return metrics.OutcomeNotImplemented
	default:
		return metrics.OutcomeError
	}
}
