// Package jsonrpcfx correlates JSON-RPC requests sent to a language server with the
// responses it eventually returns, allowing any number of requests to be in flight.
package jsonrpcfx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/uber-go/tally/v4"
	lspgrapherrors "github.com/uber/lsp-graph/src/lspgraph/internal/errors"
	"go.lsp.dev/jsonrpc2"
	"go.uber.org/zap"
)

const (
	_metricRequests = "rpc.requests"
	_metricErrors   = "rpc.errors"
	_metricLatency  = "rpc.latency"

	_tagMethod = "method"
)

// Transport carries complete message bodies to and from the server.
type Transport interface {
	Send(body []byte) error
	Inbound() <-chan []byte
}

// Client issues requests and notifications over a Transport.
type Client interface {
	// Request sends a call and waits for its response. The returned error is set only
	// when no response could be obtained; server-side errors are reported in Response.Err.
	Request(ctx context.Context, method string, params interface{}) (*Response, error)
	// Call sends a call and decodes a successful result into result. Server-side errors
	// and empty results are reported as *errors.RequestError.
	Call(ctx context.Context, method string, params interface{}, result interface{}) error
	// Notify sends a notification. No response is expected.
	Notify(ctx context.Context, method string, params interface{}) error
	// Done is closed once the inbound stream has ended and every waiter has been released.
	Done() <-chan struct{}
}

// Response is the outcome of a single request.
type Response struct {
	ID     int32
	Result json.RawMessage
	Err    *jsonrpc2.Error
}

// Empty reports whether the server returned no result.
func (r *Response) Empty() bool {
	return len(r.Result) == 0 || string(r.Result) == "null"
}

type client struct {
	transport Transport
	logger    *zap.SugaredLogger
	stats     tally.Scope
	timeout   timeoutFunc

	// sendMu serializes id allocation with the write, so ids reach the wire in order.
	sendMu sync.Mutex
	nextID int32

	mu      sync.Mutex
	pending map[jsonrpc2.ID]chan *jsonrpc2.Response
	err     error

	done chan struct{}
}

type timeoutFunc func(ctx context.Context) (context.Context, context.CancelFunc)

func newClient(t Transport, logger *zap.SugaredLogger, stats tally.Scope, timeout timeoutFunc) *client {
	c := &client{
		transport: t,
		logger:    logger,
		stats:     stats,
		timeout:   timeout,
		pending:   make(map[jsonrpc2.ID]chan *jsonrpc2.Response),
		done:      make(chan struct{}),
	}
	go c.dispatch()
	return c
}

func (c *client) Request(ctx context.Context, method string, params interface{}) (*Response, error) {
	ctx, cancel := c.timeout(ctx)
	defer cancel()

	scope := c.stats.Tagged(map[string]string{_tagMethod: method})
	scope.Counter(_metricRequests).Inc(1)
	sw := scope.Timer(_metricLatency).Start()
	defer sw.Stop()

	id, ch, err := c.send(method, params)
	if err != nil {
		scope.Counter(_metricErrors).Inc(1)
		return nil, &lspgrapherrors.RequestError{Method: method, ID: id, Err: err}
	}

	select {
	case msg, ok := <-ch:
		if !ok {
			scope.Counter(_metricErrors).Inc(1)
			return nil, &lspgrapherrors.RequestError{Method: method, ID: id, Err: c.failure()}
		}
		resp := &Response{ID: id, Result: json.RawMessage(msg.Result())}
		if msg.Err() != nil {
			scope.Counter(_metricErrors).Inc(1)
			resp.Err = toWireError(msg.Err())
		}
		return resp, nil
	case <-ctx.Done():
		c.forget(jsonrpc2.NewNumberID(id))
		scope.Counter(_metricErrors).Inc(1)
		return nil, &lspgrapherrors.RequestError{Method: method, ID: id, Err: ctx.Err()}
	}
}

func (c *client) Call(ctx context.Context, method string, params interface{}, result interface{}) error {
	resp, err := c.Request(ctx, method, params)
	if err != nil {
		return err
	}
	if resp.Err != nil {
		return &lspgrapherrors.RequestError{Method: method, ID: resp.ID, Err: resp.Err}
	}
	if resp.Empty() {
		return &lspgrapherrors.RequestError{Method: method, ID: resp.ID, Err: lspgrapherrors.ErrEmptyResult}
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, result); err != nil {
		return &lspgrapherrors.RequestError{Method: method, ID: resp.ID, Err: fmt.Errorf("decoding result: %w", err)}
	}
	return nil
}

func (c *client) Notify(ctx context.Context, method string, params interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	notification, err := jsonrpc2.NewNotification(method, params)
	if err != nil {
		return fmt.Errorf("encoding %s params: %w", method, err)
	}
	body, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", method, err)
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if err := c.failure(); err != nil {
		return err
	}
	c.stats.Tagged(map[string]string{_tagMethod: method}).Counter(_metricRequests).Inc(1)
	return c.transport.Send(body)
}

func (c *client) Done() <-chan struct{} {
	return c.done
}

// send allocates the next id, registers a waiter for it and writes the call.
func (c *client) send(method string, params interface{}) (int32, chan *jsonrpc2.Response, error) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	id := c.nextID
	if err := c.failure(); err != nil {
		return id, nil, err
	}

	jid := jsonrpc2.NewNumberID(id)
	call, err := jsonrpc2.NewCall(jid, method, params)
	if err != nil {
		return id, nil, fmt.Errorf("encoding params: %w", err)
	}
	body, err := json.Marshal(call)
	if err != nil {
		return id, nil, fmt.Errorf("encoding call: %w", err)
	}
	c.nextID++

	ch := make(chan *jsonrpc2.Response, 1)
	c.mu.Lock()
	c.pending[jid] = ch
	c.mu.Unlock()

	if err := c.transport.Send(body); err != nil {
		c.forget(jid)
		return id, nil, err
	}
	return id, ch, nil
}

func (c *client) forget(id jsonrpc2.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, id)
}

func (c *client) failure() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// fail records the first terminal error and releases every waiter.
func (c *client) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		c.err = err
	}
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
}

func (c *client) dispatch() {
	defer close(c.done)

	for body := range c.transport.Inbound() {
		msg, err := jsonrpc2.DecodeMessage(body)
		if err != nil {
			c.logger.Errorw("discarding undecodable server message", "error", err, "bytes", len(body))
			c.fail(fmt.Errorf("decoding server message: %w", err))
			continue
		}

		switch m := msg.(type) {
		case *jsonrpc2.Response:
			c.deliver(m)
		case *jsonrpc2.Notification:
			c.logger.Debugw("ignoring server notification", "method", m.Method())
		case *jsonrpc2.Call:
			c.logger.Debugw("ignoring server request", "method", m.Method(), "id", fmt.Sprintf("%v", m.ID()))
		}
	}

	c.fail(lspgrapherrors.ErrConnectionClosed)
}

func (c *client) deliver(resp *jsonrpc2.Response) {
	c.mu.Lock()
	ch, ok := c.pending[resp.ID()]
	delete(c.pending, resp.ID())
	c.mu.Unlock()

	if !ok {
		c.logger.Debugw("dropping response with unknown id", "id", fmt.Sprintf("%v", resp.ID()))
		return
	}
	ch <- resp
}

func toWireError(err error) *jsonrpc2.Error {
	var wireErr *jsonrpc2.Error
	if errors.As(err, &wireErr) {
		return wireErr
	}
	return jsonrpc2.NewError(jsonrpc2.InternalError, err.Error())
}
