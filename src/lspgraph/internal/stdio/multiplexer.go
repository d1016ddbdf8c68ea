// Package stdio bridges the standard streams of a language server process to in-process
// message queues. Writing, reading and stderr relay each run on their own goroutine so
// that none of them can block the others.
package stdio

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	lspgrapherrors "github.com/uber/lsp-graph/src/lspgraph/internal/errors"
	"github.com/uber/lsp-graph/src/lspgraph/internal/framing"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	_inboundBuffer = 64
	_maxStderrLine = 1 << 20
)

// Streams are the standard streams of a server process, seen from the host side.
type Streams struct {
	Stdin  io.WriteCloser
	Stdout io.ReadCloser
	Stderr io.ReadCloser
}

// Params define the dependencies of a Handle.
type Params struct {
	Streams Streams
	// Diagnostics receives every line the server writes to stderr. Defaults to os.Stderr.
	Diagnostics io.Writer
	Logger      *zap.SugaredLogger
}

// Handle owns the queues and the stop signal shared by the worker goroutines of one
// server process. It is passed explicitly to whoever needs to send or receive.
type Handle struct {
	streams     Streams
	diagnostics io.Writer
	logger      *zap.SugaredLogger

	outbound *queue
	inbound  chan []byte

	done     chan struct{}
	stopped  atomic.Bool
	stopOnce sync.Once
	stopErr  error

	group     errgroup.Group
	closeOnce sync.Once
	closeErr  error
}

// New starts the writer, reader and stderr relay for the given streams.
func New(p Params) *Handle {
	h := &Handle{
		streams:     p.Streams,
		diagnostics: p.Diagnostics,
		logger:      p.Logger,
		outbound:    newQueue(),
		inbound:     make(chan []byte, _inboundBuffer),
		done:        make(chan struct{}),
	}
	if h.diagnostics == nil {
		h.diagnostics = os.Stderr
	}
	if h.logger == nil {
		h.logger = zap.NewNop().Sugar()
	}

	h.group.Go(h.failFast(h.writeLoop))
	h.group.Go(h.failFast(h.readLoop))
	h.group.Go(h.relayLoop)
	return h
}

// Send queues a message body for the writer. It never blocks.
func (h *Handle) Send(body []byte) error {
	if h.stopped.Load() {
		return lspgrapherrors.ErrConnectionClosed
	}
	h.outbound.push(entry{frame: framing.Marshal(framing.Frame{Body: body})})
	return nil
}

// Drain blocks until every message sent so far has been written to the server.
func (h *Handle) Drain(ctx context.Context) error {
	if h.stopped.Load() {
		return lspgrapherrors.ErrConnectionClosed
	}
	flushed := make(chan struct{})
	h.outbound.push(entry{flushed: flushed})

	select {
	case <-flushed:
		return nil
	case <-h.done:
		return lspgrapherrors.ErrConnectionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Inbound returns the channel of message bodies decoded from the server's stdout.
// It is closed when the reader stops.
func (h *Handle) Inbound() <-chan []byte {
	return h.inbound
}

// Done is closed once the handle has been asked to stop.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Close stops all workers. Streams are closed so that workers blocked in a read return.
// It waits for the workers and reports any error they hit before the stop was requested.
func (h *Handle) Close() error {
	h.closeOnce.Do(func() {
		h.stop()
		h.closeErr = multierr.Combine(h.stopErr, h.group.Wait())
	})
	return h.closeErr
}

func (h *Handle) stop() {
	h.stopOnce.Do(func() {
		h.stopped.Store(true)
		close(h.done)

		var errs error
		for _, c := range []io.Closer{h.streams.Stdin, h.streams.Stdout, h.streams.Stderr} {
			if c == nil {
				continue
			}
			if err := c.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
				errs = multierr.Append(errs, err)
			}
		}
		h.stopErr = errs
	})
}

// failFast stops the remaining workers when a transport worker fails, so that callers
// waiting on a response are released instead of blocking forever.
func (h *Handle) failFast(worker func() error) func() error {
	return func() error {
		err := worker()
		if err != nil {
			h.logger.Errorw("language server transport failed", zap.Error(err))
			h.stop()
		}
		return err
	}
}

func (h *Handle) writeLoop() error {
	for {
		for {
			if h.stopped.Load() {
				return nil
			}
			item, ok := h.outbound.pop()
			if !ok {
				break
			}
			if item.flushed != nil {
				close(item.flushed)
				continue
			}
			if _, err := h.streams.Stdin.Write(item.frame); err != nil {
				if h.stopped.Load() {
					return nil
				}
				return fmt.Errorf("writing to server stdin: %w", err)
			}
		}

		select {
		case <-h.outbound.ready:
		case <-h.done:
			return nil
		}
	}
}

func (h *Handle) readLoop() error {
	defer close(h.inbound)

	dec := framing.NewDecoder(h.streams.Stdout)
	for !h.stopped.Load() {
		frame, err := dec.Decode()
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			h.logger.Debug("server stdout closed")
			return nil
		case errors.Is(err, framing.ErrShutdown):
			h.logger.Info("server shutting down")
			return nil
		case h.stopped.Load():
			return nil
		default:
			return fmt.Errorf("reading from server stdout: %w", err)
		}

		select {
		case h.inbound <- frame.Body:
		case <-h.done:
			return nil
		}
	}
	return nil
}

// relayLoop forwards stderr lines. Its failures are logged but never stop the transport.
// Lines longer than _maxStderrLine are truncated and the rest is still consumed.
func (h *Handle) relayLoop() error {
	if h.streams.Stderr == nil {
		return nil
	}

	reader := bufio.NewReader(h.streams.Stderr)
	line := make([]byte, 0, bufio.MaxScanTokenSize)
	for {
		chunk, isPrefix, err := reader.ReadLine()
		if err != nil {
			if !errors.Is(err, io.EOF) && !h.stopped.Load() {
				h.logger.Warnw("relaying server stderr", zap.Error(err))
			}
			return nil
		}
		if room := _maxStderrLine - len(line); room > 0 {
			line = append(line, chunk[:min(len(chunk), room)]...)
		}
		if isPrefix {
			continue
		}
		if h.stopped.Load() {
			return nil
		}
		fmt.Fprintf(h.diagnostics, "%s\n", line)
		line = line[:0]
	}
}
