// Package lsptest provides an in-process language server speaking real LSP frames, for tests.
package lsptest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/uber/lsp-graph/src/lspgraph/internal/framing"
	"github.com/uber/lsp-graph/src/lspgraph/internal/stdio"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

// Handler answers a call. Returning a *jsonrpc2.Error sends it as is; any other error is sent as an internal error.
type Handler func(params json.RawMessage) (interface{}, error)

// Message is a call or notification received by the server.
type Message struct {
	Method string
	Params json.RawMessage
}

// Server is a fake language server. Calls are answered concurrently, so responses may be
// written in a different order than the calls were received.
type Server struct {
	// Handlers maps a method to its handler. Calls to other methods fail with MethodNotFound.
	Handlers map[string]Handler
	// Chatter, when set, sends a notification and a server request before every response.
	Chatter bool

	writeMu sync.Mutex
	stdout  *io.PipeWriter
	stderr  *io.PipeWriter

	mu       sync.Mutex
	received []Message

	handlers sync.WaitGroup
	done     chan struct{}
}

// Start serves on a fresh set of pipes and returns the client's ends.
// The server stops when the client closes its stdin or sends exit.
func (s *Server) Start() stdio.Streams {
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	errR, errW := io.Pipe()

	s.stdout = outW
	s.stderr = errW
	s.done = make(chan struct{})

	go s.serve(inR)

	return stdio.Streams{Stdin: inW, Stdout: outR, Stderr: errR}
}

// Wait blocks until the server has stopped.
func (s *Server) Wait() {
	<-s.done
}

// Received returns every message received so far, in arrival order.
func (s *Server) Received() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.received...)
}

// Count returns how many messages with method were received.
func (s *Server) Count(method string) int {
	n := 0
	for _, m := range s.Received() {
		if m.Method == method {
			n++
		}
	}
	return n
}

// Log writes a line to the server's stderr.
func (s *Server) Log(line string) error {
	_, err := fmt.Fprintln(s.stderr, line)
	return err
}

func (s *Server) serve(in *io.PipeReader) {
	defer close(s.done)
	defer func() {
		s.handlers.Wait()
		s.stdout.Close()
		s.stderr.Close()
		in.Close()
	}()

	decoder := framing.NewDecoder(in)
	for {
		frame, err := decoder.Decode()
		if err != nil {
			return
		}
		msg, err := jsonrpc2.DecodeMessage(frame.Body)
		if err != nil {
			return
		}

		switch m := msg.(type) {
		case *jsonrpc2.Call:
			s.record(m.Method(), m.Params())
			s.handlers.Add(1)
			go func() {
				defer s.handlers.Done()
				s.answer(m)
			}()
		case *jsonrpc2.Notification:
			s.record(m.Method(), m.Params())
			if m.Method() == protocol.MethodExit {
				return
			}
		case *jsonrpc2.Response:
			// Replies to our own chatter requests.
		}
	}
}

func (s *Server) record(method string, params json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received = append(s.received, Message{Method: method, Params: append(json.RawMessage(nil), params...)})
}

func (s *Server) answer(call *jsonrpc2.Call) {
	var (
		result interface{}
		err    error
	)
	if h, ok := s.Handlers[call.Method()]; ok {
		result, err = h(json.RawMessage(call.Params()))
	} else {
		err = jsonrpc2.NewError(jsonrpc2.MethodNotFound, fmt.Sprintf("method not found: %s", call.Method()))
	}
	if err != nil {
		var wireErr *jsonrpc2.Error
		if !errors.As(err, &wireErr) {
			err = jsonrpc2.NewError(jsonrpc2.InternalError, err.Error())
		}
	}

	if s.Chatter {
		notification, _ := jsonrpc2.NewNotification("window/logMessage", &protocol.LogMessageParams{
			Type:    protocol.MessageTypeLog,
			Message: "handling " + call.Method(),
		})
		s.write(notification)
		request, _ := jsonrpc2.NewCall(jsonrpc2.NewStringID("server-1"), "workspace/configuration", &protocol.ConfigurationParams{})
		s.write(request)
	}

	resp, marshalErr := jsonrpc2.NewResponse(call.ID(), result, err)
	if marshalErr != nil {
		resp, _ = jsonrpc2.NewResponse(call.ID(), nil, jsonrpc2.NewError(jsonrpc2.InternalError, marshalErr.Error()))
	}
	s.write(resp)
}

func (s *Server) write(msg jsonrpc2.Message) {
	body, err := json.Marshal(msg)
	if err != nil {
		return
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	// The client may already be gone.
	_, _ = s.stdout.Write(framing.Marshal(framing.Frame{Body: body}))
}

// Result is a Handler returning a fixed result.
func Result(v interface{}) Handler {
	return func(json.RawMessage) (interface{}, error) {
		return v, nil
	}
}

// Fail is a Handler returning a fixed error.
func Fail(code jsonrpc2.Code, message string) Handler {
	return func(json.RawMessage) (interface{}, error) {
		return nil, jsonrpc2.NewError(code, message)
	}
}
