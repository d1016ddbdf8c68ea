package analysis

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	lspserver "github.com/uber/lsp-graph/src/lspgraph/gateway/lsp-server"
	lspgrapherrors "github.com/uber/lsp-graph/src/lspgraph/internal/errors"
	"github.com/uber/lsp-graph/src/lspgraph/internal/executor"
	"github.com/uber/lsp-graph/src/lspgraph/internal/jsonrpcfx"
	"github.com/uber/lsp-graph/src/lspgraph/internal/stdio"
	"go.uber.org/zap"
)

// _exitGrace bounds each teardown step so that an unresponsive server cannot hang the run.
const _exitGrace = 5 * time.Second

var errNoServer = errors.New("no language server command given")

// session is one running language server and the transport bound to it.
type session struct {
	gateway lspserver.Gateway
	client  jsonrpcfx.Client
	handle  *stdio.Handle
	process *executor.Process
	logger  *zap.SugaredLogger
}

func (h *handler) startSession(root string, server []string) (*session, error) {
	if len(server) == 0 {
		return nil, errNoServer
	}

	cmd := exec.Command(server[0], server[1:]...)
	cmd.Dir = root
	process, err := h.executor.Start(cmd)
	if err != nil {
		return nil, fmt.Errorf("starting language server: %w", err)
	}

	logger := h.logger.With("pid", process.Pid())
	handle := stdio.New(stdio.Params{
		Streams:     process.Streams,
		Diagnostics: h.serverOutput,
		Logger:      logger,
	})
	client := h.factory.NewClient(handle)

	return &session{
		gateway: lspserver.New(client),
		client:  client,
		handle:  handle,
		process: process,
		logger:  logger,
	}, nil
}

// close asks the server to shut down and exit, then releases the transport and reaps the process.
// Failures are logged: by now the analysis has either produced its result or its own error.
func (s *session) close(ctx context.Context) {
	stepCtx, cancel := context.WithTimeout(ctx, _exitGrace)
	defer cancel()

	s.logStep("Shutdown request failed", s.gateway.Shutdown(stepCtx))
	s.logStep("Exit notification failed", s.gateway.Exit(stepCtx))
	s.logStep("Flushing messages to language server", s.handle.Drain(stepCtx))

	if err := s.handle.Close(); err != nil {
		s.logger.Warnw("Closing language server streams", zap.Error(err))
	}
	<-s.client.Done()

	s.wait()
}

// logStep reports a failed teardown step. A server that already hung up is expected here.
func (s *session) logStep(msg string, err error) {
	switch {
	case err == nil:
	case lspgrapherrors.IsConnectionClosed(err):
		s.logger.Debugw(msg+", language server already disconnected", zap.Error(err))
	default:
		s.logger.Warnw(msg, zap.Error(err))
	}
}

func (s *session) wait() {
	exited := make(chan error, 1)
	go func() {
		exited <- s.process.Wait()
	}()

	select {
	case err := <-exited:
		if err != nil {
			s.logger.Warnw("Language server exited", zap.Error(err))
			return
		}
		s.logger.Debug("Language server exited")
	case <-time.After(_exitGrace):
		s.logger.Warn("Language server did not exit, killing it")
		if err := s.process.Kill(); err != nil {
			s.logger.Warnw("Killing language server", zap.Error(err))
		}
		<-exited
	}
}
