package executor

import (
	"fmt"
	"os/exec"

	"github.com/uber/lsp-graph/src/lspgraph/internal/stdio"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides a module to inject using fx.
var Module = fx.Options(
	fx.Provide(func(logger *zap.SugaredLogger) Executor {
		return NewExecutor(WithLogger(logger))
	}),
)

//go:generate mockgen -destination=executormock/executor_mock.go -package=executormock . Executor

// Executor wraps the execution of "os/exec".Cmd's to allow adding logs/metrics to
// each exec and makes it easier to test.
type Executor interface {
	// Start logs and starts the Cmd specified with its standard streams connected to pipes.
	Start(cmd *exec.Cmd) (*Process, error)
}

// Process is a started command.
type Process struct {
	// Streams are the parent's ends of the child's standard streams.
	Streams stdio.Streams

	cmd      *exec.Cmd
	waitFunc func(cmd *exec.Cmd) error
}

// NewProcess wraps a command whose streams are already connected.
func NewProcess(streams stdio.Streams, cmd *exec.Cmd, waitFunc func(cmd *exec.Cmd) error) *Process {
	return &Process{Streams: streams, cmd: cmd, waitFunc: waitFunc}
}

// Wait waits for the process to exit. The streams must be closed or drained first.
func (p *Process) Wait() error {
	return p.waitFunc(p.cmd)
}

// Pid returns the process id, or 0 when the process was never started.
func (p *Process) Pid() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// Kill terminates the process. It is a no-op when the process was never started.
func (p *Process) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}

// executorImp implements Executor
type executorImp struct {
	Logger    *zap.SugaredLogger
	StartFunc func(cmd *exec.Cmd) error
	WaitFunc  func(cmd *exec.Cmd) error
}

// Option defines options to customize executorImp's behavior
type Option func(*executorImp)

// WithLogger overrides the default noop logger
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(executor *executorImp) {
		executor.Logger = logger
	}
}

// WithStartFunc provides customized start behavior for executorImp
func WithStartFunc(startFunc func(cmd *exec.Cmd) error) Option {
	return func(executor *executorImp) {
		executor.StartFunc = startFunc
	}
}

// WithWaitFunc provides customized wait behavior for executorImp
func WithWaitFunc(waitFunc func(cmd *exec.Cmd) error) Option {
	return func(executor *executorImp) {
		executor.WaitFunc = waitFunc
	}
}

// NewExecutor - creates a new executorImp with a noop logger and the default start and wait functions
func NewExecutor(opts ...Option) Executor {
	executor := &executorImp{
		Logger:    zap.NewNop().Sugar(),
		StartFunc: func(cmd *exec.Cmd) error { return cmd.Start() },
		WaitFunc:  func(cmd *exec.Cmd) error { return cmd.Wait() },
	}
	for _, opt := range opts {
		opt(executor)
	}
	return executor
}

// Start - logs the Path/Args, connects the pipes and calls StartFunc.
func (l *executorImp) Start(cmd *exec.Cmd) (*Process, error) {
	l.logCommand(cmd)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("connecting stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("connecting stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("connecting stderr: %w", err)
	}

	if err := l.StartFunc(cmd); err != nil {
		return nil, fmt.Errorf("starting %s: %w", cmd.Path, err)
	}

	return NewProcess(stdio.Streams{Stdin: stdin, Stdout: stdout, Stderr: stderr}, cmd, l.WaitFunc), nil
}

// Logs the command specified: Path, Dir, Args
func (l *executorImp) logCommand(cmd *exec.Cmd) {
	var args []string
	if len(cmd.Args) > 1 {
		args = cmd.Args[1:] // First arg is always the command itself
	}
	l.Logger.Infow("Exec",
		"Path", cmd.Path,
		"Dir", cmd.Dir,
		"Args", args,
	)
}
