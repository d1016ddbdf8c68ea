package logfilewriter

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/uber/lsp-graph/src/lspgraph/internal/fs"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const _logsDirName = "lsp-graph"

// Params define the dependencies for SetupOutputWriter.
type Params struct {
	FS        fs.LSPGraphFS
	Lifecycle fx.Lifecycle
	Logger    *zap.SugaredLogger
}

// SetupOutputWriter creates a writer that stores human readable output in a temporary file named after name.
// It is used to keep the language server's stderr out of the terminal. The file path is logged so it can be tailed.
// The file is kept after the run so it can be inspected, unless the server never wrote to it.
func SetupOutputWriter(p Params, name string) (io.Writer, error) {
	// Output to be stored in a log file under a custom directory in the user's temp directory.
	logsDirPath := filepath.Join(os.TempDir(), _logsDirName)
	err := p.FS.MkdirAll(logsDirPath)
	if err != nil {
		return nil, err
	}

	logFile, err := p.FS.TempFile(logsDirPath, name+"-*.log")
	if err != nil {
		return nil, err
	}
	p.Logger.Infow("Writing language server output", "path", logFile.Name())

	// Write via a logger for formatting, timestamp, and performance/buffering.
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(logFile),
		zap.InfoLevel,
	)
	writer := &loggerWriter{logger: zap.New(core).Sugar()}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			_ = writer.logger.Sync()
			if err := logFile.Close(); err != nil {
				return err
			}
			if writer.written.Load() {
				return nil
			}
			return p.FS.Remove(logFile.Name())
		},
	})

	return writer, nil
}

type loggerWriter struct {
	logger  *zap.SugaredLogger
	written atomic.Bool
}

// Write implements the io.Writer interface by sending data to the given logger.
func (o *loggerWriter) Write(p []byte) (n int, err error) {
	// Incoming data may contain multiple lines, including blank ones.
	// Split and log each line individually.
	lines := strings.Split(string(p), "\n")
	for _, line := range lines {
		if len(line) > 0 {
			o.written.Store(true)
			o.logger.Info(line)
		}
	}

	return len(p), nil
}
