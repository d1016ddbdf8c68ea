package app

import (
	"fmt"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

const _runKey = "run"

// decorateRunLogger tags every log line of this process with a fresh run id.
func decorateRunLogger(logger *zap.SugaredLogger) (*zap.SugaredLogger, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("generating run id: %w", err)
	}
	return logger.With(_runKey, id.String()), nil
}
