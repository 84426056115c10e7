//go:build nrtdebug

package memsys

import (
	"log/slog"

	"github.com/joshuapare/nrtkit/internal/logger"
)

// DebugEnabled is set by the nrtdebug build tag. When false, debug events and
// refcount assertions compile away.
const DebugEnabled = true

func init() {
	_, _ = logger.Init(logger.Options{Enabled: true, Level: slog.LevelDebug})
}
