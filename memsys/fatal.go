package memsys

import (
	"fmt"
	"os"

	"github.com/joshuapare/nrtkit/internal/logger"
)

// abortStatus mirrors the exit status of a process killed by SIGABRT.
const abortStatus = 134

// exitFunc is replaced in tests.
var exitFunc = os.Exit

// Fatal applies the System's fatal policy to err. Under FatalReturn it simply
// returns err; FatalPanic panics; FatalAbort writes the report to the sink,
// flushes it and exits.
func (s *System) Fatal(err error) error {
	switch s.fatal {
	case FatalPanic:
		panic(err)
	case FatalAbort:
		fmt.Fprintf(s.sink, "Fatal nrt error: %v\n", err)
		if f, ok := s.sink.(interface{ Sync() error }); ok {
			_ = f.Sync()
		}
		logger.Error("fatal", "err", err)
		exitFunc(abortStatus)
	}
	return err
}

// FatalPolicy returns the configured policy.
func (s *System) FatalPolicy() FatalPolicy { return s.fatal }
