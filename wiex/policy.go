package wiex

import (
	"github.com/mitchellh/cli"
)

// SeverityPolicy decides how ambiguous terminations (unknown exit code,
// disconnected process) are surfaced. It is selected once per invocation
// and the message text never varies with the mode, only the log level and
// whether the invocation is treated as failed.
type SeverityPolicy struct {
	strict bool
}

func NewSeverityPolicy(strict bool) SeverityPolicy {
	return SeverityPolicy{strict: strict}
}

func (p SeverityPolicy) Report(ui cli.Ui, message string) error {
	if p.strict {
		ui.Error(message)
		return &AmbiguousTerminationError{Message: message}
	}

	ui.Warn(message)
	return nil
}

type AmbiguousTerminationError struct {
	Message string
}

func (e *AmbiguousTerminationError) Error() string {
	return e.Message
}
