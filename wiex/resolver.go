package wiex

import (
	"fmt"
	"os/exec"
)

var lookPath = exec.LookPath

type CommandNotFoundError struct {
	Command string
}

func (e *CommandNotFoundError) Error() string {
	return fmt.Sprintf("Error: %s not found", e.Command)
}

// CheckCommand verifies that name resolves to an executable in the
// unmodified host environment. The lookup deliberately ignores
// $WIEX_PATH: it answers whether the host itself can see the command,
// not whether the augmented child environment could.
func CheckCommand(name string) error {
	if _, err := lookPath(name); err != nil {
		return &CommandNotFoundError{Command: name}
	}

	return nil
}
