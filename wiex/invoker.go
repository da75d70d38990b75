package wiex

import (
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/mitchellh/cli"
	"wiex-cli/command"
)

type Request struct {
	Command string
	Args    []string
}

type Options struct {
	Strict  bool
	Verbose bool
}

type TerminationKind int

const (
	ExitedWithCode TerminationKind = iota
	ExitedWithUnknownCode
	Disconnected
)

// TerminationOutcome classifies how the child ended. Exactly one outcome
// is produced per invocation.
type TerminationOutcome struct {
	Kind     TerminationKind
	ExitCode int
	Pid      int
}

// ExitStatus is the status the caller should exit with when the
// invocation succeeded. Ambiguous terminations carry no code of their
// own and leave the status at the default.
func (o TerminationOutcome) ExitStatus() int {
	if o.Kind == ExitedWithCode {
		return o.ExitCode
	}

	return 0
}

// Invoker runs the target command with the augmented search path, relays
// its stdout/stderr to the given sinks verbatim, and classifies its
// termination. A non-zero child exit code is a successful invocation; the
// returned error is non-nil only when the spawn itself fails or, in
// strict mode, when the termination is ambiguous.
type Invoker struct {
	UI      cli.Ui
	Stdout  io.Writer
	Stderr  io.Writer
	Env     Environment
	Options Options
}

func (i *Invoker) Run(request Request) (TerminationOutcome, error) {
	if !i.Env.ExtraPathSet {
		i.UI.Warn(fmt.Sprintf("$%s is not set, so wiex not expand $PATH", ExtraPathEnvName))
	}

	policy := NewSeverityPolicy(i.Options.Strict)

	options := []command.CommandOption{
		command.WithEnv(i.Env.ChildEnv()),
		command.WithCaptureOutput(i.Stdout, i.Stderr),
	}
	if i.Options.Verbose {
		options = append(options, command.WithLogging(i.UI))
	}

	cmd := command.WithOptions(options...).Cmd(request.Command, request.Args)

	if err := cmd.Start(); err != nil {
		return TerminationOutcome{}, fmt.Errorf("Error running %s: %s", request.Command, err)
	}

	pid := cmd.Process.Pid
	outcome, err := i.awaitTermination(cmd, pid, policy)

	// Wait has flushed both relays by now.
	if i.Options.Verbose {
		i.UI.Info(fmt.Sprintf("process %d closed.", pid))
	}

	return outcome, err
}

func (i *Invoker) awaitTermination(cmd *exec.Cmd, pid int, policy SeverityPolicy) (TerminationOutcome, error) {
	err := cmd.Wait()

	if err == nil {
		return TerminationOutcome{Kind: ExitedWithCode, ExitCode: 0, Pid: pid}, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return TerminationOutcome{Kind: ExitedWithCode, ExitCode: code, Pid: pid}, nil
		}

		// Signal-terminated: the child never reported a code.
		return TerminationOutcome{Kind: ExitedWithUnknownCode, Pid: pid}, policy.Report(i.UI, "exit code is unknown")
	}

	return TerminationOutcome{Kind: Disconnected, Pid: pid}, policy.Report(i.UI, fmt.Sprintf("process %d disconnected.", pid))
}
