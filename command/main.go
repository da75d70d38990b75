package command

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/mitchellh/cli"
	"gopkg.in/alessio/shellescape.v1"
)

type CommandOption func(*exec.Cmd)
type CommandFunc func(command string, args []string) *exec.Cmd
type ApplyOptionFunc func(option CommandOption, cmd *exec.Cmd)

var ExecCommand CommandFunc = execCommand
var OptionApplier ApplyOptionFunc = applyOption

type Command struct {
	options []CommandOption
}

func WithOptions(options ...CommandOption) *Command {
	return &Command{options: options}
}

func Cmd(command string, args []string) *exec.Cmd {
	cmd := ExecCommand(command, args)
	cmd.Stdin = os.Stdin

	return cmd
}

func (c *Command) Cmd(command string, args []string) *exec.Cmd {
	cmd := Cmd(command, args)

	for _, option := range c.options {
		OptionApplier(option, cmd)
	}

	return cmd
}

/*
  Enables mocking of the underlying ExecCommand command (defaults to exec.Command) and no-ops the OptionApplier function so they have no effect.
*/
func Mock(f CommandFunc) {
	OptionApplier = func(option CommandOption, cmd *exec.Cmd) {}
	ExecCommand = f
}

/*
  Restores the default ExecCommand and OptionApplier.
  Should be used via `defer` after `Mock` is called.
*/
func Restore() {
	OptionApplier = applyOption
	ExecCommand = execCommand
}

func WithEnv(env []string) CommandOption {
	return func(cmd *exec.Cmd) {
		cmd.Env = env
	}
}

func WithCaptureOutput(stdout io.Writer, stderr io.Writer) CommandOption {
	return func(cmd *exec.Cmd) {
		cmd.Stdout = stdout
		cmd.Stderr = stderr
	}
}

func WithLogging(ui cli.Ui) CommandOption {
	return func(cmd *exec.Cmd) {
		quoted := make([]string, len(cmd.Args))
		for i, arg := range cmd.Args {
			quoted[i] = shellescape.Quote(arg)
		}

		ui.Info(fmt.Sprintf("Running command => %s", strings.Join(quoted, " ")))
	}
}

func WithTermOutput() CommandOption {
	return func(cmd *exec.Cmd) {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}
}

func applyOption(option CommandOption, cmd *exec.Cmd) {
	option(cmd)
}

func execCommand(command string, args []string) *exec.Cmd {
	return exec.Command(command, args...)
}
