package main

import (
	"bytes"
	"os"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mitchellh/cli"
	"wiex-cli/github"
	"wiex-cli/wiex"
)

func testEnv(t *testing.T) {
	t.Helper()

	t.Setenv("WIEX_CONFIG_DIR", t.TempDir())
	t.Setenv("WIEX_CHECK_FOR_UPDATES", "false")
}

func TestParseArgs(t *testing.T) {
	cases := []struct {
		name     string
		args     []string
		expected parsedArgs
	}{
		{
			"version",
			[]string{"--version"},
			parsedArgs{showVersion: true},
		},
		{
			"help",
			[]string{"--help"},
			parsedArgs{showHelp: true},
		},
		{
			"no_args",
			[]string{},
			parsedArgs{},
		},
		{
			"command_only",
			[]string{"cargo.exe"},
			parsedArgs{request: wiex.Request{Command: "cargo.exe", Args: []string{}}},
		},
		{
			"flags_before_command",
			[]string{"--strict", "--verbose", "cargo.exe", "build"},
			parsedArgs{
				options: wiex.Options{Strict: true, Verbose: true},
				request: wiex.Request{Command: "cargo.exe", Args: []string{"build"}},
			},
		},
		{
			"flags_after_command_are_passed_through",
			[]string{"cargo.exe", "--strict", "--version"},
			parsedArgs{
				request: wiex.Request{Command: "cargo.exe", Args: []string{"--strict", "--version"}},
			},
		},
		{
			"unknown_flag_is_the_command",
			[]string{"--frobnicate", "--verbose"},
			parsedArgs{
				request: wiex.Request{Command: "--frobnicate", Args: []string{"--verbose"}},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			parsed := parseArgs(tc.args)

			if diff := cmp.Diff(tc.expected, parsed, cmp.AllowUnexported(parsedArgs{})); diff != "" {
				t.Errorf("unexpected args (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRunVersion(t *testing.T) {
	testEnv(t)

	ui := cli.NewMockUi()

	status := run(ui, &bytes.Buffer{}, &bytes.Buffer{}, []string{"--version"})

	if status != 0 {
		t.Errorf("expected status 0, got %d", status)
	}

	if !strings.Contains(ui.OutputWriter.String(), "wiex "+Version) {
		t.Errorf("unexpected output %q", ui.OutputWriter.String())
	}
}

func TestRunMissingCommand(t *testing.T) {
	testEnv(t)

	ui := cli.NewMockUi()

	status := run(ui, &bytes.Buffer{}, &bytes.Buffer{}, []string{})

	if status != 1 {
		t.Errorf("expected status 1, got %d", status)
	}

	if !strings.Contains(ui.ErrorWriter.String(), "Error: missing COMMAND argument") {
		t.Errorf("unexpected error output %q", ui.ErrorWriter.String())
	}

	if !strings.Contains(ui.OutputWriter.String(), "Usage: wiex") {
		t.Errorf("expected help text, got %q", ui.OutputWriter.String())
	}
}

func TestRunCommandNotFound(t *testing.T) {
	testEnv(t)

	ui := cli.NewMockUi()
	stdout := &bytes.Buffer{}

	status := run(ui, stdout, &bytes.Buffer{}, []string{"wiex-test-missing.exe"})

	if status != 1 {
		t.Errorf("expected status 1, got %d", status)
	}

	expected := "Error: wiex-test-missing.exe not found"
	if !strings.Contains(ui.ErrorWriter.String(), expected) {
		t.Errorf("expected error %q, got %q", expected, ui.ErrorWriter.String())
	}

	if stdout.String() != "" {
		t.Errorf("expected no child output, got %q", stdout.String())
	}
}

func TestRunPropagatesChildExitStatus(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}

	testEnv(t)
	t.Setenv("WIEX_PATH", t.TempDir())

	ui := cli.NewMockUi()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	status := run(ui, stdout, stderr, []string{"sh", "-c", "printf hello; exit 4"})

	if status != 4 {
		t.Errorf("expected status 4, got %d", status)
	}

	if stdout.String() != "hello" {
		t.Errorf("expected stdout %q, got %q", "hello", stdout.String())
	}

	if ui.ErrorWriter.String() != "" {
		t.Errorf("expected no warnings or errors, got %q", ui.ErrorWriter.String())
	}
}

func TestRunStrictAmbiguousTermination(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}

	testEnv(t)
	t.Setenv("WIEX_PATH", t.TempDir())

	ui := cli.NewMockUi()

	status := run(ui, &bytes.Buffer{}, &bytes.Buffer{}, []string{"--strict", "sh", "-c", "kill -KILL $$"})

	if status != 1 {
		t.Errorf("expected status 1, got %d", status)
	}

	if !strings.Contains(ui.ErrorWriter.String(), "exit code is unknown") {
		t.Errorf("expected error log, got %q", ui.ErrorWriter.String())
	}
}

func TestAwaitUpdate(t *testing.T) {
	updates := make(chan *github.Release, 1)
	release := &github.Release{Version: "v1.0"}
	updates <- release

	if got := awaitUpdate(updates, time.Second); got != release {
		t.Errorf("expected the queued release, got %v", got)
	}

	if got := awaitUpdate(make(chan *github.Release), 10*time.Millisecond); got != nil {
		t.Errorf("expected nil after the timeout, got %v", got)
	}
}

func TestRunWarnsWithoutExtraPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}

	testEnv(t)

	if v, ok := os.LookupEnv("WIEX_PATH"); ok {
		os.Unsetenv("WIEX_PATH")
		t.Cleanup(func() { os.Setenv("WIEX_PATH", v) })
	}

	ui := cli.NewMockUi()

	status := run(ui, &bytes.Buffer{}, &bytes.Buffer{}, []string{"true"})

	if status != 0 {
		t.Errorf("expected status 0, got %d", status)
	}

	expected := "$WIEX_PATH is not set, so wiex not expand $PATH"
	if !strings.Contains(ui.ErrorWriter.String(), expected) {
		t.Errorf("expected warning %q, got %q", expected, ui.ErrorWriter.String())
	}
}
