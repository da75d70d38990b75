package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mitchellh/cli"
	"wiex-cli/app_paths"
	"wiex-cli/cli_config"
	"wiex-cli/github"
	"wiex-cli/update"
	"wiex-cli/wiex"
)

const Version = "0.3.0"
const Repo = "wiex-sh/wiex"

var defaultConfig = cli_config.Config{
	CheckForUpdates: true,
}

func main() {
	ui := &cli.ColoredUi{
		ErrorColor: cli.UiColorRed,
		WarnColor:  cli.UiColorYellow,
		Ui: &cli.BasicUi{
			Reader:      os.Stdin,
			Writer:      os.Stdout,
			ErrorWriter: os.Stderr,
		},
	}

	os.Exit(run(ui, os.Stdout, os.Stderr, os.Args[1:]))
}

func run(ui cli.Ui, stdout io.Writer, stderr io.Writer, args []string) int {
	conf := cli_config.NewConfig(defaultConfig)

	if err := conf.LoadFile(app_paths.ConfigPath("cli.yml")); err != nil {
		ui.Error(err.Error())
		return 1
	}

	if err := conf.LoadEnv("WIEX_"); err != nil {
		ui.Error(err.Error())
		return 1
	}

	parsed := parseArgs(args)

	switch {
	case parsed.showVersion:
		ui.Output(fmt.Sprintf("wiex %s", Version))
		return 0
	case parsed.showHelp:
		ui.Output(helpText())
		return 0
	case parsed.request.Command == "":
		ui.Error("Error: missing COMMAND argument\n")
		ui.Output(helpText())
		return 1
	}

	options := wiex.Options{
		Strict:  conf.Strict || parsed.options.Strict,
		Verbose: conf.Verbose || parsed.options.Verbose,
	}

	updates := checkForUpdates(conf)

	if err := wiex.CheckCommand(parsed.request.Command); err != nil {
		ui.Error(err.Error())
		return 1
	}

	invoker := &wiex.Invoker{
		UI:      ui,
		Stdout:  stdout,
		Stderr:  stderr,
		Env:     wiex.CurrentEnvironment(),
		Options: options,
	}

	outcome, err := invoker.Run(parsed.request)

	notifyUpdate(awaitUpdate(updates, time.Second))

	if err != nil {
		var ambiguous *wiex.AmbiguousTerminationError
		if !errors.As(err, &ambiguous) {
			// ambiguous terminations were already logged by the invoker
			ui.Error(err.Error())
		}

		return 1
	}

	return outcome.ExitStatus()
}

type parsedArgs struct {
	showVersion bool
	showHelp    bool
	options     wiex.Options
	request     wiex.Request
}

// Tool flags are only recognized before the target command. The first
// token that isn't one names the command and every token after it belongs
// to the command verbatim.
func parseArgs(args []string) parsedArgs {
	parsed := parsedArgs{}

	for i, arg := range args {
		switch arg {
		case "--version":
			parsed.showVersion = true
			return parsed
		case "--help":
			parsed.showHelp = true
			return parsed
		case "--strict":
			parsed.options.Strict = true
		case "--verbose":
			parsed.options.Verbose = true
		default:
			parsed.request = wiex.Request{Command: arg, Args: args[i+1:]}
			return parsed
		}
	}

	return parsed
}

func checkForUpdates(conf cli_config.Config) chan *github.Release {
	updates := make(chan *github.Release, 1)

	notifier := &update.Notifier{
		CacheDir:  app_paths.CacheDir(),
		SkipCheck: !conf.CheckForUpdates,
		Repo:      Repo,
		Version:   Version,
		Client:    github.Client,
	}

	go func() {
		release, _ := notifier.CheckForUpdate()
		updates <- release
	}()

	return updates
}

// awaitUpdate gives the background release check a short grace period so
// a slow GitHub API never delays the tool's exit.
func awaitUpdate(updates chan *github.Release, timeout time.Duration) *github.Release {
	select {
	case release := <-updates:
		return release
	case <-time.After(timeout):
		return nil
	}
}

func notifyUpdate(release *github.Release) {
	if release == nil {
		return
	}

	fmt.Fprintf(color.Error, "\n%s %s -> %s\n%s\n",
		color.YellowString("A new release of wiex is available:"),
		Version,
		release.Version,
		release.URL,
	)
}

func helpText() string {
	helpText := `
Usage: wiex [options] COMMAND [ARGS]

Runs COMMAND with a child $PATH extended by $WIEX_PATH and relays its
output and exit status. Tokens after COMMAND are passed to it verbatim.

Run a Windows cargo from WSL:

  $ WIEX_PATH=/mnt/c/Users/alice/.cargo/bin wiex cargo.exe --version

Options:
  --strict   treat an unknown exit code or a disconnected process as an error
  --verbose  log the invoked command line and process closure
  --version  print the wiex version
  --help     show this help
`

	return strings.TrimSpace(helpText)
}
