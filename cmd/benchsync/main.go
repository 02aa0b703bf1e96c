package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/benchsync/cmd/benchsync/commands"
	"git.home.luguber.info/inful/benchsync/internal/foundation/errors"
	"git.home.luguber.info/inful/benchsync/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run parses args, executes the selected command and maps the outcome to a
// process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	cli := &commands.CLI{}
	global := &commands.Global{Stdout: stdout, Stderr: stderr}

	parser, err := kong.New(cli,
		kong.Name("benchsync"),
		kong.Description("Publish benchmark reports into the documentation tree."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Vars{"version": version.String()},
		kong.Bind(global, cli),
	)
	if err != nil {
		return errors.NewCLIErrorAdapter(false, slog.Default()).WithOutput(stderr).
			HandleError(errors.WrapError(err, errors.CategoryInternal, "cli model").Build())
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		return errors.NewCLIErrorAdapter(false, slog.Default()).WithOutput(stderr).
			HandleError(errors.WrapError(err, errors.CategoryValidation, "invalid arguments").Build())
	}

	err = ctx.Run()
	return errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).WithOutput(stderr).HandleError(err)
}
