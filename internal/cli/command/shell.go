package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/kubecloudsinc/kci-client/internal/cli/config"
	"github.com/kubecloudsinc/kci-client/internal/cli/repl"
	"github.com/kubecloudsinc/kci-client/internal/infra/shutdown"
)

// ShellCommand returns the interactive shell command.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Start an interactive session",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "history",
				Usage: "History file (empty disables)",
				Value: filepath.Join(config.Dir(), "history"),
			},
		},
		Action: shellAction,
	}
}

func shellAction(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}

	in := c.App.Reader
	if in == nil {
		in = os.Stdin
	}
	out, errOut := stdout(c), stderr(c)

	history := repl.NewHistory(c.String("history"))
	if err := history.Load(); err != nil {
		rt.Logger.Warn("load shell history", "error", err)
	}

	var r *repl.REPL
	exec := func(ctx context.Context, args []string) error {
		// Ctrl-C cancels the running command, not the shell.
		lineCtx, stop := shutdown.SignalContext(ctx)
		defer stop()

		// A terminal is read unbuffered so password prompts can disable echo.
		var lineIn io.Reader = r.Reader()
		if f, ok := in.(*os.File); ok && isTerminal(f) {
			lineIn = f
		}
		return shellApp(rt, lineIn, out, errOut).RunContext(lineCtx, append([]string{"kci"}, args...))
	}

	r = repl.New(exec,
		repl.WithIO(in, out),
		repl.WithHistory(history),
		repl.WithHistoryFilter(keepInHistory),
		repl.WithCompleter(repl.NewCompleter(append(commandPaths(shellApp(rt, nil, nil, nil).Commands, ""), "help"))),
	)

	fmt.Fprintf(out, "kci shell connected to %s (%s). Type \"help\" for commands, \"exit\" to quit.\n",
		rt.Config.Server, rt.Session.State().Status)

	runErr := r.Run(c.Context)
	if err := history.Save(); err != nil {
		rt.Logger.Warn("save shell history", "error", err)
	}
	return runErr
}

// shellApp is the command tree available inside the shell. It shares rt
// and never closes it.
func shellApp(rt *Runtime, in io.Reader, out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:        "kci",
		Usage:       "interactive session",
		HideVersion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output format: table, wide, json, yaml",
			},
			&cli.BoolFlag{
				Name:    "wide",
				Aliases: []string{"w"},
				Usage:   "Show wide output (more columns)",
			},
		},
		Commands:       sessionCommands(),
		Metadata:       map[string]any{runtimeKey: rt},
		Reader:         in,
		Writer:         out,
		ErrWriter:      errOut,
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

// commandPaths lists "parent child" names for completion.
func commandPaths(cmds []*cli.Command, prefix string) []string {
	var paths []string
	for _, cmd := range cmds {
		path := strings.TrimSpace(prefix + " " + cmd.Name)
		paths = append(paths, path)
		paths = append(paths, commandPaths(cmd.Subcommands, path)...)
	}
	return paths
}

// keepInHistory rejects lines that carry a password.
func keepInHistory(line string) bool {
	args, err := repl.Split(line)
	if err != nil {
		return false
	}
	for _, a := range args {
		if a == "-p" || a == "--password" || strings.HasPrefix(a, "-p=") || strings.HasPrefix(a, "--password=") {
			return false
		}
	}
	return true
}
