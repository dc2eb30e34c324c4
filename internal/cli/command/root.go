package command

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/kubecloudsinc/kci-client/internal/cli/config"
	"github.com/kubecloudsinc/kci-client/internal/cli/output"
	"github.com/kubecloudsinc/kci-client/internal/core/domain"
	"github.com/kubecloudsinc/kci-client/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	app := &cli.App{
		Name:     "kci-cli",
		Usage:    "KubeCloudsInc employee directory client",
		Version:  buildinfo.String(),
		Flags:    globalFlags(),
		Commands: sessionCommands(),
		Metadata: map[string]any{},
		After:    closeRuntime,
		// Errors are reported by the caller through PrintError.
		ExitErrHandler: func(*cli.Context, error) {},
	}
	app.Commands = append(app.Commands,
		ShellCommand(),
		ConfigCommand(),
		VersionCommand(),
	)
	return app
}

// sessionCommands are the commands available both from the command line
// and inside the shell.
func sessionCommands() []*cli.Command {
	return []*cli.Command{
		LoginCommand(),
		LogoutCommand(),
		StatusCommand(),
		EmployeesCommand(),
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file path",
			EnvVars: []string{"KCI_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "API base URL (default " + config.DefaultServer + ")",
		},
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
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Per-request timeout (0 disables)",
		},
		&cli.StringFlag{
			Name:  "store-engine",
			Usage: "Token store engine: badger, sqlite",
		},
		&cli.StringFlag{
			Name:  "store-path",
			Usage: "Token store location",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable debug logging on stderr",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Config      string
	Server      string
	Output      string
	Wide        bool
	Timeout     time.Duration
	StoreEngine string
	StorePath   string
	Verbose     bool
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Config:      c.String("config"),
		Server:      c.String("server"),
		Output:      c.String("output"),
		Wide:        c.Bool("wide"),
		Timeout:     c.Duration("timeout"),
		StoreEngine: c.String("store-engine"),
		StorePath:   c.String("store-path"),
		Verbose:     c.Bool("verbose"),
	}
}

// overrides returns the config keys set explicitly on the command line.
func (f *GlobalFlags) overrides(c *cli.Context) map[string]any {
	o := map[string]any{}
	if c.IsSet("server") {
		o["server"] = f.Server
	}
	if c.IsSet("output") {
		o["output"] = f.Output
	}
	if c.IsSet("timeout") {
		o["http.timeout"] = f.Timeout.String()
	}
	if c.IsSet("store-engine") {
		o["store.engine"] = f.StoreEngine
	}
	if c.IsSet("store-path") {
		o["store.path"] = f.StorePath
	}
	if f.Verbose {
		o["log.level"] = "debug"
	}
	return o
}

// loadConfig loads the CLI configuration with flag overrides applied.
func loadConfig(c *cli.Context) (*config.CLIConfig, error) {
	flags := ParseGlobalFlags(c)
	return config.Load(flags.Config, flags.overrides(c))
}

// formatterFor returns the formatter selected by flags or configuration.
func formatterFor(c *cli.Context, cfg *config.CLIConfig) (output.Formatter, output.Format, error) {
	name := cfg.Output
	if c.IsSet("output") {
		name = c.String("output")
	}
	format, err := output.ParseFormat(name)
	if err != nil {
		return nil, "", err
	}
	return output.NewFormatter(format, c.Bool("wide")), format, nil
}

// UserError carries an operation error whose message is meant for the
// user. Unwrap exposes the underlying domain error.
type UserError struct {
	Err error
}

func (e *UserError) Error() string {
	return domain.UserMessage(e.Err)
}

func (e *UserError) Unwrap() error {
	return e.Err
}

func userError(err error) error {
	if err == nil {
		return nil
	}
	var ue *UserError
	if errors.As(err, &ue) {
		return err
	}
	return &UserError{Err: err}
}

// ExitCode maps an error returned by App to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, domain.ErrCanceled):
		return 130
	default:
		return 1
	}
}

// PrintError prints an error message to w.
func PrintError(w io.Writer, err error) {
	msg := strings.TrimSpace(err.Error())
	fmt.Fprintf(w, "error: %s\n", msg)
}

func stdout(c *cli.Context) io.Writer {
	if c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}

func stderr(c *cli.Context) io.Writer {
	if c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return os.Stderr
}
