package command

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/kubecloudsinc/kci-client/internal/cli/config"
	"github.com/kubecloudsinc/kci-client/internal/cli/output"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "CLI configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration",
				Action: configShow,
			},
			{
				Name:  "init",
				Usage: "Write a configuration file with the effective settings",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Overwrite an existing file",
					},
				},
				Action: configInit,
			},
			{
				Name:   "path",
				Usage:  "Print the configuration file path",
				Action: configPath,
			},
		},
	}
}

func configFilePath(c *cli.Context) string {
	if p := c.String("config"); p != "" {
		return p
	}
	return config.DefaultConfigPath()
}

func configShow(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	// Nested settings read better as YAML than as a two-column table.
	if c.IsSet("output") && c.String("output") == string(output.FormatJSON) {
		return (&output.JSONFormatter{}).Format(stdout(c), cfg.Redacted())
	}
	data, err := config.Marshal(cfg.Redacted())
	if err != nil {
		return err
	}
	_, err = stdout(c).Write(data)
	return err
}

func configInit(c *cli.Context) error {
	path := configFilePath(c)
	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	// Secrets stay in the environment.
	cfg.Store.Passphrase = ""

	if err := config.Save(cfg, path); err != nil {
		return err
	}
	fmt.Fprintf(stdout(c), "Wrote %s\n", path)
	return nil
}

func configPath(c *cli.Context) error {
	fmt.Fprintln(stdout(c), configFilePath(c))
	return nil
}
