package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/kubecloudsinc/kci-client/internal/cli/output"
	"github.com/kubecloudsinc/kci-client/internal/infra/buildinfo"
)

// VersionCommand returns the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Action: func(c *cli.Context) error {
			format, err := output.ParseFormat(c.String("output"))
			if err != nil {
				return err
			}
			if format == output.FormatTable {
				fmt.Fprintf(stdout(c), "%s\n", buildinfo.String())
				return nil
			}
			return output.NewFormatter(format, false).Format(stdout(c), buildinfo.Get())
		},
	}
}
