// Package main provides the entry point for kci-cli.
//
// kci-cli logs in to the KubeCloudsInc employee API, keeps the session
// token in a local store and browses the employee directory.
//
// Usage:
//
//	kci-cli login -u mazda
//	kci-cli employees list -o wide
//	kci-cli employees get 101
//	kci-cli shell
package main

import (
	"context"
	"os"

	"github.com/kubecloudsinc/kci-client/internal/cli/command"
	"github.com/kubecloudsinc/kci-client/internal/infra/shutdown"
)

func main() {
	ctx, stop := shutdown.SignalContext(context.Background())
	err := command.App().RunContext(ctx, os.Args)
	stop()

	if err != nil {
		command.PrintError(os.Stderr, err)
		os.Exit(command.ExitCode(err))
	}
}
