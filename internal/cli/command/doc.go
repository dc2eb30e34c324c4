// Package command provides the kci-cli command tree.
//
// Commands are built with urfave/cli/v2. Each one loads configuration,
// obtains the shared Runtime (token store, API clients and session
// controller) and renders results through the output package. The shell
// command runs the same commands against one long-lived Runtime.
package command
