package repl

import (
	"sort"
	"strings"
)

// Builtins are handled by the REPL itself.
var Builtins = []string{"exit", "history", "quit"}

// Completer provides command completion for the REPL.
type Completer struct {
	commands []string
}

// NewCompleter creates a Completer over the given command paths
// (e.g. "employees list") plus the builtins.
func NewCompleter(commands []string) *Completer {
	all := append(append([]string{}, commands...), Builtins...)
	sort.Strings(all)
	return &Completer{commands: all}
}

// Complete returns completion suggestions for the given prefix.
func (c *Completer) Complete(prefix string) []string {
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}
