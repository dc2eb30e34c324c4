// Package repl provides the interactive shell mode for kci-cli.
//
// A shell keeps one session alive across commands, so a login is followed
// by list or profile fetches without re-reading the token store.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Executor runs one parsed command line.
type Executor func(ctx context.Context, args []string) error

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     *bufio.Reader
	output    io.Writer
	prompt    string
	exec      Executor
	completer *Completer
	history   *History
	record    func(line string) bool
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO sets the input and output streams.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.input = bufio.NewReader(in)
		r.output = out
	}
}

// WithPrompt sets the prompt string.
func WithPrompt(p string) Option {
	return func(r *REPL) {
		r.prompt = p
	}
}

// WithCompleter sets the completer used for "?" lookups.
func WithCompleter(c *Completer) Option {
	return func(r *REPL) {
		r.completer = c
	}
}

// WithHistory sets the history.
func WithHistory(h *History) Option {
	return func(r *REPL) {
		r.history = h
	}
}

// WithHistoryFilter skips recording lines for which keep returns false.
func WithHistoryFilter(keep func(line string) bool) Option {
	return func(r *REPL) {
		r.record = keep
	}
}

// New creates a new REPL running exec for every line.
func New(exec Executor, opts ...Option) *REPL {
	r := &REPL{
		input:     bufio.NewReader(os.Stdin),
		output:    os.Stdout,
		prompt:    "kci> ",
		exec:      exec,
		completer: NewCompleter(nil),
		history:   NewHistory(""),
		record:    func(string) bool { return true },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reader returns the buffered input, for commands that prompt.
func (r *REPL) Reader() *bufio.Reader {
	return r.input
}

// History returns the session history.
func (r *REPL) History() *History {
	return r.history
}

// Run reads and executes lines until exit, EOF or ctx is done.
func (r *REPL) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		fmt.Fprint(r.output, r.prompt)

		line, err := r.input.ReadString('\n')
		if errors.Is(err, io.EOF) && line == "" {
			fmt.Fprintln(r.output)
			return nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if r.record(line) {
			r.history.Add(line)
		}

		switch line {
		case "exit", "quit":
			return nil
		case "history":
			for i, entry := range r.history.Entries() {
				fmt.Fprintf(r.output, "%4d  %s\n", i+1, entry)
			}
			continue
		}

		if strings.HasSuffix(line, "?") {
			r.suggest(strings.TrimSpace(strings.TrimSuffix(line, "?")))
			continue
		}

		args, err := Split(line)
		if err != nil {
			fmt.Fprintf(r.output, "Error: %v\n", err)
			continue
		}
		if err := r.exec(ctx, args); err != nil {
			fmt.Fprintf(r.output, "Error: %v\n", err)
		}
	}
}

func (r *REPL) suggest(prefix string) {
	suggestions := r.completer.Complete(prefix)
	if len(suggestions) == 0 {
		fmt.Fprintf(r.output, "No commands match %q\n", prefix)
		return
	}
	for _, s := range suggestions {
		fmt.Fprintf(r.output, "  %s\n", s)
	}
}

// Split breaks a line into arguments. Single and double quotes group
// words; a backslash escapes the next character outside single quotes.
func Split(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inArg   bool
		quote   rune
		escaped bool
	)

	for _, ch := range line {
		switch {
		case escaped:
			cur.WriteRune(ch)
			escaped = false
		case ch == '\\' && quote != '\'':
			escaped = true
			inArg = true
		case quote != 0:
			if ch == quote {
				quote = 0
			} else {
				cur.WriteRune(ch)
			}
		case ch == '"' || ch == '\'':
			quote = ch
			inArg = true
		case ch == ' ' || ch == '\t':
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(ch)
			inArg = true
		}
	}

	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if escaped {
		return nil, errors.New("trailing backslash")
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args, nil
}
