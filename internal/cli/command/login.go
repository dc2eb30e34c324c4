package command

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/kubecloudsinc/kci-client/internal/cli/output"
	"github.com/kubecloudsinc/kci-client/internal/core/domain"
	"github.com/kubecloudsinc/kci-client/internal/core/service"
)

// LoginCommand returns the login command.
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Log in and store the session token",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "username",
				Aliases: []string{"u"},
				Usage:   "Username (prompted when omitted)",
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "Password (prompted when omitted; prefer the prompt or --password-stdin)",
			},
			&cli.BoolFlag{
				Name:  "password-stdin",
				Usage: "Read the password from the first line of stdin",
			},
		},
		Action: loginAction,
	}
}

// LogoutCommand returns the logout command.
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Discard the stored session token",
		Action: logoutAction,
	}
}

func loginAction(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}

	creds, err := readCredentials(c)
	if err != nil {
		return err
	}

	task := rt.Session.SubmitLogin(c.Context, creds)
	if _, err := wait(c, "Logging in", task); err != nil {
		return userError(err)
	}

	fmt.Fprintf(stdout(c), "Logged in as %s.\n", creds.Username)
	return nil
}

func logoutAction(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	if err := rt.Session.Logout(c.Context); err != nil {
		return fmt.Errorf("logged out, but the stored token could not be removed: %w", err)
	}
	fmt.Fprintln(stdout(c), "Logged out.")
	return nil
}

// readCredentials takes credentials from flags, prompting for whatever is
// missing.
func readCredentials(c *cli.Context) (domain.Credentials, error) {
	creds := domain.Credentials{
		Username: c.String("username"),
		Password: c.String("password"),
	}

	if creds.Username == "" {
		fmt.Fprint(stderr(c), "Username: ")
		line, err := readLine(c)
		if err != nil {
			return creds, fmt.Errorf("read username: %w", err)
		}
		creds.Username = line
	}

	switch {
	case c.Bool("password-stdin"):
		line, err := readLine(c)
		if err != nil {
			return creds, fmt.Errorf("read password: %w", err)
		}
		creds.Password = line
	case creds.Password == "":
		fmt.Fprint(stderr(c), "Password: ")
		if f, ok := c.App.Reader.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			b, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(stderr(c))
			if err != nil {
				return creds, fmt.Errorf("read password: %w", err)
			}
			creds.Password = string(b)
			break
		}
		line, err := readLine(c)
		if err != nil {
			return creds, fmt.Errorf("read password: %w", err)
		}
		creds.Password = line
	}

	return creds, nil
}

// readLine reads one line from the app's input. The buffered reader is
// kept on the app so consecutive prompts do not lose input.
func readLine(c *cli.Context) (string, error) {
	br, ok := c.App.Reader.(*bufio.Reader)
	if !ok {
		in := c.App.Reader
		if in == nil {
			in = os.Stdin
		}
		br = bufio.NewReader(in)
		c.App.Reader = br
	}

	line, err := br.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// wait waits for task, showing a spinner when stderr is a terminal.
func wait[T any](c *cli.Context, message string, task *service.Task[T]) (T, error) {
	if !isTerminal(stderr(c)) {
		return task.Wait()
	}
	sp := output.NewSpinner(stderr(c), message)
	sp.Start()
	defer sp.Stop()
	return task.Wait()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
