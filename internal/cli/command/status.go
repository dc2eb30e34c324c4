package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/kubecloudsinc/kci-client/pkg/token"
)

// StatusCommand returns the status command.
func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Show the session state",
		Action: statusAction,
	}
}

// statusView is what status prints. Claims come from an unverified decode
// of the token and are informational only.
type statusView struct {
	Server    string    `json:"server"`
	State     string    `json:"state"`
	View      string    `json:"view"`
	Token     string    `json:"token_fingerprint,omitempty"`
	Username  string    `json:"username,omitempty"`
	Role      string    `json:"role,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
	Expired   bool      `json:"expired,omitempty"`
}

func statusAction(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}

	state := rt.Session.State()
	view := statusView{
		Server: rt.Config.Server,
		State:  state.Status.String(),
		View:   rt.Session.View().String(),
	}
	if state.IsAuthenticated() {
		view.Token = token.Fingerprint(string(state.Token))
		if claims, err := rt.Session.Claims(); err != nil {
			rt.Logger.Debug("token claims unavailable", "error", err)
		} else {
			view.Username = claims.Username
			view.Role = claims.Role
			view.ExpiresAt = claims.ExpiresAt
			view.Expired = claims.Expired(time.Now())
		}
	}

	f, _, err := formatterFor(c, rt.Config)
	if err != nil {
		return err
	}
	if err := f.Format(stdout(c), view); err != nil {
		return fmt.Errorf("format status: %w", err)
	}
	return nil
}
