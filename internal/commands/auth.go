package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/curioplatform/curio-cli/internal/output"
	"github.com/curioplatform/curio-cli/internal/session"
)

// NewAuthCmd creates the auth command group.
func NewAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "auth",
		Short:       "Manage the session",
		Annotations: map[string]string{RouteAnnotation: session.RouteLogin},
	}
	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newRefreshCmd())
	return cmd
}

func newLoginCmd() *cobra.Command {
	var email, password string
	var admin bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app(cmd)

			if email == "" {
				return output.ErrUsageHint("Email is required", "Pass --email")
			}
			if password == "" {
				pw, err := promptPassword()
				if err != nil {
					return err
				}
				password = pw
			}

			user, err := a.Session.Login(cmd.Context(), email, password, admin)
			if err != nil {
				return err
			}
			return a.OK(user, output.WithSummary(fmt.Sprintf("Signed in as %s", user.Email)))
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")
	cmd.Flags().BoolVar(&admin, "admin", false, "Require an administrator account")
	return cmd
}

func promptPassword() (string, error) {
	fd := os.Stdin.Fd()
	if !term.IsTerminal(fd) {
		return "", output.ErrUsageHint("Password is required", "Pass --password or run interactively")
	}
	fmt.Fprint(os.Stderr, "Password: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear local session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app(cmd)
			if err := a.Session.Logout(cmd.Context()); err != nil {
				return err
			}
			if err := a.Jar.Clear(); err != nil {
				return err
			}
			return a.OK(nil, output.WithSummary("Signed out"))
		},
	}
}

// statusOutput is the auth status payload.
type statusOutput struct {
	Authenticated    bool   `json:"authenticated"`
	Email            string `json:"email,omitempty"`
	Role             string `json:"role,omitempty"`
	RefreshPlausible bool   `json:"refresh_plausible"`
	Continuation     string `json:"continuation,omitempty"`
}

func newStatusCmd() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show session status",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app(cmd)

			printStatus := func() error {
				// Best effort: seed state when a credential is plausible, so
				// status reflects what a protected command would see.
				a.Bootstrap.Check(cmd.Context(), session.RouteLogin)

				snap := a.State.Snapshot()
				out := statusOutput{
					Authenticated:    snap.Authenticated,
					RefreshPlausible: a.Jar.RefreshPlausible(),
					Continuation:     a.Jar.ContinuationStatus(),
				}
				summary := "Not signed in"
				if snap.Authenticated && snap.User != nil {
					out.Email = snap.User.Email
					out.Role = snap.User.Role
					summary = fmt.Sprintf("Signed in as %s (%s)", snap.User.Email, snap.User.Role)
				}
				return a.OK(out, output.WithSummary(summary))
			}

			if err := printStatus(); err != nil {
				return err
			}
			if !watch {
				return nil
			}
			// Re-print whenever another curio process rewrites the cookie
			// jar, until interrupted.
			err := a.Jar.Watch(cmd.Context(), func() {
				a.State.Reset()
				_ = printStatus()
			})
			if err == context.Canceled {
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep printing as other processes change the session")
	return cmd
}

func newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Force a session refresh",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app(cmd)
			if _, err := a.Coord.Refresh(cmd.Context()); err != nil {
				return err
			}
			snap := a.State.Snapshot()
			summary := "Session refreshed"
			if snap.User != nil {
				summary = fmt.Sprintf("Session refreshed for %s", snap.User.Email)
			}
			return a.OK(snap.User, output.WithSummary(summary))
		},
	}
}
