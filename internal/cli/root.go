// Package cli assembles the root command: flag surface, config loading,
// per-invocation app wiring, and the bootstrap gate for protected routes.
package cli

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/curioplatform/curio-cli/internal/appctx"
	"github.com/curioplatform/curio-cli/internal/commands"
	"github.com/curioplatform/curio-cli/internal/config"
	"github.com/curioplatform/curio-cli/internal/output"
	"github.com/curioplatform/curio-cli/internal/session"
	"github.com/curioplatform/curio-cli/internal/version"
)

// NewRootCmd creates the root cobra command.
func NewRootCmd() *cobra.Command {
	var flags appctx.GlobalFlags

	cmd := &cobra.Command{
		Use:           "curio",
		Short:         "Command-line client for the Curio gallery platform",
		Long:          "curio manages sessions, admin resources, notices, and chat for the Curio gallery platform.",
		Version:       version.Full(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "completion" {
				return nil
			}

			cfg, err := config.Load(config.FlagOverrides{
				BaseURL:    flags.BaseURL,
				ProfileDir: flags.ProfileDir,
			})
			if err != nil {
				return err
			}

			app, err := appctx.NewApp(cfg)
			if err != nil {
				return err
			}
			app.Flags = flags
			app.ApplyFlags()
			cmd.SetContext(appctx.WithApp(cmd.Context(), app))

			route := commands.RouteOf(cmd)
			if route == "" {
				route = session.RouteHome
			}
			app.Router.Enter(route)
			app.Trace.Event("navigate: %s", route)

			// Public routes render without a session; everything else passes
			// the bootstrap gate first.
			if cfg.IsPublicRoute(route) {
				return nil
			}
			if app.Bootstrap.Check(cmd.Context(), route) != session.DecisionAuthorized {
				return output.ErrAuth("Not signed in")
			}
			if commands.IsAdminCommand(cmd) {
				user := app.State.Snapshot().User
				if !user.IsAdmin() {
					role := ""
					if user != nil {
						role = user.Role
					}
					return output.ErrRoleNotPermitted(role)
				}
			}
			return nil
		},
	}

	cmd.Flags().SetInterspersed(true)
	cmd.PersistentFlags().SetInterspersed(true)

	// Output format flags
	cmd.PersistentFlags().BoolVarP(&flags.JSON, "json", "j", false, "Output as JSON")
	cmd.PersistentFlags().BoolVar(&flags.YAML, "yaml", false, "Output as YAML")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Output data only, no envelope")
	cmd.PersistentFlags().BoolVar(&flags.Styled, "styled", false, "Force styled output (ANSI colors)")
	cmd.PersistentFlags().StringVar(&flags.JQ, "jq", "", "Filter output data with a jq expression")

	// Connection flags
	cmd.PersistentFlags().StringVar(&flags.BaseURL, "base-url", "", "API base URL")
	cmd.PersistentFlags().StringVar(&flags.ProfileDir, "profile-dir", "", "Directory for profile state (cookie jar)")

	// Behavior flags
	cmd.PersistentFlags().CountVarP(&flags.Verbose, "verbose", "v", "Verbose output (-v for session events, -vv for requests)")
	cmd.PersistentFlags().BoolVar(&flags.Stats, "stats", false, "Show session statistics")

	return cmd
}

// Execute runs the root command and exits with the mapped code on error.
func Execute() {
	cmd := NewRootCmd()

	cmd.AddCommand(commands.NewAuthCmd())
	cmd.AddCommand(commands.NewWhoamiCmd())
	cmd.AddCommand(commands.NewRegisterCmd())
	cmd.AddCommand(commands.NewBannersCmd())
	cmd.AddCommand(commands.NewCuratorsCmd())
	cmd.AddCommand(commands.NewUsersCmd())
	cmd.AddCommand(commands.NewPaymentsCmd())
	cmd.AddCommand(commands.NewExhibitionsCmd())
	cmd.AddCommand(commands.NewNoticesCmd())
	cmd.AddCommand(commands.NewChatCmd())
	cmd.AddCommand(commands.NewAPICmd())
	cmd.AddCommand(commands.NewConfigCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	executedCmd, err := cmd.ExecuteContextC(ctx)
	if err == nil {
		return
	}

	err = transformCobraError(err)
	apiErr := output.AsError(err)

	if app := appctx.FromContext(executedCmd.Context()); app != nil {
		_ = app.Err(err)
		os.Exit(apiErr.ExitCode())
	}

	// App not available (failed during setup); emit directly.
	writer := output.New(output.Options{Format: output.FormatAuto, Writer: os.Stdout})
	_ = writer.Err(err)
	os.Exit(apiErr.ExitCode())
}

// transformCobraError rewrites cobra's flag errors into the usage taxonomy.
func transformCobraError(err error) error {
	msg := err.Error()

	if strings.HasPrefix(msg, "flag needs an argument: ") {
		flag := strings.TrimPrefix(msg, "flag needs an argument: ")
		return output.ErrUsage(flag + " requires a value")
	}
	if strings.HasPrefix(msg, "unknown flag: ") {
		flag := strings.TrimPrefix(msg, "unknown flag: ")
		return output.ErrUsage("Unknown option: " + flag)
	}
	if strings.HasPrefix(msg, "unknown command ") {
		return output.ErrUsageHint(strings.TrimPrefix(msg, "unknown command "), "Run: curio --help")
	}
	return err
}
