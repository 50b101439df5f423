// Package appctx wires the application container shared by all commands.
package appctx

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/curioplatform/curio-cli/internal/api"
	"github.com/curioplatform/curio-cli/internal/config"
	"github.com/curioplatform/curio-cli/internal/cookies"
	"github.com/curioplatform/curio-cli/internal/observability"
	"github.com/curioplatform/curio-cli/internal/output"
	"github.com/curioplatform/curio-cli/internal/presenter"
	"github.com/curioplatform/curio-cli/internal/session"
)

// contextKey is a private type for context keys.
type contextKey string

const appKey contextKey = "app"

// App holds the shared application context for all commands. One instance is
// built per invocation; everything session-scoped hangs off it.
type App struct {
	Config *config.Config

	Jar       *cookies.Jar
	Tokens    session.TokenStore
	State     *session.State
	Router    *session.Router
	Coord     *session.Coordinator
	Bootstrap *session.Bootstrapper
	Session   *session.Manager
	Gateway   *api.Client

	Presenter *presenter.Presenter
	Output    *output.Writer

	Collector *observability.Collector
	Trace     *observability.TraceWriter

	Flags GlobalFlags
}

// GlobalFlags holds values for global CLI flags.
type GlobalFlags struct {
	JSON   bool
	YAML   bool
	Quiet  bool
	Styled bool // Force ANSI styled output (even when piped)
	JQ     string

	BaseURL    string
	ProfileDir string

	Verbose int // 0=off, 1=session events, 2=session events+requests
	Stats   bool
}

// NewApp creates a new App from loaded configuration.
func NewApp(cfg *config.Config) (*App, error) {
	origin, err := originHost(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	store := cookies.NewStore(origin, cfg.ProfileDir)
	jar, err := cookies.NewJar(origin, store)
	if err != nil {
		return nil, fmt.Errorf("opening cookie jar: %w", err)
	}

	tokens := session.NewMemoryTokenStore()
	state := session.NewState(tokens)
	router := session.NewRouter(cfg.IsPublicRoute)

	collector := observability.NewCollector()
	trace := observability.NewTraceWriter(0)

	// One jar-equipped transport shared by the session endpoints and the
	// gateway: every call carries the same cookies, like one browser profile.
	httpClient := &http.Client{Timeout: 30 * time.Second, Jar: jar}

	coord := session.NewCoordinator(session.CoordinatorConfig{
		HTTPClient: httpClient,
		BaseURL:    cfg.BaseURL,
		State:      state,
		Marker:     jar,
		Router:     router,
		Navigator: session.NavigatorFunc(func(reason string) {
			fmt.Fprintf(os.Stderr, "Signed out (%s). Run: curio auth login\n", reason)
		}),
		Metrics: collector,
		Trace:   trace,
	})

	gateway := api.NewClient(api.Config{
		HTTPClient: httpClient,
		BaseURL:    cfg.BaseURL,
		Tokens:     tokens,
		Refresher:  coord,
		Metrics:    collector,
		Trace:      trace,
	})

	boot := session.NewBootstrapper(session.BootstrapperConfig{
		State:       state,
		Tokens:      tokens,
		Coordinator: coord,
		Flags:       session.JarFlags{Jar: jar},
		Marker:      jar,
		Probe:       gateway.Probe(),
		Metrics:     collector,
		Trace:       trace,
	})

	mgr := session.NewManager(httpClient, cfg.BaseURL, state, trace)

	app := &App{
		Config:    cfg,
		Jar:       jar,
		Tokens:    tokens,
		State:     state,
		Router:    router,
		Coord:     coord,
		Bootstrap: boot,
		Session:   mgr,
		Gateway:   gateway,
		Presenter: presenter.New(),
		Collector: collector,
		Trace:     trace,
	}
	app.Output = output.New(output.Options{Format: formatFromConfig(cfg.Format), Writer: os.Stdout})
	return app, nil
}

func formatFromConfig(format string) output.Format {
	switch format {
	case "json":
		return output.FormatJSON
	case "yaml":
		return output.FormatYAML
	case "quiet":
		return output.FormatQuiet
	case "styled":
		return output.FormatStyled
	default:
		return output.FormatAuto
	}
}

// originHost extracts the scheme+host origin from the base URL. The cookie
// jar is keyed by it, so two profiles against different backends never share
// session cookies.
func originHost(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid base URL %q", baseURL)
	}
	return u.Scheme + "://" + u.Host, nil
}

// ApplyFlags applies global flag values to the app.
func (a *App) ApplyFlags() {
	// Specific modes first
	switch {
	case a.Flags.Quiet:
		a.Output = output.New(output.Options{Format: output.FormatQuiet, Writer: os.Stdout, JQ: a.Flags.JQ})
	case a.Flags.JSON:
		a.Output = output.New(output.Options{Format: output.FormatJSON, Writer: os.Stdout, JQ: a.Flags.JQ})
	case a.Flags.YAML:
		a.Output = output.New(output.Options{Format: output.FormatYAML, Writer: os.Stdout, JQ: a.Flags.JQ})
	case a.Flags.Styled:
		a.Output = output.New(output.Options{Format: output.FormatStyled, Writer: os.Stdout, JQ: a.Flags.JQ})
	case a.Flags.JQ != "":
		a.Output = output.New(output.Options{Format: formatFromConfig(a.Config.Format), Writer: os.Stdout, JQ: a.Flags.JQ})
	}

	verbose := a.Flags.Verbose
	if debugEnv := os.Getenv("CURIO_DEBUG"); debugEnv != "" {
		// CURIO_DEBUG can be "1", "2", or "true" (treated as 2)
		if level, err := strconv.Atoi(debugEnv); err == nil {
			if level > verbose {
				verbose = level
			}
		} else if debugEnv == "true" {
			verbose = 2
		}
	}
	a.Trace.SetLevel(verbose)
}

// OK outputs a success response, attaching session stats when --stats is set.
func (a *App) OK(data any, opts ...output.ResponseOption) error {
	if a.Flags.Stats {
		opts = append(opts, output.WithMeta("stats", a.Collector.Snapshot()))
	}
	return a.Output.OK(data, opts...)
}

// Err outputs an error response, printing stats to stderr when --stats is set.
func (a *App) Err(err error) error {
	if outputErr := a.Output.Err(err); outputErr != nil {
		return outputErr
	}
	if a.Flags.Stats && !a.Flags.Quiet {
		a.printStats()
	}
	return nil
}

func (a *App) printStats() {
	snap := a.Collector.Snapshot()
	fmt.Fprintf(os.Stderr, "%d requests (%d replayed), %d refresh calls (%d failed, %d coalesced), %d bootstrap checks\n",
		snap.TotalRequests, snap.Replays,
		snap.RefreshCalls, snap.RefreshFailures, snap.RefreshCoalesced,
		snap.BootstrapChecks)
}

// WithApp attaches the app to a context.
func WithApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, appKey, app)
}

// FromContext retrieves the app from a context, or nil.
func FromContext(ctx context.Context) *App {
	app, _ := ctx.Value(appKey).(*App)
	return app
}
