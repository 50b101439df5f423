package cli

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curioplatform/curio-cli/internal/commands"
	"github.com/curioplatform/curio-cli/internal/output"
)

// newTestRoot sets up an isolated profile and API backend for command tests.
func newTestRoot(t *testing.T, handler http.Handler) *cobra.Command {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	t.Setenv("CURIO_NO_KEYRING", "1")
	t.Setenv("CURIO_PROFILE_DIR", t.TempDir())
	t.Setenv("CURIO_BASE_URL", server.URL)
	t.Setenv("NO_COLOR", "1")

	cmd := NewRootCmd()
	cmd.AddCommand(commands.NewAuthCmd())
	cmd.AddCommand(commands.NewWhoamiCmd())
	cmd.AddCommand(commands.NewNoticesCmd())
	cmd.AddCommand(commands.NewConfigCmd())
	return cmd
}

func TestPublicRouteSkipsBootstrapGate(t *testing.T) {
	var bootstrapProbes int
	cmd := newTestRoot(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/users/me" || r.URL.Path == "/auth/refresh" {
			bootstrapProbes++
		}
		w.Write([]byte(`[]`))
	}))

	cmd.SetArgs([]string{"notices", "list", "--quiet"})
	_, err := cmd.ExecuteC()
	require.NoError(t, err)
	assert.Zero(t, bootstrapProbes, "public routes never hit session endpoints")
}

func TestProtectedRouteUnauthenticated(t *testing.T) {
	cmd := newTestRoot(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	cmd.SetArgs([]string{"whoami"})
	_, err := cmd.ExecuteC()
	require.Error(t, err)
	assert.Equal(t, output.CodeAuth, output.AsError(err).Code)
}

func TestConfigCommandWorksWithoutSession(t *testing.T) {
	cmd := newTestRoot(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("config must not call the API")
	}))

	cmd.SetArgs([]string{"config", "--quiet"})
	_, err := cmd.ExecuteC()
	require.NoError(t, err)
}

func TestRouteOfInheritsFromParent(t *testing.T) {
	auth := commands.NewAuthCmd()
	login, _, err := auth.Find([]string{"login"})
	require.NoError(t, err)
	assert.Equal(t, "login", commands.RouteOf(login))
}

func TestAdminAnnotationInherited(t *testing.T) {
	banners := commands.NewBannersCmd()
	list, _, err := banners.Find([]string{"list"})
	require.NoError(t, err)
	assert.True(t, commands.IsAdminCommand(list))
	assert.False(t, commands.IsAdminCommand(commands.NewWhoamiCmd()))
}

func TestTransformCobraError(t *testing.T) {
	err := transformCobraError(assert.AnError)
	assert.Equal(t, assert.AnError, err)

	err = transformCobraError(errString("flag needs an argument: --email"))
	assert.Equal(t, "--email requires a value", output.AsError(err).Message)

	err = transformCobraError(errString("unknown flag: --wat"))
	assert.Equal(t, "Unknown option: --wat", output.AsError(err).Message)
}

type errString string

func (e errString) Error() string { return string(e) }
