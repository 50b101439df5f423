package session

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/curioplatform/curio-cli/internal/models"
	"github.com/curioplatform/curio-cli/internal/observability"
	"github.com/curioplatform/curio-cli/internal/output"
	"github.com/curioplatform/curio-cli/internal/version"
)

// Manager handles explicit login and logout. Like the coordinator it uses its
// own jar-equipped client: credential exchange never flows through the
// gateway's 401 machinery.
type Manager struct {
	httpClient *http.Client
	base       string
	state      *State
	trace      *observability.TraceWriter
}

// NewManager creates a login/logout manager.
func NewManager(httpClient *http.Client, base string, state *State, trace *observability.TraceWriter) *Manager {
	return &Manager{httpClient: httpClient, base: base, state: state, trace: trace}
}

// Login authenticates with email and password. When requireAdmin is set and
// the backend accepts the credentials for a non-admin identity, the session is
// torn down client-side: this surface demands a privilege the identity lacks.
func (m *Manager) Login(ctx context.Context, email, password string, requireAdmin bool) (*models.User, error) {
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.base+"/auth/login", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, output.ErrNetwork(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// Machine-distinguishable rejection reason; no session mutation.
		var reject struct {
			Reason string `json:"reason"`
			Role   string `json:"role"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&reject)
		if reject.Reason == "role_not_permitted" {
			return nil, output.ErrRoleNotPermitted(reject.Role)
		}
		return nil, output.ErrBadCredentials()
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, output.ErrAPI(resp.StatusCode, "login failed: "+string(body))
	}

	var body struct {
		AccessToken string       `json:"access_token"`
		User        *models.User `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.AccessToken == "" {
		return nil, output.ErrAPI(resp.StatusCode, "login failed: malformed response")
	}

	if requireAdmin && !body.User.IsAdmin() {
		role := ""
		if body.User != nil {
			role = body.User.Role
		}
		// The backend minted a session, but this surface is admin-only.
		m.trace.Event("login rejected locally: role %q lacks admin", role)
		m.teardown(ctx)
		return nil, output.ErrRoleNotPermitted(role)
	}

	m.state.SetAuth(true, body.User, body.AccessToken)
	m.trace.Event("login succeeded for %s", email)
	return body.User, nil
}

// Logout ends the session. The server call is best-effort: local teardown
// happens regardless of its outcome.
func (m *Manager) Logout(ctx context.Context) error {
	m.teardown(ctx)
	m.trace.Event("logged out")
	return nil
}

func (m *Manager) teardown(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.base+"/logout", nil)
	if err == nil {
		req.Header.Set("User-Agent", version.UserAgent())
		if resp, err := m.httpClient.Do(req); err == nil {
			io.Copy(io.Discard, resp.Body) //nolint:errcheck
			resp.Body.Close()
		}
	}
	m.state.Reset()
}
