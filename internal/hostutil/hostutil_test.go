package hostutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"":                           "",
		"https://api.curio.gallery":  "https://api.curio.gallery",
		"http://localhost:3000":      "http://localhost:3000",
		"api.curio.gallery":          "https://api.curio.gallery",
		"staging.curio.gallery:8443": "https://staging.curio.gallery:8443",
		"localhost":                  "http://localhost",
		"localhost:3000":             "http://localhost:3000",
		"admin.curio.localhost:3001": "http://admin.curio.localhost:3001",
		"127.0.0.1:8080":             "http://127.0.0.1:8080",
		"[::1]:8080":                 "http://[::1]:8080",
		"localhost.curio.gallery":    "https://localhost.curio.gallery",
	}
	for input, want := range cases {
		assert.Equal(t, want, Normalize(input), "input %q", input)
	}
}

func TestIsLocalhost(t *testing.T) {
	for _, host := range []string{
		"localhost", "localhost:3000",
		"app.localhost", "a.b.localhost:9999",
		"127.0.0.1", "127.0.0.1:8080",
		"[::1]", "[::1]:3000",
	} {
		assert.True(t, IsLocalhost(host), host)
	}
	for _, host := range []string{
		"", "curio.gallery", "localhost.curio.gallery", "192.168.1.10", "10.0.0.1:80",
	} {
		assert.False(t, IsLocalhost(host), host)
	}
}

func TestRequireSecureURL(t *testing.T) {
	assert.NoError(t, RequireSecureURL(""))
	assert.NoError(t, RequireSecureURL("https://api.curio.gallery"))
	assert.NoError(t, RequireSecureURL("http://localhost:3001"))
	assert.NoError(t, RequireSecureURL("http://127.0.0.1:8080/api"))
	assert.NoError(t, RequireSecureURL("http://admin.curio.localhost:3001"))

	err := RequireSecureURL("http://staging.curio.gallery")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "insecure http://")
}
