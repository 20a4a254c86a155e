package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/citycare/internal/config"
	"github.com/spec-kit/citycare/internal/fakeapi"
)

func startFake(t *testing.T) string {
	t.Helper()
	srv, err := fakeapi.New(config.FakeAPIConfig{
		JWTSecret:     "cli-secret",
		BcryptCost:    bcrypt.MinCost,
		AdminEmail:    "admin@test.local",
		AdminPassword: "admin-pass",
		SeedDemo:      true,
	}, config.AppConfig{Name: "citycare"}, nil, nil)
	require.NoError(t, err)
	base, err := srv.Start()
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown() })
	return base
}

func invoke(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestCLIFlow(t *testing.T) {
	base := startFake(t)
	t.Setenv("CITYCARE_API_BASE", base)
	t.Setenv("SESSION_BACKEND", config.SessionBackendFile)
	t.Setenv("SESSION_FILE", filepath.Join(t.TempDir(), "session.json"))

	code, _, stderr := invoke(t, "reports")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "You are not logged in")

	code, out, _ := invoke(t, "login", "-email", fakeapi.DemoEmail, "-password", fakeapi.DemoPassword, "-remember")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Logged in as "+fakeapi.DemoName)

	code, out, _ = invoke(t, "-json", "reports")
	require.Equal(t, 0, code)
	var listed struct {
		Summary struct {
			Total   int `json:"total"`
			Pending int `json:"pending"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	assert.Equal(t, 2, listed.Summary.Total)
	assert.Equal(t, 2, listed.Summary.Pending)

	code, out, _ = invoke(t, "report", "-title", "Blocked drain", "-category", "sewage", "-lat", "1.5", "-lng", "2.25", "-description", "Smells")
	require.Equal(t, 0, code)
	assert.Contains(t, out, `"Blocked drain" (PENDING)`)

	code, _, stderr = invoke(t, "report", "-title", "x")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Please fill all required fields.")

	code, _, stderr = invoke(t, "admin", "issues")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "You do not have permission")

	code, out, _ = invoke(t, "settings", "-notifications", "off")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "off")

	code, _, _ = invoke(t, "logout")
	require.Equal(t, 0, code)

	code, out, _ = invoke(t, "login", "-email", "admin@test.local", "-password", "admin-pass")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "(admin)")

	code, out, _ = invoke(t, "admin", "issues", "-status", "pending")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Blocked drain")
	assert.Contains(t, out, "Lat: 1.5, Lng: 2.25")
	assert.Equal(t, 4, len(strings.Split(strings.TrimSpace(out), "\n")))
}

func TestCLIUsage(t *testing.T) {
	code, _, stderr := invoke(t)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Usage: citycare")

	code, _, stderr = invoke(t, "nope")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, `Unknown command "nope"`)
}
