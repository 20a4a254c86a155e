package fakeapi_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/citycare/internal/config"
	"github.com/spec-kit/citycare/internal/domain"
	"github.com/spec-kit/citycare/internal/fakeapi"
	"github.com/spec-kit/citycare/internal/gateway"
	"github.com/spec-kit/citycare/internal/observability"
	"github.com/spec-kit/citycare/internal/service"
	"github.com/spec-kit/citycare/internal/session"
	apperrors "github.com/spec-kit/citycare/pkg/util"
)

const (
	adminEmail    = "admin@test.local"
	adminPassword = "admin-pass"
)

func testConfig(seedDemo bool) config.FakeAPIConfig {
	return config.FakeAPIConfig{
		Host:                   "127.0.0.1",
		Port:                   "0",
		JWTSecret:              "test-secret",
		AccessTokenTTLMinutes:  5,
		RefreshTokenTTLMinutes: 10,
		BcryptCost:             bcrypt.MinCost,
		AdminEmail:             adminEmail,
		AdminPassword:          adminPassword,
		SeedDemo:               seedDemo,
	}
}

func newServer(t *testing.T, seedDemo bool) (*fakeapi.Server, string) {
	t.Helper()
	srv, err := fakeapi.New(testConfig(seedDemo), config.AppConfig{Name: "citycare", Version: "test"}, nil, observability.NewMetrics())
	require.NoError(t, err)
	base, err := srv.Start()
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown() })
	return srv, base
}

// client bundles the services a single signed-in device would use.
type client struct {
	provider      *session.Provider
	auth          *service.AuthService
	complaints    *service.ComplaintService
	notifications *service.NotificationService
}

func newClient(t *testing.T, base string) *client {
	t.Helper()
	gw, err := gateway.New(base, gateway.WithTimeout(5*time.Second))
	require.NoError(t, err)
	provider := session.NewProvider(session.NewMemoryStore())
	return &client{
		provider:      provider,
		auth:          service.NewAuthService(gw, provider, nil),
		complaints:    service.NewComplaintService(gw, provider),
		notifications: service.NewNotificationService(gw, provider),
	}
}

func (c *client) register(t *testing.T, name, email, password string) {
	t.Helper()
	msg, err := c.auth.Register(context.Background(), domain.Registration{Name: name, Email: email, Password: password, ConfirmPassword: password})
	require.NoError(t, err)
	assert.Equal(t, "User registered successfully", msg)
}

func (c *client) login(t *testing.T, email, password string) *service.LoginResult {
	t.Helper()
	res, err := c.auth.Login(context.Background(), domain.Credentials{Email: email, Password: password}, service.LoginOptions{})
	require.NoError(t, err)
	return res
}

func TestCitizenReportsAndAdminResolves(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, base := newServer(t, false)

	citizen := newClient(t, base)
	citizen.register(t, "Ada", "ada@example.com", "secret1")
	res := citizen.login(t, "ada@example.com", "secret1")
	assert.False(t, res.Admin)

	created, err := citizen.complaints.AddComplaint(ctx, domain.ReportInput{
		Title:       "Pothole",
		Category:    domain.CategoryRoad,
		Location:    "Main St",
		Description: "Deep hole near the crossing",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, created.Status)
	require.NotEmpty(t, created.ID)

	admin := newClient(t, base)
	adminRes := admin.login(t, adminEmail, adminPassword)
	assert.True(t, adminRes.Admin)

	pending, err := admin.complaints.GetAllComplaints(ctx, domain.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, created.ID, pending[0].ID)

	updated, err := admin.complaints.UpdateComplaintStatus(ctx, created.ID, domain.StatusResolved)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, updated.Status)
	assert.Equal(t, created.ID, updated.ID)

	mine, err := citizen.complaints.GetComplaints(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, domain.StatusResolved, mine[0].Status)

	notes, err := citizen.notifications.UserNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Issue Resolved: Pothole", notes[0].Title)
	assert.Contains(t, notes[0].Message, "at Main St has been resolved")
	assert.False(t, notes[0].IsGlobal)

	// Nothing leaks to the admin's personal feed.
	adminNotes, err := admin.notifications.UserNotifications(ctx)
	require.NoError(t, err)
	assert.Empty(t, adminNotes)
}

func TestInProgressDoesNotNotify(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, base := newServer(t, false)

	citizen := newClient(t, base)
	citizen.register(t, "Bo", "bo@example.com", "secret1")
	citizen.login(t, "bo@example.com", "secret1")
	created, err := citizen.complaints.AddComplaint(ctx, domain.ReportInput{Title: "Leak", Category: domain.CategoryWater, Location: "Elm St", Description: "Water everywhere"})
	require.NoError(t, err)

	admin := newClient(t, base)
	admin.login(t, adminEmail, adminPassword)
	_, err = admin.complaints.UpdateComplaintStatus(ctx, created.ID, domain.StatusInProgress)
	require.NoError(t, err)

	notes, err := citizen.notifications.UserNotifications(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestFeedbackAndBroadcast(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, base := newServer(t, false)

	citizen := newClient(t, base)
	citizen.register(t, "Cy", "cy@example.com", "secret1")
	citizen.login(t, "cy@example.com", "secret1")
	created, err := citizen.complaints.AddComplaint(ctx, domain.ReportInput{Title: "Noise", Category: domain.CategoryPollution, Location: "Dock", Description: "Loud at night"})
	require.NoError(t, err)

	fb, err := citizen.complaints.SubmitFeedback(ctx, created.ID, "Thanks for the quick fix")
	require.NoError(t, err)
	assert.Equal(t, created.ID, fb.IssueID)

	_, err = citizen.complaints.SubmitFeedback(ctx, "9999", "missing")
	require.Error(t, err)
	assert.Equal(t, "Issue not found", apperrors.UserMessage(err))

	admin := newClient(t, base)
	admin.login(t, adminEmail, adminPassword)

	all, err := admin.complaints.ListFeedback(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.NotNil(t, all[0].User)
	assert.Equal(t, "cy@example.com", all[0].User.Email)
	require.NotNil(t, all[0].Issue)
	assert.Equal(t, "Dock", all[0].Issue.Location)

	sent, err := admin.notifications.Send(ctx, domain.Broadcast{Title: "Maintenance", Message: "Water off Sunday"})
	require.NoError(t, err)
	assert.True(t, sent.IsGlobal)

	_, err = admin.notifications.Send(ctx, domain.Broadcast{Title: "Hi", Message: "there", TargetUserID: "4242"})
	require.Error(t, err)
	assert.Equal(t, "Target user not found", apperrors.UserMessage(err))

	notes, err := citizen.notifications.UserNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Maintenance", notes[0].Title)

	adminView, err := admin.notifications.AdminNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, adminView, 1)
	assert.Nil(t, adminView[0].TargetUser)
}

func TestCitizenCannotUseAdminEndpoints(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, base := newServer(t, false)

	citizen := newClient(t, base)
	citizen.register(t, "Di", "di@example.com", "secret1")
	citizen.login(t, "di@example.com", "secret1")

	_, err := citizen.complaints.GetAllComplaints(ctx, "")
	require.Error(t, err)
	var reqErr *apperrors.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusForbidden, reqErr.Status)
	assert.Equal(t, "You do not have permission to perform this action.", apperrors.UserMessage(err))
}

func TestLoginFailuresAndDuplicateRegistration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, base := newServer(t, false)

	c := newClient(t, base)
	_, err := c.auth.Login(ctx, domain.Credentials{Email: adminEmail, Password: "wrong"}, service.LoginOptions{})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindAuth, apperrors.KindOf(err))
	assert.Equal(t, "Invalid credentials", apperrors.UserMessage(err))

	_, err = c.auth.Register(ctx, domain.Registration{Name: "Admin", Email: adminEmail, Password: "x", ConfirmPassword: "x"})
	require.Error(t, err)
	assert.Equal(t, "Email already exists", apperrors.UserMessage(err))
}

func TestLogoutBlacklistsRefreshToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv, base := newServer(t, false)

	c := newClient(t, base)
	c.login(t, adminEmail, adminPassword)
	access, err := c.provider.Token(ctx)
	require.NoError(t, err)
	refresh, err := c.provider.RefreshToken(ctx)
	require.NoError(t, err)

	require.NoError(t, c.auth.Logout(ctx))
	_, err = c.provider.Token(ctx)
	assert.ErrorIs(t, err, session.ErrNoSession)

	// A second logout with the same refresh token is rejected.
	body := strings.NewReader(`{"refresh":"` + refresh + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout/", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+access)
	resp, err := srv.App().Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, map[string]any{"error": "Invalid token"}, decode(t, resp))
}

func TestProfileAndForgotPassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv, base := newServer(t, false)

	c := newClient(t, base)
	c.register(t, "Eve", "eve@example.com", "secret1")
	c.login(t, "eve@example.com", "secret1")

	user, err := c.auth.EditProfile(ctx, domain.ProfileUpdate{Name: "Eve Adams", Email: "eve.adams@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Eve Adams", user.Name)

	stored, err := srv.Store().UserByEmail("eve.adams@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Eve Adams", stored.Name)

	_, err = c.auth.EditProfile(ctx, domain.ProfileUpdate{Name: "Eve", Email: adminEmail})
	require.Error(t, err)
	assert.Equal(t, "Email already exists", apperrors.UserMessage(err))

	msg, err := c.auth.ForgotPassword(ctx, "eve.adams@example.com")
	require.NoError(t, err)
	assert.Equal(t, "New password sent to your email", msg)

	_, err = c.auth.Login(ctx, domain.Credentials{Email: "eve.adams@example.com", Password: "secret1"}, service.LoginOptions{})
	require.Error(t, err, "old password must stop working after a reset")

	_, err = c.auth.ForgotPassword(ctx, "nobody@example.com")
	require.Error(t, err)
	assert.Equal(t, "User not found", apperrors.UserMessage(err))
}

func TestErrorShapes(t *testing.T) {
	t.Parallel()
	srv, _ := newServer(t, false)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		auth   string
		status int
		want   map[string]any
	}{
		{
			name:   "missing credentials",
			method: http.MethodGet,
			path:   "/api/issues/user/",
			status: http.StatusUnauthorized,
			want:   map[string]any{"detail": "Authentication credentials were not provided."},
		},
		{
			name:   "garbage token",
			method: http.MethodGet,
			path:   "/api/notifications/",
			auth:   "Bearer nope",
			status: http.StatusUnauthorized,
			want:   map[string]any{"detail": "Given token not valid for any token type"},
		},
		{
			name:   "login without password",
			method: http.MethodPost,
			path:   "/api/auth/login/",
			body:   `{"email":"a@b.c"}`,
			status: http.StatusBadRequest,
			want:   map[string]any{"error": "Email and password are required"},
		},
		{
			name:   "register missing fields",
			method: http.MethodPost,
			path:   "/api/auth/register/",
			body:   `{"email":"a@b.c"}`,
			status: http.StatusBadRequest,
			want:   map[string]any{"error": "Name, email, and password are required"},
		},
		{
			name:   "forgot password without email",
			method: http.MethodPost,
			path:   "/api/auth/forgot-password/",
			body:   `{}`,
			status: http.StatusBadRequest,
			want:   map[string]any{"error": "Email is required"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, tt.path, body)
			req.Header.Set("Content-Type", "application/json")
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			resp, err := srv.App().Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.want, decode(t, resp))
		})
	}
}

func TestStatusValidation(t *testing.T) {
	t.Parallel()
	srv, base := newServer(t, true)

	admin := newClient(t, base)
	admin.login(t, adminEmail, adminPassword)
	token, err := admin.provider.Token(context.Background())
	require.NoError(t, err)

	issues := srv.Store().Issues(0, "")
	require.Len(t, issues, 2)
	path := "/api/admin/issues/" + jsonID(issues[0].ID) + "/status/"

	put := func(body string) (*http.Response, map[string]any) {
		req := httptest.NewRequest(http.MethodPut, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := srv.App().Test(req)
		require.NoError(t, err)
		return resp, decode(t, resp)
	}

	resp, body := put(`{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Status is required", body["error"])

	resp, body = put(`{"status":"DONE"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid status", body["error"])

	resp, body = put(`{"status":"REPORT"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	issue, ok := body["issue"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "REPORT", issue["status"])
	assert.Equal(t, "PENDING", issue["old_status"])

	notes := srv.Store().Notifications(issues[0].UserID)
	require.NotEmpty(t, notes)
	assert.True(t, strings.HasPrefix(notes[0].Title, "Issue Report: "))
}

func TestHealth(t *testing.T) {
	t.Parallel()
	srv, _ := newServer(t, false)

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alive", decode(t, resp)["status"])
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func jsonID(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
