package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/citycare/internal/api/dto"
	"github.com/spec-kit/citycare/internal/domain"
	"github.com/spec-kit/citycare/internal/session"
	apperrors "github.com/spec-kit/citycare/pkg/util"
)

func newAuthFixture() (*AuthService, *MockGateway, *session.MemoryStore) {
	gw := new(MockGateway)
	store := session.NewMemoryStore()
	return NewAuthService(gw, session.NewProvider(store), nil), gw, store
}

func loginOK() *dto.AuthResponse {
	return &dto.AuthResponse{
		Message: "Login successful",
		User:    &dto.UserRecord{ID: "3", Name: "Asha", Email: "asha@example.com"},
		Tokens:  dto.TokenPair{Access: "access-1", Refresh: "refresh-1"},
	}
}

func storedValue(t *testing.T, store session.Store, key string) (string, bool) {
	t.Helper()
	v, ok, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	return v, ok
}

func TestLoginPersistsTokens(t *testing.T) {
	// Arrange
	svc, gw, store := newAuthFixture()
	gw.On("Login", mock.Anything, dto.LoginRequest{Email: "asha@example.com", Password: "pw"}).Return(loginOK(), nil)

	// Act
	res, err := svc.Login(context.Background(), domain.Credentials{Email: " asha@example.com ", Password: "pw"}, LoginOptions{})

	// Assert
	require.NoError(t, err)
	assert.False(t, res.Admin)
	assert.Equal(t, "Asha", res.User.Name)

	access, _ := storedValue(t, store, session.KeyAccess)
	refresh, _ := storedValue(t, store, session.KeyRefresh)
	assert.Equal(t, "access-1", access)
	assert.Equal(t, "refresh-1", refresh)

	_, ok := storedValue(t, store, session.KeyProfile)
	assert.True(t, ok)
	gw.AssertExpectations(t)
}

func TestLoginRememberMeStoresEmailOnly(t *testing.T) {
	svc, gw, store := newAuthFixture()
	require.NoError(t, store.Set(context.Background(), session.KeyPassword, "left-by-old-client"))
	gw.On("Login", mock.Anything, mock.Anything).Return(loginOK(), nil)

	_, err := svc.Login(context.Background(), domain.Credentials{Email: "asha@example.com", Password: "pw"}, LoginOptions{RememberMe: true})
	require.NoError(t, err)

	email, ok := storedValue(t, store, session.KeyEmail)
	assert.True(t, ok)
	assert.Equal(t, "asha@example.com", email)

	_, ok = storedValue(t, store, session.KeyPassword)
	assert.False(t, ok)
	for _, key := range store.Keys() {
		v, _ := storedValue(t, store, key)
		assert.NotEqual(t, "pw", v, key)
	}
}

func TestLoginWithoutRememberForgetsEmail(t *testing.T) {
	svc, gw, store := newAuthFixture()
	require.NoError(t, store.Set(context.Background(), session.KeyEmail, "old@example.com"))
	gw.On("Login", mock.Anything, mock.Anything).Return(loginOK(), nil)

	_, err := svc.Login(context.Background(), domain.Credentials{Email: "asha@example.com", Password: "pw"}, LoginOptions{})
	require.NoError(t, err)

	_, ok := storedValue(t, store, session.KeyEmail)
	assert.False(t, ok)
}

func TestLoginAdminArea(t *testing.T) {
	svc, gw, _ := newAuthFixture()
	admin := loginOK()
	admin.User.IsAdmin = true
	gw.On("Login", mock.Anything, mock.Anything).Return(admin, nil).Once()
	gw.On("Login", mock.Anything, mock.Anything).Return(loginOK(), nil).Once()

	res, err := svc.Login(context.Background(), domain.Credentials{Email: "a@b.c", Password: "pw"}, LoginOptions{})
	require.NoError(t, err)
	assert.True(t, res.Admin)

	res, err = svc.Login(context.Background(), domain.Credentials{Email: "a@b.c", Password: "pw"}, LoginOptions{AsAdmin: true})
	require.NoError(t, err)
	assert.True(t, res.Admin)
}

func TestLoginEmptyFieldsSkipGateway(t *testing.T) {
	svc, gw, _ := newAuthFixture()

	_, err := svc.Login(context.Background(), domain.Credentials{Email: "a@b.c"}, LoginOptions{})

	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	gw.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
}

func TestLoginRejectedLeavesNoSession(t *testing.T) {
	svc, gw, store := newAuthFixture()
	gw.On("Login", mock.Anything, mock.Anything).Return(nil, &apperrors.AuthError{Status: 401, Message: "Invalid credentials"})

	_, err := svc.Login(context.Background(), domain.Credentials{Email: "a@b.c", Password: "bad"}, LoginOptions{})

	assert.Equal(t, "Invalid credentials", apperrors.UserMessage(err))
	assert.Empty(t, store.Keys())
}

func TestLoginWithoutTokenIsAuthError(t *testing.T) {
	svc, gw, store := newAuthFixture()
	gw.On("Login", mock.Anything, mock.Anything).Return(&dto.AuthResponse{Message: "ok"}, nil)

	_, err := svc.Login(context.Background(), domain.Credentials{Email: "a@b.c", Password: "pw"}, LoginOptions{})

	assert.Equal(t, apperrors.KindAuth, apperrors.KindOf(err))
	assert.Empty(t, store.Keys())
}

func TestLogoutClearsEvenWhenServerFails(t *testing.T) {
	svc, gw, store := newAuthFixture()
	ctx := context.Background()
	provider := session.NewProvider(store)
	require.NoError(t, provider.SetTokens(ctx, domain.Tokens{Access: "a", Refresh: "r"}))
	require.NoError(t, provider.SetProfile(ctx, domain.User{Name: "Asha"}))
	require.NoError(t, provider.Remember(ctx, "asha@example.com"))

	gw.On("PostAuthenticated", mock.Anything, "auth/logout/", dto.LogoutRequest{Refresh: "r"}, "a", nil).
		Return(&apperrors.NetworkError{Method: "POST", Path: "auth/logout/", Err: context.DeadlineExceeded})

	require.NoError(t, svc.Logout(ctx))

	for _, key := range []string{session.KeyAccess, session.KeyRefresh, session.KeyProfile} {
		_, ok := storedValue(t, store, key)
		assert.False(t, ok, key)
	}
	_, ok := storedValue(t, store, session.KeyEmail)
	assert.True(t, ok)
	gw.AssertExpectations(t)
}

func TestLogoutWithoutSessionSkipsServer(t *testing.T) {
	svc, gw, _ := newAuthFixture()

	require.NoError(t, svc.Logout(context.Background()))
	gw.AssertNotCalled(t, "PostAuthenticated", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRegister(t *testing.T) {
	svc, gw, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), domain.Registration{Name: "A", Email: "a@b.c", Password: "x", ConfirmPassword: "y"})
	assert.Equal(t, "Passwords do not match.", apperrors.UserMessage(err))
	gw.AssertNotCalled(t, "PostAuthenticated", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	gw.On("PostAuthenticated", mock.Anything, "auth/register/", dto.RegisterRequest{Name: "A", Email: "a@b.c", Password: "x"}, "", mock.Anything).
		Run(respond(4, `{"message":"User registered successfully"}`)).
		Return(nil)

	msg, err := svc.Register(context.Background(), domain.Registration{Name: "A", Email: "a@b.c", Password: "x", ConfirmPassword: "x"})
	require.NoError(t, err)
	assert.Equal(t, "User registered successfully", msg)
}

func TestEditProfileUpdatesCache(t *testing.T) {
	svc, gw, store := newAuthFixture()
	ctx := context.Background()
	provider := session.NewProvider(store)
	require.NoError(t, provider.SetTokens(ctx, domain.Tokens{Access: "a"}))
	require.NoError(t, provider.SetProfile(ctx, domain.User{ID: "3", Name: "Old", Email: "old@example.com"}))

	gw.On("PostAuthenticated", mock.Anything, "auth/edit-profile/", dto.EditProfileRequest{Name: "New", Email: "new@example.com"}, "a", mock.Anything).
		Run(respond(4, `{"message":"Profile updated"}`)).
		Return(nil)

	user, err := svc.EditProfile(ctx, domain.ProfileUpdate{Name: "New", Email: "new@example.com"})
	require.NoError(t, err)
	assert.Equal(t, domain.User{ID: "3", Name: "New", Email: "new@example.com"}, user)

	cached, err := svc.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, user, cached)

	_, err = svc.EditProfile(ctx, domain.ProfileUpdate{Name: "", Email: "x"})
	assert.Equal(t, "Name and Email cannot be empty", apperrors.UserMessage(err))
}

func TestForgotPassword(t *testing.T) {
	svc, gw, _ := newAuthFixture()

	_, err := svc.ForgotPassword(context.Background(), "  ")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	gw.On("PostAuthenticated", mock.Anything, "auth/forgot-password/", dto.ForgotPasswordRequest{Email: "a@b.c"}, "", mock.Anything).
		Return(nil)

	msg, err := svc.ForgotPassword(context.Background(), "a@b.c")
	require.NoError(t, err)
	assert.NotEmpty(t, msg)
}
