package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/citycare/internal/api/dto"
	"github.com/spec-kit/citycare/internal/domain"
	"github.com/spec-kit/citycare/internal/mapper"
	"github.com/spec-kit/citycare/internal/session"
	apperrors "github.com/spec-kit/citycare/pkg/util"
)

// AuthService coordinates login, registration, profile and logout flows.
type AuthService struct {
	gw      Gateway
	session *session.Provider
	logger  *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(gw Gateway, provider *session.Provider, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{gw: gw, session: provider, logger: logger}
}

// LoginOptions mirror the toggles on the login form.
type LoginOptions struct {
	RememberMe bool
	AsAdmin    bool
}

// LoginResult tells the caller who logged in and which area to open.
type LoginResult struct {
	User  domain.User `json:"user"`
	Admin bool        `json:"admin"`
}

// Login authenticates and persists the session. Remember-me keeps only the
// e-mail; a stored password is always removed.
func (s *AuthService) Login(ctx context.Context, creds domain.Credentials, opts LoginOptions) (*LoginResult, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(creds.Email)

	res, err := s.gw.Login(ctx, dto.LoginRequest{Email: email, Password: creds.Password})
	if err != nil {
		return nil, err
	}
	if res.Tokens.Access == "" {
		return nil, &apperrors.AuthError{Message: "Login failed: the server did not issue a token."}
	}

	if err := s.session.SetTokens(ctx, domain.Tokens{Access: res.Tokens.Access, Refresh: res.Tokens.Refresh}); err != nil {
		return nil, err
	}

	user := mapper.User(res.User)
	if user.Email == "" {
		user.Email = email
	}
	if err := s.session.SetProfile(ctx, user); err != nil {
		return nil, err
	}

	if opts.RememberMe {
		err = s.session.Remember(ctx, email)
	} else {
		err = s.session.Forget(ctx)
	}
	if err != nil {
		return nil, err
	}

	return &LoginResult{User: user, Admin: user.IsAdmin || opts.AsAdmin}, nil
}

// Register creates an account. The user still has to log in afterwards.
func (s *AuthService) Register(ctx context.Context, reg domain.Registration) (string, error) {
	if err := reg.Validate(); err != nil {
		return "", err
	}

	var out dto.AuthResponse
	req := dto.RegisterRequest{
		Name:     strings.TrimSpace(reg.Name),
		Email:    strings.TrimSpace(reg.Email),
		Password: reg.Password,
	}
	if err := s.gw.PostAuthenticated(ctx, pathRegister, req, "", &out); err != nil {
		return "", err
	}
	if out.Message == "" {
		out.Message = "Registration successful. Please log in."
	}
	return out.Message, nil
}

// EditProfile updates name and e-mail and refreshes the cached profile.
func (s *AuthService) EditProfile(ctx context.Context, upd domain.ProfileUpdate) (domain.User, error) {
	if err := upd.Validate(); err != nil {
		return domain.User{}, err
	}
	token, err := s.session.Token(ctx)
	if err != nil {
		return domain.User{}, err
	}

	var out dto.ProfileResponse
	req := dto.EditProfileRequest{Name: strings.TrimSpace(upd.Name), Email: strings.TrimSpace(upd.Email)}
	if err := s.gw.PostAuthenticated(ctx, pathEditProfile, req, token, &out); err != nil {
		return domain.User{}, err
	}

	user, _, err := s.session.Profile(ctx)
	if err != nil {
		return domain.User{}, err
	}
	if out.User != nil {
		user = mapper.User(out.User)
	} else {
		user.Name, user.Email = req.Name, req.Email
	}
	if err := s.session.SetProfile(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// CurrentUser returns the profile cached at login.
func (s *AuthService) CurrentUser(ctx context.Context) (domain.User, error) {
	if _, err := s.session.Token(ctx); err != nil {
		return domain.User{}, err
	}
	user, _, err := s.session.Profile(ctx)
	return user, err
}

// ForgotPassword asks the server to e-mail a reset.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", apperrors.NewValidationError("email", "Please enter your email.")
	}

	var out dto.MessageResponse
	if err := s.gw.PostAuthenticated(ctx, pathForgotPassword, dto.ForgotPasswordRequest{Email: email}, "", &out); err != nil {
		return "", err
	}
	if out.Message == "" {
		out.Message = "If the account exists, a reset e-mail has been sent."
	}
	return out.Message, nil
}

// Logout tells the server to blacklist the refresh token, then clears the
// local session whether or not that call succeeded.
func (s *AuthService) Logout(ctx context.Context) error {
	if token, err := s.session.Token(ctx); err == nil {
		refresh, _ := s.session.RefreshToken(ctx)
		if err := s.gw.PostAuthenticated(ctx, pathLogout, dto.LogoutRequest{Refresh: refresh}, token, nil); err != nil {
			s.logger.Warn("server logout failed", zap.String("kind", string(apperrors.KindOf(err))), zap.Error(err))
		}
	}

	if err := s.session.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
