package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/citycare/internal/domain"
	apperrors "github.com/spec-kit/citycare/pkg/util"
)

// ErrNoSession is returned when an authenticated call is attempted without
// a stored access token.
var ErrNoSession error = &apperrors.AuthError{Message: "You are not logged in. Please log in again."}

// Provider is the single session capability handed to services and screens.
type Provider struct {
	store Store
	now   func() time.Time
}

// NewProvider wraps store.
func NewProvider(store Store) *Provider {
	return &Provider{store: store, now: time.Now}
}

// Store exposes the underlying store.
func (p *Provider) Store() Store {
	return p.store
}

// Token returns the access token or ErrNoSession.
func (p *Provider) Token(ctx context.Context) (string, error) {
	tok, ok, err := p.store.Get(ctx, KeyAccess)
	if err != nil {
		return "", fmt.Errorf("read access token: %w", err)
	}
	if !ok || strings.TrimSpace(tok) == "" {
		return "", ErrNoSession
	}
	return tok, nil
}

// RefreshToken returns the refresh token, or "" when none is stored.
func (p *Provider) RefreshToken(ctx context.Context) (string, error) {
	tok, _, err := p.store.Get(ctx, KeyRefresh)
	if err != nil {
		return "", fmt.Errorf("read refresh token: %w", err)
	}
	return tok, nil
}

// SetTokens stores the pair. An empty refresh token removes any stale one.
func (p *Provider) SetTokens(ctx context.Context, tokens domain.Tokens) error {
	if err := p.store.Set(ctx, KeyAccess, tokens.Access); err != nil {
		return fmt.Errorf("store access token: %w", err)
	}
	if tokens.Refresh == "" {
		return p.store.Remove(ctx, KeyRefresh)
	}
	if err := p.store.Set(ctx, KeyRefresh, tokens.Refresh); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

// Clear drops the tokens and the cached profile. Remembered e-mail and
// settings are kept.
func (p *Provider) Clear(ctx context.Context) error {
	for _, key := range []string{KeyAccess, KeyRefresh, KeyProfile} {
		if err := p.store.Remove(ctx, key); err != nil {
			return fmt.Errorf("clear %s: %w", key, err)
		}
	}
	return nil
}

// Remember stores the e-mail for the next login form. Any password left by
// older clients is removed.
func (p *Provider) Remember(ctx context.Context, email string) error {
	if err := p.store.Set(ctx, KeyEmail, email); err != nil {
		return fmt.Errorf("remember email: %w", err)
	}
	return p.store.Remove(ctx, KeyPassword)
}

// Forget removes remembered credentials.
func (p *Provider) Forget(ctx context.Context) error {
	for _, key := range []string{KeyEmail, KeyPassword} {
		if err := p.store.Remove(ctx, key); err != nil {
			return fmt.Errorf("forget %s: %w", key, err)
		}
	}
	return nil
}

// RememberedEmail returns the stored e-mail, if any.
func (p *Provider) RememberedEmail(ctx context.Context) (string, bool, error) {
	email, ok, err := p.store.Get(ctx, KeyEmail)
	if err != nil {
		return "", false, fmt.Errorf("read remembered email: %w", err)
	}
	return email, ok && email != "", nil
}

// Profile returns the cached user profile.
func (p *Provider) Profile(ctx context.Context) (domain.User, bool, error) {
	raw, ok, err := p.store.Get(ctx, KeyProfile)
	if err != nil {
		return domain.User{}, false, fmt.Errorf("read profile: %w", err)
	}
	if !ok || raw == "" {
		return domain.User{}, false, nil
	}
	var u domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return domain.User{}, false, fmt.Errorf("decode profile: %w", err)
	}
	return u, true, nil
}

// SetProfile caches the user profile.
func (p *Provider) SetProfile(ctx context.Context, u domain.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	return p.store.Set(ctx, KeyProfile, string(raw))
}

// NotificationsEnabled reads the notifications flag. It defaults to on.
func (p *Provider) NotificationsEnabled(ctx context.Context) (bool, error) {
	v, ok, err := p.store.Get(ctx, KeyNotifications)
	if err != nil {
		return false, fmt.Errorf("read notifications setting: %w", err)
	}
	if !ok {
		return true, nil
	}
	return v != "0", nil
}

// SetNotificationsEnabled stores the flag as "1" or "0".
func (p *Provider) SetNotificationsEnabled(ctx context.Context, enabled bool) error {
	v := "0"
	if enabled {
		v = "1"
	}
	return p.store.Set(ctx, KeyNotifications, v)
}

// Info describes the stored access token as far as the client can tell
// without the signing key.
type Info struct {
	Subject   string    `json:"subject,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	Expired   bool      `json:"expired"`
	Opaque    bool      `json:"opaque"`
}

// Info decodes the access token's claims without verifying the signature.
// Tokens that are not JWTs are reported as opaque.
func (p *Provider) Info(ctx context.Context) (Info, error) {
	tok, err := p.Token(ctx)
	if err != nil {
		return Info{}, err
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return Info{Opaque: true}, nil
	}

	var info Info
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		info.Subject = sub
	} else if uid, ok := claims["user_id"]; ok {
		info.Subject = fmt.Sprint(uid)
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
		info.Expired = !p.now().Before(exp.Time)
	}
	return info, nil
}
