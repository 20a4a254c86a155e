package fakeapi

import (
	"errors"
	"strconv"
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/citycare/internal/api/dto"
)

// Token types carried in the token_type claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var errRevoked = errors.New("token has been blacklisted")

// Claims describes the JWT payload, shaped like the real server's tokens.
type Claims struct {
	UserID    int64  `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates HS256 access/refresh pairs and keeps a
// blacklist of revoked refresh tokens.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration

	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, accessTTLMinutes, refreshTTLMinutes int) *TokenManager {
	if accessTTLMinutes <= 0 {
		accessTTLMinutes = 60
	}
	if refreshTTLMinutes <= 0 {
		refreshTTLMinutes = 60 * 24
	}
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  time.Duration(accessTTLMinutes) * time.Minute,
		refreshTTL: time.Duration(refreshTTLMinutes) * time.Minute,
		revoked:    make(map[string]time.Time),
	}
}

// IssuePair signs a fresh access and refresh token for userID.
func (tm *TokenManager) IssuePair(userID int64) (dto.TokenPair, error) {
	access, err := tm.sign(userID, TokenTypeAccess, tm.accessTTL)
	if err != nil {
		return dto.TokenPair{}, err
	}
	refresh, err := tm.sign(userID, TokenTypeRefresh, tm.refreshTTL)
	if err != nil {
		return dto.TokenPair{}, err
	}
	return dto.TokenPair{Access: access, Refresh: refresh}, nil
}

func (tm *TokenManager) sign(userID int64, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
}

// Parse validates tokenStr and checks it is of tokenType.
func (tm *TokenManager) Parse(tokenStr, tokenType string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.TokenType != tokenType {
		return nil, errors.New("wrong token type")
	}
	if tokenType == TokenTypeRefresh && tm.isRevoked(claims.ID) {
		return nil, errRevoked
	}
	return claims, nil
}

// Revoke blacklists a refresh token.
func (tm *TokenManager) Revoke(refresh string) error {
	claims, err := tm.Parse(refresh, TokenTypeRefresh)
	if err != nil {
		return err
	}
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.revoked[claims.ID] = claims.ExpiresAt.Time
	return nil
}

func (tm *TokenManager) isRevoked(jti string) bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	_, ok := tm.revoked[jti]
	return ok
}
