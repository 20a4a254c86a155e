package fakeapi

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/citycare/internal/observability"
)

const principalKey = "fakeapi_principal"

// Messages mirrored from the real server's authentication layer.
const (
	detailNoCredentials = "Authentication credentials were not provided."
	detailInvalidToken  = "Given token not valid for any token type"
	detailForbidden     = "You do not have permission to perform this action."
	detailNotFound      = "Not found."
)

// errorHandler renders errors as {"error": msg}, or {"detail": msg} for
// authentication and permission failures.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := http.StatusInternalServerError
		message := "Internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
			message = fe.Message
		} else {
			logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		}

		key := "error"
		if status == http.StatusUnauthorized || status == http.StatusForbidden || (status == http.StatusNotFound && message == detailNotFound) {
			key = "detail"
		}
		return c.Status(status).JSON(fiber.Map{key: message})
	}
}

// RegisterMiddlewares attaches panic recovery and request logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics) {
	app.Use(recoverMiddleware(logger))
	app.Use(requestLogger(logger, metrics))
}

func recoverMiddleware(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return c.Next()
	}
}

func requestLogger(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(http.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		elapsed := time.Since(start)
		route := c.Path()
		if r := c.Route(); r != nil && r.Path != "/" {
			route = r.Path
		}
		metrics.RecordRequest(route, c.Method(), status, elapsed)

		logger.Debug("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("duration", elapsed))
		return nil
	}
}

// AuthMiddleware validates bearer access tokens and loads the caller.
type AuthMiddleware struct {
	tokens *TokenManager
	store  *Store
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, store *Store) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, store: store}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return fiber.NewError(http.StatusUnauthorized, detailNoCredentials)
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return fiber.NewError(http.StatusUnauthorized, detailInvalidToken)
	}

	claims, err := m.tokens.Parse(strings.TrimSpace(parts[1]), TokenTypeAccess)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, detailInvalidToken)
	}
	user, err := m.store.UserByID(claims.UserID)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, "User not found")
	}

	c.Locals(principalKey, user)
	return c.Next()
}

// RequireAdmin rejects callers without the admin flag.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, detailNoCredentials)
		}
		if !user.IsAdmin {
			return fiber.NewError(http.StatusForbidden, detailForbidden)
		}
		return c.Next()
	}
}

// PrincipalFromContext retrieves the authenticated user.
func PrincipalFromContext(c *fiber.Ctx) (User, bool) {
	user, ok := c.Locals(principalKey).(User)
	return user, ok
}
