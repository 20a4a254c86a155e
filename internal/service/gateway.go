package service

import (
	"context"

	"github.com/spec-kit/citycare/internal/api/dto"
	"github.com/spec-kit/citycare/internal/domain"
)

// Gateway is the subset of gateway.Client the services call.
type Gateway interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	GetAuthenticated(ctx context.Context, path, token string, out any) error
	PostAuthenticated(ctx context.Context, path string, body any, token string, out any) error
	PutStatus(ctx context.Context, id string, status domain.ComplaintStatus, token string) (*dto.IssueRecord, error)
}

// TokenSource yields the bearer token for authenticated calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// API paths relative to the gateway base URL.
const (
	pathRegister          = "auth/register/"
	pathLogout            = "auth/logout/"
	pathEditProfile       = "auth/edit-profile/"
	pathForgotPassword    = "auth/forgot-password/"
	pathUserIssues        = "issues/user/"
	pathReportIssue       = "issues/report/"
	pathAdminIssues       = "admin/issues/"
	pathNotifications     = "notifications/"
	pathAdminNotification = "admin/notifications/"
	pathSendNotification  = "admin/notifications/send/"
	pathSubmitFeedback    = "feedback/submit/"
	pathAdminFeedback     = "admin/feedback/"
)
