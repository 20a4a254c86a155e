package service

import (
	"context"
	"strings"

	"github.com/spec-kit/citycare/internal/api/dto"
	"github.com/spec-kit/citycare/internal/domain"
	"github.com/spec-kit/citycare/internal/mapper"
	apperrors "github.com/spec-kit/citycare/pkg/util"
)

// NotificationService reads and sends notifications.
type NotificationService struct {
	gw     Gateway
	tokens TokenSource
}

// NewNotificationService creates the service.
func NewNotificationService(gw Gateway, tokens TokenSource) *NotificationService {
	return &NotificationService{gw: gw, tokens: tokens}
}

// UserNotifications lists notifications addressed to the caller or to everyone.
func (n *NotificationService) UserNotifications(ctx context.Context) ([]domain.Notification, error) {
	return n.list(ctx, pathNotifications)
}

// AdminNotifications lists every notification (admin).
func (n *NotificationService) AdminNotifications(ctx context.Context) ([]domain.Notification, error) {
	return n.list(ctx, pathAdminNotification)
}

// Send broadcasts a notification, or targets one user when TargetUserID is set.
func (n *NotificationService) Send(ctx context.Context, b domain.Broadcast) (domain.Notification, error) {
	if strings.TrimSpace(b.Title) == "" || strings.TrimSpace(b.Message) == "" {
		return domain.Notification{}, apperrors.NewValidationError("", "Please enter a title and message.")
	}
	token, err := n.tokens.Token(ctx)
	if err != nil {
		return domain.Notification{}, err
	}

	req := dto.SendNotificationRequest{Title: strings.TrimSpace(b.Title), Message: strings.TrimSpace(b.Message)}
	if target := strings.TrimSpace(b.TargetUserID); target != "" {
		id := dto.ID(target)
		req.TargetUserID = &id
	}

	var env dto.NotificationEnvelope
	if err := n.gw.PostAuthenticated(ctx, pathSendNotification, req, token, &env); err != nil {
		return domain.Notification{}, err
	}
	if env.Notification == nil {
		return domain.Notification{Title: req.Title, Message: req.Message, IsGlobal: req.TargetUserID == nil}, nil
	}
	return mapper.Notification(*env.Notification), nil
}

func (n *NotificationService) list(ctx context.Context, path string) ([]domain.Notification, error) {
	token, err := n.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	var env dto.NotificationsEnvelope
	if err := n.gw.GetAuthenticated(ctx, path, token, &env); err != nil {
		return nil, err
	}
	return mapper.Notifications(env.Notifications), nil
}
