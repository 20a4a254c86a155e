package fakeapi

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/citycare/internal/domain"
)

// Notifier turns issue events into owner notifications and logs the
// e-mails a real deployment would send.
type Notifier struct {
	store  *Store
	logger *zap.Logger
}

// NewNotifier constructs a notifier.
func NewNotifier(store *Store, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{store: store, logger: logger}
}

// RegisterHandlers subscribes to the events the notifier reacts to.
func (n *Notifier) RegisterHandlers(d Dispatcher) {
	d.Subscribe(EventIssueStatusChanged, n.onStatusChanged)
	d.Subscribe(EventIssueReported, n.onReported)
	d.Subscribe(EventPasswordReset, n.onPasswordReset)
}

func (n *Notifier) onStatusChanged(_ context.Context, evt Event) error {
	payload, ok := evt.Payload.(StatusChangedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", evt.Payload)
	}
	if payload.NewStatus != domain.StatusResolved && payload.NewStatus != domain.StatusReport {
		return nil
	}

	issue, err := n.store.Issue(evt.IssueID)
	if err != nil {
		return err
	}
	owner, err := n.store.UserByID(issue.UserID)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("Issue %s: %s", statusTitle(payload.NewStatus), issue.Problem)
	var message string
	if payload.NewStatus == domain.StatusResolved {
		message = fmt.Sprintf("Your reported issue '%s' at %s has been resolved. Thank you for helping make our city better!", issue.Problem, issue.Location)
	} else {
		message = fmt.Sprintf("Your reported issue '%s' at %s has been marked as a report. Please contact us for more information.", issue.Problem, issue.Location)
	}

	n.sendEmail(owner.Email, title, message)
	n.store.CreateNotification(title, message, &owner.ID)
	return nil
}

func (n *Notifier) onReported(_ context.Context, evt Event) error {
	n.logger.Info("issue reported", zap.Int64("issue_id", evt.IssueID), zap.Int64("user_id", evt.UserID))
	return nil
}

func (n *Notifier) onPasswordReset(_ context.Context, evt Event) error {
	payload, ok := evt.Payload.(PasswordResetPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", evt.Payload)
	}
	n.sendEmail(payload.Email, "Password Reset - CityCare",
		"Your new password is: "+payload.TemporaryPassword+"\n\nPlease change it after logging in.")
	return nil
}

// sendEmail stands in for SMTP delivery.
func (n *Notifier) sendEmail(to, subject, body string) {
	n.logger.Info("email stub", zap.String("to", to), zap.String("subject", subject), zap.String("body", body))
}

// statusTitle renders IN_PROGRESS as "In_Progress" and RESOLVED as "Resolved".
func statusTitle(s domain.ComplaintStatus) string {
	parts := strings.Split(strings.ToLower(string(s)), "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, "_")
}
