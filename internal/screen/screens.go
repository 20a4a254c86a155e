package screen

import (
	"context"
	"sync"

	"github.com/spec-kit/citycare/internal/domain"
)

// ComplaintReader lists the caller's complaints.
type ComplaintReader interface {
	GetComplaints(ctx context.Context) ([]domain.Complaint, error)
}

// ComplaintAdmin lists and triages every complaint.
type ComplaintAdmin interface {
	GetAllComplaints(ctx context.Context, status domain.ComplaintStatus) ([]domain.Complaint, error)
	UpdateComplaintStatus(ctx context.Context, id string, status domain.ComplaintStatus) (domain.Complaint, error)
}

// NotificationReader lists notifications.
type NotificationReader interface {
	UserNotifications(ctx context.Context) ([]domain.Notification, error)
	AdminNotifications(ctx context.Context) ([]domain.Notification, error)
}

// ProfileEditor reads the cached profile and saves edits.
type ProfileEditor interface {
	CurrentUser(ctx context.Context) (domain.User, error)
	EditProfile(ctx context.Context, upd domain.ProfileUpdate) (domain.User, error)
}

// ReportsScreen backs "my reports", the citizen dashboard and tracking.
type ReportsScreen struct {
	*View[[]domain.Complaint]
}

// NewReportsScreen builds the screen.
func NewReportsScreen(svc ComplaintReader) *ReportsScreen {
	return &ReportsScreen{View: NewView[[]domain.Complaint](svc.GetComplaints)}
}

// Summary counts the loaded complaints per status.
func (s *ReportsScreen) Summary() domain.Summary {
	return domain.Summarize(s.Snapshot().Data)
}

// Find returns a loaded complaint by id.
func (s *ReportsScreen) Find(id string) (domain.Complaint, bool) {
	for _, c := range s.Snapshot().Data {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Complaint{}, false
}

// AdminIssuesScreen lists every complaint and updates statuses.
type AdminIssuesScreen struct {
	*View[[]domain.Complaint]
	svc ComplaintAdmin

	mu       sync.Mutex
	filter   domain.ComplaintStatus
	updating string
}

// NewAdminIssuesScreen builds the screen.
func NewAdminIssuesScreen(svc ComplaintAdmin) *AdminIssuesScreen {
	s := &AdminIssuesScreen{svc: svc}
	s.View = NewView[[]domain.Complaint](func(ctx context.Context) ([]domain.Complaint, error) {
		return svc.GetAllComplaints(ctx, s.Filter())
	})
	return s
}

// SetFilter limits the list to one status; "" shows everything. It takes
// effect on the next Load.
func (s *AdminIssuesScreen) SetFilter(status domain.ComplaintStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = status
}

// Filter returns the active status filter.
func (s *AdminIssuesScreen) Filter() domain.ComplaintStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// Updating returns the id whose status change is in flight, if any.
func (s *AdminIssuesScreen) Updating() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updating
}

// UpdateStatus changes one complaint's status and refetches the list.
func (s *AdminIssuesScreen) UpdateStatus(ctx context.Context, id string, status domain.ComplaintStatus) ([]domain.Complaint, error) {
	s.mu.Lock()
	s.updating = id
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.updating = ""
		s.mu.Unlock()
	}()

	return s.Mutate(ctx, func(ctx context.Context) error {
		_, err := s.svc.UpdateComplaintStatus(ctx, id, status)
		return err
	})
}

// NotificationsScreen shows the user's or, for admins, all notifications.
type NotificationsScreen struct {
	*View[[]domain.Notification]
}

// NewNotificationsScreen builds the screen.
func NewNotificationsScreen(svc NotificationReader, admin bool) *NotificationsScreen {
	fetch := svc.UserNotifications
	if admin {
		fetch = svc.AdminNotifications
	}
	return &NotificationsScreen{View: NewView[[]domain.Notification](fetch)}
}

// ProfileScreen shows the cached profile and saves edits.
type ProfileScreen struct {
	*View[domain.User]
	svc ProfileEditor
}

// NewProfileScreen builds the screen.
func NewProfileScreen(svc ProfileEditor) *ProfileScreen {
	return &ProfileScreen{View: NewView[domain.User](svc.CurrentUser), svc: svc}
}

// Save validates and submits upd, then reloads the profile.
func (s *ProfileScreen) Save(ctx context.Context, upd domain.ProfileUpdate) (domain.User, error) {
	return s.Mutate(ctx, func(ctx context.Context) error {
		_, err := s.svc.EditProfile(ctx, upd)
		return err
	})
}
