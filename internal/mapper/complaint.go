// Package mapper translates between the server's issue records and the
// client's Complaint. It only renames fields: no validation, no defaults.
package mapper

import (
	"github.com/spec-kit/citycare/internal/api/dto"
	"github.com/spec-kit/citycare/internal/domain"
)

// Complaint maps a server record: problem→title, problem_type→category,
// created_at→createdAt, id stringified, everything else copied.
func Complaint(raw dto.IssueRecord) domain.Complaint {
	return domain.Complaint{
		ID:          raw.ID.String(),
		Title:       raw.Problem,
		Category:    domain.Category(raw.ProblemType),
		Location:    raw.Location,
		Description: raw.Description,
		Status:      domain.ComplaintStatus(raw.Status),
		Date:        raw.Date,
		CreatedAt:   raw.CreatedAt,
	}
}

// Complaints maps a list. A nil list maps to an empty, non-nil slice.
func Complaints(raw []dto.IssueRecord) []domain.Complaint {
	out := make([]domain.Complaint, 0, len(raw))
	for _, r := range raw {
		out = append(out, Complaint(r))
	}
	return out
}

// Record is the inverse of Complaint.
func Record(c domain.Complaint) dto.IssueRecord {
	return dto.IssueRecord{
		ID:          dto.ID(c.ID),
		Problem:     c.Title,
		ProblemType: string(c.Category),
		Location:    c.Location,
		Description: c.Description,
		Status:      string(c.Status),
		Date:        c.Date,
		CreatedAt:   c.CreatedAt,
	}
}

// UpdatedComplaint maps the record returned by a status update. Those
// responses may carry title/category instead of problem/problem_type.
func UpdatedComplaint(raw dto.IssueRecord) domain.Complaint {
	if raw.Problem == "" {
		raw.Problem = raw.Title
	}
	if raw.ProblemType == "" {
		raw.ProblemType = raw.Category
	}
	return Complaint(raw)
}

// ReportRequest builds the server body for a new complaint.
func ReportRequest(in domain.ReportInput) dto.ReportIssueRequest {
	return dto.ReportIssueRequest{
		Problem:     in.Title,
		ProblemType: string(in.Category),
		Location:    in.Location,
		Description: in.Description,
	}
}

// User maps the server's user summary.
func User(raw *dto.UserRecord) domain.User {
	if raw == nil {
		return domain.User{}
	}
	return domain.User{ID: raw.ID.String(), Name: raw.Name, Email: raw.Email, IsAdmin: raw.IsAdmin}
}

func userRef(raw *dto.UserRecord) *domain.UserRef {
	if raw == nil {
		return nil
	}
	return &domain.UserRef{ID: raw.ID.String(), Name: raw.Name, Email: raw.Email}
}

// Notification maps a notification record.
func Notification(raw dto.NotificationRecord) domain.Notification {
	return domain.Notification{
		ID:         raw.ID.String(),
		Title:      raw.Title,
		Message:    raw.Message,
		IsGlobal:   raw.IsGlobal,
		CreatedAt:  raw.CreatedAt,
		TargetUser: userRef(raw.TargetUser),
	}
}

// Notifications maps a list. A nil list maps to an empty, non-nil slice.
func Notifications(raw []dto.NotificationRecord) []domain.Notification {
	out := make([]domain.Notification, 0, len(raw))
	for _, r := range raw {
		out = append(out, Notification(r))
	}
	return out
}

// Feedback maps a feedback record. The issue id comes from the embedded
// issue when the flat field is absent.
func Feedback(raw dto.FeedbackRecord) domain.Feedback {
	fb := domain.Feedback{
		ID:        raw.ID.String(),
		IssueID:   raw.IssueID.String(),
		Text:      raw.FeedbackText,
		CreatedAt: raw.CreatedAt,
		User:      userRef(raw.User),
	}
	if raw.Issue != nil {
		fb.Issue = &domain.IssueRef{
			ID:       raw.Issue.ID.String(),
			Title:    raw.Issue.Problem,
			Location: raw.Issue.Location,
			Status:   domain.ComplaintStatus(raw.Issue.Status),
		}
		if fb.IssueID == "" {
			fb.IssueID = fb.Issue.ID
		}
	}
	return fb
}

// FeedbackList maps a list. A nil list maps to an empty, non-nil slice.
func FeedbackList(raw []dto.FeedbackRecord) []domain.Feedback {
	out := make([]domain.Feedback, 0, len(raw))
	for _, r := range raw {
		out = append(out, Feedback(r))
	}
	return out
}
