package service

import (
	"context"
	"net/url"
	"strings"

	"github.com/spec-kit/citycare/internal/api/dto"
	"github.com/spec-kit/citycare/internal/domain"
	"github.com/spec-kit/citycare/internal/mapper"
	apperrors "github.com/spec-kit/citycare/pkg/util"
)

// ComplaintService reports, lists and triages complaints.
type ComplaintService struct {
	gw     Gateway
	tokens TokenSource
}

// NewComplaintService builds the service.
func NewComplaintService(gw Gateway, tokens TokenSource) *ComplaintService {
	return &ComplaintService{gw: gw, tokens: tokens}
}

// AddComplaint validates the form and submits it. Invalid input never
// reaches the gateway.
func (s *ComplaintService) AddComplaint(ctx context.Context, in domain.ReportInput) (domain.Complaint, error) {
	if err := in.Validate(); err != nil {
		return domain.Complaint{}, err
	}
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return domain.Complaint{}, err
	}

	var env dto.IssueEnvelope
	if err := s.gw.PostAuthenticated(ctx, pathReportIssue, mapper.ReportRequest(in), token, &env); err != nil {
		return domain.Complaint{}, err
	}
	if env.Issue == nil {
		return domain.Complaint{
			Title:       in.Title,
			Category:    in.Category,
			Location:    in.Location,
			Description: in.Description,
			Status:      domain.StatusPending,
		}, nil
	}
	return mapper.Complaint(*env.Issue), nil
}

// GetComplaints lists the caller's own complaints.
func (s *ComplaintService) GetComplaints(ctx context.Context) ([]domain.Complaint, error) {
	return s.list(ctx, pathUserIssues)
}

// GetComplaintByID finds one of the caller's complaints. There is no
// single-issue endpoint, so it searches the list.
func (s *ComplaintService) GetComplaintByID(ctx context.Context, id string) (domain.Complaint, bool, error) {
	all, err := s.GetComplaints(ctx)
	if err != nil {
		return domain.Complaint{}, false, err
	}
	for _, c := range all {
		if c.ID == id {
			return c, true, nil
		}
	}
	return domain.Complaint{}, false, nil
}

// GetAllComplaints lists every complaint (admin). An empty status means no filter.
func (s *ComplaintService) GetAllComplaints(ctx context.Context, status domain.ComplaintStatus) ([]domain.Complaint, error) {
	path := pathAdminIssues
	if status != "" {
		if !status.Valid() {
			return nil, apperrors.NewValidationError("status", "Invalid status \""+string(status)+"\".")
		}
		path += "?" + url.Values{"status": {string(status)}}.Encode()
	}
	return s.list(ctx, path)
}

// UpdateComplaintStatus sets a complaint's status (admin). Concurrent
// updates are last-write-wins on the server.
func (s *ComplaintService) UpdateComplaintStatus(ctx context.Context, id string, status domain.ComplaintStatus) (domain.Complaint, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Complaint{}, apperrors.NewValidationError("id", "Missing complaint id.")
	}
	if !status.Valid() {
		return domain.Complaint{}, apperrors.NewValidationError("status", "Invalid status \""+string(status)+"\".")
	}
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return domain.Complaint{}, err
	}

	rec, err := s.gw.PutStatus(ctx, id, status, token)
	if err != nil {
		return domain.Complaint{}, err
	}
	updated := mapper.UpdatedComplaint(*rec)
	if updated.Status == "" {
		updated.Status = status
	}
	return updated, nil
}

// SubmitFeedback attaches a comment to one of the caller's complaints.
func (s *ComplaintService) SubmitFeedback(ctx context.Context, issueID, text string) (domain.Feedback, error) {
	if strings.TrimSpace(issueID) == "" {
		return domain.Feedback{}, apperrors.NewValidationError("issue_id", "Missing complaint id.")
	}
	if strings.TrimSpace(text) == "" {
		return domain.Feedback{}, apperrors.NewValidationError("feedback_text", "Please enter your feedback.")
	}
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return domain.Feedback{}, err
	}

	var env dto.FeedbackEnvelope
	req := dto.SubmitFeedbackRequest{IssueID: dto.ID(issueID), FeedbackText: strings.TrimSpace(text)}
	if err := s.gw.PostAuthenticated(ctx, pathSubmitFeedback, req, token, &env); err != nil {
		return domain.Feedback{}, err
	}
	if env.Feedback == nil {
		return domain.Feedback{IssueID: issueID, Text: req.FeedbackText}, nil
	}
	fb := mapper.Feedback(*env.Feedback)
	if fb.IssueID == "" {
		fb.IssueID = issueID
	}
	return fb, nil
}

// ListFeedback lists all feedback (admin).
func (s *ComplaintService) ListFeedback(ctx context.Context) ([]domain.Feedback, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	var env dto.FeedbackListEnvelope
	if err := s.gw.GetAuthenticated(ctx, pathAdminFeedback, token, &env); err != nil {
		return nil, err
	}
	return mapper.FeedbackList(env.Feedback), nil
}

// Summary counts the caller's complaints per status.
func (s *ComplaintService) Summary(ctx context.Context) (domain.Summary, error) {
	all, err := s.GetComplaints(ctx)
	if err != nil {
		return domain.Summary{}, err
	}
	return domain.Summarize(all), nil
}

func (s *ComplaintService) list(ctx context.Context, path string) ([]domain.Complaint, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	var env dto.IssuesEnvelope
	if err := s.gw.GetAuthenticated(ctx, path, token, &env); err != nil {
		return nil, err
	}
	return mapper.Complaints(env.Issues), nil
}
