package dto

// IssueRecord is the server's shape of a complaint. Title and Category are
// only present in some status-update responses.
type IssueRecord struct {
	ID          ID          `json:"id"`
	Problem     string      `json:"problem,omitempty"`
	ProblemType string      `json:"problem_type,omitempty"`
	Location    string      `json:"location,omitempty"`
	Description string      `json:"description,omitempty"`
	Status      string      `json:"status,omitempty"`
	OldStatus   string      `json:"old_status,omitempty"`
	Date        string      `json:"date,omitempty"`
	CreatedAt   string      `json:"created_at,omitempty"`
	Title       string      `json:"title,omitempty"`
	Category    string      `json:"category,omitempty"`
	User        *UserRecord `json:"user,omitempty"`
}

// IssuesEnvelope wraps list responses.
type IssuesEnvelope struct {
	Issues []IssueRecord `json:"issues"`
}

// IssueEnvelope wraps single-issue responses.
type IssueEnvelope struct {
	Message string       `json:"message,omitempty"`
	Issue   *IssueRecord `json:"issue"`
}

// ReportIssueRequest is the body of POST issues/report/.
type ReportIssueRequest struct {
	Problem     string `json:"problem"`
	ProblemType string `json:"problem_type"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// StatusUpdateRequest is the body of PUT admin/issues/{id}/status/.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// SubmitFeedbackRequest is the body of POST feedback/submit/.
type SubmitFeedbackRequest struct {
	IssueID      ID     `json:"issue_id"`
	FeedbackText string `json:"feedback_text"`
}

// FeedbackRecord is the server's shape of a feedback entry.
type FeedbackRecord struct {
	ID           ID           `json:"id"`
	IssueID      ID           `json:"issue_id,omitempty"`
	FeedbackText string       `json:"feedback_text"`
	CreatedAt    string       `json:"created_at"`
	Issue        *IssueRecord `json:"issue,omitempty"`
	User         *UserRecord  `json:"user,omitempty"`
}

// FeedbackEnvelope wraps POST feedback/submit/ responses.
type FeedbackEnvelope struct {
	Message  string          `json:"message,omitempty"`
	Feedback *FeedbackRecord `json:"feedback"`
}

// FeedbackListEnvelope wraps GET admin/feedback/ responses.
type FeedbackListEnvelope struct {
	Feedback []FeedbackRecord `json:"feedback"`
}
