package domain

// UserRef is the short user summary embedded in admin listings.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Notification is a message shown on the notifications screen.
type Notification struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Message    string   `json:"message"`
	IsGlobal   bool     `json:"is_global"`
	CreatedAt  string   `json:"created_at"`
	TargetUser *UserRef `json:"target_user,omitempty"`
}

// IssueRef is the short issue summary embedded in admin feedback listings.
type IssueRef struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Location string          `json:"location"`
	Status   ComplaintStatus `json:"status"`
}

// Feedback is a citizen's comment on one of their complaints.
type Feedback struct {
	ID        string    `json:"id"`
	IssueID   string    `json:"issue_id"`
	Text      string    `json:"feedback_text"`
	CreatedAt string    `json:"created_at"`
	Issue     *IssueRef `json:"issue,omitempty"`
	User      *UserRef  `json:"user,omitempty"`
}

// Broadcast is an administrator notification to everyone or one user.
type Broadcast struct {
	Title        string
	Message      string
	TargetUserID string
}
