package fakeapi

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/spec-kit/citycare/internal/domain"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("fakeapi: not found")
	// ErrEmailTaken is returned when an e-mail is already registered.
	ErrEmailTaken = errors.New("fakeapi: email already exists")
)

// User is an account held by the fake.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

// Issue is a reported complaint.
type Issue struct {
	ID          int64
	UserID      int64
	Problem     string
	ProblemType string
	Location    string
	Description string
	Status      domain.ComplaintStatus
	Date        time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Notification is global when TargetUserID is nil.
type Notification struct {
	ID           int64
	Title        string
	Message      string
	TargetUserID *int64
	CreatedAt    time.Time
}

// IsGlobal reports whether the notification targets everyone.
func (n Notification) IsGlobal() bool {
	return n.TargetUserID == nil
}

// Feedback is a comment on an issue.
type Feedback struct {
	ID        int64
	IssueID   int64
	UserID    int64
	Text      string
	CreatedAt time.Time
}

// Store keeps every record in memory. Lists come back newest first and
// records are returned by value.
type Store struct {
	mu            sync.RWMutex
	now           func() time.Time
	lastID        int64
	users         map[int64]*User
	usersByEmail  map[string]int64
	issues        []*Issue
	notifications []*Notification
	feedback      []*Feedback
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		now:          time.Now,
		users:        make(map[int64]*User),
		usersByEmail: make(map[string]int64),
	}
}

func (s *Store) nextID() int64 {
	s.lastID++
	return s.lastID
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser registers an account. E-mails are unique case-insensitively.
func (s *Store) CreateUser(name, email, passwordHash string, isAdmin bool) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := emailKey(email)
	if _, exists := s.usersByEmail[key]; exists {
		return User{}, ErrEmailTaken
	}
	u := &User{
		ID:           s.nextID(),
		Name:         name,
		Email:        strings.TrimSpace(email),
		PasswordHash: passwordHash,
		IsAdmin:      isAdmin,
		CreatedAt:    s.now(),
	}
	s.users[u.ID] = u
	s.usersByEmail[key] = u.ID
	return *u, nil
}

// UserByEmail looks an account up by e-mail.
func (s *Store) UserByEmail(email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usersByEmail[emailKey(email)]
	if !ok {
		return User{}, ErrNotFound
	}
	return *s.users[id], nil
}

// UserByID looks an account up by id.
func (s *Store) UserByID(id int64) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return *u, nil
}

// UserUpdate lists the fields to change; nil means unchanged.
type UserUpdate struct {
	Name         *string
	Email        *string
	PasswordHash *string
}

// UpdateUser applies upd to the account.
func (s *Store) UpdateUser(id int64, upd UserUpdate) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	if upd.Email != nil {
		key := emailKey(*upd.Email)
		if other, exists := s.usersByEmail[key]; exists && other != id {
			return User{}, ErrEmailTaken
		}
		delete(s.usersByEmail, emailKey(u.Email))
		u.Email = strings.TrimSpace(*upd.Email)
		s.usersByEmail[key] = id
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	return *u, nil
}

// CreateIssue stores a new PENDING issue owned by userID.
func (s *Store) CreateIssue(userID int64, problem, problemType, location, description string) Issue {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	issue := &Issue{
		ID:          s.nextID(),
		UserID:      userID,
		Problem:     problem,
		ProblemType: problemType,
		Location:    location,
		Description: description,
		Status:      domain.StatusPending,
		Date:        now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.issues = append(s.issues, issue)
	return *issue
}

// Issues lists issues, optionally filtered by owner (0 for all) and status.
func (s *Store) Issues(userID int64, status domain.ComplaintStatus) []Issue {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Issue, 0, len(s.issues))
	for i := len(s.issues) - 1; i >= 0; i-- {
		issue := s.issues[i]
		if userID != 0 && issue.UserID != userID {
			continue
		}
		if status != "" && issue.Status != status {
			continue
		}
		out = append(out, *issue)
	}
	return out
}

// Issue returns one issue.
func (s *Store) Issue(id int64) (Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, issue := range s.issues {
		if issue.ID == id {
			return *issue, nil
		}
	}
	return Issue{}, ErrNotFound
}

// SetIssueStatus moves an issue to status and returns the previous one.
// There is no version check: the last write wins.
func (s *Store) SetIssueStatus(id int64, status domain.ComplaintStatus) (Issue, domain.ComplaintStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, issue := range s.issues {
		if issue.ID == id {
			old := issue.Status
			issue.Status = status
			issue.UpdatedAt = s.now()
			return *issue, old, nil
		}
	}
	return Issue{}, "", ErrNotFound
}

// CreateNotification stores a notification; a nil target makes it global.
func (s *Store) CreateNotification(title, message string, targetUserID *int64) Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := &Notification{
		ID:        s.nextID(),
		Title:     title,
		Message:   message,
		CreatedAt: s.now(),
	}
	if targetUserID != nil {
		id := *targetUserID
		n.TargetUserID = &id
	}
	s.notifications = append(s.notifications, n)
	return copyNotification(n)
}

// Notifications lists notifications visible to userID (global plus
// personal), or all of them when userID is 0.
func (s *Store) Notifications(userID int64) []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Notification, 0, len(s.notifications))
	for i := len(s.notifications) - 1; i >= 0; i-- {
		n := s.notifications[i]
		if userID != 0 && n.TargetUserID != nil && *n.TargetUserID != userID {
			continue
		}
		out = append(out, copyNotification(n))
	}
	return out
}

func copyNotification(n *Notification) Notification {
	out := *n
	if n.TargetUserID != nil {
		id := *n.TargetUserID
		out.TargetUserID = &id
	}
	return out
}

// CreateFeedback stores feedback on an issue.
func (s *Store) CreateFeedback(issueID, userID int64, text string) Feedback {
	s.mu.Lock()
	defer s.mu.Unlock()

	fb := &Feedback{
		ID:        s.nextID(),
		IssueID:   issueID,
		UserID:    userID,
		Text:      text,
		CreatedAt: s.now(),
	}
	s.feedback = append(s.feedback, fb)
	return *fb
}

// Feedback lists all feedback.
func (s *Store) Feedback() []Feedback {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Feedback, 0, len(s.feedback))
	for i := len(s.feedback) - 1; i >= 0; i-- {
		out = append(out, *s.feedback[i])
	}
	return out
}
