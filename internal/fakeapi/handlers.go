package fakeapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/citycare/internal/api/dto"
	"github.com/spec-kit/citycare/internal/domain"
)

// Handlers serves the CityCare REST contract from a Store.
type Handlers struct {
	store      *Store
	tokens     *TokenManager
	events     Dispatcher
	bcryptCost int
	logger     *zap.Logger
}

// NewHandlers constructs the handler set.
func NewHandlers(store *Store, tokens *TokenManager, events Dispatcher, bcryptCost int, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{store: store, tokens: tokens, events: events, bcryptCost: bcryptCost, logger: logger}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"is_admin"`
}

type editProfileRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func badRequest(msg string) error { return fiber.NewError(http.StatusBadRequest, msg) }

func parseBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return badRequest("Invalid request body")
	}
	return nil
}

// Register handles POST /api/auth/register/.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return badRequest("Name, email, and password are required")
	}

	hash, err := HashPassword(req.Password, h.bcryptCost)
	if err != nil {
		return err
	}
	user, err := h.store.CreateUser(req.Name, req.Email, hash, req.IsAdmin)
	if errors.Is(err, ErrEmailTaken) {
		return badRequest("Email already exists")
	}
	if err != nil {
		return err
	}

	tokens, err := h.tokens.IssuePair(user.ID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.AuthResponse{
		Message: "User registered successfully",
		User:    userRecord(user, true),
		Tokens:  tokens,
	})
}

// Login handles POST /api/auth/login/.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Email == "" || req.Password == "" {
		return badRequest("Email and password are required")
	}

	user, err := h.store.UserByEmail(req.Email)
	if err != nil || ComparePassword(user.PasswordHash, req.Password) != nil {
		return fiber.NewError(http.StatusUnauthorized, "Invalid credentials")
	}
	tokens, err := h.tokens.IssuePair(user.ID)
	if err != nil {
		return err
	}
	return c.JSON(dto.AuthResponse{
		Message: "Login successful",
		User:    userRecord(user, true),
		Tokens:  tokens,
	})
}

// Logout handles POST /api/auth/logout/ by blacklisting the refresh token.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.tokens.Revoke(req.Refresh); err != nil {
		return badRequest("Invalid token")
	}
	return c.JSON(dto.MessageResponse{Message: "Logged out successfully"})
}

// ForgotPassword handles POST /api/auth/forgot-password/.
func (h *Handlers) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Email == "" {
		return badRequest("Email is required")
	}
	user, err := h.store.UserByEmail(req.Email)
	if err != nil {
		return fiber.NewError(http.StatusNotFound, "User not found")
	}

	password := temporaryPassword()
	hash, err := HashPassword(password, h.bcryptCost)
	if err != nil {
		return err
	}
	if _, err := h.store.UpdateUser(user.ID, UserUpdate{PasswordHash: &hash}); err != nil {
		return err
	}
	h.events.Publish(c.UserContext(), Event{
		Type:    EventPasswordReset,
		UserID:  user.ID,
		Payload: PasswordResetPayload{Email: user.Email, TemporaryPassword: password},
	})
	return c.JSON(dto.MessageResponse{Message: "New password sent to your email"})
}

// EditProfile handles POST and PUT /api/auth/edit-profile/. Absent fields
// are left unchanged.
func (h *Handlers) EditProfile(c *fiber.Ctx) error {
	caller, _ := PrincipalFromContext(c)

	var req editProfileRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	upd := UserUpdate{Name: req.Name, Email: req.Email}
	if req.Password != nil {
		hash, err := HashPassword(*req.Password, h.bcryptCost)
		if err != nil {
			return err
		}
		upd.PasswordHash = &hash
	}

	user, err := h.store.UpdateUser(caller.ID, upd)
	if errors.Is(err, ErrEmailTaken) {
		return badRequest("Email already exists")
	}
	if err != nil {
		return err
	}
	return c.JSON(dto.ProfileResponse{Message: "Profile updated successfully", User: userRecord(user, true)})
}

// ReportIssue handles POST /api/issues/report/.
func (h *Handlers) ReportIssue(c *fiber.Ctx) error {
	caller, _ := PrincipalFromContext(c)

	var req dto.ReportIssueRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Problem == "" || req.ProblemType == "" || req.Location == "" || req.Description == "" {
		return badRequest("All fields are required")
	}

	issue := h.store.CreateIssue(caller.ID, req.Problem, req.ProblemType, req.Location, req.Description)
	h.events.Publish(c.UserContext(), Event{Type: EventIssueReported, IssueID: issue.ID, UserID: caller.ID})

	rec := issueRecord(issue)
	rec.CreatedAt = ""
	return c.Status(http.StatusCreated).JSON(dto.IssueEnvelope{Message: "Issue reported successfully", Issue: &rec})
}

// UserIssues handles GET /api/issues/user/.
func (h *Handlers) UserIssues(c *fiber.Ctx) error {
	caller, _ := PrincipalFromContext(c)
	issues := h.store.Issues(caller.ID, "")

	out := make([]dto.IssueRecord, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issueRecord(issue))
	}
	return c.JSON(dto.IssuesEnvelope{Issues: out})
}

// Notifications handles GET /api/notifications/.
func (h *Handlers) Notifications(c *fiber.Ctx) error {
	caller, _ := PrincipalFromContext(c)
	items := h.store.Notifications(caller.ID)

	out := make([]dto.NotificationRecord, 0, len(items))
	for _, n := range items {
		out = append(out, notificationRecord(n, nil))
	}
	return c.JSON(dto.NotificationsEnvelope{Notifications: out})
}

// SubmitFeedback handles POST /api/feedback/submit/.
func (h *Handlers) SubmitFeedback(c *fiber.Ctx) error {
	caller, _ := PrincipalFromContext(c)

	var req dto.SubmitFeedbackRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.IssueID == "" || req.FeedbackText == "" {
		return badRequest("Issue ID and feedback text are required")
	}
	issueID, err := strconv.ParseInt(req.IssueID.String(), 10, 64)
	if err != nil {
		return fiber.NewError(http.StatusNotFound, "Issue not found")
	}
	if _, err := h.store.Issue(issueID); err != nil {
		return fiber.NewError(http.StatusNotFound, "Issue not found")
	}

	fb := h.store.CreateFeedback(issueID, caller.ID, req.FeedbackText)
	return c.Status(http.StatusCreated).JSON(dto.FeedbackEnvelope{
		Message: "Feedback submitted successfully",
		Feedback: &dto.FeedbackRecord{
			ID:           idOf(fb.ID),
			IssueID:      idOf(fb.IssueID),
			FeedbackText: fb.Text,
			CreatedAt:    isoTime(fb.CreatedAt),
		},
	})
}

// AdminIssues handles GET /api/admin/issues/?status=.
func (h *Handlers) AdminIssues(c *fiber.Ctx) error {
	status := domain.ComplaintStatus(c.Query("status"))
	issues := h.store.Issues(0, status)

	out := make([]dto.IssueRecord, 0, len(issues))
	for _, issue := range issues {
		rec := issueRecord(issue)
		if owner, err := h.store.UserByID(issue.UserID); err == nil {
			rec.User = userRecord(owner, false)
		}
		out = append(out, rec)
	}
	return c.JSON(dto.IssuesEnvelope{Issues: out})
}

// AdminSetStatus handles PUT /api/admin/issues/:id/status/.
func (h *Handlers) AdminSetStatus(c *fiber.Ctx) error {
	caller, _ := PrincipalFromContext(c)

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return fiber.NewError(http.StatusNotFound, detailNotFound)
	}
	var req dto.StatusUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Status == "" {
		return badRequest("Status is required")
	}
	status := domain.ComplaintStatus(req.Status)
	if !status.Valid() {
		return badRequest("Invalid status")
	}

	issue, old, err := h.store.SetIssueStatus(id, status)
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(http.StatusNotFound, "Issue not found")
	}
	if err != nil {
		return err
	}
	h.events.Publish(c.UserContext(), Event{
		Type:    EventIssueStatusChanged,
		IssueID: issue.ID,
		UserID:  caller.ID,
		Payload: StatusChangedPayload{OldStatus: old, NewStatus: status},
	})

	return c.JSON(dto.IssueEnvelope{
		Message: "Issue status updated successfully",
		Issue: &dto.IssueRecord{
			ID:        idOf(issue.ID),
			Status:    string(issue.Status),
			OldStatus: string(old),
		},
	})
}

// AdminFeedback handles GET /api/admin/feedback/.
func (h *Handlers) AdminFeedback(c *fiber.Ctx) error {
	items := h.store.Feedback()

	out := make([]dto.FeedbackRecord, 0, len(items))
	for _, fb := range items {
		rec := dto.FeedbackRecord{
			ID:           idOf(fb.ID),
			FeedbackText: fb.Text,
			CreatedAt:    isoTime(fb.CreatedAt),
		}
		if issue, err := h.store.Issue(fb.IssueID); err == nil {
			rec.Issue = &dto.IssueRecord{
				ID:       idOf(issue.ID),
				Problem:  issue.Problem,
				Location: issue.Location,
				Status:   string(issue.Status),
			}
		}
		if author, err := h.store.UserByID(fb.UserID); err == nil {
			rec.User = userRecord(author, false)
		}
		out = append(out, rec)
	}
	return c.JSON(dto.FeedbackListEnvelope{Feedback: out})
}

// AdminNotifications handles GET /api/admin/notifications/.
func (h *Handlers) AdminNotifications(c *fiber.Ctx) error {
	items := h.store.Notifications(0)

	out := make([]dto.NotificationRecord, 0, len(items))
	for _, n := range items {
		var target *User
		if n.TargetUserID != nil {
			if u, err := h.store.UserByID(*n.TargetUserID); err == nil {
				target = &u
			}
		}
		out = append(out, notificationRecord(n, target))
	}
	return c.JSON(dto.NotificationsEnvelope{Notifications: out})
}

// SendNotification handles POST /api/admin/notifications/send/.
func (h *Handlers) SendNotification(c *fiber.Ctx) error {
	var req dto.SendNotificationRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Message) == "" {
		return badRequest("Title and message are required")
	}

	var target *User
	if req.TargetUserID != nil && *req.TargetUserID != "" {
		id, err := strconv.ParseInt(req.TargetUserID.String(), 10, 64)
		if err != nil {
			return fiber.NewError(http.StatusNotFound, "Target user not found")
		}
		u, err := h.store.UserByID(id)
		if err != nil {
			return fiber.NewError(http.StatusNotFound, "Target user not found")
		}
		target = &u
	}

	var targetID *int64
	if target != nil {
		targetID = &target.ID
	}
	n := h.store.CreateNotification(req.Title, req.Message, targetID)
	rec := notificationRecord(n, target)
	return c.Status(http.StatusCreated).JSON(dto.NotificationEnvelope{Message: "Notification sent successfully", Notification: &rec})
}

func idOf(id int64) dto.ID {
	return dto.ID(strconv.FormatInt(id, 10))
}

// isoTime matches the server's microsecond ISO-8601 timestamps.
func isoTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000-07:00")
}

func userRecord(u User, withAdmin bool) *dto.UserRecord {
	rec := &dto.UserRecord{ID: idOf(u.ID), Name: u.Name, Email: u.Email}
	if withAdmin {
		rec.IsAdmin = u.IsAdmin
	}
	return rec
}

func issueRecord(issue Issue) dto.IssueRecord {
	return dto.IssueRecord{
		ID:          idOf(issue.ID),
		Problem:     issue.Problem,
		ProblemType: issue.ProblemType,
		Location:    issue.Location,
		Description: issue.Description,
		Status:      string(issue.Status),
		Date:        isoTime(issue.Date),
		CreatedAt:   isoTime(issue.CreatedAt),
	}
}

func notificationRecord(n Notification, target *User) dto.NotificationRecord {
	rec := dto.NotificationRecord{
		ID:        idOf(n.ID),
		Title:     n.Title,
		Message:   n.Message,
		IsGlobal:  n.IsGlobal(),
		CreatedAt: isoTime(n.CreatedAt),
	}
	if target != nil {
		rec.TargetUser = userRecord(*target, false)
	}
	return rec
}
