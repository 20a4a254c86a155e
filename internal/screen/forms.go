package screen

import (
	"context"
	"errors"
	"sync"

	"github.com/spec-kit/citycare/internal/domain"
	"github.com/spec-kit/citycare/internal/service"
)

// Authenticator covers the auth flows behind the login, sign-up and
// forgot-password forms.
type Authenticator interface {
	Login(ctx context.Context, creds domain.Credentials, opts service.LoginOptions) (*service.LoginResult, error)
	Register(ctx context.Context, reg domain.Registration) (string, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
}

// RememberedEmail reads the e-mail saved by remember-me.
type RememberedEmail interface {
	RememberedEmail(ctx context.Context) (string, bool, error)
}

// ComplaintWriter submits complaints and feedback.
type ComplaintWriter interface {
	AddComplaint(ctx context.Context, in domain.ReportInput) (domain.Complaint, error)
	SubmitFeedback(ctx context.Context, issueID, text string) (domain.Feedback, error)
}

// Settings reads and writes local preferences.
type Settings interface {
	NotificationsEnabled(ctx context.Context) (bool, error)
	SetNotificationsEnabled(ctx context.Context, enabled bool) error
}

// submitGuard rejects a second submit while one is in flight and keeps the
// last alert.
type submitGuard struct {
	mu         sync.Mutex
	submitting bool
	alert      string
}

func (g *submitGuard) run(fn func() error) error {
	g.mu.Lock()
	if g.submitting {
		g.mu.Unlock()
		return ErrBusy
	}
	g.submitting = true
	g.alert = ""
	g.mu.Unlock()

	err := fn()

	g.mu.Lock()
	g.submitting = false
	g.alert = Alert(err)
	g.mu.Unlock()
	return err
}

// Submitting reports whether a submit is in flight.
func (g *submitGuard) Submitting() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.submitting
}

// Alert returns the message from the last failed submit.
func (g *submitGuard) Alert() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.alert
}

// LoginForm collects credentials and the remember-me and admin toggles.
type LoginForm struct {
	submitGuard
	auth       Authenticator
	remembered RememberedEmail

	Email      string
	Password   string
	RememberMe bool
	AsAdmin    bool
}

// NewLoginForm builds the form.
func NewLoginForm(auth Authenticator, remembered RememberedEmail) *LoginForm {
	return &LoginForm{auth: auth, remembered: remembered}
}

// Prefill fills the e-mail saved by a previous remember-me login.
func (f *LoginForm) Prefill(ctx context.Context) error {
	if f.remembered == nil {
		return nil
	}
	email, ok, err := f.remembered.RememberedEmail(ctx)
	if err != nil {
		return err
	}
	if ok {
		f.Email = email
		f.RememberMe = true
	}
	return nil
}

// Submit logs in. The password field is cleared whatever the outcome.
func (f *LoginForm) Submit(ctx context.Context) (*service.LoginResult, error) {
	var res *service.LoginResult
	err := f.run(func() error {
		var err error
		res, err = f.auth.Login(ctx, domain.Credentials{Email: f.Email, Password: f.Password}, service.LoginOptions{
			RememberMe: f.RememberMe,
			AsAdmin:    f.AsAdmin,
		})
		return err
	})
	if !errors.Is(err, ErrBusy) {
		f.Password = ""
	}
	return res, err
}

// SignupForm collects a new account.
type SignupForm struct {
	submitGuard
	auth Authenticator

	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// NewSignupForm builds the form.
func NewSignupForm(auth Authenticator) *SignupForm {
	return &SignupForm{auth: auth}
}

// Submit registers the account and returns the server's message.
func (f *SignupForm) Submit(ctx context.Context) (string, error) {
	var msg string
	err := f.run(func() error {
		var err error
		msg, err = f.auth.Register(ctx, domain.Registration{
			Name:            f.Name,
			Email:           f.Email,
			Password:        f.Password,
			ConfirmPassword: f.ConfirmPassword,
		})
		return err
	})
	return msg, err
}

// ForgotPasswordForm requests a password reset.
type ForgotPasswordForm struct {
	submitGuard
	auth Authenticator

	Email string
}

// NewForgotPasswordForm builds the form.
func NewForgotPasswordForm(auth Authenticator) *ForgotPasswordForm {
	return &ForgotPasswordForm{auth: auth}
}

// Submit sends the reset request.
func (f *ForgotPasswordForm) Submit(ctx context.Context) (string, error) {
	var msg string
	err := f.run(func() error {
		var err error
		msg, err = f.auth.ForgotPassword(ctx, f.Email)
		return err
	})
	return msg, err
}

// ReportForm collects a new complaint. Category starts as Garbage.
type ReportForm struct {
	submitGuard
	svc ComplaintWriter

	Title       string
	Category    domain.Category
	Location    string
	Description string
}

// NewReportForm builds an empty form.
func NewReportForm(svc ComplaintWriter) *ReportForm {
	f := &ReportForm{svc: svc}
	f.Reset()
	return f
}

// Reset clears the fields back to their defaults.
func (f *ReportForm) Reset() {
	f.Title, f.Location, f.Description = "", "", ""
	f.Category = domain.Categories[0]
}

// UseCoordinates fills the location from a GPS fix.
func (f *ReportForm) UseCoordinates(lat, lng float64) {
	f.Location = domain.FormatCoordinates(lat, lng)
}

// Submit validates and reports the complaint, resetting the form on success.
func (f *ReportForm) Submit(ctx context.Context) (domain.Complaint, error) {
	var created domain.Complaint
	err := f.run(func() error {
		var err error
		created, err = f.svc.AddComplaint(ctx, domain.ReportInput{
			Title:       f.Title,
			Category:    f.Category,
			Location:    f.Location,
			Description: f.Description,
		})
		return err
	})
	if err == nil {
		f.Reset()
	}
	return created, err
}

// FeedbackForm attaches a comment to one complaint.
type FeedbackForm struct {
	submitGuard
	svc ComplaintWriter

	IssueID string
	Text    string
}

// NewFeedbackForm builds the form for issueID.
func NewFeedbackForm(svc ComplaintWriter, issueID string) *FeedbackForm {
	return &FeedbackForm{svc: svc, IssueID: issueID}
}

// Submit sends the feedback, clearing the text on success.
func (f *FeedbackForm) Submit(ctx context.Context) (domain.Feedback, error) {
	var fb domain.Feedback
	err := f.run(func() error {
		var err error
		fb, err = f.svc.SubmitFeedback(ctx, f.IssueID, f.Text)
		return err
	})
	if err == nil {
		f.Text = ""
	}
	return fb, err
}

// SettingsScreen shows and toggles local preferences.
type SettingsScreen struct {
	*View[bool]
	store Settings
}

// NewSettingsScreen builds the screen; its data is the notifications flag.
func NewSettingsScreen(store Settings) *SettingsScreen {
	return &SettingsScreen{View: NewView[bool](store.NotificationsEnabled), store: store}
}

// SetNotifications persists the flag and reloads it.
func (s *SettingsScreen) SetNotifications(ctx context.Context, enabled bool) (bool, error) {
	return s.Mutate(ctx, func(ctx context.Context) error {
		return s.store.SetNotificationsEnabled(ctx, enabled)
	})
}
