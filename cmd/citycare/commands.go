package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spec-kit/citycare/internal/domain"
	"github.com/spec-kit/citycare/internal/screen"
	apperrors "github.com/spec-kit/citycare/pkg/util"
)

var errUsage = errors.New("usage")

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errUsage
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}

// emit prints v as JSON in -json mode, otherwise calls table.
func (a *app) emit(v any, table func(w *tabwriter.Writer)) error {
	if a.json {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	table(w)
	return w.Flush()
}

func (a *app) say(msg string) error {
	return a.emit(map[string]string{"message": msg}, func(w *tabwriter.Writer) {
		fmt.Fprintln(w, msg)
	})
}

func cmdLogin(a *app, ctx context.Context, args []string) error {
	form := screen.NewLoginForm(a.auth, a.provider)
	if err := form.Prefill(ctx); err != nil {
		return err
	}

	fs := newFlags("login")
	fs.StringVar(&form.Email, "email", form.Email, "account e-mail")
	fs.StringVar(&form.Password, "password", "", "account password")
	fs.BoolVar(&form.RememberMe, "remember", form.RememberMe, "remember the e-mail for next time")
	fs.BoolVar(&form.AsAdmin, "admin", false, "open the admin dashboard")
	if err := parse(fs, args); err != nil {
		return err
	}

	res, err := form.Submit(ctx)
	if err != nil {
		return err
	}
	return a.emit(res, func(w *tabwriter.Writer) {
		role := "citizen"
		if res.Admin {
			role = "admin"
		}
		fmt.Fprintf(w, "Logged in as %s <%s> (%s)\n", res.User.Name, res.User.Email, role)
	})
}

func cmdRegister(a *app, ctx context.Context, args []string) error {
	form := screen.NewSignupForm(a.auth)
	fs := newFlags("register")
	fs.StringVar(&form.Name, "name", "", "full name")
	fs.StringVar(&form.Email, "email", "", "e-mail")
	fs.StringVar(&form.Password, "password", "", "password")
	fs.StringVar(&form.ConfirmPassword, "confirm", "", "password confirmation (defaults to -password)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if form.ConfirmPassword == "" {
		form.ConfirmPassword = form.Password
	}

	msg, err := form.Submit(ctx)
	if err != nil {
		return err
	}
	return a.say(msg)
}

func cmdLogout(a *app, ctx context.Context, _ []string) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	return a.say("Logged out.")
}

func cmdWhoami(a *app, ctx context.Context, _ []string) error {
	user, err := a.auth.CurrentUser(ctx)
	if err != nil {
		return err
	}
	info, err := a.provider.Info(ctx)
	if err != nil {
		return err
	}
	out := struct {
		User  domain.User `json:"user"`
		Token any         `json:"token"`
	}{user, info}
	return a.emit(out, func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "Name:\t%s\n", user.Name)
		fmt.Fprintf(w, "Email:\t%s\n", user.Email)
		fmt.Fprintf(w, "Admin:\t%t\n", user.IsAdmin)
		switch {
		case info.Opaque:
			fmt.Fprintln(w, "Token:\topaque")
		case info.Expired:
			fmt.Fprintf(w, "Token:\texpired at %s\n", info.ExpiresAt.Local().Format("2006-01-02 15:04"))
		case !info.ExpiresAt.IsZero():
			fmt.Fprintf(w, "Token:\tvalid until %s\n", info.ExpiresAt.Local().Format("2006-01-02 15:04"))
		}
	})
}

func cmdForgotPassword(a *app, ctx context.Context, args []string) error {
	form := screen.NewForgotPasswordForm(a.auth)
	fs := newFlags("forgot-password")
	fs.StringVar(&form.Email, "email", "", "account e-mail")
	if err := parse(fs, args); err != nil {
		return err
	}
	msg, err := form.Submit(ctx)
	if err != nil {
		return err
	}
	return a.say(msg)
}

func cmdProfile(a *app, ctx context.Context, args []string) error {
	fs := newFlags("profile")
	name := fs.String("name", "", "new name")
	email := fs.String("email", "", "new e-mail")
	if err := parse(fs, args); err != nil {
		return err
	}

	s := screen.NewProfileScreen(a.auth)
	defer s.Close()
	user, err := s.Load(ctx)
	if err != nil {
		return err
	}
	if *name != "" || *email != "" {
		upd := domain.ProfileUpdate{Name: user.Name, Email: user.Email}
		if *name != "" {
			upd.Name = *name
		}
		if *email != "" {
			upd.Email = *email
		}
		if user, err = s.Save(ctx, upd); err != nil {
			return err
		}
	}
	return a.emit(user, func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "Name:\t%s\nEmail:\t%s\n", user.Name, user.Email)
	})
}

func parseCategory(raw string) (domain.Category, error) {
	for _, c := range domain.Categories {
		if strings.EqualFold(string(c), strings.TrimSpace(raw)) {
			return c, nil
		}
	}
	names := make([]string, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		names = append(names, string(c))
	}
	return "", apperrors.NewValidationError("category", "Choose one of: "+strings.Join(names, ", ")+".")
}

func cmdReport(a *app, ctx context.Context, args []string) error {
	form := screen.NewReportForm(a.complaints)
	fs := newFlags("report")
	fs.StringVar(&form.Title, "title", "", "short title")
	category := fs.String("category", string(form.Category), "problem category")
	fs.StringVar(&form.Location, "location", "", "where the problem is")
	lat := fs.Float64("lat", 0, "latitude of a GPS fix")
	lng := fs.Float64("lng", 0, "longitude of a GPS fix")
	fs.StringVar(&form.Description, "description", "", "details")
	if err := parse(fs, args); err != nil {
		return err
	}

	cat, err := parseCategory(*category)
	if err != nil {
		return err
	}
	form.Category = cat
	if form.Location == "" && (*lat != 0 || *lng != 0) {
		form.UseCoordinates(*lat, *lng)
	}

	created, err := form.Submit(ctx)
	if err != nil {
		return err
	}
	return a.emit(created, func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "Reported #%s %q (%s)\n", created.ID, created.Title, created.Status)
	})
}

func complaintTable(w *tabwriter.Writer, list []domain.Complaint) {
	fmt.Fprintln(w, "ID\tSTATUS\tCATEGORY\tTITLE\tLOCATION")
	for _, c := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Status, c.Category, c.Title, c.Location)
	}
}

func cmdReports(a *app, ctx context.Context, args []string) error {
	fs := newFlags("reports")
	statusFlag := fs.String("status", "", "only show this status")
	if err := parse(fs, args); err != nil {
		return err
	}

	s := screen.NewReportsScreen(a.complaints)
	defer s.Close()
	list, err := s.Load(ctx)
	if err != nil {
		return err
	}
	if *statusFlag != "" {
		status, err := domain.ParseStatus(*statusFlag)
		if err != nil {
			return err
		}
		filtered := list[:0:0]
		for _, c := range list {
			if c.Status == status {
				filtered = append(filtered, c)
			}
		}
		list = filtered
	}

	summary := s.Summary()
	out := struct {
		Summary    domain.Summary     `json:"summary"`
		Complaints []domain.Complaint `json:"complaints"`
	}{summary, list}
	return a.emit(out, func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "Total %d, pending %d, in progress %d, resolved %d, reported %d\n\n",
			summary.Total, summary.Pending, summary.InProgress, summary.Resolved, summary.Reported)
		complaintTable(w, list)
	})
}

func cmdShow(a *app, ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	s := screen.NewReportsScreen(a.complaints)
	defer s.Close()
	if _, err := s.Load(ctx); err != nil {
		return err
	}
	c, ok := s.Find(args[0])
	if !ok {
		return apperrors.NewValidationError("id", "Complaint "+args[0]+" was not found.")
	}
	return a.emit(c, func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "ID:\t%s\nTitle:\t%s\nCategory:\t%s\nStatus:\t%s\nLocation:\t%s\nReported:\t%s\nDescription:\t%s\n",
			c.ID, c.Title, c.Category, c.Status, c.Location, c.Date, c.Description)
	})
}

func cmdFeedback(a *app, ctx context.Context, args []string) error {
	fs := newFlags("feedback")
	issue := fs.String("issue", "", "complaint id")
	text := fs.String("text", "", "feedback text")
	if err := parse(fs, args); err != nil {
		return err
	}
	form := screen.NewFeedbackForm(a.complaints, *issue)
	form.Text = *text
	fb, err := form.Submit(ctx)
	if err != nil {
		return err
	}
	return a.emit(fb, func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "Feedback #%s recorded for complaint %s\n", fb.ID, fb.IssueID)
	})
}

func notificationTable(w *tabwriter.Writer, list []domain.Notification) {
	fmt.Fprintln(w, "DATE\tAUDIENCE\tTITLE\tMESSAGE")
	for _, n := range list {
		audience := "you"
		switch {
		case n.IsGlobal:
			audience = "everyone"
		case n.TargetUser != nil:
			audience = n.TargetUser.Email
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", n.CreatedAt, audience, n.Title, n.Message)
	}
}

func cmdNotifications(a *app, ctx context.Context, _ []string) error {
	enabled, err := a.settings.NotificationsEnabled(ctx)
	if err != nil {
		return err
	}
	s := screen.NewNotificationsScreen(a.notifications, false)
	defer s.Close()
	list, err := s.Load(ctx)
	if err != nil {
		return err
	}
	return a.emit(list, func(w *tabwriter.Writer) {
		if !enabled {
			fmt.Fprintln(w, "(notifications are turned off in settings)")
		}
		notificationTable(w, list)
	})
}

func cmdSettings(a *app, ctx context.Context, args []string) error {
	fs := newFlags("settings")
	mode := fs.String("notifications", "", "on, off or toggle")
	if err := parse(fs, args); err != nil {
		return err
	}

	s := screen.NewSettingsScreen(a.settings)
	defer s.Close()
	enabled, err := s.Load(ctx)
	if err != nil {
		return err
	}
	switch strings.ToLower(*mode) {
	case "":
	case "on":
		enabled, err = s.SetNotifications(ctx, true)
	case "off":
		enabled, err = s.SetNotifications(ctx, false)
	case "toggle":
		enabled, err = s.SetNotifications(ctx, !enabled)
	default:
		return errUsage
	}
	if err != nil {
		return err
	}
	return a.emit(map[string]bool{"notifications": enabled}, func(w *tabwriter.Writer) {
		state := "off"
		if enabled {
			state = "on"
		}
		fmt.Fprintf(w, "Notifications:\t%s\n", state)
	})
}

func cmdAdmin(a *app, ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	rest := args[1:]
	switch args[0] {
	case "issues":
		fs := newFlags("admin issues")
		statusFlag := fs.String("status", "", "only show this status")
		if err := parse(fs, rest); err != nil {
			return err
		}
		s := screen.NewAdminIssuesScreen(a.complaints)
		defer s.Close()
		if *statusFlag != "" {
			status, err := domain.ParseStatus(*statusFlag)
			if err != nil {
				return err
			}
			s.SetFilter(status)
		}
		list, err := s.Load(ctx)
		if err != nil {
			return err
		}
		return a.emit(list, func(w *tabwriter.Writer) { complaintTable(w, list) })

	case "set-status":
		if len(rest) != 2 {
			return errUsage
		}
		status, err := domain.ParseStatus(rest[1])
		if err != nil {
			return err
		}
		updated, err := a.complaints.UpdateComplaintStatus(ctx, rest[0], status)
		if err != nil {
			return err
		}
		return a.emit(updated, func(w *tabwriter.Writer) {
			fmt.Fprintf(w, "Complaint %s is now %s\n", updated.ID, updated.Status)
		})

	case "feedback":
		list, err := a.complaints.ListFeedback(ctx)
		if err != nil {
			return err
		}
		return a.emit(list, func(w *tabwriter.Writer) {
			fmt.Fprintln(w, "DATE\tISSUE\tFROM\tFEEDBACK")
			for _, fb := range list {
				issue, from := fb.IssueID, ""
				if fb.Issue != nil {
					issue = fb.Issue.ID + " " + fb.Issue.Title
				}
				if fb.User != nil {
					from = fb.User.Email
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", fb.CreatedAt, issue, from, fb.Text)
			}
		})

	case "notifications":
		s := screen.NewNotificationsScreen(a.notifications, true)
		defer s.Close()
		list, err := s.Load(ctx)
		if err != nil {
			return err
		}
		return a.emit(list, func(w *tabwriter.Writer) { notificationTable(w, list) })

	case "notify":
		fs := newFlags("admin notify")
		var b domain.Broadcast
		fs.StringVar(&b.Title, "title", "", "notification title")
		fs.StringVar(&b.Message, "message", "", "notification body")
		fs.StringVar(&b.TargetUserID, "user", "", "target user id (empty for everyone)")
		if err := parse(fs, rest); err != nil {
			return err
		}
		n, err := a.notifications.Send(ctx, b)
		if err != nil {
			return err
		}
		return a.emit(n, func(w *tabwriter.Writer) {
			fmt.Fprintf(w, "Sent notification #%s\n", n.ID)
		})
	}
	return errUsage
}
