package domain

import (
	"strconv"
	"strings"

	apperrors "github.com/spec-kit/citycare/pkg/util"
)

// ComplaintStatus enumerates lifecycle tags owned by the server.
type ComplaintStatus string

const (
	StatusPending    ComplaintStatus = "PENDING"
	StatusInProgress ComplaintStatus = "IN_PROGRESS"
	StatusResolved   ComplaintStatus = "RESOLVED"
	StatusReport     ComplaintStatus = "REPORT"
)

// Statuses lists every status in display order.
var Statuses = []ComplaintStatus{StatusPending, StatusInProgress, StatusResolved, StatusReport}

// Valid reports whether s is one of the known statuses.
func (s ComplaintStatus) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseStatus accepts a status case-insensitively, with "-" or " " for "_".
func ParseStatus(raw string) (ComplaintStatus, error) {
	norm := strings.ToUpper(strings.TrimSpace(raw))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	s := ComplaintStatus(norm)
	if !s.Valid() {
		return "", apperrors.NewValidationError("status", "Invalid status "+strconv.Quote(raw)+".")
	}
	return s, nil
}

// Category is the kind of municipal problem being reported.
type Category string

const (
	CategoryGarbage     Category = "Garbage"
	CategoryRoad        Category = "Road"
	CategoryStreetlight Category = "Streetlight"
	CategoryWater       Category = "Water"
	CategorySewage      Category = "Sewage"
	CategoryTransport   Category = "Transport"
	CategoryPollution   Category = "Pollution"
	CategoryOther       Category = "Other"
)

// Categories lists the report form choices; the first one is the default.
var Categories = []Category{
	CategoryGarbage,
	CategoryRoad,
	CategoryStreetlight,
	CategoryWater,
	CategorySewage,
	CategoryTransport,
	CategoryPollution,
	CategoryOther,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Complaint is the client-side view of a server issue record.
type Complaint struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Category    Category        `json:"category"`
	Location    string          `json:"location"`
	Description string          `json:"description"`
	Status      ComplaintStatus `json:"status"`
	Date        string          `json:"date"`
	CreatedAt   string          `json:"createdAt"`
}

// ReportInput is what a citizen fills in on the report form.
type ReportInput struct {
	Title       string
	Category    Category
	Location    string
	Description string
}

// Validate enforces the required fields of the report form.
func (in ReportInput) Validate() error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return apperrors.NewValidationError("title", "Please fill all required fields.")
	case strings.TrimSpace(in.Description) == "":
		return apperrors.NewValidationError("description", "Please fill all required fields.")
	case strings.TrimSpace(in.Location) == "":
		return apperrors.NewValidationError("location", "Please fill all required fields.")
	case !in.Category.Valid():
		return apperrors.NewValidationError("category", "Please choose a valid category.")
	}
	return nil
}

// FormatCoordinates renders a GPS fix the way the location field stores it.
func FormatCoordinates(lat, lng float64) string {
	return "Lat: " + strconv.FormatFloat(lat, 'f', -1, 64) + ", Lng: " + strconv.FormatFloat(lng, 'f', -1, 64)
}

// Summary counts complaints per status for dashboards.
type Summary struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Resolved   int `json:"resolved"`
	Reported   int `json:"reported"`
}

// Summarize tallies complaints by status. Unknown statuses only count toward Total.
func Summarize(complaints []Complaint) Summary {
	s := Summary{Total: len(complaints)}
	for _, c := range complaints {
		switch c.Status {
		case StatusPending:
			s.Pending++
		case StatusInProgress:
			s.InProgress++
		case StatusResolved:
			s.Resolved++
		case StatusReport:
			s.Reported++
		}
	}
	return s
}
