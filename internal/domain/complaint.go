package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ComplaintCategory enumerates what a complaint is about.
type ComplaintCategory string

const (
	CategoryProduct ComplaintCategory = "Product"
	CategoryService ComplaintCategory = "Service"
	CategorySupport ComplaintCategory = "Support"
)

// ComplaintPriority enumerates triage urgency.
type ComplaintPriority string

const (
	PriorityLow    ComplaintPriority = "Low"
	PriorityMedium ComplaintPriority = "Medium"
	PriorityHigh   ComplaintPriority = "High"
)

// ComplaintStatus enumerates lifecycle states. Any state may move to any other.
type ComplaintStatus string

const (
	StatusPending    ComplaintStatus = "Pending"
	StatusInProgress ComplaintStatus = "In Progress"
	StatusResolved   ComplaintStatus = "Resolved"
)

var (
	categories = []ComplaintCategory{CategoryProduct, CategoryService, CategorySupport}
	priorities = []ComplaintPriority{PriorityLow, PriorityMedium, PriorityHigh}
	statuses   = []ComplaintStatus{StatusPending, StatusInProgress, StatusResolved}
)

func (c ComplaintCategory) Valid() bool { return contains(categories, c) }
func (p ComplaintPriority) Valid() bool { return contains(priorities, p) }
func (s ComplaintStatus) Valid() bool   { return contains(statuses, s) }

// Complaint is the aggregate submitted by a user and triaged by admins.
// Only Status changes after creation.
type Complaint struct {
	ID            string
	Title         string
	Description   string
	Category      ComplaintCategory
	Priority      ComplaintPriority
	Status        ComplaintStatus
	DateSubmitted time.Time
	AuthorUserID  string
	AuthorEmail   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ComplaintFields is the client-controlled part of a complaint.
type ComplaintFields struct {
	Title       string
	Description string
	Category    string
	Priority    string
}

// FieldErrors maps a field name to the reason it was rejected.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, fe[k]))
	}
	return "invalid fields: " + strings.Join(parts, "; ")
}

// Details converts the errors into the map shape used by API error envelopes.
func (fe FieldErrors) Details() map[string]any {
	out := make(map[string]any, len(fe))
	for k, v := range fe {
		out[k] = v
	}
	return out
}

// NewComplaint validates fields and returns a Pending complaint attributed to the author.
// Out-of-enum values are rejected here so no storage backend ever sees them.
func NewComplaint(fields ComplaintFields, authorUserID, authorEmail string, now time.Time) (*Complaint, error) {
	errs := FieldErrors{}

	title := strings.TrimSpace(fields.Title)
	if title == "" {
		errs["title"] = "required"
	}
	description := strings.TrimSpace(fields.Description)
	if description == "" {
		errs["description"] = "required"
	}

	category := ComplaintCategory(strings.TrimSpace(fields.Category))
	switch {
	case category == "":
		errs["category"] = "required"
	case !category.Valid():
		errs["category"] = fmt.Sprintf("must be one of %s", joinValues(categories))
	}

	priority := ComplaintPriority(strings.TrimSpace(fields.Priority))
	switch {
	case priority == "":
		errs["priority"] = "required"
	case !priority.Valid():
		errs["priority"] = fmt.Sprintf("must be one of %s", joinValues(priorities))
	}

	if authorUserID == "" || authorEmail == "" {
		errs["author"] = "required"
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return &Complaint{
		Title:         title,
		Description:   description,
		Category:      category,
		Priority:      priority,
		Status:        StatusPending,
		DateSubmitted: now,
		AuthorUserID:  authorUserID,
		AuthorEmail:   authorEmail,
	}, nil
}

// ParseStatus validates a status supplied by a client.
func ParseStatus(raw string) (ComplaintStatus, error) {
	status := ComplaintStatus(strings.TrimSpace(raw))
	if status == "" {
		return "", FieldErrors{"status": "required"}
	}
	if !status.Valid() {
		return "", FieldErrors{"status": fmt.Sprintf("must be one of %s", joinValues(statuses))}
	}
	return status, nil
}

func contains[T comparable](values []T, v T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
