package dto

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// CreateComplaintRequest payload.
type CreateComplaintRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
}

// UpdateComplaintStatusRequest payload.
type UpdateComplaintStatusRequest struct {
	Status string `json:"status"`
}

// ComplaintResponse is the JSON shape of a complaint.
type ComplaintResponse struct {
	ID            string                   `json:"id"`
	Title         string                   `json:"title"`
	Description   string                   `json:"description"`
	Category      domain.ComplaintCategory `json:"category"`
	Priority      domain.ComplaintPriority `json:"priority"`
	Status        domain.ComplaintStatus   `json:"status"`
	DateSubmitted time.Time                `json:"dateSubmitted"`
	UserID        string                   `json:"userId"`
	UserEmail     string                   `json:"userEmail"`
	CreatedAt     time.Time                `json:"createdAt"`
	UpdatedAt     time.Time                `json:"updatedAt"`
}

// Fields converts the request into domain input.
func (r CreateComplaintRequest) Fields() domain.ComplaintFields {
	return domain.ComplaintFields{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Priority:    r.Priority,
	}
}

// NewComplaintResponse maps a domain complaint.
func NewComplaintResponse(c *domain.Complaint) ComplaintResponse {
	return ComplaintResponse{
		ID:            c.ID,
		Title:         c.Title,
		Description:   c.Description,
		Category:      c.Category,
		Priority:      c.Priority,
		Status:        c.Status,
		DateSubmitted: c.DateSubmitted,
		UserID:        c.AuthorUserID,
		UserEmail:     c.AuthorEmail,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// NewComplaintList maps a slice, never returning nil.
func NewComplaintList(list []domain.Complaint) []ComplaintResponse {
	items := make([]ComplaintResponse, 0, len(list))
	for i := range list {
		items = append(items, NewComplaintResponse(&list[i]))
	}
	return items
}
