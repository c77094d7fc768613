package notify

import (
	"bytes"
	"html/template"
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

const dateLayout = "Jan 2, 2006 15:04 MST"

var emailTemplates = template.Must(template.New("email").Funcs(template.FuncMap{
	"priorityColor": priorityColor,
	"statusColor":   statusColor,
}).Parse(`
{{define "new_complaint"}}<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">New Complaint Submitted</h2>
  <div style="background-color: #f5f5f5; padding: 20px; border-radius: 5px;">
    <p><strong>Title:</strong> {{.Title}}</p>
    <p><strong>Category:</strong> {{.Category}}</p>
    <p><strong>Priority:</strong> <span style="color: {{priorityColor .Priority}};">{{.Priority}}</span></p>
    <p><strong>User Email:</strong> {{.UserEmail}}</p>
    <p><strong>Date Submitted:</strong> {{.DateSubmitted}}</p>
    <p><strong>Description:</strong></p>
    <p style="background-color: white; padding: 15px; border-radius: 3px;">{{.Description}}</p>
  </div>
  <p style="margin-top: 20px; color: #666;">Please log in to the <a href="{{.AdminURL}}">admin dashboard</a> to review and manage this complaint.</p>
</div>{{end}}
{{define "status_update"}}<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">Complaint Status Updated</h2>
  <div style="background-color: #f5f5f5; padding: 20px; border-radius: 5px;">
    <p><strong>Complaint:</strong> {{.Title}}</p>
    <p><strong>Status Change:</strong></p>
    <p style="font-size: 18px;">
      <span style="color: #666;">{{.OldStatus}}</span> &rarr;
      <span style="color: {{statusColor .NewStatus}}; font-weight: bold;">{{.NewStatus}}</span>
    </p>
    <p><strong>Updated Date:</strong> {{.UpdatedDate}}</p>
  </div>
</div>{{end}}
`))

func priorityColor(p domain.ComplaintPriority) template.CSS {
	switch p {
	case domain.PriorityHigh:
		return "#dc2626"
	case domain.PriorityMedium:
		return "#f59e0b"
	case domain.PriorityLow:
		return "#10b981"
	default:
		return "#666"
	}
}

func statusColor(s domain.ComplaintStatus) template.CSS {
	switch s {
	case domain.StatusResolved:
		return "#10b981"
	case domain.StatusInProgress:
		return "#3b82f6"
	case domain.StatusPending:
		return "#f59e0b"
	default:
		return "#666"
	}
}

// NewComplaintEmail renders the admin alert for a freshly submitted complaint.
func NewComplaintEmail(to, baseURL string, c domain.Complaint) (Message, error) {
	data := struct {
		Title         string
		Category      domain.ComplaintCategory
		Priority      domain.ComplaintPriority
		UserEmail     string
		DateSubmitted string
		Description   string
		AdminURL      string
	}{
		Title:         c.Title,
		Category:      c.Category,
		Priority:      c.Priority,
		UserEmail:     c.AuthorEmail,
		DateSubmitted: c.DateSubmitted.Format(dateLayout),
		Description:   c.Description,
		AdminURL:      baseURL + "/admin",
	}
	return render(to, "New Complaint: "+c.Title, "new_complaint", data)
}

// StatusUpdateEmail renders the notice for a status transition.
func StatusUpdateEmail(to string, c domain.Complaint, oldStatus, newStatus domain.ComplaintStatus, updated time.Time) (Message, error) {
	data := struct {
		Title       string
		OldStatus   domain.ComplaintStatus
		NewStatus   domain.ComplaintStatus
		UpdatedDate string
	}{
		Title:       c.Title,
		OldStatus:   oldStatus,
		NewStatus:   newStatus,
		UpdatedDate: updated.Format(dateLayout),
	}
	return render(to, "Complaint Status Updated: "+c.Title, "status_update", data)
}

func render(to, subject, name string, data any) (Message, error) {
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: subject, HTML: buf.String()}, nil
}
