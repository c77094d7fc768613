package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// filterAll leaves a list filter dimension unconstrained.
const filterAll = "all"

// ComplaintService coordinates complaint workflows.
type ComplaintService struct {
	complaints repository.ComplaintRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// ComplaintDependencies bundles collaborators for the complaint service.
type ComplaintDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	Dispatcher    events.Dispatcher
}

// ListFilter carries the raw query values of a listing request.
type ListFilter struct {
	Status   string
	Priority string
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	return &ComplaintService{
		complaints: deps.ComplaintRepo,
		dispatcher: deps.Dispatcher,
		now:        time.Now,
	}
}

// List returns complaints matching the filter, newest first.
func (s *ComplaintService) List(ctx context.Context, actor *auth.Claims, raw ListFilter) ([]domain.Complaint, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	filter, err := parseFilter(raw)
	if err != nil {
		return nil, err
	}

	list, err := s.complaints.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return list, nil
}

// Create stores a complaint authored by the caller, then announces it.
func (s *ComplaintService) Create(ctx context.Context, actor *auth.Claims, fields domain.ComplaintFields) (*domain.Complaint, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}

	complaint, err := domain.NewComplaint(fields, actor.UserID, actor.Email, s.now().UTC())
	if err != nil {
		return nil, toValidationError("invalid complaint", err)
	}

	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintCreated,
		ComplaintID: complaint.ID,
		Actor:       actorOf(actor),
		Payload:     events.ComplaintCreatedPayload{Complaint: *complaint},
	})
	return complaint, nil
}

// UpdateStatus changes a complaint's status. The change event is only
// published when the status actually differs.
func (s *ComplaintService) UpdateStatus(ctx context.Context, actor *auth.Claims, id, rawStatus string) (*domain.Complaint, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	status, err := domain.ParseStatus(rawStatus)
	if err != nil {
		return nil, toValidationError("invalid status", err)
	}

	current, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, id)
	}

	updated, err := s.complaints.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, mapRepoError(err, id)
	}

	if current.Status != updated.Status {
		s.publishEvent(ctx, events.Event{
			Type:        events.EventComplaintStatusChanged,
			ComplaintID: updated.ID,
			Actor:       actorOf(actor),
			Payload: events.ComplaintStatusChangedPayload{
				Complaint: *updated,
				OldStatus: current.Status,
				NewStatus: updated.Status,
			},
		})
	}
	return updated, nil
}

// Delete removes a complaint.
func (s *ComplaintService) Delete(ctx context.Context, actor *auth.Claims, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.complaints.Delete(ctx, id); err != nil {
		return mapRepoError(err, id)
	}
	return nil
}

func (s *ComplaintService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.Timestamp = s.now().UTC()
	_ = s.dispatcher.Publish(ctx, event)
}

func parseFilter(raw ListFilter) (repository.ComplaintFilter, error) {
	var filter repository.ComplaintFilter
	errs := domain.FieldErrors{}

	if v := strings.TrimSpace(raw.Status); v != "" && !strings.EqualFold(v, filterAll) {
		status := domain.ComplaintStatus(v)
		if status.Valid() {
			filter.Status = &status
		} else {
			errs["status"] = "must be all or a known status"
		}
	}
	if v := strings.TrimSpace(raw.Priority); v != "" && !strings.EqualFold(v, filterAll) {
		priority := domain.ComplaintPriority(v)
		if priority.Valid() {
			filter.Priority = &priority
		} else {
			errs["priority"] = "must be all or a known priority"
		}
	}

	if len(errs) > 0 {
		return filter, apperrors.NewValidationError("invalid filter", errs.Details())
	}
	return filter, nil
}

func requireAdmin(actor *auth.Claims) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if !actor.IsAdmin() {
		return apperrors.NewForbidden("admin access required")
	}
	return nil
}

func actorOf(claims *auth.Claims) events.Actor {
	return events.Actor{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}
}

func toValidationError(message string, err error) error {
	var fieldErrs domain.FieldErrors
	if errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError(message, fieldErrs.Details())
	}
	return apperrors.NewValidationError(message, nil)
}

func mapRepoError(err error, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("complaint", map[string]any{"id": id})
	}
	return apperrors.NewInternalError(err)
}
