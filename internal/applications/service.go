// Package applications implements the owner-scoped application tracker.
//
// Every Repository method takes the owner id as its first argument after the
// context; there is no way to address a record without naming its owner. A
// record owned by someone else is reported as ErrApplicationNotFound, exactly
// like one that does not exist.
package applications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/wuwenbin0122/applytrackr/internal/apperror"
	"github.com/wuwenbin0122/applytrackr/internal/db"
	"github.com/wuwenbin0122/applytrackr/internal/models"
)

var (
	ErrMissingFields       = apperror.Validation("company and position are required")
	ErrInvalidStatus       = apperror.Validation("status must be one of: " + strings.Join(statusNames(), ", "))
	ErrInvalidSortField    = apperror.Validation("sortBy must be one of: " + strings.Join(models.SortFields, ", "))
	ErrEmptyUpdate         = apperror.Validation("no updatable fields supplied")
	ErrApplicationNotFound = apperror.NotFound("Application not found")
)

// Repository is the ownership-scoped store. Get and Update return db.ErrNotFound
// when no record matches both id and owner.
type Repository interface {
	Create(ctx context.Context, ownerID string, app *models.Application) error
	Get(ctx context.Context, ownerID, id string) (*models.Application, error)
	List(ctx context.Context, ownerID string, opts models.ListOptions) ([]models.Application, error)
	Update(ctx context.Context, ownerID, id string, patch models.ApplicationPatch) (*models.Application, error)
	Delete(ctx context.Context, ownerID, id string) (bool, error)
}

type CreateInput struct {
	Company     string
	Position    string
	JobLink     string
	Status      string
	AppliedDate *time.Time
	Deadline    *time.Time
	Notes       string
}

// ListQuery carries the raw list parameters. Order "asc" sorts ascending;
// anything else sorts descending.
type ListQuery struct {
	Status string
	SortBy string
	Order  string
}

type Service struct {
	repo     Repository
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

type Option func(*Service)

// WithValidator shares a validator (gin's binding engine, for instance).
// RegisterValidations is applied to it.
func WithValidator(v *validator.Validate) Option {
	return func(s *Service) { s.validate = v }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, logger *zap.Logger, opts ...Option) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.validate == nil {
		s.validate = validator.New()
	}
	if err := RegisterValidations(s.validate); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) Create(ctx context.Context, ownerID string, input CreateInput) (*models.Application, error) {
	company := strings.TrimSpace(input.Company)
	position := strings.TrimSpace(input.Position)
	if company == "" || position == "" {
		return nil, ErrMissingFields
	}

	status := models.StatusApplied
	if raw := strings.TrimSpace(input.Status); raw != "" {
		if err := s.checkStatus(raw); err != nil {
			return nil, err
		}
		status = models.ApplicationStatus(raw)
	}

	now := s.now()
	app := &models.Application{
		Company:     company,
		Position:    position,
		JobLink:     strings.TrimSpace(input.JobLink),
		Status:      status,
		AppliedDate: now,
		Deadline:    input.Deadline,
		Notes:       strings.TrimSpace(input.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if input.AppliedDate != nil && !input.AppliedDate.IsZero() {
		app.AppliedDate = *input.AppliedDate
	}

	if err := s.repo.Create(ctx, ownerID, app); err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}

	s.logger.Debug("application created", zap.String("user_id", ownerID), zap.String("application_id", app.ID))
	return app, nil
}

func (s *Service) Get(ctx context.Context, ownerID, id string) (*models.Application, error) {
	app, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return nil, notFoundOr(err, "get application")
	}
	return app, nil
}

func (s *Service) List(ctx context.Context, ownerID string, query ListQuery) ([]models.Application, error) {
	opts := models.ListOptions{
		Status: query.Status,
		SortBy: models.SortCreatedAt,
	}
	if sortBy := strings.TrimSpace(query.SortBy); sortBy != "" {
		if !lo.Contains(models.SortFields, sortBy) {
			return nil, ErrInvalidSortField
		}
		opts.SortBy = sortBy
		opts.Ascending = query.Order == "asc"
	}

	apps, err := s.repo.List(ctx, ownerID, opts)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

func (s *Service) Update(ctx context.Context, ownerID, id string, patch models.ApplicationPatch) (*models.Application, error) {
	if patch.Empty() {
		return nil, ErrEmptyUpdate
	}

	if patch.Company != nil {
		company := strings.TrimSpace(*patch.Company)
		if company == "" {
			return nil, ErrMissingFields
		}
		patch.Company = &company
	}
	if patch.Position != nil {
		position := strings.TrimSpace(*patch.Position)
		if position == "" {
			return nil, ErrMissingFields
		}
		patch.Position = &position
	}
	if patch.Status != nil {
		if err := s.checkStatus(string(*patch.Status)); err != nil {
			return nil, err
		}
	}
	if patch.JobLink != nil {
		jobLink := strings.TrimSpace(*patch.JobLink)
		patch.JobLink = &jobLink
	}
	if patch.Notes != nil {
		notes := strings.TrimSpace(*patch.Notes)
		patch.Notes = &notes
	}

	app, err := s.repo.Update(ctx, ownerID, id, patch)
	if err != nil {
		return nil, notFoundOr(err, "update application")
	}
	return app, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	deleted, err := s.repo.Delete(ctx, ownerID, id)
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	if !deleted {
		return ErrApplicationNotFound
	}
	return nil
}

func (s *Service) checkStatus(status string) error {
	if err := s.validate.Var(status, "required,"+StatusTag); err != nil {
		return ErrInvalidStatus
	}
	return nil
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, db.ErrNotFound) {
		return ErrApplicationNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func statusNames() []string {
	return lo.Map(models.ApplicationStatuses, func(s models.ApplicationStatus, _ int) string {
		return string(s)
	})
}
