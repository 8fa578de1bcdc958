package applications_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wuwenbin0122/applytrackr/internal/applications"
	"github.com/wuwenbin0122/applytrackr/internal/apperror"
	"github.com/wuwenbin0122/applytrackr/internal/db"
	"github.com/wuwenbin0122/applytrackr/internal/models"
)

// steppingClock advances one minute per call so creation order is visible.
func steppingClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Minute)
		return current
	}
}

func newService(t *testing.T, repo applications.Repository) *applications.Service {
	t.Helper()
	svc, err := applications.NewService(repo, nil,
		applications.WithClock(steppingClock(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC))))
	require.NoError(t, err)
	return svc
}

func ptr[T any](v T) *T { return &v }

func TestCreateAppliesDefaults(t *testing.T) {
	svc := newService(t, db.NewMemoryApplications())

	app, err := svc.Create(context.Background(), "user-a", applications.CreateInput{
		Company:  "  Acme ",
		Position: "Engineer",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, app.ID)
	assert.Equal(t, "user-a", app.OwnerID)
	assert.Equal(t, "Acme", app.Company)
	assert.Equal(t, models.StatusApplied, app.Status)
	assert.True(t, app.AppliedDate.Equal(app.CreatedAt), "applied date defaults to creation time")
	assert.Nil(t, app.Deadline)
}

func TestCreateValidation(t *testing.T) {
	svc := newService(t, db.NewMemoryApplications())
	ctx := context.Background()

	_, err := svc.Create(ctx, "user-a", applications.CreateInput{Company: "Acme", Position: "   "})
	assert.ErrorIs(t, err, applications.ErrMissingFields)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = svc.Create(ctx, "user-a", applications.CreateInput{Company: "Acme", Position: "Engineer", Status: "hired"})
	assert.ErrorIs(t, err, applications.ErrInvalidStatus)

	applied := time.Date(2024, time.December, 12, 0, 0, 0, 0, time.UTC)
	app, err := svc.Create(ctx, "user-a", applications.CreateInput{
		Company:     "Acme",
		Position:    "Engineer",
		Status:      "wishlist",
		AppliedDate: &applied,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusWishlist, app.Status)
	assert.True(t, app.AppliedDate.Equal(applied))
}

func TestUpdatePreservesUnsuppliedFields(t *testing.T) {
	svc := newService(t, db.NewMemoryApplications())
	ctx := context.Background()

	deadline := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	created, err := svc.Create(ctx, "user-a", applications.CreateInput{
		Company:  "Acme",
		Position: "Engineer",
		JobLink:  "https://acme.test/jobs/1",
		Deadline: &deadline,
		Notes:    "referral from Kim",
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "user-a", created.ID, models.ApplicationPatch{
		Status: ptr(models.StatusInterview),
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusInterview, updated.Status)
	assert.Equal(t, created.Company, updated.Company)
	assert.Equal(t, created.Position, updated.Position)
	assert.Equal(t, created.JobLink, updated.JobLink)
	assert.Equal(t, created.Notes, updated.Notes)
	require.NotNil(t, updated.Deadline)
	assert.True(t, updated.Deadline.Equal(deadline))
	assert.True(t, updated.AppliedDate.Equal(created.AppliedDate))
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))
}

func TestUpdateValidation(t *testing.T) {
	svc := newService(t, db.NewMemoryApplications())
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-a", applications.CreateInput{Company: "Acme", Position: "Engineer"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, "user-a", created.ID, models.ApplicationPatch{})
	assert.ErrorIs(t, err, applications.ErrEmptyUpdate)

	_, err = svc.Update(ctx, "user-a", created.ID, models.ApplicationPatch{Company: ptr("  ")})
	assert.ErrorIs(t, err, applications.ErrMissingFields)

	_, err = svc.Update(ctx, "user-a", created.ID, models.ApplicationPatch{Status: ptr(models.ApplicationStatus("ghosted"))})
	assert.ErrorIs(t, err, applications.ErrInvalidStatus)
}

func TestOwnershipIsolation(t *testing.T) {
	svc := newService(t, db.NewMemoryApplications())
	ctx := context.Background()

	owned, err := svc.Create(ctx, "user-a", applications.CreateInput{Company: "Acme", Position: "Engineer"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, "user-b", owned.ID)
	assert.ErrorIs(t, err, applications.ErrApplicationNotFound)

	_, err = svc.Update(ctx, "user-b", owned.ID, models.ApplicationPatch{Status: ptr(models.StatusOffer)})
	assert.ErrorIs(t, err, applications.ErrApplicationNotFound)

	err = svc.Delete(ctx, "user-b", owned.ID)
	assert.ErrorIs(t, err, applications.ErrApplicationNotFound)

	// A foreign id and a missing id are indistinguishable.
	_, missingErr := svc.Get(ctx, "user-b", "does-not-exist")
	_, foreignErr := svc.Get(ctx, "user-b", owned.ID)
	assert.Equal(t, missingErr, foreignErr)

	list, err := svc.List(ctx, "user-b", applications.ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, list)

	still, err := svc.Get(ctx, "user-a", owned.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApplied, still.Status)

	require.NoError(t, svc.Delete(ctx, "user-a", owned.ID))
	assert.ErrorIs(t, svc.Delete(ctx, "user-a", owned.ID), applications.ErrApplicationNotFound)
}

func TestListOrderingAndFilters(t *testing.T) {
	svc := newService(t, db.NewMemoryApplications())
	ctx := context.Background()

	mk := func(company, status string) *models.Application {
		app, err := svc.Create(ctx, "user-a", applications.CreateInput{Company: company, Position: "Engineer", Status: status})
		require.NoError(t, err)
		return app
	}
	globex := mk("Globex", "interview")
	acme := mk("Acme", "")
	initech := mk("Initech", "interview")
	_, err := svc.Create(ctx, "user-b", applications.CreateInput{Company: "Umbrella", Position: "Chemist", Status: "interview"})
	require.NoError(t, err)

	names := func(apps []models.Application) []string {
		out := make([]string, 0, len(apps))
		for _, app := range apps {
			out = append(out, app.Company)
		}
		return out
	}

	got, err := svc.List(ctx, "user-a", applications.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{initech.Company, acme.Company, globex.Company}, names(got), "newest first by default")

	got, err = svc.List(ctx, "user-a", applications.ListQuery{Status: "interview"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Initech", "Globex"}, names(got))

	got, err = svc.List(ctx, "user-a", applications.ListQuery{Status: "not-a-status"})
	require.NoError(t, err)
	assert.Empty(t, got, "unknown status filters to nothing rather than failing")

	got, err = svc.List(ctx, "user-a", applications.ListQuery{SortBy: "company", Order: "asc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Globex", "Initech"}, names(got))

	got, err = svc.List(ctx, "user-a", applications.ListQuery{SortBy: "company", Order: "ASC"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Initech", "Globex", "Acme"}, names(got), "anything but asc is descending")

	_, err = svc.List(ctx, "user-a", applications.ListQuery{SortBy: "user"})
	assert.ErrorIs(t, err, applications.ErrInvalidSortField)
}

type failingRepo struct {
	applications.Repository
	err error
}

func (f failingRepo) List(context.Context, string, models.ListOptions) ([]models.Application, error) {
	return nil, f.err
}

func TestListWrapsStoreErrorsAsInternal(t *testing.T) {
	cause := errors.New("socket closed")
	svc := newService(t, failingRepo{err: cause})

	_, err := svc.List(context.Background(), "user-a", applications.ListQuery{})
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
}
