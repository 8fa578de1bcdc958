package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wuwenbin0122/applytrackr/internal/models"
)

type PostgresApplications struct {
	pool *pgxpool.Pool
}

func NewPostgresApplications(store *Postgres) *PostgresApplications {
	return &PostgresApplications{pool: store.Pool}
}

const applicationColumns = "id, user_id, company, position, job_link, status, applied_date, deadline, notes, created_at, updated_at"

// sortColumns maps sortable fields to columns. Only these names ever reach ORDER BY.
var sortColumns = map[string]string{
	models.SortCreatedAt:   "created_at",
	models.SortUpdatedAt:   "updated_at",
	models.SortAppliedDate: "applied_date",
	models.SortDeadline:    "deadline",
	models.SortCompany:     "company",
	models.SortPosition:    "position",
	models.SortStatus:      "status",
}

func (r *PostgresApplications) Create(ctx context.Context, ownerID string, app *models.Application) error {
	prepareApplication(ownerID, app, time.Now().UTC())

	query := "INSERT INTO applications (" + applicationColumns + ") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)"
	_, err := r.pool.Exec(ctx, query,
		app.ID,
		app.OwnerID,
		app.Company,
		app.Position,
		app.JobLink,
		string(app.Status),
		app.AppliedDate,
		app.Deadline,
		app.Notes,
		app.CreatedAt,
		app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres insert application: %w", err)
	}
	return nil
}

func (r *PostgresApplications) Get(ctx context.Context, ownerID, id string) (*models.Application, error) {
	query := "SELECT " + applicationColumns + " FROM applications WHERE id = $1 AND user_id = $2"
	app, err := scanApplication(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("postgres query application: %w", err)
	}
	return app, nil
}

func (r *PostgresApplications) List(ctx context.Context, ownerID string, opts models.ListOptions) ([]models.Application, error) {
	var sb strings.Builder
	sb.WriteString("SELECT " + applicationColumns + " FROM applications WHERE user_id = $1")
	args := []any{ownerID}

	if opts.Status != "" {
		args = append(args, opts.Status)
		fmt.Fprintf(&sb, " AND status = $%d", len(args))
	}

	column, ok := sortColumns[opts.SortBy]
	if !ok {
		column = "created_at"
	}
	if opts.Ascending {
		fmt.Fprintf(&sb, " ORDER BY %s ASC NULLS FIRST, id ASC", column)
	} else {
		fmt.Fprintf(&sb, " ORDER BY %s DESC NULLS LAST, id DESC", column)
	}

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("postgres list applications: %w", err)
	}
	defer rows.Close()

	apps := make([]models.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres scan application: %w", err)
		}
		apps = append(apps, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres list applications: %w", err)
	}
	return apps, nil
}

func (r *PostgresApplications) Update(ctx context.Context, ownerID, id string, patch models.ApplicationPatch) (*models.Application, error) {
	var sets []string
	var args []any
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Company != nil {
		set("company", *patch.Company)
	}
	if patch.Position != nil {
		set("position", *patch.Position)
	}
	if patch.JobLink != nil {
		set("job_link", *patch.JobLink)
	}
	if patch.Status != nil {
		set("status", string(*patch.Status))
	}
	if patch.AppliedDate != nil {
		set("applied_date", *patch.AppliedDate)
	}
	switch {
	case patch.ClearDeadline:
		set("deadline", nil)
	case patch.Deadline != nil:
		set("deadline", *patch.Deadline)
	}
	if patch.Notes != nil {
		set("notes", *patch.Notes)
	}
	set("updated_at", time.Now().UTC())

	args = append(args, id, ownerID)
	query := fmt.Sprintf(
		"UPDATE applications SET %s WHERE id = $%d AND user_id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args)-1, len(args), applicationColumns,
	)

	app, err := scanApplication(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("postgres update application: %w", err)
	}
	return app, nil
}

func (r *PostgresApplications) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM applications WHERE id = $1 AND user_id = $2", id, ownerID)
	if err != nil {
		return false, fmt.Errorf("postgres delete application: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanApplication(row pgx.Row) (*models.Application, error) {
	var (
		app    models.Application
		status string
	)
	if err := row.Scan(
		&app.ID,
		&app.OwnerID,
		&app.Company,
		&app.Position,
		&app.JobLink,
		&status,
		&app.AppliedDate,
		&app.Deadline,
		&app.Notes,
		&app.CreatedAt,
		&app.UpdatedAt,
	); err != nil {
		return nil, err
	}
	app.Status = models.ApplicationStatus(status)
	return &app, nil
}
