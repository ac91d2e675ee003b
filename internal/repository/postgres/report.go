package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Thanujadevi/EMPOWERHER/internal/model"
)

var _ model.ReportStore = (*ReportRepository)(nil)

type ReportRepository struct {
	db *Connection
}

func NewReportRepository(db *Connection) *ReportRepository {
	return &ReportRepository{
		db: db,
	}
}

func (r *ReportRepository) Create(ctx context.Context, report model.CrimeReport) (model.CrimeReport, error) {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}

	var reportedBy *uuid.UUID
	if report.ReportedBy != uuid.Nil {
		reportedBy = &report.ReportedBy
	}

	query := `INSERT INTO crime_reports (id, type, description, location, latitude, longitude, reported_by, occurred_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING created_at`

	err := r.db.QueryRow(ctx, query,
		report.ID, report.Type, report.Description, report.Location,
		report.Latitude, report.Longitude, reportedBy, report.OccurredAt,
	).Scan(&report.CreatedAt)
	if err != nil {
		return model.CrimeReport{}, fmt.Errorf("failed to create crime report: %w", err)
	}

	return report, nil
}

func (r *ReportRepository) List(ctx context.Context, limit int) ([]model.CrimeReport, error) {
	query := `SELECT id, type, description, location, latitude, longitude, reported_by, occurred_at, created_at
			  FROM crime_reports ORDER BY occurred_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list crime reports: %w", err)
	}

	reports, err := pgx.CollectRows(rows, scanReport)
	if err != nil {
		return nil, fmt.Errorf("failed to scan crime reports: %w", err)
	}

	return reports, nil
}

func scanReport(row pgx.CollectableRow) (model.CrimeReport, error) {
	var (
		report     model.CrimeReport
		reportedBy *uuid.UUID
		occurredAt time.Time
		createdAt  time.Time
	)
	err := row.Scan(
		&report.ID, &report.Type, &report.Description, &report.Location,
		&report.Latitude, &report.Longitude, &reportedBy, &occurredAt, &createdAt,
	)
	if err != nil {
		return model.CrimeReport{}, err
	}
	if reportedBy != nil {
		report.ReportedBy = *reportedBy
	}
	report.OccurredAt = occurredAt
	report.CreatedAt = createdAt
	return report, nil
}
