package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"loanflow/internal/common/logger"
	"loanflow/internal/models"
)

// PostgresStore implements Store on top of PostgreSQL.
type PostgresStore struct {
	db     *sql.DB
	logger logger.Logger
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "store"}),
	}
}

func (s *PostgresStore) CreateApplication(ctx context.Context, id, companyID string) (*models.Application, error) {
	createdAt := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO applications (id, company_id, status, date_created)
		VALUES ($1, $2, $3, $4)`,
		id, companyID, models.StatusCreated, createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert application: %w", err)
	}

	return &models.Application{
		ID:                id,
		ExternalCompanyID: companyID,
		Requirements:      []models.Requirement{},
		Status:            models.StatusCreated,
		DateCreated:       createdAt,
	}, nil
}

func (s *PostgresStore) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	return s.getApplication(ctx, `WHERE id = $1`, id)
}

func (s *PostgresStore) GetApplicationByCompanyID(ctx context.Context, companyID string) (*models.Application, error) {
	return s.getApplication(ctx, `WHERE company_id = $1`, companyID)
}

func (s *PostgresStore) getApplication(ctx context.Context, where, arg string) (*models.Application, error) {
	var (
		app        models.Application
		connection sql.NullString
		amount     sql.NullFloat64
		termMonths sql.NullInt64
	)

	query := `
		SELECT id, company_id, accounting_connection, form_amount, form_term_months, status, date_created
		FROM applications ` + where

	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&app.ID, &app.ExternalCompanyID, &connection, &amount, &termMonths, &app.Status, &app.DateCreated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query application: %w", err)
	}

	if connection.Valid {
		app.AccountingConnection = &connection.String
	}
	if amount.Valid && termMonths.Valid {
		app.Form = &models.LoanForm{
			Amount:     amount.Float64,
			TermMonths: int(termMonths.Int64),
		}
	}

	requirements, err := s.loadRequirements(ctx, app.ID)
	if err != nil {
		return nil, err
	}
	app.Requirements = requirements

	return &app, nil
}

func (s *PostgresStore) loadRequirements(ctx context.Context, applicationID string) ([]models.Requirement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT requirement FROM application_requirements WHERE application_id = $1`,
		applicationID,
	)
	if err != nil {
		return nil, fmt.Errorf("query requirements: %w", err)
	}
	defer rows.Close()

	requirements := []models.Requirement{}
	for rows.Next() {
		var r models.Requirement
		if err := rows.Scan(&r); err != nil {
			return nil, fmt.Errorf("scan requirement: %w", err)
		}
		requirements = append(requirements, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requirements: %w", err)
	}

	return requirements, nil
}

func (s *PostgresStore) GetApplicationStatus(ctx context.Context, id string) (models.Status, error) {
	var status models.Status
	err := s.db.QueryRowContext(ctx, `
		SELECT status FROM applications WHERE id = $1`, id,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("query status: %w", err)
	}
	return status, nil
}

func (s *PostgresStore) SetApplicationForm(ctx context.Context, id string, form models.LoanForm) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE applications SET form_amount = $2, form_term_months = $3 WHERE id = $1`,
		id, form.Amount, form.TermMonths,
	)
	if err != nil {
		return fmt.Errorf("set form: %w", err)
	}
	return s.requireRow(res)
}

func (s *PostgresStore) SetAccountingConnectionForCompany(ctx context.Context, companyID, connectionID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE applications SET accounting_connection = $2 WHERE company_id = $1`,
		companyID, connectionID,
	)
	if err != nil {
		return fmt.Errorf("set accounting connection: %w", err)
	}
	return s.requireRow(res)
}

func (s *PostgresStore) AddFulfilledRequirementForCompany(ctx context.Context, companyID string, requirement models.Requirement) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO application_requirements (application_id, requirement)
		SELECT id, $2 FROM applications WHERE company_id = $1
		ON CONFLICT (application_id, requirement) DO NOTHING`,
		companyID, requirement,
	)
	if err != nil {
		return fmt.Errorf("add requirement: %w", err)
	}

	// Zero rows is fine when the requirement was already fulfilled, but a
	// missing application must surface.
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("add requirement: %w", err)
	}
	if affected == 0 {
		if _, err := s.GetApplicationByCompanyID(ctx, companyID); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) UpdateApplicationStatus(ctx context.Context, id string, status models.Status) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE applications SET status = $2 WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return s.requireRow(res)
}

func (s *PostgresStore) TransitionStatus(ctx context.Context, id string, status models.Status) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE applications SET status = $2
		WHERE id = $1 AND status IN ($3, $4, $5)`,
		id, status, models.StatusCreated, models.StatusCollectingData, models.StatusDataCollectionComplete,
	)
	if err != nil {
		return false, fmt.Errorf("transition status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("transition status: %w", err)
	}
	if affected == 1 {
		return true, nil
	}

	// Distinguish a guarded record from a missing one.
	if _, err := s.GetApplicationStatus(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

func (s *PostgresStore) BeginUnderwriting(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE applications SET status = $2
		WHERE id = $1 AND status IN ($3, $4)`,
		id, models.StatusUnderwriting, models.StatusCollectingData, models.StatusDataCollectionComplete,
	)
	if err != nil {
		return false, fmt.Errorf("begin underwriting: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("begin underwriting: %w", err)
	}
	return affected == 1, nil
}

func (s *PostgresStore) requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
