// Package store persists application records. The orchestrator is a
// stateless coordinator; conflicting writes to the same record are
// serialized here, not in the orchestrator.
package store

import (
	"context"
	"errors"

	"loanflow/internal/models"
)

// ErrNotFound is returned when an application cannot be resolved by id or
// company id. The orchestrator translates it into its own error kind.
var ErrNotFound = errors.New("application not found")

// Store is the persistence contract the orchestrator consumes.
type Store interface {
	// CreateApplication inserts a new record with status Created and an
	// empty requirement set.
	CreateApplication(ctx context.Context, id, companyID string) (*models.Application, error)
	GetApplication(ctx context.Context, id string) (*models.Application, error)
	GetApplicationByCompanyID(ctx context.Context, companyID string) (*models.Application, error)
	GetApplicationStatus(ctx context.Context, id string) (models.Status, error)
	SetApplicationForm(ctx context.Context, id string, form models.LoanForm) error
	SetAccountingConnectionForCompany(ctx context.Context, companyID, connectionID string) error
	// AddFulfilledRequirementForCompany is idempotent: fulfilling an
	// already-fulfilled requirement is a no-op.
	AddFulfilledRequirementForCompany(ctx context.Context, companyID string, requirement models.Requirement) error
	UpdateApplicationStatus(ctx context.Context, id string, status models.Status) error
	// TransitionStatus writes a collection-phase status but never past one:
	// once the record is Underwriting or in a terminal outcome the write is
	// skipped. It reports whether the write applied.
	TransitionStatus(ctx context.Context, id string, status models.Status) (bool, error)
	// BeginUnderwriting atomically transitions
	// CollectingData|DataCollectionComplete -> Underwriting and reports
	// whether this caller won the transition. Exactly one of any set of
	// concurrent callers sees true.
	BeginUnderwriting(ctx context.Context, id string) (bool, error)
}
